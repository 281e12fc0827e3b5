package randx

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionIDIsUUID(t *testing.T) {
	id := SessionID()

	_, err := uuid.Parse(id)
	require.NoError(t, err)
}

func TestConnTagShape(t *testing.T) {
	tag := ConnTag()

	require.True(t, strings.HasPrefix(tag, "conn_"))
	suffix := strings.TrimPrefix(tag, "conn_")
	assert.Len(t, suffix, 6)

	for _, ch := range suffix {
		assert.Contains(t, Base62Chars, string(ch))
	}
}

func TestConnTagVaries(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 32; i++ {
		seen[ConnTag()] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}
