package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposerSingleLine(t *testing.T) {
	c := NewComposer()

	require.True(t, c.Add("hello"))
	assert.Equal(t, "hello", c.Drain())
	assert.False(t, c.Pending())
}

func TestComposerContinuation(t *testing.T) {
	c := NewComposer()

	require.False(t, c.Add(`first\`))
	assert.True(t, c.Pending())
	assert.Equal(t, "first", c.Snapshot())

	require.True(t, c.Add("second"))
	assert.Equal(t, "first\nsecond", c.Drain())
}

func TestComposerEscapedBackslashSubmits(t *testing.T) {
	c := NewComposer()

	require.True(t, c.Add(`trailing slash\\`))
	assert.Equal(t, `trailing slash\`, c.Drain())
}

func TestComposerHeightCapFolds(t *testing.T) {
	c := NewComposer()

	for i := 0; i < MaxDraftLines+3; i++ {
		require.False(t, c.Add(`line\`))
	}
	require.True(t, c.Add("last"))

	draft := c.Drain()
	lines := 1
	for _, ch := range draft {
		if ch == '\n' {
			lines++
		}
	}
	assert.Equal(t, MaxDraftLines, lines)
}

func TestComposerDrainResets(t *testing.T) {
	c := NewComposer()
	c.Add(`a\`)
	c.Drain()

	assert.False(t, c.Pending())
	require.True(t, c.Add("fresh"))
	assert.Equal(t, "fresh", c.Drain())
}
