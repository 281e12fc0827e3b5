/*
Package randx provides functions for generating cryptographically secure random identifiers.

It is primarily used to generate correlation IDs that tie log lines to a client
session and to individual real-time connection attempts.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// ConnTagLength is the fixed length of the random part of a connection tag.
	ConnTagLength = 6

	// connTagPrefix marks connection tags in log output.
	connTagPrefix = "conn_"
)

// SessionID generates a standard UUID v4 string to serve as the correlation ID
// for a client session's lifetime.
func SessionID() string {
	return uuid.New().String()
}

// ConnTag generates a short Base62 tag using a cryptographically secure random
// number generator, used to correlate the log lines of a single real-time
// connection attempt. It falls back to a fixed tag if the random source fails.
func ConnTag() string {
	result := make([]byte, ConnTagLength)

	for i := 0; i < ConnTagLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return connTagPrefix + "XXXXXX"
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return fmt.Sprintf("%s%s", connTagPrefix, result)
}
