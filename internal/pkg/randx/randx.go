/*
Package randx provides functions for generating cryptographically secure random
identifiers and for converting between dashed and dashless UUID representations.

It is primarily used to generate fixed-length Base62 invite URIs and to render
list/item identifiers in the dashless hex form used by URL segments and push topics.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// InviteURILength is the fixed length of generated invite URIs.
	InviteURILength = 12
)

// InviteURI generates a Base62 encoded invite URI using crypto/rand.
// It returns a string of length InviteURILength and any error encountered.
func InviteURI() (string, error) {
	result := make([]byte, InviteURILength)

	for i := range InviteURILength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for invite uri: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// IsValidInviteURI checks if the given string is a valid invite URI.
// Validity criteria: length equals InviteURILength and all characters belong to Base62Chars.
func IsValidInviteURI(uri string) bool {
	if len(uri) != InviteURILength {
		return false
	}

	for _, char := range uri {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}

// Hex renders a UUID in the 32-character dashless hex form used by URL segments
// and push-topic names.
func Hex(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}

// ParseID parses an identifier that may be in either the dashed or dashless UUID form.
func ParseID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
