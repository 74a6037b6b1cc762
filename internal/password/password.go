// Package password wraps bcrypt hashing so the rest of the code never
// handles hash parameters directly.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt rejects inputs longer than 72 bytes; cap checked up front so
// the error is deterministic instead of depending on the library.
const maxLen = 72

var ErrTooLong = errors.New("password exceeds 72 bytes")

func Hash(plaintext string) (string, error) {
	if len(plaintext) > maxLen {
		return "", ErrTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether plaintext matches the stored hash. Any
// mismatch or malformed hash is simply "no match".
func Compare(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
