// Package hashing provides the password hashing capability used by the
// credential services. Hashes are self-describing strings, so an account
// hashed with bcrypt still verifies after switching the default to argon2id
// and vice versa.
package hashing

import (
	"fmt"
	"strings"
)

// Hasher turns a password into an opaque stored string and checks a
// password against one. Verify returns false with a nil error on mismatch.
type Hasher interface {
	Hash(password []byte) (string, error)
	Verify(password []byte, encoded string) (bool, error)
}

// New returns the hasher named kind ("bcrypt" or "argon2id").
// bcryptCost is ignored for argon2id; zero means bcrypt.DefaultCost.
func New(kind string, bcryptCost int) (Hasher, error) {
	switch kind {
	case "bcrypt", "":
		return NewBcrypt(bcryptCost), nil
	case "argon2id":
		return NewArgon2id(), nil
	default:
		return nil, fmt.Errorf("unknown hasher %q", kind)
	}
}

// verifyAny picks the algorithm from the encoded prefix.
func verifyAny(password []byte, encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, argon2idPrefix):
		return verifyArgon2id(password, encoded)
	case strings.HasPrefix(encoded, "$2"):
		return verifyBcrypt(password, encoded)
	default:
		return false, ErrUnknownFormat
	}
}
