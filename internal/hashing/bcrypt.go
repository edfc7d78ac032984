package hashing

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authcore/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashes with golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	Cost int
}

func NewBcrypt(cost int) *Bcrypt {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{Cost: cost}
}

// Hash rejects passwords longer than 72 bytes with common.ErrValidation.
func (b *Bcrypt) Hash(password []byte) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(password, b.Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %w", common.ErrValidation, err)
		}
		return "", err
	}
	return string(hash), nil
}

func (b *Bcrypt) Verify(password []byte, encoded string) (bool, error) {
	return verifyAny(password, encoded)
}

func verifyBcrypt(password []byte, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
