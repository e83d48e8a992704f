package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordMismatch = errors.New("password mismatch")

// Hasher wraps bcrypt with a fixed work factor. bcrypt salts every hash.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher { return &Hasher{cost: cost} }

func (h *Hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	return string(b), err
}

// Verify returns ErrPasswordMismatch when plain does not match hash and the
// bcrypt error for a malformed hash.
func (h *Hasher) Verify(plain, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
