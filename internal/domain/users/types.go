package users

import (
	"errors"
	"time"

	"mogges/internal/auth"
	"mogges/internal/domain/accesscontrol"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrDuplicateEmail    = errors.New("a user with that email already exists")
	QueryTimeoutDuration = time.Second * 5
)

type User struct {
	ID        int64                  `json:"id"`
	Email     string                 `json:"email"`
	Password  password               `json:"-"`
	Role      accesscontrol.RoleName `json:"role"`
	CreatedAt time.Time              `json:"createdAt"`
}

type password struct {
	hash string
}

func (p *password) Set(text string) error {
	hash, err := auth.HashPassword(text)
	if err != nil {
		return err
	}

	p.hash = hash

	return nil
}

// Matches reports whether text is the account password.
func (p *password) Matches(text string) bool {
	if p.hash == "" {
		return false
	}
	return auth.VerifyPassword(text, p.hash)
}

// NeedsRehash is true for digests written by the unsalted legacy scheme.
func (p *password) NeedsRehash() bool {
	return auth.IsLegacyDigest(p.hash)
}

func (p *password) Digest() string {
	return p.hash
}

// SetDigest loads an already hashed password, as read from storage.
func (p *password) SetDigest(hash string) {
	p.hash = hash
}
