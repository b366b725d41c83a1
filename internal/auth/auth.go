package auth

import (
	"time"

	"mogges/internal/domain/accesscontrol"
)

// Claims are the identity facts carried by a session token.
type Claims struct {
	UserID    int64
	Email     string
	Role      accesscontrol.RoleName
	ExpiresAt time.Time
}

type Authenticator interface {
	IssueToken(userID int64, email string, role accesscontrol.RoleName) (string, error)
	// VerifyToken never fails loudly: malformed, forged or expired tokens
	// all come back as (nil, false).
	VerifyToken(token string) (*Claims, bool)
}
