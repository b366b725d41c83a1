package auth

import (
	"fmt"
	"math"
	"time"

	"mogges/internal/domain/accesscontrol"

	"github.com/golang-jwt/jwt/v5"
)

type JWTAuthenticator struct {
	secret string
	iss    string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTAuthenticator(secret, iss string, ttl time.Duration) *JWTAuthenticator {
	return &JWTAuthenticator{secret: secret, iss: iss, ttl: ttl, now: time.Now}
}

// IssueToken signs an HS256 token that expires ttl from now.
func (a *JWTAuthenticator) IssueToken(userID int64, email string, role accesscontrol.RoleName) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  string(role),
		"exp":   now.Add(a.ttl).Unix(),
		"iat":   now.Unix(),
		"iss":   a.iss,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(a.secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

func (a *JWTAuthenticator) VerifyToken(token string) (*Claims, bool) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(a.iss),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return nil, false
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}

	sub, ok := mc["sub"].(float64)
	if !ok || sub != math.Trunc(sub) || sub <= 0 {
		return nil, false
	}
	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, false
	}

	return &Claims{
		UserID:    int64(sub),
		Email:     email,
		Role:      accesscontrol.RoleName(role),
		ExpiresAt: exp.Time,
	}, true
}
