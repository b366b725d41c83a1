package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt digest of plaintext.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks plaintext against a stored digest. Besides bcrypt it
// accepts the unsalted SHA-256 hex digests written by the previous storefront.
func VerifyPassword(plaintext, digest string) bool {
	if IsLegacyDigest(digest) {
		want := LegacyDigest(plaintext)
		return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(digest))) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// LegacyDigest is the hex SHA-256 of plaintext.
func LegacyDigest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// IsLegacyDigest reports whether digest should be replaced by a bcrypt hash
// after the next successful login.
func IsLegacyDigest(digest string) bool {
	if len(digest) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}
