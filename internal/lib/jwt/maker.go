// Package jwt issues and parses the signed session tokens of the API.
package jwt

import (
	"time"
)

// Maker issues and parses session tokens.
type Maker interface {
	GenerateToken(id Identity) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl signs tokens with an HMAC secret and a fixed lifetime.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker returns a Maker for the given secret and token lifetime.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
