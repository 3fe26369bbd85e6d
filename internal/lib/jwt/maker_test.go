package jwt

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker("test_secret_key_1234567890", tokenTTL)

	tests := []struct {
		name string
		id   Identity
	}{
		{
			name: "admin user",
			id:   Identity{UserID: 1, Email: "admin@dipaca.com", Rol: "admin"},
		},
		{
			name: "cliente user",
			id:   Identity{UserID: 7, Email: "juan@example.com", Rol: "cliente", ClienteID: int64Ptr(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.id)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.id, claims.Identity)
			assert.NotEmpty(t, claims.RegisteredClaims.ID)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_PayloadShape(t *testing.T) {
	maker := NewJWTMaker("secret", time.Hour)

	token, err := maker.GenerateToken(Identity{UserID: 1, Email: "admin@dipaca.com", Rol: "admin"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))

	assert.EqualValues(t, 1, payload["id"])
	assert.Equal(t, "admin@dipaca.com", payload["email"])
	assert.Equal(t, "admin", payload["rol"])
	assert.Contains(t, payload, "cliente_id")
	assert.Nil(t, payload["cliente_id"])
	assert.Contains(t, payload, "exp")
	assert.Contains(t, payload, "iat")
	assert.Contains(t, payload, "jti")
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewJWTMaker(secretKey, 15*time.Minute)

	validToken, err := maker.GenerateToken(Identity{UserID: 1, Rol: "admin"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: createExpiredToken(t, secretKey)},
		{name: "wrong secret key", token: createTokenWithWrongSecret(t)},
		{name: "tampered token", token: validToken + "tampered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidToken))
			assert.Nil(t, claims)
		})
	}
}

func TestJWTMaker_TokensAreUnique(t *testing.T) {
	maker := NewJWTMaker("secret", time.Hour)
	id := Identity{UserID: 5, Rol: "admin"}

	t1, err := maker.GenerateToken(id)
	require.NoError(t, err)
	t2, err := maker.GenerateToken(id)
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
}

func createExpiredToken(t *testing.T, secretKey string) string {
	maker := NewJWTMaker(secretKey, -time.Hour)
	token, err := maker.GenerateToken(Identity{UserID: 1, Rol: "admin"})
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	wrongMaker := NewJWTMaker("wrong_secret_key", 15*time.Minute)
	token, err := wrongMaker.GenerateToken(Identity{UserID: 1, Rol: "admin"})
	require.NoError(t, err)
	return token
}
