package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService_MissingSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingTokenSecret)
}

func TestTokenService_RoundTrip(t *testing.T) {
	service, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := service.GenerateToken("extension")
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "extension", claims.GetClient())
	assert.Equal(t, TokenIssuer, claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
}

func TestTokenService_GenerateRequiresClient(t *testing.T) {
	service, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	_, err = service.GenerateToken("")
	assert.Error(t, err)
}

func TestTokenService_NoExpiry(t *testing.T) {
	service, err := NewTokenService("test-secret", 0)
	require.NoError(t, err)

	token, err := service.GenerateToken("cli")
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestTokenService_Rejects(t *testing.T) {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	service, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	service.now = func() time.Time { return issued }

	valid, err := service.GenerateToken("extension")
	require.NoError(t, err)

	other, err := NewTokenService("other-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := other.GenerateToken("extension")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Client:           "extension",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: TokenIssuer},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		now   time.Time
	}{
		{name: "empty", token: "", now: issued},
		{name: "malformed", token: "not-a-token", now: issued},
		{name: "wrong secret", token: foreign, now: issued},
		{name: "alg none", token: unsigned, now: issued},
		{name: "expired", token: valid, now: issued.Add(2 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service.now = func() time.Time { return tt.now }
			_, err := service.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}
