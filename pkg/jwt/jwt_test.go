package jwt

import (
	"testing"
	"time"

	"go-shift-coverage/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "secret", SessionExpiry: time.Hour})

	token, tokenID, err := svc.GenerateSessionToken("acc-1", "md@clinic.ca")
	require.NoError(t, err)
	require.NotEmpty(t, tokenID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID)
	assert.Equal(t, "md@clinic.ca", claims.Email)
	assert.Equal(t, tokenID, claims.TokenID)
	assert.Equal(t, time.Hour, svc.GetSessionExpiry())
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	issuer := NewJWTService(config.JWTConfig{Secret: "one", SessionExpiry: time.Hour})
	verifier := NewJWTService(config.JWTConfig{Secret: "two", SessionExpiry: time.Hour})

	token, _, err := issuer.GenerateSessionToken("acc-1", "md@clinic.ca")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "secret", SessionExpiry: -time.Minute})

	token, _, err := svc.GenerateSessionToken("acc-1", "md@clinic.ca")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
