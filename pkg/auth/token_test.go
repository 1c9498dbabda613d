package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/adebayoakin/gearmart-backend/pkg/config"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "gearmart",
	ExpirationMinutes: 60,
}

func TestMintAndParseRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := MintAccessToken(testJWTConfig, time.Now(), AccessTokenPayload{
		UserID:  userID,
		Email:   "buyer@example.com",
		IsAdmin: true,
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(testJWTConfig, token)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "buyer@example.com", claims.Email)
	require.True(t, claims.IsAdmin)
	require.Equal(t, "gearmart", claims.Issuer)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "buyer@example.com",
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(testJWTConfig, token)
	require.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
	})
	require.NoError(t, err)

	other := testJWTConfig
	other.Secret = "different"
	_, err = ParseAccessToken(other, token)
	require.Error(t, err)
}

func TestMintValidatesConfig(t *testing.T) {
	_, err := MintAccessToken(config.JWTConfig{}, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	require.Error(t, err)

	_, err = MintAccessToken(testJWTConfig, time.Now(), AccessTokenPayload{})
	require.Error(t, err)
}
