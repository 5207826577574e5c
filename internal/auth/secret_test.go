package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-service/internal/config"
)

func TestVerifySecret_PlainSecret(t *testing.T) {
	cfg := config.AdminConfig{Secret: "swordfish"}

	require.True(t, VerifySecret(cfg, "swordfish"))
	require.False(t, VerifySecret(cfg, "Swordfish"))
	require.False(t, VerifySecret(cfg, ""))
}

func TestVerifySecret_EmptyConfigGrantsNothing(t *testing.T) {
	require.False(t, VerifySecret(config.AdminConfig{}, ""))
	require.False(t, VerifySecret(config.AdminConfig{}, "anything"))
}

func TestVerifySecret_HashedSecretWins(t *testing.T) {
	hash, err := HashSecret("swordfish", 4)
	require.NoError(t, err)

	cfg := config.AdminConfig{Secret: "other", SecretHash: hash}
	require.True(t, VerifySecret(cfg, "swordfish"))
	require.False(t, VerifySecret(cfg, "other"))
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 5)

	token, expiresAt, err := tm.GenerateToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "admin", claims.Role)
}

func TestTokenManager_RejectsForeignToken(t *testing.T) {
	issuer := NewTokenManager("secret-a", 5)
	verifier := NewTokenManager("secret-b", 5)

	token, _, err := issuer.GenerateToken()
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.Error(t, err)
}
