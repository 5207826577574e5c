package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/marketplace-service/internal/config"
)

// VerifySecret checks a login attempt against the configured admin
// secret. When a bcrypt hash is configured it wins; otherwise the
// plaintext secret is compared in constant time. An empty configuration
// grants nothing.
func VerifySecret(cfg config.AdminConfig, candidate string) bool {
	if cfg.SecretHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cfg.SecretHash), []byte(candidate)) == nil
	}
	if cfg.Secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cfg.Secret), []byte(candidate)) == 1
}

// HashSecret produces a bcrypt hash suitable for ADMIN_SECRET_HASH.
func HashSecret(secret string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
