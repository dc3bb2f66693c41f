package auth

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/goliatone/go-errors"
)

const resetSecretBytes = 32

// NewResetSecret returns a URL safe random secret for password reset links.
func NewResetSecret() (string, error) {
	buf := make([]byte, resetSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate reset secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
