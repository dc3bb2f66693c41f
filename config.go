package auth

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// BaseConfig is a ready to use Config implementation. Fields can be set
// directly or loaded from the environment with NewConfigFromEnv.
type BaseConfig struct {
	SigningKey         string        `env:"AUTH_SIGNING_KEY"`
	SigningMethod      string        `env:"AUTH_SIGNING_METHOD" envDefault:"HS256"`
	ContextKey         string        `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
	TokenExpiration    int           `env:"AUTH_TOKEN_EXPIRATION" envDefault:"24"`
	TokenLookup        string        `env:"AUTH_TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme         string        `env:"AUTH_SCHEME" envDefault:"Bearer"`
	Issuer             string        `env:"AUTH_ISSUER"`
	Audience           []string      `env:"AUTH_AUDIENCE"`
	ResetTokenDuration time.Duration `env:"AUTH_RESET_TOKEN_DURATION" envDefault:"1h"`
	ResetBaseURL       string        `env:"AUTH_RESET_BASE_URL"`
}

// NewConfigFromEnv loads a BaseConfig from environment variables.
func NewConfigFromEnv() (*BaseConfig, error) {
	cfg, err := env.ParseAs[BaseConfig]()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to parse auth environment variables")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields.
func (c *BaseConfig) Validate() error {
	if c.SigningKey == "" {
		return errors.New("missing AUTH_SIGNING_KEY", errors.CategoryValidation)
	}
	return nil
}

func (c *BaseConfig) GetSigningKey() string { return c.SigningKey }

func (c *BaseConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return "HS256"
	}
	return c.SigningMethod
}

func (c *BaseConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

func (c *BaseConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return 24
	}
	return c.TokenExpiration
}

func (c *BaseConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return "header:Authorization"
	}
	return c.TokenLookup
}

func (c *BaseConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c *BaseConfig) GetIssuer() string { return c.Issuer }

func (c *BaseConfig) GetAudience() []string { return c.Audience }

func (c *BaseConfig) GetResetTokenDuration() time.Duration {
	if c.ResetTokenDuration <= 0 {
		return time.Hour
	}
	return c.ResetTokenDuration
}

func (c *BaseConfig) GetResetBaseURL() string { return c.ResetBaseURL }

var _ Config = (*BaseConfig)(nil)
