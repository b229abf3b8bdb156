package token

import (
	"os"
	"time"
)

// minSecretBytes is the minimum HS256 secret length. The secret is used as
// raw bytes, so bytes (not runes) are what count.
const minSecretBytes = 32

// Config defines runtime configuration for bearer tokens.
type Config struct {
	// Secret is the symmetric HS256 signing secret, fixed for the process
	// lifetime.
	Secret string

	// TTL is the lifetime of issued tokens.
	TTL time.Duration
}

// DefaultConfig returns defaults suitable for development; the secret must
// always be provided explicitly.
func DefaultConfig() Config {
	return Config{
		TTL: 24 * time.Hour,
	}
}

// LoadConfigFromEnv loads token configuration from environment variables.
//
// Required:
//   - AEGIS_AUTH_SECRET (>= 32 bytes)
//
// Optional:
//   - AEGIS_AUTH_TOKEN_TTL (Go duration, default 24h)
//
// Returns ErrConfig if configuration is invalid. Fail-fast is intentional:
// silently signing with a weak or missing secret is unacceptable.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("AEGIS_AUTH_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	cfg.Secret = os.Getenv("AEGIS_AUTH_SECRET")
	if len(cfg.Secret) < minSecretBytes {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
