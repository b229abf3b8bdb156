package authapi

import (
	"os"
	"strconv"
	"strings"
)

// Config controls auth API behavior and request schema bounds.
type Config struct {
	TrustProxy   bool
	MaxBodyBytes int64

	// DBSchema is the Postgres schema holding the audit_log table. It must
	// match the schema the user store was configured with.
	DBSchema string

	// Schema bounds enforced on the raw (pre-normalization) request
	// fields, measured in characters.
	UsernameMinLen int
	UsernameMaxLen int
	PasswordMinLen int
	PasswordMaxLen int
}

// LoadConfigFromEnv loads auth API config from environment variables with
// safe defaults.
func LoadConfigFromEnv() Config {
	cfg := Config{
		TrustProxy:     envBool("AEGIS_AUTH_TRUST_PROXY", false),
		DBSchema:       envString("AEGIS_DB_SCHEMA", "aegis"),
		MaxBodyBytes:   envInt64("AEGIS_AUTH_MAX_BODY_BYTES", 1<<20), // 1 MiB
		UsernameMinLen: envInt("AEGIS_AUTH_USERNAME_MIN_LEN", 3),
		UsernameMaxLen: envInt("AEGIS_AUTH_USERNAME_MAX_LEN", 30),
		PasswordMinLen: envInt("AEGIS_AUTH_PASSWORD_MIN_LEN", 6),
		PasswordMaxLen: envInt("AEGIS_AUTH_PASSWORD_MAX_LEN", 128),
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.UsernameMinLen <= 0 {
		cfg.UsernameMinLen = 3
	}
	if cfg.UsernameMaxLen < cfg.UsernameMinLen {
		cfg.UsernameMaxLen = cfg.UsernameMinLen
	}
	if cfg.PasswordMinLen <= 0 {
		cfg.PasswordMinLen = 6
	}
	if cfg.PasswordMaxLen < cfg.PasswordMinLen {
		cfg.PasswordMaxLen = cfg.PasswordMinLen
	}

	return cfg
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
