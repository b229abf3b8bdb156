package password

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy controls password length validation.
type Policy struct {
	MinLength int
	MaxLength int
}

// Config is the single configuration surface for this package.
type Config struct {
	Params Argon2idParams
	Policy Policy
}

// DefaultConfig returns a strong baseline for interactive logins.
// The 6..128 length policy matches the registration schema.
func DefaultConfig() Config {
	// CPU-aware parallelism, clamped to [1..4] so resource usage stays
	// predictable in containers.
	threads := runtime.NumCPU()
	if threads < 1 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024, // 64 MiB
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4] above.
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{
			MinLength: 6,
			MaxLength: 128,
		},
	}
}

// FromEnv loads config from environment variables on top of DefaultConfig.
//
// Env surface:
//   - AEGIS_PASSWORD_MIN_LEN
//   - AEGIS_PASSWORD_MAX_LEN
//   - AEGIS_ARGON2_MEMORY_KIB
//   - AEGIS_ARGON2_ITERATIONS
//   - AEGIS_ARGON2_PARALLELISM
//   - AEGIS_ARGON2_SALT_LEN
//   - AEGIS_ARGON2_KEY_LEN
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("AEGIS_PASSWORD_MIN_LEN"); ok {
		n, err := envInt(v, 1, 1024)
		if err != nil {
			return Config{}, fmt.Errorf("AEGIS_PASSWORD_MIN_LEN: %w", err)
		}
		cfg.Policy.MinLength = int(n)
	}

	if v, ok := os.LookupEnv("AEGIS_PASSWORD_MAX_LEN"); ok {
		n, err := envInt(v, 1, 4096)
		if err != nil {
			return Config{}, fmt.Errorf("AEGIS_PASSWORD_MAX_LEN: %w", err)
		}
		cfg.Policy.MaxLength = int(n)
	}

	if v, ok := os.LookupEnv("AEGIS_ARGON2_MEMORY_KIB"); ok {
		n, err := envInt(v, 8*1024, 1024*1024) // 8 MiB .. 1 GiB
		if err != nil {
			return Config{}, fmt.Errorf("AEGIS_ARGON2_MEMORY_KIB: %w", err)
		}
		cfg.Params.MemoryKiB = uint32(n)
	}

	if v, ok := os.LookupEnv("AEGIS_ARGON2_ITERATIONS"); ok {
		n, err := envInt(v, 1, 20)
		if err != nil {
			return Config{}, fmt.Errorf("AEGIS_ARGON2_ITERATIONS: %w", err)
		}
		cfg.Params.Iterations = uint32(n)
	}

	if v, ok := os.LookupEnv("AEGIS_ARGON2_PARALLELISM"); ok {
		n, err := envInt(v, 1, 64)
		if err != nil {
			return Config{}, fmt.Errorf("AEGIS_ARGON2_PARALLELISM: %w", err)
		}
		cfg.Params.Parallelism = uint8(n) // #nosec G115 -- bounded to [1..64] above.
	}

	if v, ok := os.LookupEnv("AEGIS_ARGON2_SALT_LEN"); ok {
		n, err := envInt(v, 8, 64)
		if err != nil {
			return Config{}, fmt.Errorf("AEGIS_ARGON2_SALT_LEN: %w", err)
		}
		cfg.Params.SaltLength = uint32(n)
	}

	if v, ok := os.LookupEnv("AEGIS_ARGON2_KEY_LEN"); ok {
		n, err := envInt(v, 16, 64)
		if err != nil {
			return Config{}, fmt.Errorf("AEGIS_ARGON2_KEY_LEN: %w", err)
		}
		cfg.Params.KeyLength = uint32(n)
	}

	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf(
			"password policy invalid: min_len(%d) > max_len(%d)",
			cfg.Policy.MinLength, cfg.Policy.MaxLength,
		)
	}

	return cfg, nil
}

func envInt(s string, minVal, maxVal int64) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}
	if n < minVal || n > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return n, nil
}
