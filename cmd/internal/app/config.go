package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBSchema    string
	DBMaxConns  int32
	DBMinConns  int32

	// If true, migrations run at startup before the server accepts traffic.
	MigrateOnStart bool

	// If true, /readyz returns 503 unless the database is configured and
	// reachable.
	ReadinessRequireDB bool

	// Origins allowed to call the API from a browser. Empty disables CORS
	// headers entirely.
	CORSAllowedOrigins []string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("AEGIS_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("AEGIS_LOG_LEVEL", "info"),
		LogFormat: EnvString("AEGIS_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("AEGIS_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("AEGIS_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("AEGIS_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("AEGIS_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("AEGIS_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("AEGIS_DATABASE_URL", ""),
		DBSchema:    EnvString("AEGIS_DB_SCHEMA", "aegis"),
		DBMaxConns:  EnvInt32("AEGIS_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("AEGIS_DB_MIN_CONNS", 0),

		MigrateOnStart: EnvBool("AEGIS_DB_MIGRATE", true),

		ReadinessRequireDB: EnvBool("AEGIS_READINESS_REQUIRE_DB", false),

		CORSAllowedOrigins: EnvStringList("AEGIS_CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}
}
