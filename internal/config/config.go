// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, the datastore, token signing, the password policy and account
// lockout, bootstrap data, rate limiting and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "school-api")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects and tunes the datastore.
type DBConfig struct {
	Driver string // sqlite|postgres
	Path   string // SQLite file (sqlite driver)
	DSN    string // connection string (postgres driver)
	Debug  bool   // log every statement
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// PasswordPolicy describes the strength rules enforced on new passwords.
type PasswordPolicy struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

// LoginConfig controls brute-force protection.
type LoginConfig struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
	RateRPS           float64 // login attempts per second per client IP
	RateBurst         int
}

// SeedConfig controls bootstrap data created on startup.
type SeedConfig struct {
	Enabled       bool
	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	AppName    string // reported by the health endpoint
	AppVersion string

	// Persistence
	DB DBConfig

	// Auth
	JWT      JWTConfig
	Password PasswordPolicy
	Login    LoginConfig
	Seed     SeedConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// DevJWTSecret is the signing key used when JWT_SECRET is unset. It is public,
// so Load refuses it in release mode.
const DevJWTSecret = "change-me-in-production-this-is-a-dev-only-secret"

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		// App
		AppName:    getenv("APP_NAME", "school-api"),
		AppVersion: getenv("APP_VERSION", "1.0.0"),

		// Persistence
		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:   getenv("DB_PATH", "school.db"),
			DSN:    getenv("DB_DSN", ""),
			Debug:  getbool("DB_DEBUG", false),
		},

		// Auth
		JWT: JWTConfig{
			Secret:     getenv("JWT_SECRET", DevJWTSecret),
			Issuer:     getenv("JWT_ISSUER", "school-api"),
			AccessTTL:  getdur("JWT_ACCESS_TTL", 24*time.Hour),
			RefreshTTL: getdur("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Password: PasswordPolicy{
			MinLength:      getint("PASSWORD_MIN_LENGTH", 8),
			RequireUpper:   getbool("PASSWORD_REQUIRE_UPPER", true),
			RequireLower:   getbool("PASSWORD_REQUIRE_LOWER", true),
			RequireDigit:   getbool("PASSWORD_REQUIRE_DIGIT", true),
			RequireSpecial: getbool("PASSWORD_REQUIRE_SPECIAL", false),
		},
		Login: LoginConfig{
			MaxFailedAttempts: getint("LOGIN_MAX_FAILED_ATTEMPTS", 5),
			LockoutDuration:   getdur("LOGIN_LOCKOUT_DURATION", 5*time.Minute),
			RateRPS:           getfloat("LOGIN_RATE_RPS", 0.2),
			RateBurst:         getint("LOGIN_RATE_BURST", 5),
		},
		Seed: SeedConfig{
			Enabled:       getbool("SEED_ENABLED", true),
			AdminUsername: getenv("SEED_ADMIN_USERNAME", "admin"),
			AdminPassword: getenv("SEED_ADMIN_PASSWORD", "Admin123"),
			AdminEmail:    getenv("SEED_ADMIN_EMAIL", "admin@school.com"),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "school-api"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.DSN) == "" {
			return cfg, errors.New("DB_DSN is required when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if cfg.GinMode == "release" && cfg.JWT.Secret == DevJWTSecret {
		return cfg, errors.New("JWT_SECRET must be set in release mode")
	}
	if len(cfg.JWT.Secret) < 32 {
		return cfg, errors.New("JWT_SECRET must be at least 32 bytes")
	}
	if cfg.JWT.AccessTTL <= 0 || cfg.JWT.RefreshTTL <= 0 {
		return cfg, errors.New("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be > 0")
	}
	if cfg.JWT.RefreshTTL < cfg.JWT.AccessTTL {
		return cfg, errors.New("JWT_REFRESH_TTL must not be shorter than JWT_ACCESS_TTL")
	}
	if cfg.Password.MinLength < 1 || cfg.Password.MinLength > 72 {
		return cfg, errors.New("PASSWORD_MIN_LENGTH must be between 1 and 72")
	}
	if cfg.Login.MaxFailedAttempts < 1 {
		return cfg, errors.New("LOGIN_MAX_FAILED_ATTEMPTS must be >= 1")
	}
	if cfg.Login.LockoutDuration <= 0 {
		return cfg, errors.New("LOGIN_LOCKOUT_DURATION must be > 0")
	}
	if cfg.Login.RateRPS < 0 || cfg.Login.RateBurst < 1 {
		return cfg, errors.New("LOGIN_RATE_RPS must be >= 0 and LOGIN_RATE_BURST >= 1")
	}
	if cfg.Seed.Enabled && (strings.TrimSpace(cfg.Seed.AdminUsername) == "" || cfg.Seed.AdminPassword == "") {
		return cfg, errors.New("SEED_ADMIN_USERNAME and SEED_ADMIN_PASSWORD are required when SEED_ENABLED")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
