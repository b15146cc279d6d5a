package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port           string
	CORSOrigins    []string
	RequestTimeout time.Duration
	AuthRateLimit  int

	// MongoDB
	MongoURI string
	DBName   string

	// Auth
	JWTSecret    string
	JWTExpiresIn string

	// Email (Resend)
	ResendAPIKey string
	FromEmail    string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads the configuration from the environment. Callers are expected
// to have run godotenv.Load beforehand when a .env file is used.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"*"}),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 20),

		MongoURI: getEnv("MONGODB_URI", ""),
		DBName:   getEnv("DB_NAME", "loopr_financial"),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTExpiresIn: getEnv("JWT_EXPIRES_IN", "7d"),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "Loopr <no-reply@loopr.com>"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.MongoURI == "" {
		errs = append(errs, "MONGODB_URI is required")
	} else if u, err := url.Parse(c.MongoURI); err != nil {
		errs = append(errs, fmt.Sprintf("invalid MONGODB_URI: %v", err))
	} else if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		errs = append(errs, fmt.Sprintf("invalid MONGODB_URI scheme '%s': must be 'mongodb' or 'mongodb+srv'", u.Scheme))
	}

	if c.DBName == "" {
		errs = append(errs, "DB_NAME cannot be empty")
	}

	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}

	if _, err := parseExpiry(c.JWTExpiresIn); err != nil {
		errs = append(errs, fmt.Sprintf("invalid JWT_EXPIRES_IN '%s': %v", c.JWTExpiresIn, err))
	}

	if c.ResendAPIKey != "" && c.FromEmail == "" {
		errs = append(errs, "FROM_EMAIL is required when RESEND_API_KEY is set")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid LOG_LEVEL '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid LOG_FORMAT '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if c.AuthRateLimit < 1 {
		errs = append(errs, fmt.Sprintf("invalid AUTH_RATE_LIMIT %d: must be at least 1", c.AuthRateLimit))
	}

	if c.RequestTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid REQUEST_TIMEOUT %v: must be at least 1 second", c.RequestTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// TokenTTL returns the parsed JWT lifetime. Validate must have succeeded.
func (c *Config) TokenTTL() time.Duration {
	d, _ := parseExpiry(c.JWTExpiresIn)
	return d
}

// parseExpiry accepts Go durations plus a "d" (day) suffix, e.g. "7d".
func parseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid day count")
		}
		if days <= 0 {
			return 0, fmt.Errorf("must be positive")
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
