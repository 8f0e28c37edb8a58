// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Row source kinds accepted in ROW_SOURCE.
const (
	SourceAPI      = "api"
	SourcePostgres = "postgres"
	SourceStatic   = "static"
)

// Config holds every setting the binaries need.
type Config struct {
	Port           string
	AllowedOrigins string
	JWTSecret      string
	SessionTTL     time.Duration
	SecureCookies  bool

	RowSource   string
	APIBaseURL  string
	APIToken    string
	APITimeout  time.Duration
	DatabaseURL string

	ViewsFile      string
	Location       *time.Location
	PrimaryColumns int
}

// Load reads the environment. Callers load .env files beforehand.
func Load() (*Config, error) {
	c := &Config{
		Port:           getenv("SERVER_PORT", "8080"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RowSource:      strings.ToLower(getenv("ROW_SOURCE", SourceAPI)),
		APIBaseURL:     strings.TrimRight(os.Getenv("API_BASE_URL"), "/"),
		APIToken:       os.Getenv("API_TOKEN"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ViewsFile:      os.Getenv("VIEWS_FILE"),
	}

	var err error
	if c.SessionTTL, err = duration("SESSION_TTL", time.Hour); err != nil {
		return nil, err
	}
	if c.APITimeout, err = duration("API_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if c.SecureCookies, err = boolean("SECURE_COOKIES", true); err != nil {
		return nil, err
	}

	tz := getenv("TIMEZONE", "UTC")
	if c.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", tz, err)
	}

	c.PrimaryColumns = 2
	if v := os.Getenv("MOBILE_PRIMARY_COLUMNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("MOBILE_PRIMARY_COLUMNS must be a positive integer, got %q", v)
		}
		c.PrimaryColumns = n
	}

	switch c.RowSource {
	case SourceAPI:
		if c.APIBaseURL == "" {
			return nil, fmt.Errorf("API_BASE_URL environment variable not set")
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable not set")
		}
	case SourceStatic:
	default:
		return nil, fmt.Errorf("ROW_SOURCE must be one of api, postgres, static; got %q", c.RowSource)
	}
	return c, nil
}

// RequireJWTSecret fails when the server would otherwise sign cookies with an empty key.
func (c *Config) RequireJWTSecret() error {
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be set to at least 16 characters")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolean(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
