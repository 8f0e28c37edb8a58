package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/config"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"SERVER_PORT", "ALLOWED_ORIGINS", "JWT_SECRET", "SESSION_TTL", "SECURE_COOKIES",
		"ROW_SOURCE", "API_BASE_URL", "API_TOKEN", "API_TIMEOUT", "DATABASE_URL",
		"VIEWS_FILE", "TIMEZONE", "MOBILE_PRIMARY_COLUMNS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "https://backend.test/api/")

	c, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, config.SourceAPI, c.RowSource)
	assert.Equal(t, "https://backend.test/api", c.APIBaseURL)
	assert.Equal(t, 15*time.Second, c.APITimeout)
	assert.Equal(t, time.Hour, c.SessionTTL)
	assert.True(t, c.SecureCookies)
	assert.Equal(t, time.UTC, c.Location)
	assert.Equal(t, 2, c.PrimaryColumns)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROW_SOURCE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/bizdesk")
	t.Setenv("TIMEZONE", "Asia/Kolkata")
	t.Setenv("MOBILE_PRIMARY_COLUMNS", "3")
	t.Setenv("SECURE_COOKIES", "false")
	t.Setenv("SESSION_TTL", "8h")

	c, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.SourcePostgres, c.RowSource)
	assert.Equal(t, "Asia/Kolkata", c.Location.String())
	assert.Equal(t, 3, c.PrimaryColumns)
	assert.False(t, c.SecureCookies)
	assert.Equal(t, 8*time.Hour, c.SessionTTL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"api without base url", map[string]string{"ROW_SOURCE": "api"}, "API_BASE_URL"},
		{"postgres without dsn", map[string]string{"ROW_SOURCE": "postgres"}, "DATABASE_URL"},
		{"unknown source", map[string]string{"ROW_SOURCE": "csv"}, "ROW_SOURCE"},
		{"bad timezone", map[string]string{"ROW_SOURCE": "static", "TIMEZONE": "Mars/Olympus"}, "TIMEZONE"},
		{"bad columns", map[string]string{"ROW_SOURCE": "static", "MOBILE_PRIMARY_COLUMNS": "0"}, "MOBILE_PRIMARY_COLUMNS"},
		{"bad timeout", map[string]string{"ROW_SOURCE": "static", "API_TIMEOUT": "soon"}, "API_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRequireJWTSecret(t *testing.T) {
	c := &config.Config{JWTSecret: "short"}
	require.Error(t, c.RequireJWTSecret())
	c.JWTSecret = "0123456789abcdef"
	require.NoError(t, c.RequireJWTSecret())
}
