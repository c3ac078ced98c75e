package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PLACEMENT_CONFIG", "PLACEMENT_PORT", "PLACEMENT_DATABASE_URL", "PLACEMENT_CORS_ORIGIN",
		"PLACEMENT_READ_TIMEOUT", "PLACEMENT_METRICS_ENABLED", "DATABASE_URL", "PORT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/placement")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, "postgres://localhost/placement", cfg.DatabaseURL)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://fallback/db")
	t.Setenv("PORT", "9999")
	t.Setenv("PLACEMENT_DATABASE_URL", "postgres://primary/db")
	t.Setenv("PLACEMENT_PORT", "8080")
	t.Setenv("PLACEMENT_READ_TIMEOUT", "3s")
	t.Setenv("PLACEMENT_METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "postgres://primary/db", cfg.DatabaseURL)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoad_PortFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/placement")
	t.Setenv("PORT", "7000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)

	t.Setenv("PORT", "not-a-port")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	content := `
port: 6100
database_url: postgres://yaml/db
cors_origin: https://tnp.example.edu
write_timeout: 20s
`
	path := filepath.Join(t.TempDir(), "placement.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("PLACEMENT_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6100, cfg.Port)
	assert.Equal(t, "postgres://yaml/db", cfg.DatabaseURL)
	assert.Equal(t, "https://tnp.example.edu", cfg.CORSOrigin)
	assert.Equal(t, 20*time.Second, cfg.WriteTimeout)

	// Environment overrides the file.
	t.Setenv("PLACEMENT_PORT", "6200")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 6200, cfg.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PLACEMENT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: "database_url is required"},
		{name: "port zero", mutate: func(c *Config) { c.Port = 0 }, wantErr: "port out of range"},
		{name: "port too high", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "port out of range"},
		{name: "zero timeout", mutate: func(c *Config) { c.ReadTimeout = 0 }, wantErr: "timeouts must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.DatabaseURL = "postgres://localhost/placement"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
