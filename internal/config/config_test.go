package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, "./web/static", cfg.Server.StaticDir)
	assert.False(t, cfg.Development.Debug)
	assert.Equal(t, 64, cfg.Sessions.Max)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.IdleTimeout)
	assert.Equal(t, "standard", cfg.Game.Preset)

	level, err := cfg.Development.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("CHESSD_SERVER_PORT", "9090")
	t.Setenv("CHESSD_SESSIONS_IDLE_TIMEOUT", "5m")
	t.Setenv("CHESSD_GAME_PRESET", "castling")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Sessions.IdleTimeout)
	assert.Equal(t, "castling", cfg.Game.Preset)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chessd.yaml")
	content := `
server:
  host: 0.0.0.0
  port: 3000
development:
  log_level: warn
sessions:
  max: 8
game:
  preset: promotion
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Addr())
	assert.Equal(t, 8, cfg.Sessions.Max)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.IdleTimeout, "unset keys keep their defaults")
	assert.Equal(t, "promotion", cfg.Game.Preset)

	level, err := cfg.Development.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:      ServerConfig{Host: "localhost", Port: 8080},
			Development: DevelopmentConfig{LogLevel: "info"},
			Sessions:    SessionsConfig{Max: 4, IdleTimeout: time.Minute},
			Game:        GameConfig{Preset: "standard"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Valid", func(*Config) {}, false},
		{"Port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"Port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"No sessions", func(c *Config) { c.Sessions.Max = 0 }, true},
		{"No idle timeout", func(c *Config) { c.Sessions.IdleTimeout = 0 }, true},
		{"Unknown log level", func(c *Config) { c.Development.LogLevel = "loud" }, true},
		{"Debug wins over bad level", func(c *Config) {
			c.Development.LogLevel = "loud"
			c.Development.Debug = true
		}, false},
		{"Unknown preset", func(c *Config) { c.Game.Preset = "chess960" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
