package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lmorrow/chessrules/internal/chess"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Development DevelopmentConfig `mapstructure:"development"`
	Sessions    SessionsConfig    `mapstructure:"sessions"`
	Game        GameConfig        `mapstructure:"game"`
}

type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	StaticDir string `mapstructure:"static_dir"`
}

// Addr is the listen address built from Host and Port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DevelopmentConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// Level resolves LogLevel, with Debug forcing debug output.
func (d DevelopmentConfig) Level() (zerolog.Level, error) {
	if d.Debug {
		return zerolog.DebugLevel, nil
	}
	level, err := zerolog.ParseLevel(d.LogLevel)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: %w", d.LogLevel, err)
	}
	return level, nil
}

// SessionsConfig bounds the in-memory game sessions held by the server.
type SessionsConfig struct {
	Max         int           `mapstructure:"max"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

type GameConfig struct {
	Preset string `mapstructure:"preset"`
}

var defaults = map[string]any{
	"server.host":           "localhost",
	"server.port":           8080,
	"server.static_dir":     "./web/static",
	"development.debug":     false,
	"development.log_level": "info",
	"sessions.max":          64,
	"sessions.idle_timeout": "30m",
	"game.preset":           "standard",
}

// Load reads config.yaml from the working directory or ./config, then
// applies CHESSD_* environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	return load(viper.New(), "")
}

// LoadFile is Load with an explicit config file, which must exist.
func LoadFile(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Enable environment variables
	v.SetEnvPrefix("CHESSD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Sessions.Max < 1 {
		return fmt.Errorf("sessions.max must be positive, got %d", c.Sessions.Max)
	}
	if c.Sessions.IdleTimeout <= 0 {
		return fmt.Errorf("sessions.idle_timeout must be positive, got %s", c.Sessions.IdleTimeout)
	}
	if _, err := c.Development.Level(); err != nil {
		return err
	}
	if _, err := chess.PresetBoard(c.Game.Preset); err != nil {
		return fmt.Errorf("game.preset: %w", err)
	}
	return nil
}
