package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the blog configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Paths  PathsConfig  `yaml:"paths"`
	Store  StoreConfig  `yaml:"store"`
	Canvas CanvasConfig `yaml:"canvas"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds the HTTP adapter settings.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// PathsConfig holds filesystem paths for data.
type PathsConfig struct {
	Data     string `yaml:"data"`
	Database string `yaml:"database"`
}

// StoreConfig selects and configures the key-value backend.
type StoreConfig struct {
	Driver      string `yaml:"driver"` // sqlite | redis | postgres | memory
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// CanvasConfig holds drawing surface defaults.
type CanvasConfig struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Color       string  `yaml:"color"`
	StrokeWidth float64 `yaml:"stroke_width"`
	MaxDrawings int     `yaml:"max_drawings"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			CORSOrigins: []string{"*"},
		},
		Paths: PathsConfig{
			Data:     "./data",
			Database: "./data/fishblog.db",
		},
		Store: StoreConfig{
			Driver:      "sqlite",
			RedisURL:    "redis://localhost:6379/0",
			RedisPrefix: "fishblog:",
		},
		Canvas: CanvasConfig{
			Width:       600,
			Height:      400,
			Color:       "#000000",
			StrokeWidth: 3,
		},
		Log: LogConfig{
			Level:      "info",
			File:       "./data/logs/fishblog.log",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 7,
		},
	}
}

// Load reads a YAML config file on top of the defaults, then applies
// .env and FISHBLOG_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	_ = godotenv.Load(".env")
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("FISHBLOG_HTTP_ADDR", &c.Server.Addr)
	str("FISHBLOG_DATA_DIR", &c.Paths.Data)
	str("FISHBLOG_DATABASE", &c.Paths.Database)
	str("FISHBLOG_STORE_DRIVER", &c.Store.Driver)
	str("FISHBLOG_REDIS_URL", &c.Store.RedisURL)
	str("FISHBLOG_REDIS_PREFIX", &c.Store.RedisPrefix)
	str("FISHBLOG_POSTGRES_DSN", &c.Store.PostgresDSN)
	str("FISHBLOG_LOG_LEVEL", &c.Log.Level)
	str("FISHBLOG_LOG_FILE", &c.Log.File)

	if v, ok := lookup("FISHBLOG_MAX_DRAWINGS"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse FISHBLOG_MAX_DRAWINGS: %w", err)
		}
		c.Canvas.MaxDrawings = n
	}

	c.Store.Driver = strings.ToLower(c.Store.Driver)
	c.Log.Level = strings.ToLower(c.Log.Level)
	return nil
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite":
		if c.Paths.Database == "" {
			return fmt.Errorf("store driver sqlite needs paths.database")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store driver redis needs store.redis_url")
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store driver postgres needs store.postgres_dsn")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.StrokeWidth <= 0 {
		return fmt.Errorf("canvas stroke_width must be positive")
	}
	if c.Canvas.MaxDrawings < 0 {
		return fmt.Errorf("canvas max_drawings must not be negative")
	}
	return nil
}
