// Package config loads kanban settings from defaults, a TOML file and the environment.
// Command-line flags are applied last by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"

	DefaultRedisKey = "kanban:board"
	configFileName  = "config.toml"
)

type Config struct {
	// Dir holds the board file / SQLite database. Empty means ConfigDir().
	Dir     string      `toml:"dir"`
	Backend string      `toml:"backend"`
	Format  string      `toml:"format"`
	Pretty  bool        `toml:"pretty"`
	Redis   RedisConfig `toml:"redis"`
	Log     LogConfig   `toml:"log"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Key      string `toml:"key"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	// File enables a rotating log file in addition to stderr.
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

func Default() Config {
	return Config{
		Backend: BackendFile,
		Format:  "json",
		Redis: RedisConfig{
			Addr: "localhost:6379",
			Key:  DefaultRedisKey,
		},
		Log: LogConfig{
			Level:      "warn",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// ConfigDir returns the directory holding config.toml and, by default, board data.
func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.kanban).
	if v := strings.TrimSpace(os.Getenv("KANBAN_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kanban"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load builds the config: defaults, then the TOML file at path (or the default config
// path when path is empty and the file exists), then KANBAN_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("KANBAN_DIR"); v != "" {
		cfg.Dir = v
	}
	if v := os.Getenv("KANBAN_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("KANBAN_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("KANBAN_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("KANBAN_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("KANBAN_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KANBAN_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}
	if v := os.Getenv("KANBAN_REDIS_KEY"); v != "" {
		cfg.Redis.Key = v
	}
	if v := os.Getenv("KANBAN_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("KANBAN_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	return nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case BackendFile, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown backend: %s (want file|sqlite|redis)", c.Backend)
	}
	switch c.Format {
	case "", "json", "edn", "yaml":
	default:
		return fmt.Errorf("unknown format: %s", c.Format)
	}
	return nil
}

// DataDir resolves Dir, falling back to ConfigDir.
func (c Config) DataDir() (string, error) {
	if d := strings.TrimSpace(c.Dir); d != "" {
		return expandHome(d), nil
	}
	return ConfigDir()
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	return p
}
