// Package config loads the kitchen daemon configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalid is returned when a loaded configuration fails validation.
	ErrInvalid = errors.New("invalid configuration")
)

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Shutdown ShutdownConfig `mapstructure:"shutdown"`
	Store    StoreConfig    `mapstructure:"store"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ShutdownConfig struct {
	// Timeout bounds the wait for tasks after cancellation. Zero waits forever.
	Timeout time.Duration `mapstructure:"timeout"`
}

type StoreConfig struct {
	Path              string        `mapstructure:"path"`
	Codec             string        `mapstructure:"codec"`
	RefreshInterval   time.Duration `mapstructure:"refresh_interval"`
	ReseedOnReadError bool          `mapstructure:"reseed_on_read_error"`
	// EncryptionKey is a base64 AES-256 key. When set the store file is
	// sealed with AES-GCM; FallbackKeys still open files written before a
	// rotation.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
}

type RedisConfig struct {
	// Addr enables the Redis source when non-empty.
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
	Prefix   string `mapstructure:"prefix"`
}

type AdminConfig struct {
	// Addr enables the admin HTTP server when non-empty.
	Addr string `mapstructure:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Shutdown: ShutdownConfig{
			Timeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Path:            "kitchen.json",
			Codec:           "json",
			RefreshInterval: time.Minute,
		},
		Redis: RedisConfig{
			Key:    "catalog",
			Prefix: "kitchensink:",
		},
	}
}

// Load reads the YAML file at path on top of Default. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Decode merges YAML data into cfg. Keys absent from data keep their
// current values; durations accept strings such as "30s".
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch {
	case c.Store.Path == "":
		return fmt.Errorf("%w: store.path is required", ErrInvalid)
	case c.Store.RefreshInterval < 0:
		return fmt.Errorf("%w: store.refresh_interval must not be negative", ErrInvalid)
	case c.Shutdown.Timeout < 0:
		return fmt.Errorf("%w: shutdown.timeout must not be negative", ErrInvalid)
	case c.Redis.Addr != "" && c.Redis.Key == "":
		return fmt.Errorf("%w: redis.key is required when redis.addr is set", ErrInvalid)
	}
	return nil
}
