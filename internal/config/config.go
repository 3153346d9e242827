// Package config loads tasklist settings from ~/.tasklist/config.yaml,
// TASKLIST_* environment variables and command-line overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fentz26/tasklist/internal/seed"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// EnvPrefix prefixes every environment override, e.g. TASKLIST_SEED_LIMIT.
const EnvPrefix = "TASKLIST"

// Config holds tasklist configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Seed    SeedConfig    `yaml:"seed" mapstructure:"seed"`
	Audit   AuditConfig   `yaml:"audit" mapstructure:"audit"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StorageConfig selects where the task collection lives.
type StorageConfig struct {
	// Driver is sqlite or file.
	Driver string `yaml:"driver" mapstructure:"driver"`
	// Path is the database or JSON file. Empty means a file under ~/.tasklist.
	Path string `yaml:"path" mapstructure:"path"`
	// Key names the storage slot inside the database.
	Key string `yaml:"key" mapstructure:"key"`
}

// SeedConfig controls first-run sample tasks.
type SeedConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Limit    int           `yaml:"limit" mapstructure:"limit"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// AuditConfig controls the mutation journal.
type AuditConfig struct {
	// Enabled writes journal entries to the SQLite database.
	Enabled bool        `yaml:"enabled" mapstructure:"enabled"`
	Redis   RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig mirrors journal entries to Redis when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr" mapstructure:"addr"`
	Password string        `yaml:"password" mapstructure:"password"`
	DB       int           `yaml:"db" mapstructure:"db"`
	Prefix   string        `yaml:"prefix" mapstructure:"prefix"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// LogConfig controls where the TUI sends log output.
type LogConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Key:    "tasks",
		},
		Seed: SeedConfig{
			Enabled:  true,
			Endpoint: seed.DefaultEndpoint,
			Limit:    5,
			Timeout:  seed.DefaultClientTimeout,
		},
		Audit: AuditConfig{
			Enabled: true,
			Redis: RedisConfig{
				Prefix: "tasklist",
				TTL:    7 * 24 * time.Hour,
			},
		},
	}
}

// Dir returns ~/.tasklist, or .tasklist when the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tasklist"
	}
	return filepath.Join(home, ".tasklist")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads path (DefaultPath when empty), then applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.key", d.Storage.Key)
	v.SetDefault("seed.enabled", d.Seed.Enabled)
	v.SetDefault("seed.endpoint", d.Seed.Endpoint)
	v.SetDefault("seed.limit", d.Seed.Limit)
	v.SetDefault("seed.timeout", d.Seed.Timeout)
	v.SetDefault("audit.enabled", d.Audit.Enabled)
	v.SetDefault("audit.redis.addr", d.Audit.Redis.Addr)
	v.SetDefault("audit.redis.password", d.Audit.Redis.Password)
	v.SetDefault("audit.redis.db", d.Audit.Redis.DB)
	v.SetDefault("audit.redis.prefix", d.Audit.Redis.Prefix)
	v.SetDefault("audit.redis.ttl", d.Audit.Redis.TTL)
	v.SetDefault("log.file", d.Log.File)
}

// Save writes cfg to path as YAML, creating parent directories if needed.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverFile:
	default:
		return fmt.Errorf("invalid storage driver %q, must be: sqlite or file", c.Storage.Driver)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("storage.key cannot be empty")
	}
	if c.Seed.Enabled && c.Seed.Endpoint == "" {
		return fmt.Errorf("seed.endpoint is required when seeding is enabled")
	}
	if c.Seed.Limit < 0 {
		return fmt.Errorf("seed.limit cannot be negative")
	}
	if c.Seed.Timeout < 0 {
		return fmt.Errorf("seed.timeout cannot be negative")
	}
	if c.Audit.Redis.TTL < 0 {
		return fmt.Errorf("audit.redis.ttl cannot be negative")
	}
	return nil
}

// StoragePath resolves the storage location, defaulting by driver.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	if c.Storage.Driver == DriverFile {
		return filepath.Join(Dir(), "tasks.json")
	}
	return filepath.Join(Dir(), "tasklist.db")
}

// LogPath resolves the TUI log file.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(Dir(), "tasklist.log")
}
