package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration loaded from YAML. String
// values may reference environment variables with ${VAR} placeholders,
// which are expanded after an optional .env file is loaded.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Redis   RedisConfig   `yaml:"redis"`
	Badger  BadgerConfig  `yaml:"badger"`
	Feed    FeedConfig    `yaml:"feed"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServiceConfig struct {
	SnapshotInterval Duration `yaml:"snapshot_interval"`
	LeaderLockTTL    Duration `yaml:"leader_lock_ttl"`
	EnableSync       bool     `yaml:"enable_sync"`
}

// Duration wraps time.Duration so YAML can carry "5m" style values.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

type RedisConfig struct {
	Addr string `yaml:"addr"` // e.g. tcp://:password@localhost:6379/0
}

type BadgerConfig struct {
	Dir string `yaml:"dir"`
}

type FeedConfig struct {
	BaseURL   string `yaml:"base_url"`
	BasicAuth string `yaml:"basic_auth"` // user:pass
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	OutputFile string `yaml:"output_file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Load reads the YAML file at path. A .env file next to the process is
// loaded first so ${VAR} placeholders can resolve against it.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env is not an error
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(raw))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Service.SnapshotInterval == 0 {
		c.Service.SnapshotInterval = Duration(5 * time.Minute)
	}
	if c.Service.LeaderLockTTL == 0 {
		c.Service.LeaderLockTTL = Duration(30 * time.Second)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSize == 0 {
		c.Logging.MaxSize = 100
	}
}
