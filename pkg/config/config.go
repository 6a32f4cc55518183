package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/go-go-golems/scopectl/pkg/bridge"
	"github.com/go-go-golems/scopectl/pkg/logging"
	"github.com/go-go-golems/scopectl/pkg/router"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultFilename = "scopectl.yaml"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LocalPrefix     string        `yaml:"local_prefix"`
	SeparatorPolicy string        `yaml:"separator_policy"`
	LogLevel        string        `yaml:"log_level"`
	TickInterval    time.Duration `yaml:"tick_interval"`
	Tap             TapConfig     `yaml:"tap"`
}

type TapConfig struct {
	Enabled bool   `yaml:"enabled"`
	Topic   string `yaml:"topic"`
}

func Default() Config {
	return Config{
		LocalPrefix:     action.DefaultLocalPrefix,
		SeparatorPolicy: string(router.PolicyFallback),
		LogLevel:        "info",
		TickInterval:    1 * time.Second,
		Tap: TapConfig{
			Topic: bridge.TopicActions,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config yaml")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "mkdir config dir")
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}

func (c Config) Validate() error {
	if _, err := router.ParsePolicy(c.SeparatorPolicy); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "separator_policy: %v", err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "log_level: %v", err)
	}
	if c.TickInterval <= 0 {
		return errors.Wrap(ErrInvalidConfig, "tick_interval must be positive")
	}
	if c.Tap.Enabled && c.Tap.Topic == "" {
		return errors.Wrap(ErrInvalidConfig, "tap.topic is required when the tap is enabled")
	}
	return nil
}

// RouterOptions maps the file settings onto the routing middleware.
func (c Config) RouterOptions() router.Options {
	policy, _ := router.ParsePolicy(c.SeparatorPolicy)
	return router.Options{
		LocalPrefix:     c.LocalPrefix,
		SeparatorPolicy: policy,
	}
}
