// Package config loads the compose.yaml file used by the command line tool.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	compose "github.com/goliatone/go-compose"
	"github.com/goliatone/go-compose/pkg/lifecycle"
	"github.com/goliatone/go-compose/pkg/remote"
	"github.com/goliatone/go-compose/pkg/uid"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "compose.yaml"

type Config struct {
	Site       SiteConfig                 `yaml:"site"`
	Remote     remote.Config              `yaml:"remote"`
	Store      StoreConfig                `yaml:"store"`
	Resolver   ResolverConfig             `yaml:"resolver"`
	Log        LogConfig                  `yaml:"log"`
	Lifecycles map[string]LifecycleConfig `yaml:"lifecycles"`

	// dir is the directory of the loaded file; script paths resolve against it.
	dir string
}

type SiteConfig struct {
	Prefix string `yaml:"prefix"`
}

type StoreConfig struct {
	// Path of the SQLite database. Empty keeps the store in memory.
	Path string `yaml:"path"`
}

type ResolverConfig struct {
	MaxDepth    int `yaml:"max_depth"`
	Concurrency int `yaml:"concurrency"`
	// IDs names the instance id generator: ksuid, uuid or compact.
	IDs string `yaml:"ids"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File receives logs through a rotating writer instead of stderr.
	File string `yaml:"file"`
}

type LifecycleConfig struct {
	Engine string           `yaml:"engine"`
	Save   []lifecycle.Rule `yaml:"save"`
	Render []lifecycle.Rule `yaml:"render"`
	Script string           `yaml:"script"`
}

// LoadOptional reads path if present. A missing file yields an empty config.
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{dir: filepath.Dir(path)}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Resolver.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("resolver.max_depth must be >= 0, got %d", c.Resolver.MaxDepth))
	}
	if c.Resolver.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("resolver.concurrency must be >= 0, got %d", c.Resolver.Concurrency))
	}
	if c.Remote.Timeout < 0 {
		errs = append(errs, fmt.Errorf("remote.timeout must be >= 0, got %s", c.Remote.Timeout))
	}
	if _, err := uid.ByName(c.Resolver.IDs); err != nil {
		errs = append(errs, fmt.Errorf("resolver.ids: %w", err))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	for name, lc := range c.Lifecycles {
		if lc.Script != "" && (len(lc.Save) > 0 || len(lc.Render) > 0) {
			errs = append(errs, fmt.Errorf("lifecycles.%s: script and rules are mutually exclusive", name))
		}
	}
	return errors.Join(errs...)
}

// Prefix returns the configured site prefix, trimmed of trailing slashes.
func (c *Config) Prefix() string {
	return strings.TrimRight(strings.TrimSpace(c.Site.Prefix), "/")
}

// LogLevel parses log.level, defaulting to info.
func (c *Config) LogLevel() (slog.Level, error) {
	level := slog.LevelInfo
	if strings.TrimSpace(c.Log.Level) == "" {
		return level, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// RemoteTimeout returns remote.timeout or remote.DefaultTimeout.
func (c *Config) RemoteTimeout() time.Duration {
	if c.Remote.Timeout > 0 {
		return c.Remote.Timeout
	}
	return remote.DefaultTimeout
}

// ComposerOptions maps the resolver and site sections onto composer options.
func (c *Config) ComposerOptions() []compose.Option {
	var opts []compose.Option
	if prefix := c.Prefix(); prefix != "" {
		opts = append(opts, compose.WithPrefix(prefix))
	}
	if c.Resolver.MaxDepth > 0 {
		opts = append(opts, compose.WithMaxDepth(c.Resolver.MaxDepth))
	}
	if c.Resolver.Concurrency > 0 {
		opts = append(opts, compose.WithConcurrency(c.Resolver.Concurrency))
	}
	if ids, err := uid.ByName(c.Resolver.IDs); err == nil {
		opts = append(opts, compose.WithIDGenerator(ids))
	}
	return opts
}
