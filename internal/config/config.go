package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/marcelocantos/minish/internal/ast"
)

// Config holds the global minish configuration.
type Config struct {
	Audit    AuditConfig       `yaml:"audit"`
	Log      LogConfig         `yaml:"log"`
	Redirect RedirectConfig    `yaml:"redirect"`
	Env      map[string]string `yaml:"env" validate:"dive,keys,envname,endkeys"`
}

// AuditConfig controls audit log settings.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn error"`
	Encoding string `yaml:"encoding" validate:"oneof=console json"`
}

// RedirectConfig controls how redirections that cannot be opened are
// handled.
type RedirectConfig struct {
	// Strict fails the command instead of skipping the redirection.
	Strict bool `yaml:"strict"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Audit: AuditConfig{
			Enabled: false,
			Path:    filepath.Join(home, ".local", "share", "minish", "audit.jsonl"),
		},
		Log: LogConfig{
			Level:    "warn",
			Encoding: "console",
		},
	}
}

// Load reads the config from the standard location (~/.config/minish/config.yaml).
// If the file doesn't exist, returns the default config.
func Load() (*Config, error) {
	if _, err := os.UserHomeDir(); err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(afero.NewOsFs(), ConfigPath())
}

// LoadFrom reads the config from the given path.
func LoadFrom(fsys afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Expand ~ in audit path.
	if strings.HasPrefix(cfg.Audit.Path, "~") {
		home, _ := os.UserHomeDir()
		cfg.Audit.Path = filepath.Join(home, cfg.Audit.Path[1:])
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})
	if err := v.RegisterValidation("envname", func(fl validator.FieldLevel) bool {
		return ast.IsName(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.Struct(c)
}

// Environ returns the configured variables as sorted key=value strings.
func (c *Config) Environ() []string {
	env := make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// ConfigPath returns the standard config file path.
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "minish", "config.yaml")
}
