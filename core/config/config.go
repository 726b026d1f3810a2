// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads endpoint and logger settings from defaults, an
// optional file and the environment, in that order of precedence.
package config

import (
	"time"

	"github.com/cocowh/simpletcp/core/config/loader"
	"github.com/cocowh/simpletcp/core/frame"
	"github.com/cocowh/simpletcp/core/tcp"
	"github.com/cocowh/simpletcp/pkg/buffer"
	"github.com/cocowh/simpletcp/pkg/errors"
	"github.com/cocowh/simpletcp/pkg/logger"
	"github.com/spf13/viper"
)

const EnvPrefix = "SIMPLETCP"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Client ClientConfig `mapstructure:"client"`
	Logger LoggerConfig `mapstructure:"logger"`
}

type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	InputDelimiter string        `mapstructure:"input_delimiter"`
	MaxConnections int           `mapstructure:"max_connections"`
	ReadBufferSize int           `mapstructure:"read_buffer_size"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

type ClientConfig struct {
	Address        string        `mapstructure:"address"`
	InputDelimiter string        `mapstructure:"input_delimiter"`
	ReadBufferSize int           `mapstructure:"read_buffer_size"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	// DialTimeout of zero waits for the dial as long as the OS does.
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
}

type LoggerConfig struct {
	Level           string `mapstructure:"level"`
	Format          string `mapstructure:"format"`
	LogDir          string `mapstructure:"log_dir"`
	BaseName        string `mapstructure:"base_name"`
	MaxSizeMB       int    `mapstructure:"max_size_mb"`
	MaxAgeDays      int    `mapstructure:"max_age_days"`
	MaxBackups      int    `mapstructure:"max_backups"`
	Compress        bool   `mapstructure:"compress"`
	EnableStdout    bool   `mapstructure:"enable_stdout"`
	EnableWarnFile  bool   `mapstructure:"enable_warn_file"`
	EnableErrorFile bool   `mapstructure:"enable_error_file"`
}

// Option feeds one configuration source into the viper instance.
type Option func(v *viper.Viper) error

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.input_delimiter", frame.DefaultDelimiter)
	v.SetDefault("server.max_connections", 0)
	v.SetDefault("server.read_buffer_size", buffer.DefaultReadSize)
	v.SetDefault("server.write_timeout", tcp.DefaultWriteTimeout)

	v.SetDefault("client.address", "127.0.0.1:8080")
	v.SetDefault("client.input_delimiter", frame.DefaultDelimiter)
	v.SetDefault("client.read_buffer_size", buffer.DefaultReadSize)
	v.SetDefault("client.write_timeout", tcp.DefaultWriteTimeout)
	v.SetDefault("client.dial_timeout", 10*time.Second)

	lc := logger.DefaultConfig()
	v.SetDefault("logger.level", lc.Level.String())
	v.SetDefault("logger.format", lc.Format)
	v.SetDefault("logger.log_dir", lc.LogDir)
	v.SetDefault("logger.base_name", lc.BaseName)
	v.SetDefault("logger.max_size_mb", lc.MaxSizeMB)
	v.SetDefault("logger.max_age_days", lc.MaxAgeDays)
	v.SetDefault("logger.max_backups", lc.MaxBackups)
	v.SetDefault("logger.compress", lc.Compress)
	v.SetDefault("logger.enable_stdout", lc.EnableStdout)
	v.SetDefault("logger.enable_warn_file", lc.EnableWarnFile)
	v.SetDefault("logger.enable_error_file", lc.EnableErrorFile)
}

// WithFile merges a JSON, YAML or TOML file. An empty path is ignored.
func WithFile(path string) Option {
	return func(v *viper.Viper) error {
		if path == "" {
			return nil
		}
		m, err := loader.NewFileLoader(path).Load()
		if err != nil {
			return err
		}
		if err := v.MergeConfigMap(m); err != nil {
			return errors.ConfigError(errors.ErrCodeConfigParseError, "failed to merge config file").
				WithCause(err).WithContext("config_path", path)
		}
		logger.Debugf("Loaded config file %s", path)
		return nil
	}
}

// WithEnv overrides known keys from prefixed environment variables.
func WithEnv(prefix string) Option {
	return func(v *viper.Viper) error {
		for key, val := range loader.NewEnvLoader(prefix).Load(v.AllKeys()) {
			v.Set(key, val)
		}
		return nil
	}
}

// WithOverrides sets keys explicitly, typically from command line flags.
// Empty string values are skipped.
func WithOverrides(values map[string]any) Option {
	return func(v *viper.Viper) error {
		for key, val := range values {
			if s, ok := val.(string); ok && s == "" {
				continue
			}
			v.Set(key, val)
		}
		return nil
	}
}

// Load applies the options in order over the defaults and decodes the
// result.
func Load(opts ...Option) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.ConfigError(errors.ErrCodeConfigInvalid, "failed to decode config").WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Server.MaxConnections < 0:
		return invalid("server.max_connections", c.Server.MaxConnections)
	case c.Server.ReadBufferSize <= 0:
		return invalid("server.read_buffer_size", c.Server.ReadBufferSize)
	case c.Client.ReadBufferSize <= 0:
		return invalid("client.read_buffer_size", c.Client.ReadBufferSize)
	case c.Server.WriteTimeout < 0:
		return invalid("server.write_timeout", c.Server.WriteTimeout)
	case c.Client.WriteTimeout < 0:
		return invalid("client.write_timeout", c.Client.WriteTimeout)
	case c.Client.DialTimeout < 0:
		return invalid("client.dial_timeout", c.Client.DialTimeout)
	}
	if _, ok := logger.ParseLevel(c.Logger.Level); !ok {
		return invalid("logger.level", c.Logger.Level)
	}
	return nil
}

func invalid(key string, value any) error {
	return errors.ConfigError(errors.ErrCodeConfigInvalid, "invalid config value").
		WithContext("key", key).WithContext("value", value)
}

// ToLogger converts the section into the logger package's options.
func (c LoggerConfig) ToLogger() *logger.Config {
	level, ok := logger.ParseLevel(c.Level)
	if !ok {
		level = logger.InfoLevel
	}
	return &logger.Config{
		LogDir:          c.LogDir,
		BaseName:        c.BaseName,
		Format:          c.Format,
		Level:           level,
		Compress:        c.Compress,
		MaxSizeMB:       c.MaxSizeMB,
		MaxBackups:      c.MaxBackups,
		MaxAgeDays:      c.MaxAgeDays,
		EnableStdout:    c.EnableStdout,
		EnableWarnFile:  c.EnableWarnFile,
		EnableErrorFile: c.EnableErrorFile,
	}
}
