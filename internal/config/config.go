// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads the httpcall command's settings from defaults,
// an optional .env file and HTTPCALL_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the command reads.
const EnvPrefix = "HTTPCALL"

// Transport names.
const (
	TransportSocket = "socket"
	TransportResty  = "resty"
)

// Config holds the command configuration.
type Config struct {
	BaseURL        string        `mapstructure:"base_url"`
	Transport      string        `mapstructure:"transport"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	MaxWorkers     int           `mapstructure:"max_workers"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
	MetricsAddr    string        `mapstructure:"metrics_addr"`
}

// Load reads the configuration. Files are .env files loaded into the
// environment first; a missing file is ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}

	v := viper.New()

	v.SetDefault("base_url", "https://api.douban.com/v2/movie/")
	v.SetDefault("transport", TransportSocket)
	v.SetDefault("connect_timeout", 15*time.Second)
	v.SetDefault("read_timeout", 20*time.Second)
	v.SetDefault("max_workers", 64)
	v.SetDefault("idle_timeout", 10*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_addr", "")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg for values the command cannot run with.
func (cfg *Config) Validate() error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("invalid base_url %q (must be an absolute URL)", cfg.BaseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		return fmt.Errorf("invalid base_url %q (path must end in /)", cfg.BaseURL)
	}
	switch cfg.Transport {
	case TransportSocket, TransportResty:
	default:
		return fmt.Errorf("invalid transport %q (must be %s or %s)", cfg.Transport, TransportSocket, TransportResty)
	}
	if cfg.ConnectTimeout < 0 {
		return fmt.Errorf("invalid connect_timeout (must not be negative)")
	}
	if cfg.ReadTimeout < 0 {
		return fmt.Errorf("invalid read_timeout (must not be negative)")
	}
	if cfg.MaxWorkers <= 0 {
		return fmt.Errorf("invalid max_workers (must be positive)")
	}
	if cfg.IdleTimeout <= 0 {
		return fmt.Errorf("invalid idle_timeout (must be positive)")
	}
	return nil
}
