// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the visualize service settings from the
// environment under the QVT_ prefix (QVT_MAX_ROWS, QVT_LOG_LEVEL, ...).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds the runtime configuration of the service.
type Settings struct {
	// Port is the HTTP listen port.
	Port int `mapstructure:"port"`

	// MaxRows and MaxColumns bound accepted uploads; a table exceeding
	// either is rejected with a dataset_too_large error.
	MaxRows    int `mapstructure:"max_rows"`
	MaxColumns int `mapstructure:"max_columns"`

	// RequestTimeoutSec is an advisory per-request budget. It is exposed
	// to operators and logged but does not abort a running computation.
	RequestTimeoutSec int `mapstructure:"request_timeout_sec"`

	// CacheCapacity is the number of chart envelopes kept before the
	// whole cache is cleared.
	CacheCapacity int `mapstructure:"cache_capacity"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// CORSOrigins is "*" or a comma-separated allow list.
	CORSOrigins string `mapstructure:"cors_origins"`
}

// Load reads settings from the environment with defaults. Precedence:
// env > defaults; there is no config file for this service.
func Load() (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("QVT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("port", 8000)
	v.SetDefault("max_rows", 50000)
	v.SetDefault("max_columns", 200)
	v.SetDefault("request_timeout_sec", 5)
	v.SetDefault("cache_capacity", 128)
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", "*")

	// AutomaticEnv alone does not surface env vars through Unmarshal, so
	// each key is bound explicitly.
	for _, key := range []string{
		"port", "max_rows", "max_columns", "request_timeout_sec",
		"cache_capacity", "log_level", "cors_origins",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	if s.MaxRows < 1 || s.MaxColumns < 1 {
		return nil, fmt.Errorf("max_rows and max_columns must be positive (got %d, %d)", s.MaxRows, s.MaxColumns)
	}
	if s.CacheCapacity < 1 {
		return nil, fmt.Errorf("cache_capacity must be positive (got %d)", s.CacheCapacity)
	}
	return &s, nil
}

// AllowAllOrigins reports whether CORS is the wildcard configuration.
// Wildcard origins never honor credentials.
func (s *Settings) AllowAllOrigins() bool {
	return strings.TrimSpace(s.CORSOrigins) == "*"
}

// OriginList returns the explicit CORS origins, empty under wildcard.
func (s *Settings) OriginList() []string {
	if s.AllowAllOrigins() {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
