// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for the QVT backend.
//
// The package is a thin layer over the standard library slog package:
// it parses a textual level (typically sourced from QVT_LOG_LEVEL),
// builds a JSON handler, and tags every entry with the emitting service.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{Level: "info", Service: "visualize"})
//	logger.Info("chart generated", "chart_key", key)
//
// Logger output goes to stderr so that request/response traffic on stdout
// stays machine-readable in container deployments.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Config configures logger construction. The zero value produces an
// Info-level JSON logger with no service attribute.
type Config struct {
	// Level is the minimum level: "debug", "info", "warn" or "error"
	// (case-insensitive). Unknown values fall back to "info".
	Level string

	// Service identifies the component generating logs. When non-empty it
	// is attached to every entry as the "service" attribute.
	Service string

	// Text switches to the human-readable text handler. File and container
	// deployments want the default JSON format.
	Text bool
}

// ParseLevel maps a textual level to a slog.Level.
//
// Unknown input returns slog.LevelInfo rather than an error: a bad
// QVT_LOG_LEVEL should never prevent the service from starting.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a slog.Logger according to cfg.
func New(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Text {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	return logger
}

// Default returns an Info-level JSON logger without a service attribute.
func Default() *slog.Logger {
	return New(Config{})
}
