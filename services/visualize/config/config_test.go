// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, s.Port)
	assert.Equal(t, 50000, s.MaxRows)
	assert.Equal(t, 200, s.MaxColumns)
	assert.Equal(t, 128, s.CacheCapacity)
	assert.Equal(t, "info", s.LogLevel)
	assert.True(t, s.AllowAllOrigins())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("QVT_MAX_ROWS", "100")
	t.Setenv("QVT_LOG_LEVEL", "debug")
	t.Setenv("QVT_CORS_ORIGINS", "https://a.example, https://b.example")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100, s.MaxRows)
	assert.Equal(t, "debug", s.LogLevel)
	assert.False(t, s.AllowAllOrigins())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, s.OriginList())
}

func TestLoadRejectsNonPositiveLimits(t *testing.T) {
	t.Setenv("QVT_MAX_ROWS", "0")
	_, err := Load()
	assert.Error(t, err)
}
