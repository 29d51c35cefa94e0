// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"sync"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/Aatricks/qvt-back/services/dataset"
)

// Envelope is the success response: the spec as produced by a strategy,
// stamped with the chart key and a UTC generation time.
type Envelope struct {
	ChartKey    string         `json:"chart_key"`
	GeneratedAt string         `json:"generated_at"`
	Spec        map[string]any `json:"spec"`
}

// fingerprintInput is everything that determines a response's spec
// content. Datasets enter through their identity proxy (name, shape,
// column names), not a content hash, so two different uploads with the
// same shape and columns share entries. Accepted approximation.
type fingerprintInput struct {
	ChartKey string
	HR       dataset.Identity
	Survey   dataset.Identity
	Config   map[string]any
	Filters  []Filter
}

func fingerprint(chartKey string, hr, survey *dataset.Dataset, config map[string]any, filters []Filter) (uint64, error) {
	in := fingerprintInput{ChartKey: chartKey, Config: config, Filters: filters}
	if hr != nil {
		in.HR = hr.Identity()
	}
	if survey != nil {
		in.Survey = survey.Identity()
	}
	return hashstructure.Hash(in, hashstructure.FormatV2, nil)
}

// Cache stores generated envelopes up to a fixed capacity. When full it
// is cleared whole rather than evicting per entry; the "check capacity,
// clear, insert" sequence runs under one lock as a single critical
// section.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[uint64]Envelope
}

func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{capacity: capacity, entries: make(map[uint64]Envelope)}
}

// Get returns the cached envelope restamped with a fresh timestamp. The
// spec content is reused verbatim.
func (c *Cache) Get(key uint64) (Envelope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	env, ok := c.entries[key]
	if !ok {
		return Envelope{}, false
	}
	env.GeneratedAt = utcTimestamp()
	return env, true
}

func (c *Cache) Put(key uint64, env Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.capacity {
		c.entries = make(map[uint64]Envelope)
	}
	c.entries[key] = env
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func utcTimestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000") + "Z"
}
