// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Filter is one (key, value) entry of the caller's filters object, in
// the order the caller wrote it. Order matters: comparison candidates
// are consumed first-come-first-served during rewriting.
type Filter struct {
	Key   string
	Value any
}

// ParseFilters decodes a JSON object while preserving key order, which
// encoding/json's map decoding would destroy.
func ParseFilters(raw []byte) ([]Filter, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("filters must be a JSON object")
	}

	var filters []Filter
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in filters object", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		filters = append(filters, Filter{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return filters, nil
}

// isComparisonCandidate reports whether a filter value means "use this
// column as a comparison axis" rather than a row constraint: null, the
// empty string, or the literal string "null".
func isComparisonCandidate(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		t := strings.TrimSpace(s)
		return t == "" || strings.EqualFold(t, "null")
	}
	return false
}

// RewriteFilters splits filters into concrete row constraints and
// comparison candidates. Up to two candidates are consumed, in input
// order, to populate config.segment_field then config.facet_field,
// skipping slots the caller's config set explicitly. The returned
// config is a copy; the caller's map is not mutated.
func RewriteFilters(filters []Filter, config map[string]any) (concrete []Filter, rewritten map[string]any) {
	rewritten = make(map[string]any, len(config)+2)
	for k, v := range config {
		rewritten[k] = v
	}

	hasField := func(name string) bool {
		v, ok := rewritten[name]
		if !ok {
			return false
		}
		s, isStr := v.(string)
		return !isStr || strings.TrimSpace(s) != ""
	}

	slots := []string{"segment_field", "facet_field"}
	for _, f := range filters {
		if !isComparisonCandidate(f.Value) {
			concrete = append(concrete, f)
			continue
		}
		for len(slots) > 0 && hasField(slots[0]) {
			slots = slots[1:]
		}
		if len(slots) == 0 {
			continue
		}
		rewritten[slots[0]] = f.Key
		slots = slots[1:]
	}
	return concrete, rewritten
}

// filterValueString renders a concrete filter value the way row cells
// are compared: string-cast and whitespace-trimmed.
func filterValueString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}
