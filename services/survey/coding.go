// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package survey normalizes the POV survey export: Likert column
// detection and grouping, demographic recoding, age and seniority
// banding, wide-to-long reshaping and per-dimension scoring.
//
// All functions are pure over a *dataset.Dataset and return copies.
// Missing-data situations are not errors here; strategies decide when
// an empty normalization result is fatal for their chart.
package survey

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed coding.yaml
var codingYAML []byte

// PrefixEntry binds a Likert column prefix to its dimension label.
// Entries are matched in order, so longer prefixes come first in the
// table.
type PrefixEntry struct {
	Prefix string `yaml:"prefix"`
	Label  string `yaml:"label"`
}

// BandSpec describes a derived ordinal band column: edges[i] < v <=
// edges[i+1] maps to labels[i], values above the last edge map to the
// last label.
type BandSpec struct {
	Column   string    `yaml:"column"`
	Fallback string    `yaml:"fallback"`
	Derived  string    `yaml:"derived"`
	Edges    []float64 `yaml:"edges"`
	Labels   []string  `yaml:"labels"`
}

// Coding is the full coding table parsed from coding.yaml.
type Coding struct {
	LikertPrefixes []PrefixEntry                `yaml:"likert_prefixes"`
	SocioColumns   []string                     `yaml:"socio_columns"`
	Demographics   map[string]map[string]string `yaml:"demographics"`
	AgeBand        BandSpec                     `yaml:"age_band"`
	SeniorityBand  BandSpec                     `yaml:"seniority_band"`
}

var coding Coding

func init() {
	if err := yaml.Unmarshal(codingYAML, &coding); err != nil {
		panic(fmt.Sprintf("survey: bad embedded coding table: %v", err))
	}
	if len(coding.LikertPrefixes) == 0 {
		panic("survey: embedded coding table has no likert prefixes")
	}
}

// PrefixLabel returns the dimension label for a raw prefix, or the
// prefix itself when unknown.
func PrefixLabel(prefix string) string {
	for _, e := range coding.LikertPrefixes {
		if e.Prefix == prefix {
			return e.Label
		}
	}
	return prefix
}

// Prefixes lists the known Likert prefixes in match order.
func Prefixes() []string {
	out := make([]string, len(coding.LikertPrefixes))
	for i, e := range coding.LikertPrefixes {
		out[i] = e.Prefix
	}
	return out
}
