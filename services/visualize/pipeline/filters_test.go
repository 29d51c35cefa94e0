// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFiltersPreservesKeyOrder(t *testing.T) {
	filters, err := ParseFilters([]byte(`{"Secteur": "Privé", "Sexe": "", "Age": null}`))
	require.NoError(t, err)
	require.Len(t, filters, 3)
	assert.Equal(t, "Secteur", filters[0].Key)
	assert.Equal(t, "Sexe", filters[1].Key)
	assert.Equal(t, "Age", filters[2].Key)
}

func TestParseFiltersRejectsNonObject(t *testing.T) {
	_, err := ParseFilters([]byte(`["a", "b"]`))
	assert.Error(t, err)

	_, err = ParseFilters([]byte(`{"unterminated": `))
	assert.Error(t, err)
}

func TestParseFiltersEmptyInput(t *testing.T) {
	filters, err := ParseFilters(nil)
	require.NoError(t, err)
	assert.Empty(t, filters)
}

func TestRewriteFiltersComparisonCandidates(t *testing.T) {
	filters := []Filter{
		{Key: "Sexe", Value: ""},
		{Key: "Secteur", Value: nil},
	}
	concrete, config := RewriteFilters(filters, map[string]any{})

	assert.Empty(t, concrete)
	assert.Equal(t, "Sexe", config["segment_field"])
	assert.Equal(t, "Secteur", config["facet_field"])
}

func TestRewriteFiltersLiteralNullString(t *testing.T) {
	concrete, config := RewriteFilters([]Filter{{Key: "Contrat", Value: "null"}}, nil)
	assert.Empty(t, concrete)
	assert.Equal(t, "Contrat", config["segment_field"])
}

func TestRewriteFiltersRespectsExplicitConfig(t *testing.T) {
	filters := []Filter{
		{Key: "Sexe", Value: ""},
		{Key: "Secteur", Value: ""},
	}
	concrete, config := RewriteFilters(filters, map[string]any{"segment_field": "Age"})

	assert.Empty(t, concrete)
	assert.Equal(t, "Age", config["segment_field"], "explicit config wins")
	assert.Equal(t, "Sexe", config["facet_field"], "first candidate takes the next free slot")
	_, extra := config["Secteur"]
	assert.False(t, extra, "third candidate is dropped")
}

func TestRewriteFiltersSplitsConcrete(t *testing.T) {
	filters := []Filter{
		{Key: "Contrat", Value: "CDI"},
		{Key: "Sexe", Value: ""},
	}
	concrete, config := RewriteFilters(filters, nil)

	require.Len(t, concrete, 1)
	assert.Equal(t, "Contrat", concrete[0].Key)
	assert.Equal(t, "Sexe", config["segment_field"])
}

func TestRewriteFiltersDoesNotMutateCallerConfig(t *testing.T) {
	original := map[string]any{"top_n": 5}
	_, config := RewriteFilters([]Filter{{Key: "Sexe", Value: ""}}, original)

	assert.Equal(t, map[string]any{"top_n": 5}, original)
	assert.Equal(t, 5, config["top_n"])
}
