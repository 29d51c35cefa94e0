// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import (
	"fmt"
	"strings"

	"github.com/Aatricks/qvt-back/services/dataset"
)

// NormalizeColumnName trims the name and renames the truncated export
// header ANCIENNE to its accented form.
func NormalizeColumnName(col string) string {
	name := strings.TrimSpace(col)
	if strings.ToUpper(name) == "ANCIENNE" {
		return "Ancienneté"
	}
	return name
}

// DimensionPrefix returns the raw Likert prefix of a column, or "" when
// the column matches no known prefix.
func DimensionPrefix(col string) string {
	upper := strings.ToUpper(NormalizeColumnName(col))
	for _, e := range coding.LikertPrefixes {
		if strings.HasPrefix(upper, e.Prefix) {
			return e.Prefix
		}
	}
	return ""
}

// DimensionLabel returns the dimension label for a column. Columns with
// no known prefix fall back to their name with trailing digits removed.
func DimensionLabel(col string) string {
	upper := strings.ToUpper(NormalizeColumnName(col))
	for _, e := range coding.LikertPrefixes {
		if strings.HasPrefix(upper, e.Prefix) {
			return e.Label
		}
	}
	return strings.TrimRight(upper, "0123456789")
}

// FriendlyQuestionLabel decorates a Likert column name with its
// dimension label. Non-Likert columns pass through unchanged.
func FriendlyQuestionLabel(col string) string {
	upper := strings.ToUpper(NormalizeColumnName(col))
	for _, e := range coding.LikertPrefixes {
		if strings.HasPrefix(upper, e.Prefix) {
			return fmt.Sprintf("%s (%s)", col, e.Label)
		}
	}
	return col
}

// DetectLikertColumns lists the dataset columns matching a known Likert
// prefix, in declaration order.
func DetectLikertColumns(d *dataset.Dataset) []string {
	var out []string
	for _, col := range d.Columns {
		if DimensionPrefix(col) != "" {
			out = append(out, col)
		}
	}
	return out
}

// LikertColumnsByPrefix groups detected Likert columns by raw prefix.
// Prefixes with no columns are omitted.
func LikertColumnsByPrefix(d *dataset.Dataset) map[string][]string {
	out := make(map[string][]string)
	for _, col := range d.Columns {
		if p := DimensionPrefix(col); p != "" {
			out[p] = append(out[p], col)
		}
	}
	return out
}

// AvailableDemographics returns the socio-demographic columns present in
// the dataset, matched case-insensitively against the coding table, plus
// the derived band columns when present. Returned names are the
// dataset's originals.
func AvailableDemographics(d *dataset.Dataset) []string {
	normalized := make(map[string]string, d.NumCols())
	for _, col := range d.Columns {
		normalized[strings.ToUpper(NormalizeColumnName(col))] = col
	}
	var out []string
	for _, name := range coding.SocioColumns {
		if orig, ok := normalized[strings.ToUpper(name)]; ok {
			out = append(out, orig)
		}
	}
	for _, derived := range []string{coding.AgeBand.Derived, coding.SeniorityBand.Derived} {
		if d.HasColumn(derived) && !contains(out, derived) {
			out = append(out, derived)
		}
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
