// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// MissingColumns returns the required names absent from the dataset,
// sorted. Presence checks are case-insensitive after trimming, but the
// returned names are the caller's originals.
func MissingColumns(d *Dataset, required []string) []string {
	present := make(map[string]bool, d.NumCols())
	for _, c := range d.Columns {
		present[strings.ToLower(strings.TrimSpace(c))] = true
	}
	var missing []string
	for _, req := range required {
		if !present[strings.ToLower(strings.TrimSpace(req))] {
			missing = append(missing, req)
		}
	}
	sort.Strings(missing)
	return missing
}

// CheckLikertRange verifies that every numeric cell of the named
// columns lies in [1, 5]. Cells that do not parse as numbers are
// missing data, not range violations. It returns one finding per
// offending column; absent columns are reported by name.
func CheckLikertRange(d *Dataset, columns []string) []string {
	var findings []string
	for _, col := range columns {
		idx := d.ColumnIndex(col)
		if idx < 0 {
			findings = append(findings, col)
			continue
		}
		bad := 0
		for _, row := range d.Rows {
			v, ok := ParseNumber(row[idx])
			if ok && (v < 1 || v > 5) {
				bad++
			}
		}
		if bad > 0 {
			findings = append(findings, fmt.Sprintf("%s out of range 1-5 in %d rows", col, bad))
		}
	}
	return findings
}
