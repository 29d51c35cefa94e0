// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import (
	"github.com/Aatricks/qvt-back/services/dataset"
)

// RecodeDemographics maps numeric demographic codes to display labels
// using the coding table. Unmapped values pass through unchanged, and
// the truncated seniority header is renamed on the way.
func RecodeDemographics(d *dataset.Dataset) *dataset.Dataset {
	cols := make([]string, d.NumCols())
	mappings := make([]map[string]string, d.NumCols())
	for i, col := range d.Columns {
		cols[i] = NormalizeColumnName(col)
		mappings[i] = coding.Demographics[cols[i]]
	}
	rows := make([][]string, d.NumRows())
	for r, row := range d.Rows {
		out := append([]string(nil), row...)
		for c, m := range mappings {
			if m == nil {
				continue
			}
			if label, ok := m[out[c]]; ok {
				out[c] = label
			}
		}
		rows[r] = out
	}
	return &dataset.Dataset{Name: d.Name, Columns: cols, Rows: rows}
}

// AddAgeBand appends the AgeClasse ordinal column derived from Age. The
// dataset is returned unchanged when Age is absent.
func AddAgeBand(d *dataset.Dataset) *dataset.Dataset {
	return addBand(d, coding.AgeBand)
}

// AddSeniorityBand appends the AnciennetéClasse column derived from the
// seniority column, accepting the raw export header as a fallback. The
// dataset is returned unchanged when neither is present.
func AddSeniorityBand(d *dataset.Dataset) *dataset.Dataset {
	return addBand(d, coding.SeniorityBand)
}

func addBand(d *dataset.Dataset, spec BandSpec) *dataset.Dataset {
	source := spec.Column
	if !d.HasColumn(source) && spec.Fallback != "" {
		source = spec.Fallback
	}
	if !d.HasColumn(source) {
		return d
	}
	// Re-deriving over an already augmented table must not duplicate the
	// band column.
	if d.HasColumn(spec.Derived) {
		return d
	}
	values := make([]string, d.NumRows())
	idx := d.ColumnIndex(source)
	for i, row := range d.Rows {
		v, ok := dataset.ParseNumber(row[idx])
		if !ok || v <= spec.Edges[0] {
			continue
		}
		label := spec.Labels[len(spec.Labels)-1]
		for j := 1; j < len(spec.Edges); j++ {
			if v <= spec.Edges[j] {
				label = spec.Labels[j-1]
				break
			}
		}
		values[i] = label
	}
	return d.WithColumn(spec.Derived, values)
}
