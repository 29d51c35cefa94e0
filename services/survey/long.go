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

// ToLikertLong melts a wide survey table into one row per (respondent,
// item) pair. Identifier columns are the available demographics plus any
// extraIDVars present in the dataset; each Likert column becomes a
// question_label / response_value pair annotated with its dimension
// label.
func ToLikertLong(d *dataset.Dataset, likertColumns, extraIDVars []string) *dataset.Dataset {
	likert := likertColumns
	if len(likert) == 0 {
		likert = DetectLikertColumns(d)
	}
	idVars := AvailableDemographics(d)
	for _, col := range extraIDVars {
		if d.HasColumn(col) && !contains(idVars, col) {
			idVars = append(idVars, col)
		}
	}

	columns := append(append([]string(nil), idVars...),
		"question_label", "response_value", "dimension_prefix")
	idIdx := make([]int, len(idVars))
	for i, col := range idVars {
		idIdx[i] = d.ColumnIndex(col)
	}

	rows := make([][]string, 0, d.NumRows()*len(likert))
	for _, col := range likert {
		valIdx := d.ColumnIndex(col)
		if valIdx < 0 {
			continue
		}
		label := FriendlyQuestionLabel(col)
		dim := DimensionLabel(col)
		for _, row := range d.Rows {
			out := make([]string, 0, len(columns))
			for _, i := range idIdx {
				out = append(out, row[i])
			}
			out = append(out, label, row[valIdx], dim)
			rows = append(rows, out)
		}
	}
	return &dataset.Dataset{Name: d.Name, Columns: columns, Rows: rows}
}
