// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package dataset holds the in-memory tabular model shared by the whole
// pipeline: a named table of string cells with ordered columns, plus the
// upload loader and the schema validator.
//
// A Dataset is immutable once validated. Later pipeline stages derive
// filtered or augmented copies; they never mutate a table another stage
// can still observe.
package dataset

import (
	"strconv"
	"strings"
)

// Dataset is a rows × named-columns table. Cells are kept as trimmed
// strings; numeric interpretation happens on demand via ParseNumber so
// that client-supplied values (always strings) and typed spreadsheet
// columns compare consistently.
type Dataset struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Identity is the cache identity proxy for a Dataset: shape plus ordered
// column names. Deliberately NOT a content hash — two uploads with equal
// shape and columns but different cells collide. See the cache package
// documentation before "fixing" this.
type Identity struct {
	Name    string
	Rows    int
	Cols    int
	Columns []string
}

// New builds a dataset, trimming every column name and cell, and padding
// or truncating ragged rows to the header width.
func New(name string, columns []string, rows [][]string) *Dataset {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(c)
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		r := make([]string, len(cols))
		for j := range cols {
			if j < len(row) {
				r[j] = strings.TrimSpace(row[j])
			}
		}
		out[i] = r
	}
	return &Dataset{Name: name, Columns: cols, Rows: out}
}

// NumRows returns the number of data rows.
func (d *Dataset) NumRows() int { return len(d.Rows) }

// NumCols returns the number of columns.
func (d *Dataset) NumCols() int { return len(d.Columns) }

// ColumnIndex returns the position of an exact column name, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the exact column name exists.
func (d *Dataset) HasColumn(name string) bool { return d.ColumnIndex(name) >= 0 }

// Column returns all cell values of the named column. A missing column
// yields nil.
func (d *Dataset) Column(name string) []string {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[idx]
	}
	return out
}

// NumericColumn returns the column coerced to float64 with ok=false per
// cell that does not parse. A missing column yields nil.
func (d *Dataset) NumericColumn(name string) ([]float64, []bool) {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return nil, nil
	}
	vals := make([]float64, len(d.Rows))
	ok := make([]bool, len(d.Rows))
	for i, row := range d.Rows {
		vals[i], ok[i] = ParseNumber(row[idx])
	}
	return vals, ok
}

// IsNumericColumn reports whether the column exists and at least one cell
// parses as a number while no non-empty cell fails to parse.
func (d *Dataset) IsNumericColumn(name string) bool {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return false
	}
	parsed := false
	for _, row := range d.Rows {
		cell := row[idx]
		if cell == "" {
			continue
		}
		if _, ok := ParseNumber(cell); !ok {
			return false
		}
		parsed = true
	}
	return parsed
}

// NumericColumns lists the columns for which IsNumericColumn holds, in
// declaration order.
func (d *Dataset) NumericColumns() []string {
	var out []string
	for _, c := range d.Columns {
		if d.IsNumericColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// Filter returns a copy keeping the rows for which pred is true.
func (d *Dataset) Filter(pred func(row []string) bool) *Dataset {
	kept := make([][]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		if pred(row) {
			kept = append(kept, row)
		}
	}
	return &Dataset{Name: d.Name, Columns: d.Columns, Rows: kept}
}

// WithColumn returns a copy with an extra column appended. values must
// have one entry per row.
func (d *Dataset) WithColumn(name string, values []string) *Dataset {
	cols := append(append([]string(nil), d.Columns...), name)
	rows := make([][]string, len(d.Rows))
	for i, row := range d.Rows {
		rows[i] = append(append([]string(nil), row...), values[i])
	}
	return &Dataset{Name: d.Name, Columns: cols, Rows: rows}
}

// Identity returns the cache identity proxy.
func (d *Dataset) Identity() Identity {
	return Identity{
		Name:    d.Name,
		Rows:    d.NumRows(),
		Cols:    d.NumCols(),
		Columns: append([]string(nil), d.Columns...),
	}
}

// ParseNumber coerces a cell to float64. It trims whitespace and accepts
// a decimal comma, common in French exports.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return v, true
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
