// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import (
	"errors"
	"math"

	"github.com/Aatricks/qvt-back/services/dataset"
)

// ErrNoLikertColumns is returned when a survey table contains no column
// matching a known Likert prefix.
var ErrNoLikertColumns = errors.New("no likert columns found")

// Scores holds per-respondent dimension means. Prefixes lists the
// dimensions with at least one item, in coding-table order; ByPrefix
// maps each to one value per respondent, NaN when the respondent
// answered none of the dimension's items.
type Scores struct {
	Prefixes []string
	ByPrefix map[string][]float64
}

// DimensionScores computes the mean response per respondent per Likert
// dimension. Non-numeric cells are ignored item-wise.
func DimensionScores(d *dataset.Dataset) (*Scores, error) {
	groups := LikertColumnsByPrefix(d)
	if len(groups) == 0 {
		return nil, ErrNoLikertColumns
	}
	s := &Scores{ByPrefix: make(map[string][]float64, len(groups))}
	for _, entry := range coding.LikertPrefixes {
		cols, ok := groups[entry.Prefix]
		if !ok {
			continue
		}
		idx := make([]int, len(cols))
		for i, col := range cols {
			idx[i] = d.ColumnIndex(col)
		}
		vals := make([]float64, d.NumRows())
		for r, row := range d.Rows {
			sum, n := 0.0, 0
			for _, i := range idx {
				if v, ok := dataset.ParseNumber(row[i]); ok {
					sum += v
					n++
				}
			}
			if n == 0 {
				vals[r] = math.NaN()
			} else {
				vals[r] = sum / float64(n)
			}
		}
		s.Prefixes = append(s.Prefixes, entry.Prefix)
		s.ByPrefix[entry.Prefix] = vals
	}
	return s, nil
}

// Mean returns the mean of a dimension's per-respondent scores, ignoring
// NaN entries, with ok=false when no respondent has a score.
func (s *Scores) Mean(prefix string) (float64, bool) {
	sum, n := 0.0, 0
	for _, v := range s.ByPrefix[prefix] {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Clean returns a dimension's scores with NaN entries dropped.
func (s *Scores) Clean(prefix string) []float64 {
	var out []float64
	for _, v := range s.ByPrefix[prefix] {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
