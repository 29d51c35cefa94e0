// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package strategies implements the chart strategies served by the
// visualize API. Each file holds one strategy: a typed config struct,
// the statistical computation, and the Vega-Lite spec assembly.
package strategies

import (
	"errors"
	"fmt"

	"github.com/Aatricks/qvt-back/pkg/stats"
	"github.com/Aatricks/qvt-back/services/dataset"
	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

var (
	errNoSurvey = errors.New("survey data required")
	errNoHR     = errors.New("hr data required")
)

func requireSurvey(in *viz.Inputs) (*dataset.Dataset, error) {
	if in == nil || in.Survey == nil {
		return nil, errNoSurvey
	}
	if in.Survey.NumRows() == 0 {
		return nil, errors.New("empty survey dataset")
	}
	return in.Survey, nil
}

func requireHR(in *viz.Inputs) (*dataset.Dataset, error) {
	if in == nil || in.HR == nil {
		return nil, errNoHR
	}
	if in.HR.NumRows() == 0 {
		return nil, errors.New("empty hr dataset")
	}
	return in.HR, nil
}

// longRow is one (respondent, item) pair from the melted survey table.
type longRow struct {
	question string
	dim      string
	value    float64
	id       map[string]string
}

// surveyLong melts the survey table and parses response values, dropping
// non-numeric cells.
func surveyLong(d *dataset.Dataset, extraIDVars []string) ([]longRow, error) {
	likert := survey.DetectLikertColumns(d)
	if len(likert) == 0 {
		return nil, errors.New("no likert columns detected")
	}
	long := survey.ToLikertLong(d, likert, extraIDVars)
	qIdx := long.ColumnIndex("question_label")
	vIdx := long.ColumnIndex("response_value")
	dIdx := long.ColumnIndex("dimension_prefix")
	idCols := long.Columns[:qIdx]

	rows := make([]longRow, 0, long.NumRows())
	for _, r := range long.Rows {
		v, ok := dataset.ParseNumber(r[vIdx])
		if !ok {
			continue
		}
		id := make(map[string]string, len(idCols))
		for i, col := range idCols {
			id[col] = r[i]
		}
		rows = append(rows, longRow{question: r[qIdx], dim: r[dIdx], value: v, id: id})
	}
	if len(rows) == 0 {
		return nil, errors.New("no usable likert responses after cleaning")
	}
	return rows, nil
}

// firstDemographic picks the default segmentation column.
func firstDemographic(d *dataset.Dataset) (string, error) {
	demos := survey.AvailableDemographics(d)
	if len(demos) == 0 {
		return "", errors.New("no demographic column available for segmentation")
	}
	return demos[0], nil
}

func requireColumn(d *dataset.Dataset, role, name string) error {
	if name != "" && !d.HasColumn(name) {
		return fmt.Errorf("%s %q not found in dataset", role, name)
	}
	return nil
}

type summary struct {
	mean float64
	std  float64
	n    int
}

func summarize(vals []float64) summary {
	s := summary{n: len(vals)}
	if s.n > 0 {
		s.mean = stats.Mean(vals)
	}
	if s.n > 1 {
		s.std = stats.StdDev(vals)
	}
	return s
}

// groupOrder accumulates values per composite key while remembering
// first-seen key order, so chart rows come out deterministically.
type groupOrder struct {
	order []string
	vals  map[string][]float64
	meta  map[string][]string
}

func newGroupOrder() *groupOrder {
	return &groupOrder{vals: make(map[string][]float64), meta: make(map[string][]string)}
}

func (g *groupOrder) add(keyParts []string, v float64) {
	key := joinKey(keyParts)
	if _, seen := g.vals[key]; !seen {
		g.order = append(g.order, key)
		g.meta[key] = append([]string(nil), keyParts...)
	}
	g.vals[key] = append(g.vals[key], v)
}

func joinKey(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\x1f"
		}
		out += p
	}
	return out
}

// scoresRow pairs a respondent's dimension score with an outcome score.
type scoresRow struct {
	x, y float64
}

// dimensionOutcomePairs extracts complete (dimension, outcome) score
// pairs per respondent for the association strategies.
func dimensionOutcomePairs(s *survey.Scores, prefix, outcome string) []scoresRow {
	xs := s.ByPrefix[prefix]
	ys := s.ByPrefix[outcome]
	var out []scoresRow
	for i := range xs {
		if !isNaN(xs[i]) && !isNaN(ys[i]) {
			out = append(out, scoresRow{x: xs[i], y: ys[i]})
		}
	}
	return out
}

func isNaN(v float64) bool { return v != v }

func splitPairs(pairs []scoresRow) (xs, ys []float64) {
	xs = make([]float64, len(pairs))
	ys = make([]float64, len(pairs))
	for i, p := range pairs {
		xs[i] = p.x
		ys[i] = p.y
	}
	return xs, ys
}
