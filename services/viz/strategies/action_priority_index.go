// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package strategies

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Aatricks/qvt-back/pkg/stats"
	"github.com/Aatricks/qvt-back/services/dataset"
	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// knownOutcomes are the dimensions treated as outcomes rather than
// levers, excluded from the candidate list of the association charts.
var knownOutcomes = map[string]bool{"ENG": true, "EPUI": true, "CSE": true}

// leverageRow is one dimension's association with the chosen outcome.
type leverageRow struct {
	prefix   string
	label    string
	mean     float64
	corr     float64
	leverage float64
	priority float64
	n        int
	segment  string
}

// computeLeverage correlates each non-outcome dimension score with the
// outcome score and derives a [0,1] leverage plus a priority index that
// weighs leverage by remaining room for improvement.
func computeLeverage(d *dataset.Dataset, outcome, method, segmentField string, minN int) ([]leverageRow, error) {
	if outcome != "EPUI" && outcome != "ENG" {
		return nil, fmt.Errorf("unsupported outcome %q (expected EPUI or ENG)", outcome)
	}

	segments := []string{"Organisation"}
	segIdx := -1
	if segmentField != "" && segmentField != "Organisation" {
		if !d.HasColumn(segmentField) {
			return nil, fmt.Errorf("segment_field %q not found in dataset", segmentField)
		}
		segIdx = d.ColumnIndex(segmentField)
		seen := map[string]bool{}
		segments = segments[:0]
		for _, r := range d.Rows {
			if v := strings.TrimSpace(r[segIdx]); v != "" && !seen[v] {
				seen[v] = true
				segments = append(segments, v)
			}
		}
		if len(segments) == 0 {
			return nil, errors.New("segment column has no usable values")
		}
	}

	var rows []leverageRow
	for _, segment := range segments {
		part := d
		if segIdx >= 0 {
			si := segIdx
			want := segment
			part = d.Filter(func(r []string) bool { return strings.TrimSpace(r[si]) == want })
		}
		scores, err := survey.DimensionScores(part)
		if err != nil {
			return nil, err
		}
		if _, found := scores.ByPrefix[outcome]; !found {
			return nil, fmt.Errorf("outcome dimension %s not present in survey", outcome)
		}
		for _, prefix := range scores.Prefixes {
			if knownOutcomes[prefix] {
				continue
			}
			pairs := dimensionOutcomePairs(scores, prefix, outcome)
			if len(pairs) < minN {
				continue
			}
			xs, ys := splitPairs(pairs)
			corr, err := stats.Correlate(method, xs, ys)
			if err != nil {
				return nil, err
			}
			if isNaN(corr) {
				continue
			}
			leverage := corr
			if outcome == "EPUI" {
				leverage = -corr
			}
			if leverage < 0 {
				leverage = 0
			}
			mean := stats.Mean(xs)
			rows = append(rows, leverageRow{
				prefix:   prefix,
				label:    survey.PrefixLabel(prefix),
				mean:     mean,
				corr:     corr,
				leverage: leverage,
				priority: (5 - mean) * leverage,
				n:        len(pairs),
				segment:  segment,
			})
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("not enough paired responses to relate dimensions to %s (min %d per dimension)", outcome, minN)
	}
	return rows, nil
}

// ActionPriorityIndex ranks dimensions by priority: how strongly each one
// relates to the outcome, weighted by how much room it has to improve.
type ActionPriorityIndex struct{}

type actionPriorityIndexConfig struct {
	Outcome      string `mapstructure:"outcome" validate:"omitempty,oneof=EPUI ENG"`
	Method       string `mapstructure:"method" validate:"omitempty,oneof=pearson spearman"`
	MinN         int    `mapstructure:"min_n" validate:"gte=2"`
	TopN         int    `mapstructure:"top_n" validate:"gte=1"`
	SegmentField string `mapstructure:"segment_field"`
}

func (ActionPriorityIndex) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := actionPriorityIndexConfig{Outcome: "EPUI", Method: stats.MethodSpearman, MinN: 30, TopN: 12}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	d := survey.RecodeDemographics(sv)
	rows, err := computeLeverage(d, cfg.Outcome, cfg.Method, cfg.SegmentField, cfg.MinN)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].priority > rows[j].priority })
	if len(rows) > cfg.TopN {
		rows = rows[:cfg.TopN]
	}

	singleSegment := true
	for _, r := range rows {
		if r.segment != rows[0].segment {
			singleSegment = false
			break
		}
	}

	values := make([]map[string]any, len(rows))
	for i, r := range rows {
		values[i] = map[string]any{
			"dimension":   r.label,
			"mean":        r.mean,
			"correlation": r.corr,
			"leverage":    r.leverage,
			"priority":    r.priority,
			"n":           r.n,
			"segment":     r.segment,
		}
	}

	encoding := map[string]any{
		"y": map[string]any{
			"field": "dimension", "type": "nominal", "title": "Dimension",
			"sort": map[string]any{"field": "priority", "order": "descending"},
		},
		"x": map[string]any{"field": "priority", "type": "quantitative", "title": "Indice de priorité"},
		"tooltip": []any{
			map[string]any{"field": "dimension", "type": "nominal", "title": "Dimension"},
			viz.Tooltip("priority", "quantitative", "Priorité", ".3f"),
			viz.Tooltip("mean", "quantitative", "Score moyen", ".2f"),
			viz.Tooltip("correlation", "quantitative", fmt.Sprintf("Corrélation avec %s", cfg.Outcome), ".2f"),
			viz.Tooltip("n", "quantitative", "Effectif", ""),
			map[string]any{"field": "segment", "type": "nominal", "title": "Segment"},
		},
	}
	if singleSegment {
		encoding["color"] = map[string]any{"value": "#4F46E5"}
	} else {
		encoding["color"] = map[string]any{"field": "segment", "type": "nominal", "title": "Segment"}
		encoding["yOffset"] = map[string]any{"field": "segment", "type": "nominal"}
	}

	return viz.Spec(map[string]any{
		"title":    fmt.Sprintf("Priorités d'action (impact sur %s)", cfg.Outcome),
		"data":     map[string]any{"values": values},
		"mark":     map[string]any{"type": "bar"},
		"encoding": encoding,
	}), nil
}
