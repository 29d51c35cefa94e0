// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package strategies

import (
	"errors"
	"sort"

	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// DimensionOverview is the high-level decision-aid chart: mean score per
// dimension plus a qualitative status (alert, watch, strength), worst
// dimensions first. Registered under the historical key
// "example_new_chart" for API compatibility.
type DimensionOverview struct{}

type dimensionOverviewConfig struct {
	WarnThreshold float64 `mapstructure:"warn_threshold"`
	GoodThreshold float64 `mapstructure:"good_threshold"`
	MinResponses  int     `mapstructure:"min_responses" validate:"gte=0"`
}

func (DimensionOverview) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := dimensionOverviewConfig{WarnThreshold: 2.5, GoodThreshold: 3.5, MinResponses: 10}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	d := survey.AddAgeBand(sv)
	long, err := surveyLong(d, nil)
	if err != nil {
		return nil, err
	}

	groups := newGroupOrder()
	for _, r := range long {
		groups.add([]string{r.dim}, r.value)
	}

	type dimRow struct {
		label string
		s     summary
	}
	var dims []dimRow
	for _, key := range groups.order {
		s := summarize(groups.vals[key])
		if s.n < cfg.MinResponses {
			continue
		}
		dims = append(dims, dimRow{label: groups.meta[key][0], s: s})
	}
	if len(dims) == 0 {
		return nil, errors.New("not enough responses per dimension to build a stable overview")
	}
	// Worst first so decision-makers see problems immediately.
	sort.SliceStable(dims, func(i, j int) bool { return dims[i].s.mean < dims[j].s.mean })

	rows := make([]map[string]any, 0, len(dims))
	for _, dr := range dims {
		status := "Vigilance"
		if dr.s.mean < cfg.WarnThreshold {
			status = "Alerte"
		} else if dr.s.mean >= cfg.GoodThreshold {
			status = "Point fort"
		}
		rows = append(rows, map[string]any{
			"dimension_label": dr.label,
			"mean_score":      dr.s.mean,
			"std_dev":         dr.s.std,
			"responses":       dr.s.n,
			"status":          status,
		})
	}

	chart := map[string]any{
		"mark": "bar",
		"encoding": map[string]any{
			"y": map[string]any{
				"field": "dimension_label", "type": "nominal", "sort": nil,
				"title": "Dimension QVT",
				"axis":  map[string]any{"labelLimit": 260, "labelPadding": 8},
			},
			"x": map[string]any{
				"field": "mean_score", "type": "quantitative",
				"title": "Score moyen (1-5)",
				"scale": map[string]any{"domain": []float64{0, 5}},
			},
			"color": map[string]any{
				"field": "status", "type": "nominal", "title": "Statut",
				"scale": map[string]any{
					"domain": []string{"Alerte", "Vigilance", "Point fort"},
					"range":  []string{"#ef4444", "#f59e0b", "#10b981"},
				},
			},
			"tooltip": []any{
				map[string]any{"field": "dimension_label", "type": "nominal"},
				map[string]any{"field": "status", "type": "nominal"},
				viz.Tooltip("mean_score", "quantitative", "Moyenne", ".2f"),
				viz.Tooltip("std_dev", "quantitative", "Écart-type", ".2f"),
				viz.Tooltip("responses", "quantitative", "Réponses", ""),
			},
		},
	}
	warnRule := map[string]any{
		"mark":     map[string]any{"type": "rule", "color": "#ef4444", "strokeDash": []int{4, 4}},
		"encoding": map[string]any{"x": map[string]any{"datum": cfg.WarnThreshold}},
	}
	goodRule := map[string]any{
		"mark":     map[string]any{"type": "rule", "color": "#10b981", "strokeDash": []int{4, 4}},
		"encoding": map[string]any{"x": map[string]any{"datum": cfg.GoodThreshold}},
	}
	body := viz.Layer(viz.Values(rows), chart, warnRule, goodRule)
	body["height"] = map[string]any{"step": 22}
	return body, nil
}
