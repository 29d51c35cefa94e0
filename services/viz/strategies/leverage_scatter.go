// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package strategies

import (
	"fmt"

	"github.com/Aatricks/qvt-back/pkg/stats"
	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// LeverageScatter plots each dimension's mean score against its leverage
// on the outcome, sized and colored by the resulting priority.
type LeverageScatter struct{}

type leverageScatterConfig struct {
	Outcome      string `mapstructure:"outcome" validate:"omitempty,oneof=EPUI ENG"`
	Method       string `mapstructure:"method" validate:"omitempty,oneof=pearson spearman"`
	MinN         int    `mapstructure:"min_n" validate:"gte=2"`
	SegmentField string `mapstructure:"segment_field"`
	ShowLabels   *bool  `mapstructure:"show_labels"`
}

func (LeverageScatter) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := leverageScatterConfig{Outcome: "EPUI", Method: stats.MethodSpearman, MinN: 30}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	showLabels := cfg.ShowLabels == nil || *cfg.ShowLabels

	d := survey.RecodeDemographics(sv)
	rows, err := computeLeverage(d, cfg.Outcome, cfg.Method, cfg.SegmentField, cfg.MinN)
	if err != nil {
		return nil, err
	}

	values := make([]map[string]any, len(rows))
	for i, r := range rows {
		values[i] = map[string]any{
			"prefix":      r.prefix,
			"dimension":   r.label,
			"mean":        r.mean,
			"correlation": r.corr,
			"leverage":    r.leverage,
			"priority":    r.priority,
			"n":           r.n,
			"segment":     r.segment,
		}
	}

	points := map[string]any{
		"mark": map[string]any{"type": "circle", "opacity": 0.8},
		"encoding": map[string]any{
			"x": map[string]any{"field": "mean", "type": "quantitative", "title": "Score moyen", "scale": map[string]any{"domain": []int{1, 5}}},
			"y": map[string]any{"field": "leverage", "type": "quantitative", "title": "Levier", "scale": map[string]any{"domain": []int{0, 1}}},
			"size": map[string]any{
				"field": "priority", "type": "quantitative", "title": "Priorité",
				"scale": map[string]any{"range": []int{60, 600}},
			},
			"color": map[string]any{
				"field": "priority", "type": "quantitative", "title": "Priorité",
				"scale": map[string]any{"scheme": "redyellowgreen", "reverse": true},
			},
			"tooltip": []any{
				map[string]any{"field": "dimension", "type": "nominal", "title": "Dimension"},
				viz.Tooltip("mean", "quantitative", "Score moyen", ".2f"),
				viz.Tooltip("leverage", "quantitative", "Levier", ".2f"),
				viz.Tooltip("priority", "quantitative", "Priorité", ".3f"),
				viz.Tooltip("correlation", "quantitative", fmt.Sprintf("Corrélation avec %s", cfg.Outcome), ".2f"),
				viz.Tooltip("n", "quantitative", "Effectif", ""),
				map[string]any{"field": "segment", "type": "nominal", "title": "Segment"},
			},
		},
	}
	layers := []map[string]any{points}
	if showLabels {
		layers = append(layers, map[string]any{
			"mark": map[string]any{"type": "text", "dy": -12, "fontSize": 10, "color": "#374151"},
			"encoding": map[string]any{
				"x":    map[string]any{"field": "mean", "type": "quantitative"},
				"y":    map[string]any{"field": "leverage", "type": "quantitative"},
				"text": map[string]any{"field": "prefix", "type": "nominal"},
			},
		})
	}

	spec := viz.Layer(viz.Values(values), layers...)
	spec["title"] = fmt.Sprintf("Score moyen vs levier sur %s", cfg.Outcome)
	return spec, nil
}
