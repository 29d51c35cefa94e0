// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package strategies

import (
	"errors"

	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// DimensionMeanStdScatter plots each dimension's mean against its
// standard deviation to surface polarization.
type DimensionMeanStdScatter struct{}

type dimensionMeanStdScatterConfig struct {
	LikertDomain []float64 `mapstructure:"likert_domain" validate:"omitempty,len=2"`
	MinResponses int       `mapstructure:"min_responses" validate:"gte=0"`
	SegmentField string    `mapstructure:"segment_field"`
	MaxSize      int       `mapstructure:"max_size" validate:"gte=1"`
	ColorScheme  string    `mapstructure:"color_scheme"`
	ShowLabels   bool      `mapstructure:"show_labels"`
}

func (DimensionMeanStdScatter) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := dimensionMeanStdScatterConfig{
		LikertDomain: []float64{1, 5}, MinResponses: 5, MaxSize: 800, ColorScheme: "blues",
	}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	d := survey.RecodeDemographics(survey.AddAgeBand(sv))
	if err := requireColumn(d, "segment_field", cfg.SegmentField); err != nil {
		return nil, err
	}
	var extra []string
	if cfg.SegmentField != "" {
		extra = append(extra, cfg.SegmentField)
	}
	long, err := surveyLong(d, extra)
	if err != nil {
		return nil, err
	}

	groups := newGroupOrder()
	for _, r := range long {
		key := []string{r.dim}
		if cfg.SegmentField != "" {
			key = append(key, r.id[cfg.SegmentField])
		}
		groups.add(key, r.value)
	}

	rows := make([]map[string]any, 0, len(groups.order))
	for _, key := range groups.order {
		s := summarize(groups.vals[key])
		if s.n < cfg.MinResponses || s.n < 2 {
			continue
		}
		row := map[string]any{
			"dimension_label": groups.meta[key][0],
			"mean_score":      s.mean,
			"std_dev":         s.std,
			"responses":       s.n,
			"size":            s.n,
		}
		if cfg.SegmentField != "" {
			row[cfg.SegmentField] = groups.meta[key][1]
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.New("no dimension reaches the minimum response threshold")
	}

	colorEnc := map[string]any{
		"field": "mean_score", "type": "quantitative", "title": "Score moyen",
		"scale": map[string]any{"scheme": cfg.ColorScheme},
	}
	tooltip := []any{
		map[string]any{"field": "dimension_label", "type": "nominal"},
		viz.Tooltip("mean_score", "quantitative", "Moyenne", ".2f"),
		viz.Tooltip("std_dev", "quantitative", "Écart-type", ".2f"),
		viz.Tooltip("responses", "quantitative", "Réponses", ""),
	}
	if cfg.SegmentField != "" {
		colorEnc = map[string]any{"field": cfg.SegmentField, "type": "nominal", "title": cfg.SegmentField}
		tooltip = append(tooltip, viz.Tooltip(cfg.SegmentField, "nominal", cfg.SegmentField, ""))
	}

	points := map[string]any{
		"mark": map[string]any{"type": "circle", "opacity": 0.8},
		"encoding": map[string]any{
			"x": map[string]any{
				"field": "mean_score", "type": "quantitative",
				"title": "Score moyen (1-5)",
				"scale": map[string]any{"domain": cfg.LikertDomain},
			},
			"y": map[string]any{
				"field": "std_dev", "type": "quantitative",
				"title": "Écart-type (dispersion)",
				"scale": map[string]any{"zero": true},
			},
			"size": map[string]any{
				"field": "size", "type": "quantitative", "title": "Effectif",
				"scale": map[string]any{"range": []int{50, cfg.MaxSize}},
			},
			"color":   colorEnc,
			"tooltip": tooltip,
		},
	}
	layers := []map[string]any{points}
	if cfg.ShowLabels {
		layers = append(layers, map[string]any{
			"mark": map[string]any{"type": "text", "dx": 8, "dy": -8, "fontSize": 11, "color": "#111827"},
			"encoding": map[string]any{
				"x":    map[string]any{"field": "mean_score", "type": "quantitative"},
				"y":    map[string]any{"field": "std_dev", "type": "quantitative"},
				"text": map[string]any{"field": "dimension_label", "type": "nominal"},
			},
		})
	}
	return viz.Layer(viz.Values(rows), layers...), nil
}
