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

	"github.com/Aatricks/qvt-back/pkg/stats"
	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// DimensionHeatmap crosses QVT dimensions with a demographic group and
// colors each cell by mean or median score.
type DimensionHeatmap struct{}

type dimensionHeatmapConfig struct {
	GroupField   string    `mapstructure:"group_field"`
	Stat         string    `mapstructure:"stat" validate:"omitempty,oneof=mean median"`
	LikertDomain []float64 `mapstructure:"likert_domain" validate:"omitempty,len=2"`
}

func (DimensionHeatmap) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := dimensionHeatmapConfig{Stat: "mean", LikertDomain: []float64{1, 5}}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	d := survey.AddAgeBand(sv)
	long, err := surveyLong(d, nil)
	if err != nil {
		return nil, err
	}

	groupField := cfg.GroupField
	if groupField == "" {
		if groupField, err = firstDemographic(d); err != nil {
			return nil, err
		}
	}
	if _, ok := long[0].id[groupField]; !ok {
		return nil, fmt.Errorf("group_field %q not found in dataset", groupField)
	}

	groups := newGroupOrder()
	for _, r := range long {
		if r.id[groupField] == "" {
			continue
		}
		groups.add([]string{r.dim, r.id[groupField]}, r.value)
	}
	if len(groups.order) == 0 {
		return nil, errors.New("no aggregated data available for dimension heatmap")
	}

	rows := make([]map[string]any, 0, len(groups.order))
	for _, key := range groups.order {
		vals := groups.vals[key]
		score := summarize(vals).mean
		if cfg.Stat == "median" {
			score = stats.Median(vals)
		}
		rows = append(rows, map[string]any{
			"dimension_label": groups.meta[key][0],
			groupField:        groups.meta[key][1],
			"score":           score,
		})
	}

	scoreTitle := fmt.Sprintf("Score (%s)", cfg.Stat)
	return viz.Spec(map[string]any{
		"data": viz.Values(rows),
		"mark": "rect",
		"encoding": map[string]any{
			"x": map[string]any{"field": groupField, "type": "nominal", "title": groupField},
			"y": map[string]any{"field": "dimension_label", "type": "nominal", "sort": "-x", "title": "Dimension QVT"},
			"color": map[string]any{
				"field": "score", "type": "quantitative", "title": scoreTitle,
				"scale": map[string]any{"domain": cfg.LikertDomain, "scheme": "blues"},
			},
			"tooltip": []any{
				map[string]any{"field": "dimension_label", "type": "nominal"},
				map[string]any{"field": groupField, "type": "nominal"},
				viz.Tooltip("score", "quantitative", scoreTitle, ".2f"),
			},
		},
	}), nil
}
