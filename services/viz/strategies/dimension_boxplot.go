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
	"strings"

	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// DimensionBoxplot draws per-dimension response distributions as
// boxplots, one color per demographic group.
type DimensionBoxplot struct{}

type dimensionBoxplotConfig struct {
	GroupField   string    `mapstructure:"group_field"`
	Dimensions   []string  `mapstructure:"dimensions"`
	LikertDomain []float64 `mapstructure:"likert_domain" validate:"omitempty,len=2"`
	ShowOutliers *bool     `mapstructure:"show_outliers"`
	MinPerGroup  int       `mapstructure:"min_per_group" validate:"gte=0"`
}

func (DimensionBoxplot) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := dimensionBoxplotConfig{LikertDomain: []float64{1, 5}, MinPerGroup: 3}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	d := survey.AddAgeBand(sv)
	long, err := surveyLong(d, nil)
	if err != nil {
		return nil, err
	}

	if len(cfg.Dimensions) > 0 {
		keep := make(map[string]bool, len(cfg.Dimensions))
		for _, prefix := range cfg.Dimensions {
			keep[survey.PrefixLabel(strings.ToUpper(prefix))] = true
		}
		filtered := long[:0]
		for _, r := range long {
			if keep[r.dim] {
				filtered = append(filtered, r)
			}
		}
		long = filtered
		if len(long) == 0 {
			return nil, errors.New("no usable data after dimension filtering")
		}
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

	// Drop (group, dimension) pairs under the size threshold.
	counts := make(map[string]int)
	for _, r := range long {
		counts[joinKey([]string{r.id[groupField], r.dim})]++
	}
	rows := make([]map[string]any, 0, len(long))
	for _, r := range long {
		if counts[joinKey([]string{r.id[groupField], r.dim})] < cfg.MinPerGroup {
			continue
		}
		rows = append(rows, map[string]any{
			"dimension_label": r.dim,
			groupField:        r.id[groupField],
			"response_value":  r.value,
		})
	}
	if len(rows) == 0 {
		return nil, errors.New("no group/dimension pair reaches the minimum response threshold")
	}

	showOutliers := cfg.ShowOutliers == nil || *cfg.ShowOutliers
	var mark any = map[string]any{"type": "boxplot"}
	if !showOutliers {
		mark = map[string]any{"type": "boxplot", "outliers": false}
	}

	return viz.Spec(map[string]any{
		"data": viz.Values(rows),
		"mark": mark,
		"encoding": map[string]any{
			"x": map[string]any{
				"field": "response_value", "type": "quantitative",
				"title": "Réponse (1-5)",
				"scale": map[string]any{"domain": cfg.LikertDomain},
			},
			"y":     map[string]any{"field": "dimension_label", "type": "nominal", "title": "Dimension QVT"},
			"color": map[string]any{"field": groupField, "type": "nominal", "title": groupField},
			"tooltip": []any{
				map[string]any{"field": "dimension_label", "type": "nominal"},
				map[string]any{"field": groupField, "type": "nominal"},
				viz.Tooltip("response_value", "quantitative", "Valeur", ".2f"),
			},
		},
	}), nil
}
