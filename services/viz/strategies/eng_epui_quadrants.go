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

// EngEpuiQuadrants positions demographic groups on an exhaustion (X)
// versus engagement (Y) plane split into risk quadrants.
type EngEpuiQuadrants struct{}

type engEpuiQuadrantsConfig struct {
	XField     string   `mapstructure:"x_field"`
	YField     string   `mapstructure:"y_field"`
	GroupField string   `mapstructure:"group_field"`
	XThreshold *float64 `mapstructure:"x_threshold"`
	YThreshold *float64 `mapstructure:"y_threshold"`
	MaxSize    int      `mapstructure:"max_size" validate:"gte=1"`
	ShowLabels bool     `mapstructure:"show_labels"`
}

func (EngEpuiQuadrants) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := engEpuiQuadrantsConfig{XField: "EPUI", YField: "ENG", MaxSize: 400}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	d := survey.AddAgeBand(sv)
	scores, err := survey.DimensionScores(d)
	if err != nil {
		return nil, err
	}

	// Per-respondent axis values: an existing column wins, otherwise the
	// dimension score computed from the item battery.
	axisValues := func(field string) ([]float64, []bool, error) {
		if d.HasColumn(field) {
			vals, ok := d.NumericColumn(field)
			return vals, ok, nil
		}
		if vals, found := scores.ByPrefix[field]; found {
			ok := make([]bool, len(vals))
			for i, v := range vals {
				ok[i] = !isNaN(v)
			}
			return vals, ok, nil
		}
		return nil, nil, fmt.Errorf("no %s columns found to compute mean", field)
	}

	xs, xok, err := axisValues(cfg.XField)
	if err != nil {
		return nil, err
	}
	ys, yok, err := axisValues(cfg.YField)
	if err != nil {
		return nil, err
	}

	groupField := cfg.GroupField
	if groupField == "" {
		if groupField, err = firstDemographic(d); err != nil {
			return nil, err
		}
	}
	if !d.HasColumn(groupField) {
		return nil, fmt.Errorf("group_field %q not found in dataset", groupField)
	}
	gIdx := d.ColumnIndex(groupField)

	var cleanX, cleanY []float64
	xGroups := newGroupOrder()
	yGroups := newGroupOrder()
	for i := range d.Rows {
		if !xok[i] || !yok[i] || d.Rows[i][gIdx] == "" {
			continue
		}
		cleanX = append(cleanX, xs[i])
		cleanY = append(cleanY, ys[i])
		xGroups.add([]string{d.Rows[i][gIdx]}, xs[i])
		yGroups.add([]string{d.Rows[i][gIdx]}, ys[i])
	}
	if len(cleanX) == 0 {
		return nil, errors.New("no usable data for quadrant chart after cleaning")
	}

	xThreshold := stats.Median(cleanX)
	if cfg.XThreshold != nil {
		xThreshold = *cfg.XThreshold
	}
	yThreshold := stats.Median(cleanY)
	if cfg.YThreshold != nil {
		yThreshold = *cfg.YThreshold
	}

	rows := make([]map[string]any, 0, len(xGroups.order))
	for _, key := range xGroups.order {
		sx := summarize(xGroups.vals[key])
		sy := summarize(yGroups.vals[key])
		quadrant := ""
		switch {
		case sx.mean >= xThreshold && sy.mean >= yThreshold:
			quadrant = "Épuisement élevé / Engagement élevé"
		case sx.mean >= xThreshold:
			quadrant = "Épuisement élevé / Engagement faible"
		case sy.mean >= yThreshold:
			quadrant = "Épuisement faible / Engagement élevé"
		default:
			quadrant = "Épuisement faible / Engagement faible"
		}
		rows = append(rows, map[string]any{
			groupField: xGroups.meta[key][0],
			"x_mean":   sx.mean,
			"y_mean":   sy.mean,
			"n":        sx.n,
			"size":     sx.n,
			"quadrant": quadrant,
		})
	}

	points := map[string]any{
		"mark": map[string]any{"type": "circle", "opacity": 0.75},
		"encoding": map[string]any{
			"x":     map[string]any{"field": "x_mean", "type": "quantitative", "title": cfg.XField},
			"y":     map[string]any{"field": "y_mean", "type": "quantitative", "title": cfg.YField},
			"color": map[string]any{"field": "quadrant", "type": "nominal", "title": "Quadrant"},
			"size": map[string]any{
				"field": "size", "type": "quantitative", "title": "Effectif",
				"scale": map[string]any{"range": []int{50, cfg.MaxSize}},
			},
			"tooltip": []any{
				map[string]any{"field": groupField, "type": "nominal"},
				viz.Tooltip("x_mean", "quantitative", fmt.Sprintf("%s (moy.)", cfg.XField), ".2f"),
				viz.Tooltip("y_mean", "quantitative", fmt.Sprintf("%s (moy.)", cfg.YField), ".2f"),
				viz.Tooltip("n", "quantitative", "Effectif", ""),
				map[string]any{"field": "quadrant", "type": "nominal"},
			},
		},
	}
	vRule := map[string]any{
		"mark":     map[string]any{"type": "rule", "color": "#9ca3af", "strokeDash": []int{4, 4}},
		"encoding": map[string]any{"x": map[string]any{"datum": xThreshold}},
	}
	hRule := map[string]any{
		"mark":     map[string]any{"type": "rule", "color": "#9ca3af", "strokeDash": []int{4, 4}},
		"encoding": map[string]any{"y": map[string]any{"datum": yThreshold}},
	}
	layers := []map[string]any{points, vRule, hRule}
	if cfg.ShowLabels {
		layers = append(layers, map[string]any{
			"mark": map[string]any{"type": "text", "dx": 8, "dy": -8, "fontSize": 11, "color": "#111827"},
			"encoding": map[string]any{
				"x":    map[string]any{"field": "x_mean", "type": "quantitative"},
				"y":    map[string]any{"field": "y_mean", "type": "quantitative"},
				"text": map[string]any{"field": groupField, "type": "nominal"},
			},
		})
	}
	return viz.Layer(viz.Values(rows), layers...), nil
}
