// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package strategies

import (
	"errors"
	"log/slog"

	"github.com/Aatricks/qvt-back/pkg/stats"
	"github.com/Aatricks/qvt-back/services/dataset"
	"github.com/Aatricks/qvt-back/services/viz"
)

// CorrelationMatrix renders pairwise Pearson correlations of numeric HR
// metrics as an annotated heatmap.
type CorrelationMatrix struct{}

type correlationMatrixConfig struct {
	NumericFields []string `mapstructure:"numeric_fields"`
}

func (CorrelationMatrix) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	hr, err := requireHR(in)
	if err != nil {
		return nil, err
	}
	var cfg correlationMatrixConfig
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	var cols []string
	if len(cfg.NumericFields) > 0 {
		var missing []string
		for _, c := range cfg.NumericFields {
			if hr.HasColumn(c) {
				cols = append(cols, c)
			} else {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			slog.Debug("correlation matrix ignoring requested fields",
				"requested", cfg.NumericFields, "missing", missing)
		}
	} else {
		cols = hr.NumericColumns()
	}
	if len(cols) == 0 {
		return nil, errors.New("no numeric columns available for correlation matrix")
	}

	// Keep only rows where every selected column parses.
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = hr.ColumnIndex(c)
	}
	series := make([][]float64, len(cols))
	for _, r := range hr.Rows {
		vals := make([]float64, len(cols))
		ok := true
		for i, ci := range idx {
			v, parsed := dataset.ParseNumber(r[ci])
			if !parsed {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		for i, v := range vals {
			series[i] = append(series[i], v)
		}
	}
	if len(series[0]) < 2 {
		return nil, errors.New("not enough complete rows for correlation matrix")
	}

	rows := make([]map[string]any, 0, len(cols)*len(cols))
	for i, cx := range cols {
		for j, cy := range cols {
			corr := 1.0
			if i != j {
				corr = stats.Pearson(series[i], series[j])
			}
			rows = append(rows, map[string]any{
				"metric_x": cx, "metric_y": cy, "correlation": corr,
			})
		}
	}

	enc := map[string]any{
		"x": map[string]any{"field": "metric_x", "type": "nominal"},
		"y": map[string]any{"field": "metric_y", "type": "nominal"},
	}
	heatmap := map[string]any{
		"mark": "rect",
		"encoding": map[string]any{
			"x": enc["x"], "y": enc["y"],
			"color": map[string]any{
				"field": "correlation", "type": "quantitative",
				"scale": map[string]any{"scheme": "blueorange"},
			},
			"tooltip": []any{
				map[string]any{"field": "metric_x", "type": "nominal"},
				map[string]any{"field": "metric_y", "type": "nominal"},
				viz.Tooltip("correlation", "quantitative", "", ".2f"),
			},
		},
	}
	text := map[string]any{
		"mark": "text",
		"encoding": map[string]any{
			"x": enc["x"], "y": enc["y"],
			"text": map[string]any{"field": "correlation", "type": "quantitative", "format": ".2f"},
			"color": map[string]any{
				"condition": map[string]any{"test": "datum.correlation > 0.5", "value": "white"},
				"value":     "black",
			},
		},
	}
	return viz.Layer(viz.Values(rows), heatmap, text), nil
}
