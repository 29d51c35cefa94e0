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

	"github.com/Aatricks/qvt-back/services/dataset"
	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// ScatterRegression plots two numeric fields against each other with an
// optional regression overlay computed client-side by Vega-Lite.
type ScatterRegression struct{}

type scatterRegressionConfig struct {
	XField     string  `mapstructure:"x_field"`
	YField     string  `mapstructure:"y_field"`
	ColorField string  `mapstructure:"color_field"`
	Regression *bool   `mapstructure:"regression"`
	Method     string  `mapstructure:"method" validate:"omitempty,oneof=linear log exp pow quad poly loess"`
	Order      int     `mapstructure:"order" validate:"gte=0"`
	CI         bool    `mapstructure:"ci"`
	Opacity    float64 `mapstructure:"opacity" validate:"gte=0,lte=1"`
}

func (ScatterRegression) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := scatterRegressionConfig{Method: "linear", Opacity: 0.6}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	d := survey.AddAgeBand(sv)
	numeric := d.NumericColumns()

	xField := cfg.XField
	if xField == "" || !d.HasColumn(xField) {
		if len(numeric) == 0 {
			return nil, errors.New("no numeric column available for x_field")
		}
		xField = numeric[0]
	}
	yField := cfg.YField
	if yField == "" || !d.HasColumn(yField) {
		var remaining []string
		for _, c := range numeric {
			if c != xField {
				remaining = append(remaining, c)
			}
		}
		switch {
		case len(remaining) > 0:
			yField = remaining[0]
		case len(numeric) > 0:
			yField = numeric[len(numeric)-1]
		default:
			return nil, errors.New("no numeric column available for y_field")
		}
	}
	if cfg.ColorField != "" && !d.HasColumn(cfg.ColorField) {
		return nil, fmt.Errorf("color_field %q not found in dataset", cfg.ColorField)
	}

	xIdx, yIdx := d.ColumnIndex(xField), d.ColumnIndex(yField)
	cIdx := -1
	if cfg.ColorField != "" {
		cIdx = d.ColumnIndex(cfg.ColorField)
	}
	rows := make([]map[string]any, 0, d.NumRows())
	for _, r := range d.Rows {
		x, okx := dataset.ParseNumber(r[xIdx])
		y, oky := dataset.ParseNumber(r[yIdx])
		if !okx || !oky {
			continue
		}
		row := map[string]any{xField: x, yField: y}
		if cIdx >= 0 {
			row[cfg.ColorField] = r[cIdx]
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.New("no usable numeric data for scatter regression")
	}

	xEnc := map[string]any{"field": xField, "type": "quantitative", "title": xField}
	yEnc := map[string]any{"field": yField, "type": "quantitative", "title": yField}
	colorEnc := map[string]any{"value": "#3B82F6"}
	tooltip := []any{
		map[string]any{"field": xField, "type": "quantitative"},
		map[string]any{"field": yField, "type": "quantitative"},
	}
	if cfg.ColorField != "" {
		colorEnc = map[string]any{"field": cfg.ColorField, "type": "nominal", "title": cfg.ColorField}
		tooltip = append(tooltip, map[string]any{"field": cfg.ColorField, "type": "nominal"})
	}

	points := map[string]any{
		"mark": map[string]any{"type": "circle", "size": 70, "opacity": cfg.Opacity},
		"encoding": map[string]any{
			"x": xEnc, "y": yEnc, "color": colorEnc, "tooltip": tooltip,
		},
	}
	layers := []map[string]any{points}

	if cfg.Regression == nil || *cfg.Regression {
		reg := map[string]any{"regression": yField, "on": xField, "method": cfg.Method}
		if cfg.Order > 0 {
			reg["order"] = cfg.Order
		}
		layers = append(layers, map[string]any{
			"transform": []any{reg},
			"mark":      map[string]any{"type": "line", "color": "#ef4444"},
			"encoding":  map[string]any{"x": xEnc, "y": yEnc},
		})
	}

	return viz.Layer(viz.Values(rows), layers...), nil
}
