// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package strategies

import (
	"errors"
	"math"

	"github.com/Aatricks/qvt-back/services/dataset"
	"github.com/Aatricks/qvt-back/services/viz"
)

// TimeSeriesCI draws a metric over time with a normal-approximation
// confidence band, optionally split by a grouping column.
type TimeSeriesCI struct{}

type timeSeriesCIConfig struct {
	MeasureField string  `mapstructure:"measure_field"`
	TimeField    string  `mapstructure:"time_field"`
	GroupField   string  `mapstructure:"group_field"`
	CIZ          float64 `mapstructure:"ci_z" validate:"gte=0"`
	MinCount     int     `mapstructure:"min_count" validate:"gte=0"`
}

func (TimeSeriesCI) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	hr, err := requireHR(in)
	if err != nil {
		return nil, err
	}
	cfg := timeSeriesCIConfig{CIZ: 1.96, MinCount: 2}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	metric := cfg.MeasureField
	if metric == "" || !hr.HasColumn(metric) {
		numeric := hr.NumericColumns()
		if len(numeric) == 0 {
			return nil, errors.New("no numeric metric available for time series ci")
		}
		metric = numeric[0]
	}
	timeField := cfg.TimeField
	if timeField == "" && hr.HasColumn("ID") {
		timeField = "ID"
	}
	if timeField == "" || !hr.HasColumn(timeField) {
		timeField = hr.Columns[0]
	}
	if err := requireColumn(hr, "group_field", cfg.GroupField); err != nil {
		return nil, err
	}

	mIdx := hr.ColumnIndex(metric)
	tIdx := hr.ColumnIndex(timeField)
	gIdx := -1
	if cfg.GroupField != "" {
		gIdx = hr.ColumnIndex(cfg.GroupField)
	}

	groups := newGroupOrder()
	for _, r := range hr.Rows {
		v, ok := dataset.ParseNumber(r[mIdx])
		if !ok || r[tIdx] == "" {
			continue
		}
		key := []string{r[tIdx]}
		if gIdx >= 0 {
			key = append(key, r[gIdx])
		}
		groups.add(key, v)
	}
	if len(groups.order) == 0 {
		return nil, errors.New("no usable rows for time series ci")
	}

	rows := make([]map[string]any, 0, len(groups.order))
	for _, key := range groups.order {
		s := summarize(groups.vals[key])
		row := map[string]any{
			timeField:     groups.meta[key][0],
			"metric_mean": s.mean,
			"n":           s.n,
		}
		if gIdx >= 0 {
			row[cfg.GroupField] = groups.meta[key][1]
		}
		if s.n >= cfg.MinCount && s.n > 1 {
			sem := s.std / math.Sqrt(float64(s.n))
			row["lower_ci"] = s.mean - cfg.CIZ*sem
			row["upper_ci"] = s.mean + cfg.CIZ*sem
		}
		rows = append(rows, row)
	}

	xEnc := map[string]any{"field": timeField, "type": "ordinal", "title": "Période"}
	var colorEnc map[string]any
	if cfg.GroupField != "" {
		colorEnc = map[string]any{"field": cfg.GroupField, "type": "nominal", "title": cfg.GroupField}
	} else {
		colorEnc = map[string]any{"value": "#2563EB"}
	}
	bandColor := colorEnc
	if cfg.GroupField == "" {
		bandColor = map[string]any{"value": "#93C5FD"}
	}

	band := map[string]any{
		"mark": map[string]any{"type": "area", "opacity": 0.2},
		"encoding": map[string]any{
			"x":     xEnc,
			"y":     map[string]any{"field": "lower_ci", "type": "quantitative", "title": ""},
			"y2":    map[string]any{"field": "upper_ci"},
			"color": bandColor,
		},
	}
	line := map[string]any{
		"mark": map[string]any{"type": "line", "point": true},
		"encoding": map[string]any{
			"x":     xEnc,
			"y":     map[string]any{"field": "metric_mean", "type": "quantitative", "title": metricTitle(metric)},
			"color": colorEnc,
			"tooltip": []any{
				map[string]any{"field": timeField, "type": "ordinal"},
				viz.Tooltip("metric_mean", "quantitative", "Moyenne", ".2f"),
				viz.Tooltip("n", "quantitative", "Effectif", ""),
			},
		},
	}
	return viz.Layer(viz.Values(rows), band, line), nil
}
