// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package strategies

import (
	"errors"
	"strings"

	"github.com/Aatricks/qvt-back/services/dataset"
	"github.com/Aatricks/qvt-back/services/viz"
)

// TimeSeries draws an HR indicator as a line over a time-like column.
type TimeSeries struct{}

type timeSeriesConfig struct {
	MeasureField string `mapstructure:"measure_field"`
	TimeField    string `mapstructure:"time_field"`
}

// Columns tried, in order, when no time_field is configured.
var preferredTimeColumns = []string{
	"year", "annee", "année", "date", "period", "periode", "période",
	"month", "mois", "id",
}

func (TimeSeries) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	hr, err := requireHR(in)
	if err != nil {
		return nil, err
	}
	var cfg timeSeriesConfig
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	metric := cfg.MeasureField
	if metric == "" || !hr.HasColumn(metric) {
		numeric := hr.NumericColumns()
		if len(numeric) == 0 {
			return nil, errors.New("no numeric metric available for time series")
		}
		metric = numeric[0]
	}

	timeField := cfg.TimeField
	if timeField == "" {
		lower := make(map[string]string, hr.NumCols())
		for _, c := range hr.Columns {
			lower[strings.ToLower(strings.TrimSpace(c))] = c
		}
		for _, cand := range preferredTimeColumns {
			if orig, ok := lower[cand]; ok {
				timeField = orig
				break
			}
		}
	}
	if timeField == "" || !hr.HasColumn(timeField) {
		timeField = hr.Columns[0]
	}

	tIdx := hr.ColumnIndex(timeField)
	mIdx := hr.ColumnIndex(metric)
	rows := make([]map[string]any, 0, hr.NumRows())
	for _, r := range hr.Rows {
		v, ok := dataset.ParseNumber(r[mIdx])
		if !ok {
			continue
		}
		rows = append(rows, map[string]any{timeField: r[tIdx], metric: v})
	}
	if len(rows) == 0 {
		return nil, errors.New("no usable rows for time series")
	}

	return viz.Spec(map[string]any{
		"data": viz.Values(rows),
		"mark": map[string]any{"type": "line", "point": true},
		"encoding": map[string]any{
			"x": map[string]any{"field": timeField, "type": "ordinal", "title": "Période"},
			"y": map[string]any{"field": metric, "type": "quantitative", "title": metricTitle(metric)},
			"tooltip": []any{
				map[string]any{"field": timeField, "type": "ordinal"},
				map[string]any{"field": metric, "type": "quantitative"},
			},
		},
	}), nil
}

func metricTitle(metric string) string {
	words := strings.Split(strings.ReplaceAll(metric, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
