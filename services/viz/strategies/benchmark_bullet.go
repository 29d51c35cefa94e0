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
	"log/slog"
	"strings"

	"github.com/Aatricks/qvt-back/services/dataset"
	"github.com/Aatricks/qvt-back/services/viz"
)

// BenchmarkBullet compares an organization score to a benchmark and an
// optional target, one bullet per group.
type BenchmarkBullet struct{}

type benchmarkBulletConfig struct {
	MetricField    string    `mapstructure:"metric_field"`
	BenchmarkField string    `mapstructure:"benchmark_field"`
	TargetField    string    `mapstructure:"target_field"`
	GroupField     string    `mapstructure:"group_field"`
	Normalize      bool      `mapstructure:"normalize"`
	ScaleDomain    []float64 `mapstructure:"scale_domain" validate:"omitempty,len=2"`
	MaxGroups      int       `mapstructure:"max_groups" validate:"gte=1"`
}

func (BenchmarkBullet) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	hr, err := requireHR(in)
	if err != nil {
		return nil, err
	}
	cfg := benchmarkBulletConfig{MaxGroups: 50}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	numeric := hr.NumericColumns()
	metric := cfg.MetricField
	if metric == "" || !hr.HasColumn(metric) {
		metric = pickByToken(numeric, []string{"absentee", "absence", "rate", "score", "metric"})
		if metric == "" && len(numeric) > 0 {
			metric = numeric[0]
		}
		if metric == "" {
			return nil, errors.New("metric_field is required and must exist in the dataset")
		}
	}

	benchmark := cfg.BenchmarkField
	if benchmark != "" && !hr.HasColumn(benchmark) {
		return nil, fmt.Errorf("column %q not found in dataset", benchmark)
	}
	if benchmark == "" {
		var others []string
		for _, c := range numeric {
			if c != metric {
				others = append(others, c)
			}
		}
		benchmark = pickByToken(others, []string{"turnover", "benchmark", "target", "rate"})
		if benchmark == "" && len(others) > 0 {
			benchmark = others[0]
		}
	}
	if cfg.TargetField != "" && !hr.HasColumn(cfg.TargetField) {
		return nil, fmt.Errorf("column %q not found in dataset", cfg.TargetField)
	}
	if err := requireColumn(hr, "group_field", cfg.GroupField); err != nil {
		return nil, err
	}
	slog.Debug("benchmark bullet selected fields",
		"metric_field", metric, "benchmark_field", benchmark, "target_field", cfg.TargetField)

	fields := []string{metric}
	if benchmark != "" {
		fields = append(fields, benchmark)
	}
	if cfg.TargetField != "" {
		fields = append(fields, cfg.TargetField)
	}

	groupName := cfg.GroupField
	gIdx := -1
	if groupName != "" {
		gIdx = hr.ColumnIndex(groupName)
	} else {
		groupName = "group"
	}

	// Mean of each field per group.
	perField := make(map[string]*groupOrder, len(fields))
	for _, f := range fields {
		perField[f] = newGroupOrder()
	}
	for _, r := range hr.Rows {
		group := "Organisation"
		if gIdx >= 0 {
			group = r[gIdx]
		}
		for _, f := range fields {
			if v, ok := dataset.ParseNumber(r[hr.ColumnIndex(f)]); ok {
				perField[f].add([]string{group}, v)
			}
		}
	}
	metricGroups := perField[metric]
	if len(metricGroups.order) == 0 {
		return nil, errors.New("no aggregated data available for bullet chart")
	}

	rows := make([]map[string]any, 0, len(metricGroups.order))
	for i, key := range metricGroups.order {
		if i >= cfg.MaxGroups {
			break
		}
		row := map[string]any{groupName: metricGroups.meta[key][0]}
		for _, f := range fields {
			vals := perField[f].vals[key]
			if len(vals) == 0 {
				continue
			}
			name := f
			if f == metric {
				name = "metric"
			}
			v := summarize(vals).mean
			if cfg.Normalize {
				v /= 100.0
			}
			row[name] = v
		}
		rows = append(rows, row)
	}

	xScale := map[string]any{}
	if len(cfg.ScaleDomain) == 2 {
		xScale["domain"] = cfg.ScaleDomain
	}
	title := "Score"
	if cfg.Normalize {
		title = "Score (%)"
	}
	yEnc := map[string]any{"field": groupName, "type": "nominal", "sort": "-x", "title": groupName}

	bars := map[string]any{
		"mark": map[string]any{"type": "bar", "height": 20, "color": "#3B82F6"},
		"encoding": map[string]any{
			"x": map[string]any{"field": "metric", "type": "quantitative", "title": title, "scale": xScale},
			"y": yEnc,
			"tooltip": []any{
				map[string]any{"field": groupName, "type": "nominal"},
				viz.Tooltip("metric", "quantitative", "Score", ".2f"),
			},
		},
	}
	layers := []map[string]any{bars}
	if benchmark != "" {
		layers = append(layers, map[string]any{
			"mark": map[string]any{"type": "rule", "color": "#10B981", "strokeWidth": 2},
			"encoding": map[string]any{
				"x": map[string]any{"field": benchmark, "type": "quantitative", "scale": xScale},
				"y": yEnc,
				"tooltip": []any{
					map[string]any{"field": groupName, "type": "nominal"},
					viz.Tooltip(benchmark, "quantitative", "Benchmark", ".2f"),
				},
			},
		})
	}
	if cfg.TargetField != "" {
		layers = append(layers, map[string]any{
			"mark": map[string]any{"type": "rule", "color": "#F59E0B", "strokeDash": []int{4, 4}, "strokeWidth": 2},
			"encoding": map[string]any{
				"x": map[string]any{"field": cfg.TargetField, "type": "quantitative", "scale": xScale},
				"y": yEnc,
				"tooltip": []any{
					map[string]any{"field": groupName, "type": "nominal"},
					viz.Tooltip(cfg.TargetField, "quantitative", "Cible", ".2f"),
				},
			},
		})
	}
	return viz.Layer(viz.Values(rows), layers...), nil
}

func pickByToken(candidates []string, tokens []string) string {
	for _, token := range tokens {
		for _, c := range candidates {
			if strings.Contains(strings.ToLower(c), token) {
				return c
			}
		}
	}
	return ""
}
