// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package strategies

import (
	"fmt"

	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// DimensionSummary shows the mean response per QVT dimension, optionally
// segmented by a demographic column.
type DimensionSummary struct{}

type dimensionSummaryConfig struct {
	SegmentField string `mapstructure:"segment_field"`
}

func (DimensionSummary) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	var cfg dimensionSummaryConfig
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	d := survey.AddAgeBand(sv)
	var extra []string
	if cfg.SegmentField != "" {
		if !d.HasColumn(cfg.SegmentField) {
			return nil, fmt.Errorf("segment_field %q not found in dataset", cfg.SegmentField)
		}
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
		row := map[string]any{
			"dimension_label": groups.meta[key][0],
			"mean_score":      s.mean,
			"responses":       s.n,
		}
		if cfg.SegmentField != "" {
			row[cfg.SegmentField] = groups.meta[key][1]
		}
		rows = append(rows, row)
	}

	enc := map[string]any{
		"y": map[string]any{
			"field": "dimension_label", "type": "nominal", "sort": "-x",
			"title": "Dimension QVT",
			"axis":  map[string]any{"labelLimit": 260, "labelPadding": 8},
		},
		"x": map[string]any{
			"field": "mean_score", "type": "quantitative",
			"title": "Score moyen (1-5)",
			"scale": map[string]any{"domain": []float64{0, 5}},
		},
		"tooltip": []any{
			map[string]any{"field": "dimension_label", "type": "nominal"},
			viz.Tooltip("mean_score", "quantitative", "", ".2f"),
			map[string]any{"field": "responses", "type": "quantitative"},
		},
	}
	if cfg.SegmentField != "" {
		enc["color"] = map[string]any{"field": cfg.SegmentField, "type": "nominal", "title": cfg.SegmentField}
		enc["tooltip"] = append(enc["tooltip"].([]any),
			map[string]any{"field": cfg.SegmentField, "type": "nominal"})
	} else {
		enc["color"] = map[string]any{
			"field": "mean_score", "type": "quantitative",
			"scale": map[string]any{"scheme": "blues"}, "legend": nil,
		}
	}

	return viz.Spec(map[string]any{
		"data":     viz.Values(rows),
		"mark":     "bar",
		"encoding": enc,
		"height":   map[string]any{"step": 22},
	}), nil
}
