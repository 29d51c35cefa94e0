// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package strategies

import (
	"fmt"
	"strings"

	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// DemographicDistribution shows the univariate distribution of one
// socio-demographic column: a histogram for numeric columns, horizontal
// bars for categorical ones.
type DemographicDistribution struct{}

type demographicDistributionConfig struct {
	Field     string `mapstructure:"field"`
	BinSize   int    `mapstructure:"bin_size" validate:"gte=0"`
	MaxBins   int    `mapstructure:"max_bins" validate:"gte=0"`
	Normalize bool   `mapstructure:"normalize"`
	Sort      string `mapstructure:"sort" validate:"omitempty,oneof=alpha count"`
}

func (DemographicDistribution) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	hr, err := requireHR(in)
	if err != nil {
		return nil, err
	}
	cfg := demographicDistributionConfig{MaxBins: 10}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	d := survey.AddAgeBand(hr)
	field := cfg.Field
	if field == "" {
		if d.HasColumn("Age") {
			field = "Age"
		} else if field, err = firstDemographic(d); err != nil {
			return nil, err
		}
	}
	if !d.HasColumn(field) {
		return nil, fmt.Errorf("column %q not found in dataset", field)
	}

	numeric := d.IsNumericColumn(field) || strings.EqualFold(field, "age")
	if numeric {
		vals, ok := d.NumericColumn(field)
		rows := make([]map[string]any, 0, len(vals))
		for i, v := range vals {
			if ok[i] {
				rows = append(rows, map[string]any{field: v})
			}
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("no usable numeric values for %q", field)
		}
		var bin map[string]any
		if cfg.BinSize > 0 {
			bin = map[string]any{"step": cfg.BinSize}
		} else {
			bin = map[string]any{"maxbins": cfg.MaxBins}
		}
		enc := map[string]any{
			"x": map[string]any{"field": field, "type": "quantitative", "bin": bin, "title": field},
			"y": map[string]any{"aggregate": "count", "title": "Effectif"},
			"tooltip": []any{
				map[string]any{"field": field, "type": "quantitative", "bin": bin},
				map[string]any{"aggregate": "count", "title": "Effectif"},
			},
		}
		body := map[string]any{"data": viz.Values(rows), "mark": "bar", "encoding": enc}
		if cfg.Normalize {
			body["transform"] = []any{
				map[string]any{"joinaggregate": []any{map[string]any{"op": "count", "as": "total"}}},
				map[string]any{"calculate": "datum.count / datum.total", "as": "pct"},
			}
			enc["y"] = map[string]any{
				"field": "pct", "type": "quantitative",
				"title": "Pourcentage", "axis": map[string]any{"format": "%"},
			}
		}
		return viz.Spec(body), nil
	}

	col := d.Column(field)
	rows := make([]map[string]any, 0, len(col))
	for _, v := range col {
		if v != "" {
			rows = append(rows, map[string]any{field: v})
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no usable categorical values for %q", field)
	}

	var sortSpec any
	switch cfg.Sort {
	case "alpha":
		sortSpec = "ascending"
	case "count":
		sortSpec = "-x"
	}
	enc := map[string]any{
		"y": map[string]any{"field": field, "type": "nominal", "title": field},
		"x": map[string]any{"aggregate": "count", "title": "Effectif"},
		"tooltip": []any{
			map[string]any{"field": field, "type": "nominal"},
			map[string]any{"aggregate": "count", "title": "Effectif"},
		},
	}
	if sortSpec != nil {
		enc["y"].(map[string]any)["sort"] = sortSpec
	}
	body := map[string]any{"data": viz.Values(rows), "mark": "bar", "encoding": enc}
	if cfg.Normalize {
		body["transform"] = []any{
			map[string]any{"joinaggregate": []any{map[string]any{"op": "count", "as": "total"}}},
			map[string]any{"calculate": "datum.count / datum.total", "as": "pct"},
		}
		enc["x"] = map[string]any{
			"field": "pct", "type": "quantitative",
			"title": "Pourcentage", "axis": map[string]any{"format": "%"},
		}
	}
	return viz.Spec(body), nil
}
