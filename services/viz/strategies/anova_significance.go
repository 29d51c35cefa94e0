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
	"math"
	"sort"

	"github.com/Aatricks/qvt-back/pkg/stats"
	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// AnovaSignificance scans every (dimension, demographic) pair for mean
// differences, keeps the most significant splits by one-way ANOVA p-value
// and charts each as bars with 95% confidence intervals.
type AnovaSignificance struct{}

type anovaSignificanceConfig struct {
	TopN    int `mapstructure:"top_n" validate:"gte=1"`
	Columns int `mapstructure:"columns" validate:"gte=1"`
}

// anovaExcluded are identifier or raw numeric columns that duplicate the
// derived band columns and would produce degenerate splits.
var anovaExcluded = map[string]bool{"ID": true, "Age": true, "Ancienne": true, "Ancienneté": true}

func (AnovaSignificance) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := anovaSignificanceConfig{TopN: 6, Columns: 2}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	d := survey.AddSeniorityBand(survey.AddAgeBand(sv))
	d = survey.RecodeDemographics(d)

	scores, err := survey.DimensionScores(d)
	if err != nil {
		return nil, err
	}

	var demographics []string
	for _, demo := range survey.AvailableDemographics(d) {
		if !anovaExcluded[demo] {
			demographics = append(demographics, demo)
		}
	}

	type combo struct {
		prefix string
		label  string
		demo   string
		result stats.ANOVAResult
	}
	var combos []combo
	for _, prefix := range scores.Prefixes {
		vals := scores.ByPrefix[prefix]
		for _, demo := range demographics {
			idx := d.ColumnIndex(demo)
			groups := newGroupOrder()
			for i, r := range d.Rows {
				if isNaN(vals[i]) || r[idx] == "" {
					continue
				}
				groups.add([]string{r[idx]}, vals[i])
			}
			var series [][]float64
			for _, key := range groups.order {
				if g := groups.vals[key]; len(g) >= 2 {
					series = append(series, g)
				}
			}
			if len(series) < 2 {
				continue
			}
			result, err := stats.OneWayANOVA(series)
			if err != nil {
				continue
			}
			combos = append(combos, combo{
				prefix: prefix,
				label:  survey.PrefixLabel(prefix),
				demo:   demo,
				result: result,
			})
		}
	}
	if len(combos) == 0 {
		return nil, errors.New("no significant dimension differences detected")
	}

	sort.SliceStable(combos, func(i, j int) bool { return combos[i].result.P < combos[j].result.P })
	if len(combos) > cfg.TopN {
		combos = combos[:cfg.TopN]
	}

	var charts []any
	for _, c := range combos {
		vals := scores.ByPrefix[c.prefix]
		idx := d.ColumnIndex(c.demo)
		groups := newGroupOrder()
		for i, r := range d.Rows {
			if isNaN(vals[i]) || r[idx] == "" {
				continue
			}
			groups.add([]string{r[idx]}, vals[i])
		}

		var rows []map[string]any
		for _, key := range groups.order {
			s := summarize(groups.vals[key])
			ci := 0.0
			if s.n > 1 {
				ci = stats.TCritical(0.95, float64(s.n-1)) * s.std / math.Sqrt(float64(s.n))
			}
			rows = append(rows, map[string]any{
				"group_value": groups.meta[key][0],
				"mean":        s.mean,
				"lower":       math.Max(1, s.mean-ci),
				"upper":       math.Min(5, s.mean+ci),
				"n":           s.n,
				"p_value":     c.result.P,
				"eta_sq":      c.result.EtaSquared,
			})
		}

		bars := map[string]any{
			"mark": map[string]any{"type": "bar", "opacity": 0.8},
			"encoding": map[string]any{
				"x": map[string]any{
					"field": "group_value", "type": "nominal", "title": nil,
					"axis": map[string]any{"labelAngle": -45, "labelLimit": 100},
				},
				"y":  map[string]any{"field": "mean", "type": "quantitative", "title": "Moyenne (1-5)", "scale": map[string]any{"domain": []int{1, 5}}},
				"y2": map[string]any{"datum": 1},
				"color": map[string]any{
					"field": "mean", "type": "quantitative", "legend": nil,
					"scale": map[string]any{"domain": []float64{2.5, 3.5}, "range": []string{"#EF4444", "#F59E0B", "#10B981"}},
				},
				"tooltip": []any{
					map[string]any{"field": "group_value", "type": "nominal", "title": "Groupe"},
					viz.Tooltip("mean", "quantitative", "Moyenne", ".2f"),
					viz.Tooltip("lower", "quantitative", "CI Bas", ".2f"),
					viz.Tooltip("upper", "quantitative", "CI Haut", ".2f"),
					viz.Tooltip("n", "quantitative", "N", ""),
					viz.Tooltip("p_value", "quantitative", "ANOVA p", ".3f"),
					viz.Tooltip("eta_sq", "quantitative", "Effet (η²)", ".2f"),
				},
			},
		}
		errorBars := map[string]any{
			"mark": map[string]any{"type": "errorbar"},
			"encoding": map[string]any{
				"x":  map[string]any{"field": "group_value", "type": "nominal"},
				"y":  map[string]any{"field": "lower", "type": "quantitative", "title": ""},
				"y2": map[string]any{"field": "upper"},
			},
		}
		charts = append(charts, map[string]any{
			"title":  fmt.Sprintf("%s (split: %s, p=%.3g)", c.label, c.demo, c.result.P),
			"width":  250,
			"height": 180,
			"data":   map[string]any{"values": rows},
			"layer":  []any{bars, errorBars},
		})
	}

	return viz.Spec(map[string]any{
		"concat":  charts,
		"columns": cfg.Columns,
		"resolve": map[string]any{"scale": map[string]any{"color": "independent"}},
	}), nil
}
