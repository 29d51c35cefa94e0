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
	"sort"

	"github.com/Aatricks/qvt-back/pkg/stats"
	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// LikertItemHeatmap shows each Likert item's mean score or favorable
// share per demographic group.
type LikertItemHeatmap struct{}

type likertItemHeatmapConfig struct {
	GroupField         string    `mapstructure:"group_field"`
	Stat               string    `mapstructure:"stat" validate:"omitempty,oneof=mean percent_favorable"`
	FavorableThreshold float64   `mapstructure:"favorable_threshold" validate:"gte=1,lte=5"`
	LikertDomain       []float64 `mapstructure:"likert_domain" validate:"omitempty,len=2"`
	TopN               int       `mapstructure:"top_n" validate:"gte=0"`
}

func (LikertItemHeatmap) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := likertItemHeatmapConfig{Stat: "mean", FavorableThreshold: 4, LikertDomain: []float64{1, 5}}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	d := survey.AddAgeBand(sv)
	long, err := surveyLong(d, nil)
	if err != nil {
		return nil, err
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

	// Optionally keep only the most discriminating items.
	if cfg.TopN > 0 {
		byQuestion := newGroupOrder()
		for _, r := range long {
			byQuestion.add([]string{r.question}, r.value)
		}
		type qv struct {
			question string
			variance float64
		}
		ranked := make([]qv, 0, len(byQuestion.order))
		for _, key := range byQuestion.order {
			vals := byQuestion.vals[key]
			v := 0.0
			if len(vals) > 1 {
				sd := stats.StdDev(vals)
				v = sd * sd
			}
			ranked = append(ranked, qv{question: byQuestion.meta[key][0], variance: v})
		}
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].variance > ranked[j].variance })
		keep := make(map[string]bool, cfg.TopN)
		for i, r := range ranked {
			if i >= cfg.TopN {
				break
			}
			keep[r.question] = true
		}
		filtered := long[:0]
		for _, r := range long {
			if keep[r.question] {
				filtered = append(filtered, r)
			}
		}
		long = filtered
	}

	groups := newGroupOrder()
	for _, r := range long {
		groups.add([]string{r.id[groupField], r.question, r.dim}, r.value)
	}

	scoreTitle := "Score moyen (1-5)"
	format := ".2f"
	colorScale := map[string]any{"domain": cfg.LikertDomain, "scheme": "blues"}
	if cfg.Stat == "percent_favorable" {
		scoreTitle = fmt.Sprintf("%% favorable (≥%g)", cfg.FavorableThreshold)
		format = ".0%"
		colorScale = map[string]any{"domain": []float64{0, 1}, "scheme": "blues"}
	}

	rows := make([]map[string]any, 0, len(groups.order))
	for _, key := range groups.order {
		vals := groups.vals[key]
		meta := groups.meta[key]
		var score float64
		if cfg.Stat == "percent_favorable" {
			fav := 0
			for _, v := range vals {
				if v >= cfg.FavorableThreshold {
					fav++
				}
			}
			score = float64(fav) / float64(len(vals))
		} else {
			score = summarize(vals).mean
		}
		rows = append(rows, map[string]any{
			groupField:        meta[0],
			"question_label":  meta[1],
			"dimension_label": meta[2],
			"score":           score,
			"responses":       len(vals),
		})
	}
	if len(rows) == 0 {
		return nil, errors.New("no aggregated data available for item heatmap")
	}

	return viz.Spec(map[string]any{
		"data": viz.Values(rows),
		"mark": "rect",
		"encoding": map[string]any{
			"x": map[string]any{"field": groupField, "type": "nominal", "title": groupField},
			"y": map[string]any{"field": "question_label", "type": "nominal", "sort": "x", "title": "Item"},
			"color": map[string]any{
				"field": "score", "type": "quantitative",
				"title": scoreTitle, "scale": colorScale,
			},
			"tooltip": []any{
				map[string]any{"field": "question_label", "type": "nominal"},
				map[string]any{"field": groupField, "type": "nominal"},
				viz.Tooltip("score", "quantitative", scoreTitle, format),
				map[string]any{"field": "responses", "type": "quantitative"},
				map[string]any{"field": "dimension_label", "type": "nominal"},
			},
		},
	}), nil
}
