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

	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// DimensionCIBars shows per-dimension mean scores with one standard
// deviation as error bars, optionally grouped and faceted.
type DimensionCIBars struct{}

type dimensionCIBarsConfig struct {
	SegmentField string    `mapstructure:"segment_field"`
	FacetField   string    `mapstructure:"facet_field"`
	MaxSegments  int       `mapstructure:"max_segments" validate:"gte=1"`
	LikertDomain []float64 `mapstructure:"likert_domain" validate:"omitempty,len=2"`
	MinN         int       `mapstructure:"min_n" validate:"gte=0"`
}

func (DimensionCIBars) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := dimensionCIBarsConfig{MaxSegments: 6, LikertDomain: []float64{1, 5}, MinN: 30}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	d := survey.RecodeDemographics(survey.AddAgeBand(sv))
	if err := requireColumn(d, "segment_field", cfg.SegmentField); err != nil {
		return nil, err
	}
	if err := requireColumn(d, "facet_field", cfg.FacetField); err != nil {
		return nil, err
	}

	scores, err := survey.DimensionScores(d)
	if err != nil {
		return nil, err
	}

	segIdx, facetIdx := -1, -1
	if cfg.SegmentField != "" {
		segIdx = d.ColumnIndex(cfg.SegmentField)
	}
	if cfg.FacetField != "" {
		facetIdx = d.ColumnIndex(cfg.FacetField)
	}

	// Keep only the most frequent segment/facet values.
	keepValues := func(idx int) map[string]bool {
		if idx < 0 {
			return nil
		}
		counts := make(map[string]int)
		for _, row := range d.Rows {
			if row[idx] != "" {
				counts[row[idx]]++
			}
		}
		type vc struct {
			v string
			n int
		}
		ranked := make([]vc, 0, len(counts))
		for v, n := range counts {
			ranked = append(ranked, vc{v, n})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].n != ranked[j].n {
				return ranked[i].n > ranked[j].n
			}
			return ranked[i].v < ranked[j].v
		})
		keep := make(map[string]bool, cfg.MaxSegments)
		for i, r := range ranked {
			if i >= cfg.MaxSegments {
				break
			}
			keep[r.v] = true
		}
		return keep
	}
	segKeep := keepValues(segIdx)
	facetKeep := keepValues(facetIdx)

	groups := newGroupOrder()
	overall := newGroupOrder()
	for _, prefix := range scores.Prefixes {
		label := survey.PrefixLabel(prefix)
		vals := scores.ByPrefix[prefix]
		for i, v := range vals {
			if isNaN(v) {
				continue
			}
			overall.add([]string{label}, v)
			key := []string{label}
			if segIdx >= 0 {
				seg := d.Rows[i][segIdx]
				if !segKeep[seg] {
					continue
				}
				key = append(key, seg)
			}
			if facetIdx >= 0 {
				facet := d.Rows[i][facetIdx]
				if !facetKeep[facet] {
					continue
				}
				key = append(key, facet)
			}
			groups.add(key, v)
		}
	}
	if len(groups.order) == 0 {
		return nil, errors.New("no usable data after segment limiting")
	}

	lo, hi := cfg.LikertDomain[0], cfg.LikertDomain[1]
	clamp := func(v float64) float64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}

	rows := make([]map[string]any, 0, len(groups.order))
	for _, key := range groups.order {
		s := summarize(groups.vals[key])
		meta := groups.meta[key]
		overallMean := summarize(overall.vals[joinKey(meta[:1])]).mean
		row := map[string]any{
			"dimension_label": meta[0],
			"mean_score":      s.mean,
			"std_score":       s.std,
			"n":               s.n,
			"lower":           clamp(s.mean - s.std),
			"upper":           clamp(s.mean + s.std),
			"low_n":           s.n < cfg.MinN,
			"overall_mean":    overallMean,
		}
		pos := 1
		if segIdx >= 0 {
			row[cfg.SegmentField] = meta[pos]
			pos++
		}
		if facetIdx >= 0 {
			row[cfg.FacetField] = meta[pos]
		}
		rows = append(rows, row)
	}

	xEnc := map[string]any{
		"field": "mean_score", "type": "quantitative",
		"title": "Score moyen (1-5)",
		"scale": map[string]any{"domain": cfg.LikertDomain},
	}
	yEnc := map[string]any{
		"field": "dimension_label", "type": "nominal",
		"title": "Dimension QVCT",
		"sort":  map[string]any{"field": "overall_mean", "order": "descending"},
		"axis":  map[string]any{"labelLimit": 260, "labelPadding": 8},
	}
	tooltip := []any{
		viz.Tooltip("dimension_label", "nominal", "Dimension", ""),
		viz.Tooltip("mean_score", "quantitative", "Moyenne", ".2f"),
		viz.Tooltip("std_score", "quantitative", "Écart-type", ".2f"),
		viz.Tooltip("lower", "quantitative", "Moyenne - 1 SD", ".2f"),
		viz.Tooltip("upper", "quantitative", "Moyenne + 1 SD", ".2f"),
		viz.Tooltip("n", "quantitative", "Répondants", ""),
	}
	if cfg.SegmentField != "" {
		tooltip = append(tooltip, viz.Tooltip(cfg.SegmentField, "nominal", cfg.SegmentField, ""))
	}
	if cfg.FacetField != "" {
		tooltip = append(tooltip, viz.Tooltip(cfg.FacetField, "nominal", cfg.FacetField, ""))
	}

	var bars, errorBars map[string]any
	if cfg.SegmentField != "" {
		bars = map[string]any{
			"mark": "bar",
			"encoding": map[string]any{
				"y":       yEnc,
				"yOffset": map[string]any{"field": cfg.SegmentField, "type": "nominal"},
				"x":       xEnc,
				"color":   map[string]any{"field": cfg.SegmentField, "type": "nominal", "title": cfg.SegmentField},
				"tooltip": tooltip,
			},
		}
		errorBars = map[string]any{
			"mark": "errorbar",
			"encoding": map[string]any{
				"y":       yEnc,
				"yOffset": map[string]any{"field": cfg.SegmentField, "type": "nominal"},
				"x": map[string]any{
					"field": "lower", "type": "quantitative",
					"scale": map[string]any{"domain": cfg.LikertDomain},
				},
				"x2":    map[string]any{"field": "upper"},
				"color": map[string]any{"value": "black"},
			},
		}
	} else {
		bars = map[string]any{
			"mark": "bar",
			"encoding": map[string]any{
				"y": yEnc,
				"x": xEnc,
				"color": map[string]any{
					"field": "mean_score", "type": "quantitative",
					"scale": map[string]any{"scheme": "blues"}, "legend": nil,
				},
				"tooltip": tooltip,
			},
		}
		errorBars = map[string]any{
			"mark": "errorbar",
			"encoding": map[string]any{
				"y": yEnc,
				"x": map[string]any{
					"field": "lower", "type": "quantitative",
					"scale": map[string]any{"domain": cfg.LikertDomain},
				},
				"x2": map[string]any{"field": "upper"},
			},
		}
	}

	if cfg.FacetField != "" {
		return viz.Spec(map[string]any{
			"data": viz.Values(rows),
			"facet": map[string]any{
				"column": map[string]any{"field": cfg.FacetField, "type": "nominal", "title": cfg.FacetField},
			},
			"spec":  map[string]any{"layer": []map[string]any{bars, errorBars}},
			"title": fmt.Sprintf("Scores par dimension (moyenne et écart-type) par %s", cfg.FacetField),
		}), nil
	}
	body := viz.Layer(viz.Values(rows), bars, errorBars)
	body["title"] = "Scores par dimension (moyenne et écart-type)"
	return body, nil
}
