// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package strategies

import (
	"fmt"

	"github.com/Aatricks/qvt-back/pkg/stats"
	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// ImportancePerformanceMatrix places each dimension on an importance
// (leverage on the outcome) versus performance (mean score) plane, cut
// into four action quadrants at the per-segment medians.
type ImportancePerformanceMatrix struct{}

type importancePerformanceConfig struct {
	Outcome      string `mapstructure:"outcome" validate:"omitempty,oneof=EPUI ENG"`
	Method       string `mapstructure:"method" validate:"omitempty,oneof=pearson spearman"`
	MinN         int    `mapstructure:"min_n" validate:"gte=2"`
	SegmentField string `mapstructure:"segment_field"`
}

var ipmQuadrantColors = map[string]string{
	"À prioriser": "#DC2626",
	"À maintenir": "#16A34A",
	"Sur-investi": "#F59E0B",
	"Secondaire":  "#9CA3AF",
}

func (ImportancePerformanceMatrix) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := importancePerformanceConfig{Outcome: "EPUI", Method: stats.MethodSpearman, MinN: 5}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	d := survey.RecodeDemographics(sv)
	rows, err := computeLeverage(d, cfg.Outcome, cfg.Method, cfg.SegmentField, cfg.MinN)
	if err != nil {
		return nil, err
	}

	// Medians are computed within each segment so quadrant membership is
	// relative to that segment's own distribution.
	type cuts struct{ perf, imp float64 }
	segCuts := map[string]cuts{}
	var segOrder []string
	perSeg := map[string][]leverageRow{}
	for _, r := range rows {
		if _, seen := perSeg[r.segment]; !seen {
			segOrder = append(segOrder, r.segment)
		}
		perSeg[r.segment] = append(perSeg[r.segment], r)
	}
	for seg, segRows := range perSeg {
		perf := make([]float64, len(segRows))
		imp := make([]float64, len(segRows))
		for i, r := range segRows {
			perf[i] = r.mean
			imp[i] = r.leverage
		}
		segCuts[seg] = cuts{perf: stats.Median(perf), imp: stats.Median(imp)}
	}

	values := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		c := segCuts[r.segment]
		quadrant := ""
		switch {
		case r.mean < c.perf && r.leverage >= c.imp:
			quadrant = "À prioriser"
		case r.mean >= c.perf && r.leverage >= c.imp:
			quadrant = "À maintenir"
		case r.mean >= c.perf:
			quadrant = "Sur-investi"
		default:
			quadrant = "Secondaire"
		}
		values = append(values, map[string]any{
			"prefix":      r.prefix,
			"dimension":   r.label,
			"performance": r.mean,
			"importance":  r.leverage,
			"priority":    r.priority,
			"n":           r.n,
			"segment":     r.segment,
			"quadrant":    quadrant,
		})
	}

	firstCuts := segCuts[segOrder[0]]
	quadrantLabels := []map[string]any{
		{"label": "À prioriser", "x": 1 + (firstCuts.perf-1)/2, "y": firstCuts.imp + (1-firstCuts.imp)/2},
		{"label": "À maintenir", "x": firstCuts.perf + (5-firstCuts.perf)/2, "y": firstCuts.imp + (1-firstCuts.imp)/2},
		{"label": "Sur-investi", "x": firstCuts.perf + (5-firstCuts.perf)/2, "y": firstCuts.imp / 2},
		{"label": "Secondaire", "x": 1 + (firstCuts.perf-1)/2, "y": firstCuts.imp / 2},
	}

	domain := make([]string, 0, len(ipmQuadrantColors))
	colors := make([]string, 0, len(ipmQuadrantColors))
	for _, q := range []string{"À prioriser", "À maintenir", "Sur-investi", "Secondaire"} {
		domain = append(domain, q)
		colors = append(colors, ipmQuadrantColors[q])
	}

	points := map[string]any{
		"mark": map[string]any{"type": "circle", "size": 220, "opacity": 0.85},
		"encoding": map[string]any{
			"x": map[string]any{"field": "performance", "type": "quantitative", "title": "Performance (score moyen)", "scale": map[string]any{"domain": []int{1, 5}}},
			"y": map[string]any{"field": "importance", "type": "quantitative", "title": fmt.Sprintf("Importance (levier sur %s)", cfg.Outcome), "scale": map[string]any{"domain": []int{0, 1}}},
			"color": map[string]any{
				"field": "quadrant", "type": "nominal", "title": "Quadrant",
				"scale": map[string]any{"domain": domain, "range": colors},
			},
			"tooltip": []any{
				map[string]any{"field": "dimension", "type": "nominal", "title": "Dimension"},
				viz.Tooltip("performance", "quantitative", "Performance", ".2f"),
				viz.Tooltip("importance", "quantitative", "Importance", ".2f"),
				viz.Tooltip("priority", "quantitative", "Priorité", ".3f"),
				viz.Tooltip("n", "quantitative", "Effectif", ""),
				map[string]any{"field": "quadrant", "type": "nominal", "title": "Quadrant"},
				map[string]any{"field": "segment", "type": "nominal", "title": "Segment"},
			},
		},
	}
	pointLabels := map[string]any{
		"mark": map[string]any{"type": "text", "dy": -14, "fontSize": 10, "color": "#374151"},
		"encoding": map[string]any{
			"x":    map[string]any{"field": "performance", "type": "quantitative"},
			"y":    map[string]any{"field": "importance", "type": "quantitative"},
			"text": map[string]any{"field": "prefix", "type": "nominal"},
		},
	}
	vRule := map[string]any{
		"mark":     map[string]any{"type": "rule", "color": "#9ca3af", "strokeDash": []int{4, 4}},
		"encoding": map[string]any{"x": map[string]any{"datum": firstCuts.perf}},
	}
	hRule := map[string]any{
		"mark":     map[string]any{"type": "rule", "color": "#9ca3af", "strokeDash": []int{4, 4}},
		"encoding": map[string]any{"y": map[string]any{"datum": firstCuts.imp}},
	}
	corners := map[string]any{
		"data": map[string]any{"values": quadrantLabels},
		"mark": map[string]any{"type": "text", "fontSize": 12, "fontWeight": "bold", "opacity": 0.45, "color": "#6B7280"},
		"encoding": map[string]any{
			"x":    map[string]any{"field": "x", "type": "quantitative"},
			"y":    map[string]any{"field": "y", "type": "quantitative"},
			"text": map[string]any{"field": "label", "type": "nominal"},
		},
	}

	spec := viz.Layer(viz.Values(values), points, pointLabels, vRule, hRule, corners)
	spec["title"] = fmt.Sprintf("Matrice importance / performance (%s)", cfg.Outcome)

	if len(segOrder) > 1 {
		spec["params"] = []any{map[string]any{
			"name":  "segment_select",
			"value": segOrder[0],
			"bind": map[string]any{
				"input": "select", "options": segOrder, "name": "Segment: ",
			},
		}}
		spec["transform"] = []any{map[string]any{"filter": "datum.segment == segment_select || !isValid(datum.segment)"}}
	}
	return spec, nil
}
