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

// LikertDistribution renders a 100%-stacked distribution of Likert
// responses per question and per dimension, with dropdown parameters
// embedded in the spec so the client can drill down without a new
// request.
type LikertDistribution struct{}

type likertDistributionConfig struct {
	Focus                string `mapstructure:"focus" validate:"omitempty,oneof=lowest highest"`
	Sort                 string `mapstructure:"sort" validate:"omitempty,oneof=net_agreement mean"`
	SegmentField         string `mapstructure:"segment_field"`
	FacetField           string `mapstructure:"facet_field"`
	InteractiveDimension *bool  `mapstructure:"interactive_dimension"`
}

// distCell is one (label, response value) aggregation cell.
type distCell struct {
	label      string
	dim        string
	segment    string
	facet      string
	isCategory int
	counts     [6]int // index by response value 1..5
}

func (c *distCell) total() int {
	t := 0
	for v := 1; v <= 5; v++ {
		t += c.counts[v]
	}
	return t
}

func (c *distCell) mean() float64 {
	t := c.total()
	if t == 0 {
		return 0
	}
	sum := 0
	for v := 1; v <= 5; v++ {
		sum += v * c.counts[v]
	}
	return float64(sum) / float64(t)
}

func (c *distCell) netAgreement() float64 {
	t := c.total()
	if t == 0 {
		return 0
	}
	return float64((c.counts[4]+c.counts[5])-(c.counts[1]+c.counts[2])) / float64(t)
}

func (LikertDistribution) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := likertDistributionConfig{Focus: "lowest", Sort: "net_agreement"}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	d := survey.RecodeDemographics(sv)
	if err := requireColumn(d, "segment_field", cfg.SegmentField); err != nil {
		return nil, err
	}
	if err := requireColumn(d, "facet_field", cfg.FacetField); err != nil {
		return nil, err
	}

	var extra []string
	if cfg.SegmentField != "" {
		extra = append(extra, cfg.SegmentField)
	}
	if cfg.FacetField != "" {
		extra = append(extra, cfg.FacetField)
	}
	long, err := surveyLong(d, extra)
	if err != nil {
		return nil, err
	}

	cells := make(map[string]*distCell)
	var order []string
	record := func(label, dim, seg, facet string, isCategory, value int) {
		key := fmt.Sprintf("%d\x1f%s\x1f%s\x1f%s", isCategory, label, seg, facet)
		c, ok := cells[key]
		if !ok {
			c = &distCell{label: label, dim: dim, segment: seg, facet: facet, isCategory: isCategory}
			cells[key] = c
			order = append(order, key)
		}
		c.counts[value]++
	}
	usable := false
	for _, r := range long {
		// Fractional responses are truncated into their lower bucket.
		v := int(r.value)
		if v < 1 || v > 5 {
			continue
		}
		usable = true
		seg, facet := r.id[cfg.SegmentField], r.id[cfg.FacetField]
		record(r.question, r.dim, seg, facet, 0, v)
		record(r.dim, r.dim, seg, facet, 1, v)
	}
	if !usable {
		return nil, errors.New("no likert responses in range 1-5 after cleaning")
	}

	dimSet := make(map[string]bool)
	segSet := make(map[string]bool)
	var rows []map[string]any
	for _, key := range order {
		c := cells[key]
		total := c.total()
		sortValue := c.netAgreement()
		if cfg.Sort == "mean" {
			sortValue = c.mean()
		}
		if c.dim != "" {
			dimSet[c.dim] = true
		}
		if cfg.SegmentField != "" && c.segment != "" {
			segSet[c.segment] = true
		}
		for v := 1; v <= 5; v++ {
			if c.counts[v] == 0 {
				continue
			}
			row := map[string]any{
				"display_label":    c.label,
				"dimension_prefix": c.dim,
				"is_category":      c.isCategory,
				"response_value":   v,
				"count":            c.counts[v],
				"share":            float64(c.counts[v]) / float64(total),
				"mean":             c.mean(),
				"net_agreement":    c.netAgreement(),
				"sort_value":       sortValue,
			}
			if cfg.SegmentField != "" {
				row[cfg.SegmentField] = c.segment
			}
			if cfg.FacetField != "" {
				row[cfg.FacetField] = c.facet
			}
			rows = append(rows, row)
		}
	}

	sortOrder := "ascending"
	if cfg.Focus == "highest" {
		sortOrder = "descending"
	}
	enc := map[string]any{
		"y": map[string]any{
			"field": "display_label", "type": "nominal",
			"sort":  map[string]any{"field": "sort_value", "order": sortOrder},
			"title": "Catégorie / Question",
			"axis":  map[string]any{"labelLimit": 350, "labelPadding": 8},
		},
		"x": map[string]any{
			"field": "share", "type": "quantitative", "stack": "normalize",
			"axis": map[string]any{"title": "Répartition des réponses", "format": "%"},
		},
		"color": map[string]any{
			"field": "response_value", "type": "ordinal",
			"title": "Réponse (1–5)", "sort": []int{1, 2, 3, 4, 5},
			"scale": map[string]any{
				"domain": []int{1, 2, 3, 4, 5},
				"range":  []string{"#B91C1C", "#FCA5A5", "#D1D5DB", "#93C5FD", "#1D4ED8"},
			},
		},
		"tooltip": []any{
			viz.Tooltip("display_label", "nominal", "Label", ""),
			viz.Tooltip("dimension_prefix", "nominal", "Dimension", ""),
			viz.Tooltip("response_value", "ordinal", "Réponse", ""),
			viz.Tooltip("count", "quantitative", "N (segment)", ".0f"),
			viz.Tooltip("share", "quantitative", "Part", ".1%"),
			viz.Tooltip("mean", "quantitative", "Moyenne", ".2f"),
			viz.Tooltip("net_agreement", "quantitative", "Net agreement", ".1%"),
		},
	}

	body := map[string]any{
		"data":     viz.Values(rows),
		"mark":     "bar",
		"encoding": enc,
		"title":    "Distribution des réponses (Likert)",
	}
	if cfg.FacetField != "" {
		body = map[string]any{
			"data":   viz.Values(rows),
			"facet":  map[string]any{"column": map[string]any{"field": cfg.FacetField, "type": "nominal", "title": cfg.FacetField}},
			"spec":   map[string]any{"mark": "bar", "encoding": enc},
			"title":  fmt.Sprintf("Distribution Likert par %s", cfg.FacetField),
			"resolve": map[string]any{
				"scale": map[string]any{"y": "independent"},
			},
		}
	}

	var params []any
	var transforms []any
	interactive := cfg.InteractiveDimension == nil || *cfg.InteractiveDimension
	dims := sortedKeys(dimSet)
	if interactive && len(dims) > 0 {
		params = append(params, map[string]any{
			"name":  "dim_select",
			"value": "All",
			"bind": map[string]any{
				"input": "select", "options": append([]string{"All"}, dims...), "name": "Dimension: ",
			},
		})
		transforms = append(transforms, map[string]any{
			"filter": "(dim_select == 'All' && datum.is_category == 1) || " +
				"(dim_select != 'All' && datum.dimension_prefix == dim_select && datum.is_category == 0)",
		})
	} else {
		transforms = append(transforms, map[string]any{"filter": "datum.is_category == 1"})
	}
	if cfg.SegmentField != "" {
		segs := sortedKeys(segSet)
		params = append(params, map[string]any{
			"name":  "segment",
			"value": "All",
			"bind": map[string]any{
				"input": "select", "options": append([]string{"All"}, segs...),
				"name": fmt.Sprintf("%s: ", cfg.SegmentField),
			},
		})
		transforms = append(transforms, map[string]any{
			"filter": fmt.Sprintf("segment == 'All' || datum['%s'] == segment", cfg.SegmentField),
		})
	}
	if len(params) > 0 {
		body["params"] = params
	}
	body["transform"] = transforms

	return viz.Spec(body), nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
