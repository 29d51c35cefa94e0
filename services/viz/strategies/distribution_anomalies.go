// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package strategies

import (
	"errors"

	"github.com/Aatricks/qvt-back/pkg/stats"
	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// DistributionAnomalies flags Likert questions whose response
// distributions are skewed or uniform.
type DistributionAnomalies struct{}

func (DistributionAnomalies) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	long, err := surveyLong(sv, nil)
	if err != nil {
		return nil, err
	}

	byQuestion := newGroupOrder()
	for _, r := range long {
		byQuestion.add([]string{r.question}, r.value)
	}

	var rows []map[string]any
	for _, key := range byQuestion.order {
		vals := byQuestion.vals[key]
		classification := survey.ClassifyDistribution(vals)
		if classification == survey.DistInsufficientData {
			continue
		}
		s := summarize(vals)
		rows = append(rows, map[string]any{
			"question_label": byQuestion.meta[key][0],
			"skewness":       stats.Skewness(vals),
			"mean":           s.mean,
			"std":            s.std,
			"classification": classification,
		})
	}
	if len(rows) == 0 {
		return nil, errors.New("no analyzable distributions found")
	}

	return viz.Spec(map[string]any{
		"data": viz.Values(rows),
		"mark": "bar",
		"encoding": map[string]any{
			"y": map[string]any{"field": "question_label", "type": "nominal", "sort": "-x", "title": "Question"},
			"x": map[string]any{"field": "skewness", "type": "quantitative", "title": "Asymétrie (skew)"},
			"color": map[string]any{
				"field": "classification", "type": "nominal", "title": "Profil",
			},
			"tooltip": []any{
				map[string]any{"field": "question_label", "type": "nominal"},
				viz.Tooltip("skewness", "quantitative", "", ".2f"),
				viz.Tooltip("mean", "quantitative", "", ".2f"),
				viz.Tooltip("std", "quantitative", "", ".2f"),
				map[string]any{"field": "classification", "type": "nominal"},
			},
		},
	}), nil
}
