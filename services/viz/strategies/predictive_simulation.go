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

	"github.com/Aatricks/qvt-back/pkg/stats"
	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

const regressionMinRespondents = 10

// PredictiveSimulation fits a linear model of the target outcome on the
// non-outcome dimension scores and charts the coefficients, showing
// which dimensions move the outcome and in which direction.
type PredictiveSimulation struct{}

type predictiveSimulationConfig struct {
	Target string `mapstructure:"target" validate:"omitempty,oneof=ENG EPUI"`
}

func (PredictiveSimulation) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := predictiveSimulationConfig{}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	scores, err := survey.DimensionScores(sv)
	if err != nil {
		return nil, err
	}

	target := cfg.Target
	if target == "" {
		target = "ENG"
		if _, found := scores.ByPrefix[target]; !found {
			target = "EPUI"
		}
	}
	targetScores, found := scores.ByPrefix[target]
	if !found {
		return nil, fmt.Errorf("target dimension %s not present in survey", target)
	}

	var features []string
	for _, p := range scores.Prefixes {
		if !knownOutcomes[p] {
			features = append(features, p)
		}
	}
	if len(features) == 0 {
		return nil, errors.New("no predictor dimensions available")
	}

	var rows [][]float64
	var y []float64
	for i := range targetScores {
		if isNaN(targetScores[i]) {
			continue
		}
		row := make([]float64, len(features))
		complete := true
		for j, p := range features {
			v := scores.ByPrefix[p][i]
			if isNaN(v) {
				complete = false
				break
			}
			row[j] = v
		}
		if complete {
			rows = append(rows, row)
			y = append(y, targetScores[i])
		}
	}
	if len(rows) < regressionMinRespondents {
		return nil, fmt.Errorf("not enough complete respondents to fit the model: %d (min %d)", len(rows), regressionMinRespondents)
	}

	coeffs, err := stats.OLS(rows, y)
	if err != nil {
		if errors.Is(err, stats.ErrSingularSystem) {
			return nil, errors.New("dimension scores are collinear, the model cannot be estimated")
		}
		return nil, err
	}

	values := make([]map[string]any, len(features))
	for j, p := range features {
		coef := coeffs[j+1]
		direction := "Positif"
		if coef < 0 {
			direction = "Négatif"
		}
		values[j] = map[string]any{
			"dimension":   survey.PrefixLabel(p),
			"coefficient": coef,
			"direction":   direction,
		}
	}

	return viz.Spec(map[string]any{
		"title": fmt.Sprintf("Effet estimé des dimensions sur %s (n=%d)", target, len(rows)),
		"data":  map[string]any{"values": values},
		"mark":  map[string]any{"type": "bar"},
		"encoding": map[string]any{
			"y": map[string]any{
				"field": "dimension", "type": "nominal", "title": "Dimension",
				"sort": map[string]any{"field": "coefficient", "order": "descending"},
			},
			"x": map[string]any{"field": "coefficient", "type": "quantitative", "title": "Coefficient"},
			"color": map[string]any{
				"field": "direction", "type": "nominal", "title": "Effet",
				"scale": map[string]any{"domain": []string{"Positif", "Négatif"}, "range": []string{"#16A34A", "#DC2626"}},
			},
			"tooltip": []any{
				map[string]any{"field": "dimension", "type": "nominal", "title": "Dimension"},
				viz.Tooltip("coefficient", "quantitative", "Coefficient", ".3f"),
				map[string]any{"field": "direction", "type": "nominal", "title": "Effet"},
			},
		},
	}), nil
}
