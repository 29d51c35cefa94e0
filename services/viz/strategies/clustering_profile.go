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

const (
	clusteringMinRespondents = 20
	clusteringSeed           = 42
	clusteringMaxAutoK       = 6
)

// ClusteringProfile groups respondents by their dimension score profile
// with k-means and renders each cluster's mean profile as a heatmap.
type ClusteringProfile struct{}

type clusteringProfileConfig struct {
	K     int   `mapstructure:"k" validate:"omitempty,gte=2,lte=10"`
	AutoK bool  `mapstructure:"auto_k"`
	ShowN *bool `mapstructure:"show_n"`
}

func (ClusteringProfile) Generate(in *viz.Inputs, config, _ map[string]any) (map[string]any, error) {
	sv, err := requireSurvey(in)
	if err != nil {
		return nil, err
	}
	cfg := clusteringProfileConfig{}
	if err := viz.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	showN := cfg.ShowN == nil || *cfg.ShowN

	scores, err := survey.DimensionScores(sv)
	if err != nil {
		return nil, err
	}

	// Only respondents with a score on every dimension enter the
	// clustering; a missing battery would otherwise bias the distances.
	prefixes := scores.Prefixes
	n := len(scores.ByPrefix[prefixes[0]])
	var points [][]float64
	for i := 0; i < n; i++ {
		row := make([]float64, len(prefixes))
		complete := true
		for j, p := range prefixes {
			v := scores.ByPrefix[p][i]
			if isNaN(v) {
				complete = false
				break
			}
			row[j] = v
		}
		if complete {
			points = append(points, row)
		}
	}
	if len(points) < clusteringMinRespondents {
		return nil, fmt.Errorf("not enough complete respondents for clustering: %d (min %d)", len(points), clusteringMinRespondents)
	}

	k := cfg.K
	if k == 0 {
		if cfg.AutoK {
			// Candidate k is capped by the sample so the elbow search
			// never probes clusters smaller than five respondents.
			maxK := clusteringMaxAutoK
			if limit := len(points) / 5; limit < maxK {
				maxK = limit
			}
			k = stats.ChooseK(stats.Whiten(points), maxK, clusteringSeed)
		} else {
			k = 3
		}
	}
	if k > len(points) {
		return nil, fmt.Errorf("k=%d exceeds number of complete respondents (%d)", k, len(points))
	}

	result, err := stats.KMeans(stats.Whiten(points), k, clusteringSeed)
	if err != nil {
		return nil, err
	}

	// Centroids reported on the original 1-5 scale: per-cluster means of
	// the unwhitened scores.
	counts := make([]int, k)
	sums := make([][]float64, k)
	for c := range sums {
		sums[c] = make([]float64, len(prefixes))
	}
	for i, c := range result.Labels {
		counts[c]++
		for j, v := range points[i] {
			sums[c][j] += v
		}
	}

	var values []map[string]any
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			continue
		}
		label := fmt.Sprintf("Groupe %d", c+1)
		if showN {
			label = fmt.Sprintf("Groupe %d (n=%d)", c+1, counts[c])
		}
		for j, p := range prefixes {
			values = append(values, map[string]any{
				"cluster":   label,
				"dimension": survey.PrefixLabel(p),
				"score":     sums[c][j] / float64(counts[c]),
				"n":         counts[c],
			})
		}
	}

	heat := map[string]any{
		"mark": map[string]any{"type": "rect"},
		"encoding": map[string]any{
			"x": map[string]any{"field": "cluster", "type": "nominal", "title": "Profil"},
			"y": map[string]any{"field": "dimension", "type": "nominal", "title": "Dimension"},
			"color": map[string]any{
				"field": "score", "type": "quantitative", "title": "Score moyen",
				"scale": map[string]any{"scheme": "redyellowgreen", "domain": []int{1, 5}},
			},
			"tooltip": []any{
				map[string]any{"field": "cluster", "type": "nominal", "title": "Profil"},
				map[string]any{"field": "dimension", "type": "nominal", "title": "Dimension"},
				viz.Tooltip("score", "quantitative", "Score moyen", ".2f"),
				viz.Tooltip("n", "quantitative", "Effectif", ""),
			},
		},
	}
	text := map[string]any{
		"mark": map[string]any{"type": "text", "fontSize": 11},
		"encoding": map[string]any{
			"x":    map[string]any{"field": "cluster", "type": "nominal"},
			"y":    map[string]any{"field": "dimension", "type": "nominal"},
			"text": map[string]any{"field": "score", "type": "quantitative", "format": ".1f"},
			"color": map[string]any{
				"condition": map[string]any{"test": "datum.score < 2 || datum.score > 4.2", "value": "white"},
				"value":     "black",
			},
		},
	}

	spec := viz.Layer(viz.Values(values), heat, text)
	spec["title"] = fmt.Sprintf("Profils de répondants (k=%d)", k)
	return spec, nil
}
