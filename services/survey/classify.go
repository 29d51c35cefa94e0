// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import (
	"github.com/Aatricks/qvt-back/pkg/stats"
)

// Distribution shapes reported by ClassifyDistribution.
const (
	DistInsufficientData = "insufficient_data"
	DistUniform          = "uniform"
	DistSkewRight        = "skew_right"
	DistSkewLeft         = "skew_left"
	DistBalanced         = "balanced"
)

// ClassifyDistribution applies a shape heuristic to a numeric series:
// uniform when the relative value frequencies stay within a 0.1 spread,
// skewed when the sample skewness exceeds ±0.5, balanced otherwise.
func ClassifyDistribution(values []float64) string {
	clean := stats.DropNaN(values)
	if len(clean) == 0 {
		return DistInsufficientData
	}
	counts := make(map[float64]int)
	for _, v := range clean {
		counts[v]++
	}
	minFreq, maxFreq := 1.0, 0.0
	total := float64(len(clean))
	for _, n := range counts {
		f := float64(n) / total
		if f < minFreq {
			minFreq = f
		}
		if f > maxFreq {
			maxFreq = f
		}
	}
	if maxFreq-minFreq < 0.1 {
		return DistUniform
	}
	skew := stats.Skewness(clean)
	switch {
	case skew > 0.5:
		return DistSkewRight
	case skew < -0.5:
		return DistSkewLeft
	default:
		return DistBalanced
	}
}
