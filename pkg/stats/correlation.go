// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Correlation methods accepted by Correlate.
const (
	MethodPearson  = "pearson"
	MethodSpearman = "spearman"
)

// Pearson returns the Pearson correlation coefficient of two equal-length
// series. Returns NaN when either series has zero variance or fewer than
// two points.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// Spearman returns the Spearman rank correlation of two equal-length
// series: the Pearson correlation of the tie-averaged ranks.
func Spearman(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	return Pearson(Ranks(x), Ranks(y))
}

// Correlate dispatches on method ("pearson" or "spearman").
func Correlate(method string, x, y []float64) (float64, error) {
	switch method {
	case MethodPearson:
		return Pearson(x, y), nil
	case MethodSpearman:
		return Spearman(x, y), nil
	default:
		return math.NaN(), fmt.Errorf("unknown correlation method %q", method)
	}
}
