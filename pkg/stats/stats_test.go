// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanAndStdDev(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 3.0, Mean(x), 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), StdDev(x), 1e-12)

	assert.True(t, math.IsNaN(Mean(nil)))
	assert.True(t, math.IsNaN(StdDev([]float64{1})))
}

func TestMedian(t *testing.T) {
	assert.InDelta(t, 3.0, Median([]float64{5, 1, 3, 2, 4}), 1e-12)
	assert.True(t, math.IsNaN(Median(nil)))
}

func TestRanksAveragesTies(t *testing.T) {
	ranks := Ranks([]float64{10, 20, 20, 30})
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, ranks)
}

func TestPearsonPerfectCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	assert.InDelta(t, 1.0, Pearson(x, y), 1e-12)

	yNeg := []float64{8, 6, 4, 2}
	assert.InDelta(t, -1.0, Pearson(x, yNeg), 1e-12)
}

func TestSpearmanMonotone(t *testing.T) {
	// Monotone but non-linear: Spearman is exactly 1, Pearson is not.
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 8, 27, 64, 125}
	assert.InDelta(t, 1.0, Spearman(x, y), 1e-12)
	assert.Less(t, Pearson(x, y), 1.0)
}

func TestCorrelateUnknownMethod(t *testing.T) {
	_, err := Correlate("kendall", []float64{1, 2}, []float64{1, 2})
	assert.Error(t, err)
}

func TestOneWayANOVA(t *testing.T) {
	t.Run("clearly separated groups are significant", func(t *testing.T) {
		groups := [][]float64{
			{1.0, 1.1, 0.9, 1.2},
			{4.0, 4.1, 3.9, 4.2},
			{2.5, 2.6, 2.4, 2.5},
		}
		res, err := OneWayANOVA(groups)
		require.NoError(t, err)
		assert.Greater(t, res.F, 1.0)
		assert.Less(t, res.P, 0.01)
		assert.Greater(t, res.EtaSquared, 0.5)
		assert.LessOrEqual(t, res.EtaSquared, 1.0)
	})

	t.Run("fewer than two groups is an error", func(t *testing.T) {
		_, err := OneWayANOVA([][]float64{{1, 2, 3}})
		assert.ErrorIs(t, err, ErrTooFewGroups)
	})

	t.Run("undersized group is an error", func(t *testing.T) {
		_, err := OneWayANOVA([][]float64{{1, 2}, {3}})
		assert.ErrorIs(t, err, ErrTooFewGroups)
	})
}

func TestOLSRecoversCoefficients(t *testing.T) {
	// y = 2 + 3*x1 - x2, exactly.
	rows := [][]float64{
		{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 1}, {2, 3},
	}
	y := make([]float64, len(rows))
	for i, r := range rows {
		y[i] = 2 + 3*r[0] - r[1]
	}

	coeffs, err := OLS(rows, y)
	require.NoError(t, err)
	require.Len(t, coeffs, 3)
	assert.InDelta(t, 2.0, coeffs[0], 1e-9)
	assert.InDelta(t, 3.0, coeffs[1], 1e-9)
	assert.InDelta(t, -1.0, coeffs[2], 1e-9)
}

func TestOLSSingular(t *testing.T) {
	// Second predictor is an exact copy of the first.
	rows := [][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}}
	y := []float64{1, 2, 3, 4}
	_, err := OLS(rows, y)
	assert.ErrorIs(t, err, ErrSingularSystem)
}

func TestKMeansSeparatesObviousClusters(t *testing.T) {
	points := [][]float64{
		{0, 0}, {0.1, 0.2}, {0.2, 0.1}, {0.1, 0},
		{5, 5}, {5.1, 5.2}, {5.2, 5.1}, {5, 5.1},
	}
	res, err := KMeans(points, 2, 1)
	require.NoError(t, err)
	require.Len(t, res.Labels, len(points))

	// All points in the first half share a label, all in the second half
	// share the other.
	first := res.Labels[0]
	for _, l := range res.Labels[:4] {
		assert.Equal(t, first, l)
	}
	for _, l := range res.Labels[4:] {
		assert.NotEqual(t, first, l)
	}
	assert.Less(t, res.Distortion, 1.0)
}

func TestKMeansErrors(t *testing.T) {
	_, err := KMeans([][]float64{{1}}, 2, 1)
	assert.Error(t, err)
	_, err = KMeans([][]float64{{1}}, 0, 1)
	assert.Error(t, err)
}

func TestChooseKPrefersObviousStructure(t *testing.T) {
	var points [][]float64
	for i := 0; i < 20; i++ {
		points = append(points, []float64{0 + float64(i%3)*0.01, 0})
		points = append(points, []float64{10 + float64(i%3)*0.01, 10})
	}
	k := ChooseK(points, 5, 1)
	assert.GreaterOrEqual(t, k, 2)
}

func TestWhiten(t *testing.T) {
	points := [][]float64{{1, 100}, {2, 200}, {3, 300}}
	white := Whiten(points)
	require.Len(t, white, 3)

	// Both columns end up with unit population standard deviation.
	for j := 0; j < 2; j++ {
		col := []float64{white[0][j], white[1][j], white[2][j]}
		assert.InDelta(t, 1.0, popStdDev(col), 1e-9)
	}
}
