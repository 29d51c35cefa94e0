// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrSingularSystem is returned when the design matrix is rank deficient
// (collinear predictors) and the least-squares system cannot be solved.
var ErrSingularSystem = errors.New("singular system: predictors are collinear")

// OLS fits y = b0 + b1*x1 + ... + bp*xp by ordinary least squares.
//
// rows is the n×p predictor matrix (one row per observation); an intercept
// column is added internally. The returned slice holds p+1 coefficients,
// intercept first.
func OLS(rows [][]float64, y []float64) ([]float64, error) {
	n := len(rows)
	if n == 0 || n != len(y) {
		return nil, errors.New("ols: empty or mismatched inputs")
	}
	p := len(rows[0])
	if n < p+1 {
		return nil, errors.New("ols: more predictors than observations")
	}

	design := mat.NewDense(n, p+1, nil)
	for i, row := range rows {
		if len(row) != p {
			return nil, errors.New("ols: ragged predictor matrix")
		}
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}

	var qr mat.QR
	qr.Factorize(design)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(n, y)); err != nil {
		return nil, ErrSingularSystem
	}

	coeffs := make([]float64, p+1)
	for i := range coeffs {
		coeffs[i] = beta.AtVec(i)
	}
	return coeffs, nil
}
