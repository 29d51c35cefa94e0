// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrTooFewGroups is returned by OneWayANOVA when fewer than two usable
// groups are supplied.
var ErrTooFewGroups = errors.New("anova requires at least two groups")

// ANOVAResult holds the outcome of a one-way analysis of variance.
type ANOVAResult struct {
	F float64
	P float64

	// EtaSquared is the effect size: between-group sum of squares over
	// total sum of squares. Zero when total variance is zero.
	EtaSquared float64
}

// OneWayANOVA runs a one-way ANOVA across the given groups of observations.
//
// Groups with fewer than two members must be excluded by the caller; they
// are rejected here to keep the degrees of freedom well defined.
func OneWayANOVA(groups [][]float64) (ANOVAResult, error) {
	if len(groups) < 2 {
		return ANOVAResult{}, ErrTooFewGroups
	}

	n := 0
	grandSum := 0.0
	for _, g := range groups {
		if len(g) < 2 {
			return ANOVAResult{}, ErrTooFewGroups
		}
		n += len(g)
		for _, v := range g {
			grandSum += v
		}
	}
	grandMean := grandSum / float64(n)

	ssBetween := 0.0
	ssTotal := 0.0
	for _, g := range groups {
		gm := Mean(g)
		ssBetween += float64(len(g)) * (gm - grandMean) * (gm - grandMean)
		for _, v := range g {
			ssTotal += (v - grandMean) * (v - grandMean)
		}
	}
	ssWithin := ssTotal - ssBetween

	k := float64(len(groups))
	dfBetween := k - 1
	dfWithin := float64(n) - k

	if dfWithin <= 0 || ssWithin <= 0 {
		return ANOVAResult{}, errors.New("anova has no within-group variance")
	}

	f := (ssBetween / dfBetween) / (ssWithin / dfWithin)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ANOVAResult{}, errors.New("anova F statistic is undefined")
	}

	dist := distuv.F{D1: dfBetween, D2: dfWithin}
	p := 1 - dist.CDF(f)

	eta := 0.0
	if ssTotal > 0 {
		eta = ssBetween / ssTotal
	}

	return ANOVAResult{F: f, P: p, EtaSquared: eta}, nil
}
