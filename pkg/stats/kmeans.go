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
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// KMeansResult holds cluster assignments and the cluster centers in the
// same feature space as the input points.
type KMeansResult struct {
	Centroids [][]float64
	Labels    []int

	// Distortion is the mean Euclidean distance from each point to its
	// assigned centroid, the quantity minimized by Lloyd iterations.
	Distortion float64
}

const kmeansMaxIterations = 100

// Whiten rescales each feature to unit standard deviation, the usual
// pre-step before k-means so that no dimension dominates the distance.
// Features with zero variance are passed through unscaled.
func Whiten(points [][]float64) [][]float64 {
	if len(points) == 0 {
		return nil
	}
	dims := len(points[0])
	col := make([]float64, len(points))
	scale := make([]float64, dims)
	for j := 0; j < dims; j++ {
		for i := range points {
			col[i] = points[i][j]
		}
		sd := popStdDev(col)
		if sd > 0 {
			scale[j] = 1 / sd
		} else {
			scale[j] = 1
		}
	}

	out := make([][]float64, len(points))
	for i, p := range points {
		row := make([]float64, dims)
		for j, v := range p {
			row[j] = v * scale[j]
		}
		out[i] = row
	}
	return out
}

// KMeans clusters points into k groups with Lloyd's algorithm, seeding
// the initial centroids from the data points. The seed makes runs
// reproducible for a given input.
func KMeans(points [][]float64, k int, seed int64) (KMeansResult, error) {
	n := len(points)
	if k < 1 {
		return KMeansResult{}, errors.New("kmeans: k must be at least 1")
	}
	if n < k {
		return KMeansResult{}, errors.New("kmeans: fewer points than clusters")
	}
	dims := len(points[0])

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float64(nil), points[perm[i]]...)
	}

	labels := make([]int, n)
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}

		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, p := range points {
			counts[labels[i]]++
			floats.Add(sums[labels[i]], p)
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Re-seed an emptied cluster from a random point.
				centroids[c] = append([]float64(nil), points[rng.Intn(n)]...)
				changed = true
				continue
			}
			for j := 0; j < dims; j++ {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}

		if !changed && iter > 0 {
			break
		}
	}

	total := 0.0
	for i, p := range points {
		total += euclidean(p, centroids[labels[i]])
	}

	return KMeansResult{
		Centroids: centroids,
		Labels:    labels,
		Distortion: total / float64(n),
	}, nil
}

// ChooseK picks a cluster count in [1, maxK] with a simple elbow
// heuristic: k grows while the relative distortion reduction from k-1 to k
// stays above 20%.
func ChooseK(points [][]float64, maxK int, seed int64) int {
	if maxK < 2 {
		return 1
	}
	prev, err := KMeans(points, 1, seed)
	if err != nil {
		return 1
	}
	chosen := 1
	for k := 2; k <= maxK; k++ {
		res, err := KMeans(points, k, seed)
		if err != nil {
			break
		}
		if prev.Distortion <= 0 {
			break
		}
		improvement := (prev.Distortion - res.Distortion) / prev.Distortion
		if improvement < 0.2 {
			break
		}
		chosen = k
		prev = res
	}
	return chosen
}

func nearestCentroid(p []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, ctr := range centroids {
		if d := euclidean(p, ctr); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func popStdDev(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	m := Mean(x)
	sum := 0.0
	for _, v := range x {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(x)))
}
