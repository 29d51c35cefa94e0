// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package viz defines the chart strategy contract and the registry that
// maps chart keys to strategy implementations. Concrete strategies live
// in the strategies subpackage; each one turns the two input tables into
// a Vega-Lite specification.
package viz

import (
	"github.com/Aatricks/qvt-back/services/dataset"
)

// Inputs carries the two request tables. Survey may alias HR when a
// single Likert-bearing file was uploaded, or be nil for HR-only charts.
type Inputs struct {
	HR     *dataset.Dataset
	Survey *dataset.Dataset
}

// Strategy produces a chart specification from the inputs. Row filters
// are applied by the caller before dispatch, so the filters argument is
// normally empty; it is part of the contract for strategies that embed
// client-side filter widgets. Any returned error means the inputs
// cannot support this chart and is reported to the client as a payload
// problem.
type Strategy interface {
	Generate(in *Inputs, config, filters map[string]any) (map[string]any, error)
}
