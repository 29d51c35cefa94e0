// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pipeline runs one chart request through the fixed sequence of
// load, augment, validate, filter-rewrite, cache and strategy dispatch
// steps, translating every failure into a coded domain error.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Aatricks/qvt-back/services/dataset"
	"github.com/Aatricks/qvt-back/services/survey"
	"github.com/Aatricks/qvt-back/services/viz"
)

// hrRequiredColumns and surveyRequiredColumns are the mandatory column
// sets per dataset role, matched case-insensitively after trimming.
var (
	hrRequiredColumns     = []string{"ID", "Age"}
	surveyRequiredColumns = []string{"ID"}
)

// surveyOptionalKeys are the chart keys that operate on the HR table
// alone. Every other key needs survey-shaped (Likert) data and fails the
// gate when none resolved.
var surveyOptionalKeys = map[string]bool{
	"time_series":              true,
	"time_series_ci":           true,
	"correlation_matrix":       true,
	"benchmark_bullet":         true,
	"demographic_distribution": true,
}

// Request carries one parsed chart request. Filters keeps the caller's
// key order; SurveyContent may be nil for single-file uploads.
type Request struct {
	ChartKey       string
	HRContent      []byte
	HRFilename     string
	SurveyContent  []byte
	SurveyFilename string
	Filters        []Filter
	Config         map[string]any
}

// Pipeline wires the registry, the result cache and the dataset limits
// into the per-request orchestration.
type Pipeline struct {
	registry *viz.Registry
	cache    *Cache
	limits   dataset.Limits
	logger   *slog.Logger
	observer Observer
}

// Observer receives pipeline outcome events, typically backed by the
// Prometheus counters.
type Observer interface {
	ObserveChart(chartKey string)
	ObserveCacheHit()
}

func New(registry *viz.Registry, cache *Cache, limits dataset.Limits, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{registry: registry, cache: cache, limits: limits, logger: logger}
}

// WithObserver attaches an outcome observer. Call before serving.
func (p *Pipeline) WithObserver(o Observer) *Pipeline {
	p.observer = o
	return p
}

// SupportedKeys returns the sorted registered chart keys.
func (p *Pipeline) SupportedKeys() []string {
	return p.registry.Keys()
}

// Generate runs the request through the pipeline. A failed request
// returns a *DomainError; any other error value is a programming fault.
func (p *Pipeline) Generate(ctx context.Context, req Request) (Envelope, error) {
	strategy, ok := p.registry.Get(req.ChartKey)
	if !ok {
		return Envelope{}, newDomainError(CodeInvalidChartKey, "Unsupported chart key: "+req.ChartKey)
	}

	hr, derr := p.loadRole(req.HRContent, req.HRFilename, "hr")
	if derr != nil {
		return Envelope{}, derr
	}
	hr = augment(hr)
	if missing := dataset.MissingColumns(hr, hrRequiredColumns); len(missing) > 0 {
		return Envelope{}, newDomainError(CodeMissingRequiredColumns, "Missing required HR columns", missing...)
	}

	var sv *dataset.Dataset
	if len(req.SurveyContent) > 0 {
		sv, derr = p.loadRole(req.SurveyContent, req.SurveyFilename, "survey")
		if derr != nil {
			return Envelope{}, derr
		}
		sv = augment(sv)
		if missing := dataset.MissingColumns(sv, surveyRequiredColumns); len(missing) > 0 {
			return Envelope{}, newDomainError(CodeMissingRequiredColumns, "Missing required survey columns", missing...)
		}
	} else if hasSurveyShape(hr) {
		// Single-file mode: the HR table doubles as the survey table,
		// same object, not a copy.
		sv = hr
	}

	if sv == nil && !surveyOptionalKeys[req.ChartKey] {
		return Envelope{}, newDomainError(CodeMissingRequiredColumns,
			"Survey data required for chart key "+req.ChartKey,
			"upload a survey_file or include Likert item columns in the HR file")
	}

	concrete, config := RewriteFilters(req.Filters, req.Config)

	key, err := fingerprint(req.ChartKey, hr, sv, config, concrete)
	if err == nil {
		if env, hit := p.cache.Get(key); hit {
			p.logger.DebugContext(ctx, "visualize cache hit", "chart_key", req.ChartKey)
			if p.observer != nil {
				p.observer.ObserveCacheHit()
			}
			return env, nil
		}
	} else {
		p.logger.WarnContext(ctx, "cache fingerprint failed", "error", err)
	}

	if sv != nil {
		if issues := likertIssues(sv); len(issues) > 0 {
			return Envelope{}, newDomainError(CodeInvalidValueRange,
				"Likert responses must be between 1 and 5", issues...)
		}
	}

	hr, sv = applyConcreteFilters(hr, sv, concrete)

	spec, genErr := strategy.Generate(&viz.Inputs{HR: hr, Survey: sv}, config, map[string]any{})
	if genErr != nil {
		var de *DomainError
		if errors.As(genErr, &de) {
			return Envelope{}, de
		}
		return Envelope{}, newDomainError(CodePayloadError, "Chart generation failed", genErr.Error())
	}

	env := Envelope{ChartKey: req.ChartKey, GeneratedAt: utcTimestamp(), Spec: spec}
	if err == nil {
		p.cache.Put(key, env)
	}
	if p.observer != nil {
		p.observer.ObserveChart(req.ChartKey)
	}
	p.logger.InfoContext(ctx, "chart generated", "chart_key", req.ChartKey)
	return env, nil
}

func (p *Pipeline) loadRole(content []byte, filename, role string) (*dataset.Dataset, *DomainError) {
	d, err := dataset.Load(content, filename, p.limits)
	if err != nil {
		var dim *dataset.DimensionLimitError
		if errors.As(err, &dim) {
			return nil, newDomainError(CodeDatasetTooLarge, "Dataset too large", err.Error())
		}
		return nil, newDomainError(CodePayloadError, "Could not read "+role+" file", err.Error())
	}
	return d, nil
}

func augment(d *dataset.Dataset) *dataset.Dataset {
	return survey.AddSeniorityBand(survey.AddAgeBand(d))
}

// hasSurveyShape reports whether a table carries Likert item columns or
// the melted long-format column pair.
func hasSurveyShape(d *dataset.Dataset) bool {
	if len(survey.DetectLikertColumns(d)) > 0 {
		return true
	}
	return d.HasColumn("question_label") && d.HasColumn("response_value")
}

func likertIssues(d *dataset.Dataset) []string {
	cols := survey.DetectLikertColumns(d)
	if len(cols) == 0 && d.HasColumn("response_value") {
		cols = []string{"response_value"}
	}
	return dataset.CheckLikertRange(d, cols)
}

// applyConcreteFilters keeps only rows whose trimmed string value equals
// the trimmed filter value, per filter key that names a real column. An
// aliased survey table is filtered once and stays aliased.
func applyConcreteFilters(hr, sv *dataset.Dataset, filters []Filter) (*dataset.Dataset, *dataset.Dataset) {
	aliased := sv == hr
	hr = filterTable(hr, filters)
	if aliased {
		return hr, hr
	}
	if sv != nil {
		sv = filterTable(sv, filters)
	}
	return hr, sv
}

func filterTable(d *dataset.Dataset, filters []Filter) *dataset.Dataset {
	for _, f := range filters {
		if !d.HasColumn(f.Key) {
			continue
		}
		idx := d.ColumnIndex(f.Key)
		want := filterValueString(f.Value)
		d = d.Filter(func(row []string) bool {
			return strings.TrimSpace(row[idx]) == want
		})
	}
	return d
}
