// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aatricks/qvt-back/services/dataset"
	"github.com/Aatricks/qvt-back/services/viz"
)

type recordingStrategy struct {
	lastInputs  *viz.Inputs
	lastConfig  map[string]any
	lastFilters map[string]any
	spec        map[string]any
	err         error
	calls       int
}

func (s *recordingStrategy) Generate(in *viz.Inputs, config, filters map[string]any) (map[string]any, error) {
	s.calls++
	s.lastInputs = in
	s.lastConfig = config
	s.lastFilters = filters
	if s.err != nil {
		return nil, s.err
	}
	if s.spec != nil {
		return s.spec, nil
	}
	return map[string]any{"mark": "bar"}, nil
}

func newTestPipeline(t *testing.T, strategies map[string]viz.Strategy) *Pipeline {
	t.Helper()
	reg := viz.NewRegistry()
	for key, s := range strategies {
		reg.Register(key, s)
	}
	return New(reg, NewCache(8), dataset.Limits{MaxRows: 1000, MaxCols: 50}, nil)
}

const hrCSV = "ID,Age,Sexe\n1,34,1\n2,45,2\n3,29,1\n"
const singleFileCSV = "ID,Age,Sexe,PGC2\n1,34,1,4\n2,45,2,2\n3,29,1,5\n"

func TestGenerateUnknownChartKey(t *testing.T) {
	p := newTestPipeline(t, nil)
	_, err := p.Generate(context.Background(), Request{ChartKey: "nope", HRContent: []byte(hrCSV), HRFilename: "hr.csv"})

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeInvalidChartKey, de.Code)
}

func TestGenerateMissingRequiredHRColumn(t *testing.T) {
	s := &recordingStrategy{}
	p := newTestPipeline(t, map[string]viz.Strategy{"time_series": s})

	_, err := p.Generate(context.Background(), Request{
		ChartKey:   "time_series",
		HRContent:  []byte("ID,Sexe\n1,1\n"),
		HRFilename: "hr.csv",
	})

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeMissingRequiredColumns, de.Code)
	assert.Contains(t, de.Details, "Age")
	assert.Zero(t, s.calls)
}

func TestGenerateDatasetTooLarge(t *testing.T) {
	reg := viz.NewRegistry()
	reg.Register("time_series", &recordingStrategy{})
	p := New(reg, NewCache(8), dataset.Limits{MaxRows: 1, MaxCols: 50}, nil)

	_, err := p.Generate(context.Background(), Request{
		ChartKey: "time_series", HRContent: []byte(hrCSV), HRFilename: "hr.csv",
	})

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeDatasetTooLarge, de.Code)
}

func TestGenerateSingleFileFallbackAliasesSurvey(t *testing.T) {
	s := &recordingStrategy{}
	p := newTestPipeline(t, map[string]viz.Strategy{"likert_distribution": s})

	env, err := p.Generate(context.Background(), Request{
		ChartKey: "likert_distribution", HRContent: []byte(singleFileCSV), HRFilename: "data.csv",
	})
	require.NoError(t, err)

	assert.Equal(t, "likert_distribution", env.ChartKey)
	assert.Same(t, s.lastInputs.HR, s.lastInputs.Survey, "single-file mode aliases, not copies")
}

func TestGenerateSurveyGate(t *testing.T) {
	s := &recordingStrategy{}
	p := newTestPipeline(t, map[string]viz.Strategy{"likert_distribution": s})

	// No survey file and no Likert columns in the HR table.
	_, err := p.Generate(context.Background(), Request{
		ChartKey: "likert_distribution", HRContent: []byte(hrCSV), HRFilename: "hr.csv",
	})

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeMissingRequiredColumns, de.Code)
	assert.Zero(t, s.calls)
}

func TestGenerateSurveyOptionalKeyWithoutSurvey(t *testing.T) {
	s := &recordingStrategy{}
	p := newTestPipeline(t, map[string]viz.Strategy{"time_series": s})

	_, err := p.Generate(context.Background(), Request{
		ChartKey: "time_series", HRContent: []byte(hrCSV), HRFilename: "hr.csv",
	})
	require.NoError(t, err)
	assert.Nil(t, s.lastInputs.Survey)
}

func TestGenerateLikertRangeViolation(t *testing.T) {
	s := &recordingStrategy{}
	p := newTestPipeline(t, map[string]viz.Strategy{"likert_distribution": s})

	_, err := p.Generate(context.Background(), Request{
		ChartKey:   "likert_distribution",
		HRContent:  []byte("ID,Age,PGC2\n1,34,7\n2,45,2\n"),
		HRFilename: "data.csv",
	})

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeInvalidValueRange, de.Code)
	require.NotEmpty(t, de.Details)
	assert.Contains(t, de.Details[0], "PGC2")
}

func TestGenerateToleratesNonNumericLikertCells(t *testing.T) {
	s := &recordingStrategy{}
	p := newTestPipeline(t, map[string]viz.Strategy{"likert_distribution": s})

	_, err := p.Generate(context.Background(), Request{
		ChartKey:   "likert_distribution",
		HRContent:  []byte("ID,Age,PGC2\n1,34,4\n2,45,NA\n3,29,3\n"),
		HRFilename: "data.csv",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.calls)
}

func TestGenerateAppliesConcreteFiltersBeforeDispatch(t *testing.T) {
	s := &recordingStrategy{}
	p := newTestPipeline(t, map[string]viz.Strategy{"likert_distribution": s})

	filters, err := ParseFilters([]byte(`{"Sexe": "1"}`))
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{
		ChartKey: "likert_distribution", HRContent: []byte(singleFileCSV), HRFilename: "data.csv",
		Filters: filters,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, s.lastInputs.HR.NumRows(), "rows filtered to Sexe == 1")
	assert.Empty(t, s.lastFilters, "strategies receive an empty filter map")
}

func TestGenerateRewritesComparisonFilters(t *testing.T) {
	s := &recordingStrategy{}
	p := newTestPipeline(t, map[string]viz.Strategy{"likert_distribution": s})

	filters, err := ParseFilters([]byte(`{"Sexe": "", "Secteur": null}`))
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{
		ChartKey: "likert_distribution", HRContent: []byte(singleFileCSV), HRFilename: "data.csv",
		Filters: filters,
	})
	require.NoError(t, err)

	assert.Equal(t, "Sexe", s.lastConfig["segment_field"])
	assert.Equal(t, "Secteur", s.lastConfig["facet_field"])
	assert.Equal(t, 3, s.lastInputs.HR.NumRows(), "comparison candidates do not constrain rows")
}

func TestGenerateStrategyFailureBecomesPayloadError(t *testing.T) {
	s := &recordingStrategy{err: errors.New("not enough respondents")}
	p := newTestPipeline(t, map[string]viz.Strategy{"likert_distribution": s})

	_, err := p.Generate(context.Background(), Request{
		ChartKey: "likert_distribution", HRContent: []byte(singleFileCSV), HRFilename: "data.csv",
	})

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodePayloadError, de.Code)
	assert.Contains(t, de.Details, "not enough respondents")
}

func TestGenerateCacheHitReusesSpec(t *testing.T) {
	s := &recordingStrategy{spec: map[string]any{"mark": "line", "width": 400}}
	p := newTestPipeline(t, map[string]viz.Strategy{"likert_distribution": s})

	req := Request{ChartKey: "likert_distribution", HRContent: []byte(singleFileCSV), HRFilename: "data.csv"}

	first, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, s.calls, "second request must be served from cache")
	assert.Equal(t, first.Spec, second.Spec)
}

func TestGenerateCacheMissOnDifferentConfig(t *testing.T) {
	s := &recordingStrategy{}
	p := newTestPipeline(t, map[string]viz.Strategy{"likert_distribution": s})

	base := Request{ChartKey: "likert_distribution", HRContent: []byte(singleFileCSV), HRFilename: "data.csv"}
	_, err := p.Generate(context.Background(), base)
	require.NoError(t, err)

	other := base
	other.Config = map[string]any{"sort": "mean"}
	_, err = p.Generate(context.Background(), other)
	require.NoError(t, err)

	assert.Equal(t, 2, s.calls)
}

func TestCacheWholeClearAtCapacity(t *testing.T) {
	c := NewCache(2)
	c.Put(1, Envelope{ChartKey: "a"})
	c.Put(2, Envelope{ChartKey: "b"})
	require.Equal(t, 2, c.Len())

	c.Put(3, Envelope{ChartKey: "c"})
	assert.Equal(t, 1, c.Len(), "insert at capacity clears the whole cache first")

	_, ok := c.Get(1)
	assert.False(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
}

func TestCacheGetRestampsTimestamp(t *testing.T) {
	c := NewCache(4)
	c.Put(7, Envelope{ChartKey: "a", GeneratedAt: "2020-01-01T00:00:00.000000Z", Spec: map[string]any{"mark": "bar"}})

	env, ok := c.Get(7)
	require.True(t, ok)
	assert.NotEqual(t, "2020-01-01T00:00:00.000000Z", env.GeneratedAt)
	assert.Equal(t, map[string]any{"mark": "bar"}, env.Spec)
}

func TestFingerprintSensitivity(t *testing.T) {
	a := dataset.New("hr", []string{"ID", "Age"}, [][]string{{"1", "30"}})
	b := dataset.New("hr", []string{"ID", "Age"}, [][]string{{"2", "55"}})
	c := dataset.New("hr", []string{"ID", "Age", "Sexe"}, [][]string{{"1", "30", "1"}})

	ka, err := fingerprint("k", a, nil, nil, nil)
	require.NoError(t, err)
	kb, err := fingerprint("k", b, nil, nil, nil)
	require.NoError(t, err)
	kc, err := fingerprint("k", c, nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, ka, kb, "identity proxy ignores cell content")
	assert.NotEqual(t, ka, kc, "column changes alter the fingerprint")
}
