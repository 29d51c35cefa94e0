// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package survey

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aatricks/qvt-back/services/dataset"
)

func surveyFixture() *dataset.Dataset {
	return dataset.New("survey",
		[]string{"ID", "Sexe", "Age", "ANCIENNE", "POV1", "POV2", "EPUI1", "PPD1"},
		[][]string{
			{"1", "1", "25", "0.5", "4", "5", "2", "3"},
			{"2", "2", "42", "7", "3", "3", "4", "1"},
			{"3", "2", "61", "25", "", "", "1", "5"},
		})
}

func TestNormalizeColumnName(t *testing.T) {
	assert.Equal(t, "Ancienneté", NormalizeColumnName(" ANCIENNE "))
	assert.Equal(t, "Ancienneté", NormalizeColumnName("ancienne"))
	assert.Equal(t, "Sexe", NormalizeColumnName("Sexe"))
}

func TestDimensionPrefixOrder(t *testing.T) {
	// PPD must win over PD, PI must not shadow POV.
	assert.Equal(t, "PPD", DimensionPrefix("PPD3"))
	assert.Equal(t, "PD", DimensionPrefix("PD1"))
	assert.Equal(t, "POV", DimensionPrefix("pov2"))
	assert.Equal(t, "", DimensionPrefix("Sexe"))
}

func TestDimensionLabel(t *testing.T) {
	assert.Equal(t, "Pratiques de participation à la prise de décision", DimensionLabel("PPD1"))
	assert.Equal(t, "Epuisement émotionnel", DimensionLabel("EPUI3"))
	assert.Equal(t, "XYZ", DimensionLabel("XYZ12"))
}

func TestFriendlyQuestionLabel(t *testing.T) {
	assert.Equal(t, "POV1 (Pratiques organisationnelles vertueuses)", FriendlyQuestionLabel("POV1"))
	assert.Equal(t, "Sexe", FriendlyQuestionLabel("Sexe"))
}

func TestDetectLikertColumns(t *testing.T) {
	got := DetectLikertColumns(surveyFixture())
	assert.Equal(t, []string{"POV1", "POV2", "EPUI1", "PPD1"}, got)
}

func TestAvailableDemographics(t *testing.T) {
	d := surveyFixture()
	assert.Equal(t, []string{"ID", "Sexe", "Age", "ANCIENNE"}, AvailableDemographics(d))

	banded := AddAgeBand(d)
	got := AvailableDemographics(banded)
	assert.Contains(t, got, "AgeClasse")
}

func TestRecodeDemographics(t *testing.T) {
	d := surveyFixture()
	recoded := RecodeDemographics(d)
	assert.Equal(t, "Homme", recoded.Rows[0][1])
	assert.Equal(t, "Femme", recoded.Rows[1][1])
	assert.Equal(t, "Ancienneté", recoded.Columns[3])
	// untouched original
	assert.Equal(t, "1", d.Rows[0][1])
	// Likert values pass through
	assert.Equal(t, "4", recoded.Rows[0][4])
}

func TestRecodeUnmappedPassThrough(t *testing.T) {
	d := dataset.New("s", []string{"Sexe"}, [][]string{{"9"}, {"Femme"}})
	recoded := RecodeDemographics(d)
	assert.Equal(t, "9", recoded.Rows[0][0])
	assert.Equal(t, "Femme", recoded.Rows[1][0])
}

func TestAddAgeBand(t *testing.T) {
	d := AddAgeBand(surveyFixture())
	col := d.Column("AgeClasse")
	require.Len(t, col, 3)
	assert.Equal(t, "Moins de 30 ans", col[0])
	assert.Equal(t, "40-49 ans", col[1])
	assert.Equal(t, "60 ans et plus", col[2])
}

func TestAddAgeBandMissingColumn(t *testing.T) {
	d := dataset.New("s", []string{"ID"}, [][]string{{"1"}})
	assert.Same(t, d, AddAgeBand(d))
}

func TestAddSeniorityBand(t *testing.T) {
	d := AddSeniorityBand(surveyFixture())
	col := d.Column("AnciennetéClasse")
	require.Len(t, col, 3)
	assert.Equal(t, "Moins d'un an", col[0])
	assert.Equal(t, "6-10 ans", col[1])
	assert.Equal(t, "Plus de 20 ans", col[2])
}

func TestToLikertLong(t *testing.T) {
	d := surveyFixture()
	long := ToLikertLong(d, nil, nil)
	assert.Equal(t, []string{
		"ID", "Sexe", "Age", "ANCIENNE",
		"question_label", "response_value", "dimension_prefix",
	}, long.Columns)
	// 4 likert columns x 3 respondents
	require.Equal(t, 12, long.NumRows())
	assert.Equal(t, "POV1 (Pratiques organisationnelles vertueuses)", long.Rows[0][4])
	assert.Equal(t, "4", long.Rows[0][5])
	assert.Equal(t, "Pratiques organisationnelles vertueuses", long.Rows[0][6])
}

func TestDimensionScores(t *testing.T) {
	s, err := DimensionScores(surveyFixture())
	require.NoError(t, err)
	assert.Equal(t, []string{"POV", "PPD", "EPUI"}, s.Prefixes)
	assert.InDelta(t, 4.5, s.ByPrefix["POV"][0], 1e-9)
	assert.InDelta(t, 3.0, s.ByPrefix["POV"][1], 1e-9)
	assert.True(t, math.IsNaN(s.ByPrefix["POV"][2]))

	mean, ok := s.Mean("POV")
	require.True(t, ok)
	assert.InDelta(t, 3.75, mean, 1e-9)
	assert.Len(t, s.Clean("POV"), 2)
}

func TestDimensionScoresNoLikert(t *testing.T) {
	d := dataset.New("s", []string{"ID", "Sexe"}, [][]string{{"1", "2"}})
	_, err := DimensionScores(d)
	assert.ErrorIs(t, err, ErrNoLikertColumns)
}

func TestClassifyDistribution(t *testing.T) {
	assert.Equal(t, DistInsufficientData, ClassifyDistribution(nil))
	assert.Equal(t, DistInsufficientData, ClassifyDistribution([]float64{math.NaN()}))
	assert.Equal(t, DistUniform, ClassifyDistribution([]float64{1, 2, 3, 4, 1, 2, 3, 4}))

	right := []float64{1, 1, 1, 1, 1, 1, 2, 2, 5}
	assert.Equal(t, DistSkewRight, ClassifyDistribution(right))

	left := []float64{5, 5, 5, 5, 5, 5, 4, 4, 1}
	assert.Equal(t, DistSkewLeft, ClassifyDistribution(left))
}
