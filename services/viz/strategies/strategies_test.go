// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package strategies

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aatricks/qvt-back/services/dataset"
	"github.com/Aatricks/qvt-back/services/viz"
)

// bigSurveyFixture builds a survey with enough respondents for the
// strategies that enforce minimum sample sizes. Values are deterministic
// so assertions stay stable.
func bigSurveyFixture(t *testing.T, n int) *dataset.Dataset {
	t.Helper()
	cols := []string{"ID", "Sexe", "Age", "Ancienne", "POV1", "POV2", "PGC1", "ENG1", "ENG2", "EPUI1"}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		sexe := "1"
		if i%2 == 1 {
			sexe = "2"
		}
		// POV drives ENG up and EPUI down so the association strategies
		// find a clear signal.
		pov := 1 + i%5
		rows[i] = []string{
			strconv.Itoa(i + 1),
			sexe,
			strconv.Itoa(25 + i%40),
			strconv.Itoa(i % 25),
			strconv.Itoa(pov),
			strconv.Itoa(1 + (i+1)%5),
			strconv.Itoa(1 + (i+2)%5),
			strconv.Itoa(pov),
			strconv.Itoa(pov),
			strconv.Itoa(6 - pov),
		}
	}
	return dataset.New("survey", cols, rows)
}

func surveyInputs(d *dataset.Dataset) *viz.Inputs {
	return &viz.Inputs{HR: d, Survey: d}
}

func TestRegisterAllKeys(t *testing.T) {
	reg := viz.NewRegistry()
	RegisterAll(reg)

	keys := reg.Keys()
	assert.Len(t, keys, 22)
	assert.Contains(t, keys, "time_series")
	assert.Contains(t, keys, "likert_distribution")
	assert.Contains(t, keys, "anova_significance")
	assert.Contains(t, keys, "predictive_simulation")
	assert.IsIncreasing(t, keys)
}

func TestAllStrategiesProduceSpecs(t *testing.T) {
	d := bigSurveyFixture(t, 60)
	in := surveyInputs(d)

	reg := viz.NewRegistry()
	RegisterAll(reg)

	// Loose config so sample-size gates pass on the 60-row fixture.
	config := map[string]any{"min_n": 5, "min_responses": 2, "min_per_group": 2}
	for _, key := range reg.Keys() {
		t.Run(key, func(t *testing.T) {
			s, ok := reg.Get(key)
			require.True(t, ok)
			spec, err := s.Generate(in, config, map[string]any{})
			require.NoError(t, err)
			assert.Equal(t, viz.SchemaURL, spec["$schema"])
		})
	}
}

func TestStrategiesRequireSurvey(t *testing.T) {
	hr := dataset.New("hr", []string{"ID", "Age"}, [][]string{{"1", "30"}})
	for _, s := range []viz.Strategy{LikertDistribution{}, DimensionSummary{}, ActionPriorityIndex{}, ClusteringProfile{}} {
		_, err := s.Generate(&viz.Inputs{HR: hr}, map[string]any{}, map[string]any{})
		assert.ErrorIs(t, err, errNoSurvey)
	}
}

func TestTimeSeriesPicksPreferredTimeColumn(t *testing.T) {
	d := dataset.New("hr",
		[]string{"ID", "annee", "absence_rate"},
		[][]string{{"1", "2021", "3.1"}, {"2", "2022", "2.9"}, {"3", "2023", "3.4"}})

	spec, err := TimeSeries{}.Generate(&viz.Inputs{HR: d}, map[string]any{}, map[string]any{})
	require.NoError(t, err)

	enc := spec["encoding"].(map[string]any)
	assert.Equal(t, "annee", enc["x"].(map[string]any)["field"])
}

func TestCorrelationMatrixNeedsTwoNumericColumns(t *testing.T) {
	d := dataset.New("hr", []string{"ID", "Nom"}, [][]string{{"1", "a"}, {"2", "b"}})
	_, err := CorrelationMatrix{}.Generate(&viz.Inputs{HR: d}, map[string]any{}, map[string]any{})
	assert.Error(t, err)
}

func TestActionPriorityIndexExcludesOutcomes(t *testing.T) {
	d := bigSurveyFixture(t, 60)
	spec, err := ActionPriorityIndex{}.Generate(surveyInputs(d), map[string]any{"min_n": 5}, map[string]any{})
	require.NoError(t, err)

	values := spec["data"].(map[string]any)["values"].([]map[string]any)
	require.NotEmpty(t, values)
	for _, v := range values {
		assert.NotContains(t, []any{"Engagement", "Épuisement"}, v["dimension"],
			"outcome dimensions must not appear as levers")
	}
}

func TestLeverageIsNonNegativeAndBounded(t *testing.T) {
	d := bigSurveyFixture(t, 60)
	for _, outcome := range []string{"EPUI", "ENG"} {
		rows, err := computeLeverage(d, outcome, "spearman", "", 5)
		require.NoError(t, err, outcome)
		for _, r := range rows {
			assert.GreaterOrEqual(t, r.leverage, 0.0)
			assert.LessOrEqual(t, r.leverage, 1.0+1e-9)
			assert.GreaterOrEqual(t, r.priority, 0.0)
		}
	}
}

func TestLeverageSignConvention(t *testing.T) {
	d := bigSurveyFixture(t, 60)

	// POV correlates positively with ENG and negatively with EPUI in the
	// fixture, so POV must carry leverage under both conventions.
	for _, outcome := range []string{"EPUI", "ENG"} {
		rows, err := computeLeverage(d, outcome, "pearson", "", 5)
		require.NoError(t, err)
		found := false
		for _, r := range rows {
			if r.prefix == "POV" {
				found = true
				assert.Greater(t, r.leverage, 0.5, "outcome %s", outcome)
			}
		}
		assert.True(t, found)
	}
}

func TestEngEpuiQuadrantsLabels(t *testing.T) {
	d := bigSurveyFixture(t, 40)
	spec, err := EngEpuiQuadrants{}.Generate(surveyInputs(d), map[string]any{"group_field": "Sexe"}, map[string]any{})
	require.NoError(t, err)

	values := spec["data"].(map[string]any)["values"].([]map[string]any)
	require.NotEmpty(t, values)
	for _, v := range values {
		assert.Contains(t, v["quadrant"], "Épuisement")
		assert.Contains(t, v["quadrant"], "Engagement")
	}
}

func TestClusteringProfileRequiresEnoughRespondents(t *testing.T) {
	d := bigSurveyFixture(t, 10)
	_, err := ClusteringProfile{}.Generate(surveyInputs(d), map[string]any{}, map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough complete respondents")
}

func TestClusteringProfileCentroidsOnOriginalScale(t *testing.T) {
	d := bigSurveyFixture(t, 60)
	spec, err := ClusteringProfile{}.Generate(surveyInputs(d), map[string]any{"k": 3}, map[string]any{})
	require.NoError(t, err)

	values := spec["data"].(map[string]any)["values"].([]map[string]any)
	require.NotEmpty(t, values)
	clusters := map[any]bool{}
	for _, v := range values {
		clusters[v["cluster"]] = true
		score := v["score"].(float64)
		assert.GreaterOrEqual(t, score, 1.0)
		assert.LessOrEqual(t, score, 5.0)
	}
	assert.Len(t, clusters, 3)
}

func TestLikertDistributionTruncatesFractionalResponses(t *testing.T) {
	d := dataset.New("survey", []string{"ID", "POV1"}, [][]string{
		{"1", "4.5"},
		{"2", "2"},
		{"3", "2"},
	})
	spec, err := LikertDistribution{}.Generate(surveyInputs(d), map[string]any{}, map[string]any{})
	require.NoError(t, err)

	values := spec["data"].(map[string]any)["values"].([]map[string]any)
	counts := map[int]int{}
	for _, v := range values {
		if v["is_category"] == 0 {
			counts[v["response_value"].(int)] = v["count"].(int)
		}
	}
	assert.Equal(t, map[int]int{4: 1, 2: 2}, counts, "4.5 lands in the 4 bucket")
}

func TestClusteringProfileAutoKBoundedBySampleSize(t *testing.T) {
	d := bigSurveyFixture(t, 20)
	spec, err := ClusteringProfile{}.Generate(surveyInputs(d), map[string]any{"auto_k": true}, map[string]any{})
	require.NoError(t, err)

	values := spec["data"].(map[string]any)["values"].([]map[string]any)
	require.NotEmpty(t, values)
	clusters := map[any]bool{}
	for _, v := range values {
		clusters[v["cluster"]] = true
	}
	assert.LessOrEqual(t, len(clusters), 4, "20 respondents allow at most 20/5 clusters")
}

func TestPredictiveSimulationFallsBackToEpui(t *testing.T) {
	cols := []string{"ID", "POV1", "PGC1", "EPUI1"}
	rows := make([][]string, 30)
	for i := range rows {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(1 + i%5),
			strconv.Itoa(1 + (i+2)%5),
			strconv.Itoa(1 + (i*3)%5),
		}
	}
	d := dataset.New("survey", cols, rows)

	spec, err := PredictiveSimulation{}.Generate(surveyInputs(d), map[string]any{}, map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, spec["title"], "EPUI")
}

func TestPredictiveSimulationCollinearPredictors(t *testing.T) {
	cols := []string{"ID", "POV1", "PGC1", "ENG1"}
	rows := make([][]string, 30)
	for i := range rows {
		v := strconv.Itoa(1 + i%5)
		// POV and PGC identical per respondent: rank-deficient design.
		rows[i] = []string{strconv.Itoa(i + 1), v, v, strconv.Itoa(1 + (i+1)%5)}
	}
	d := dataset.New("survey", cols, rows)

	_, err := PredictiveSimulation{}.Generate(surveyInputs(d), map[string]any{}, map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collinear")
}

func TestAnovaSignificanceFindsSplit(t *testing.T) {
	cols := []string{"ID", "Sexe", "POV1", "POV2"}
	rows := make([][]string, 40)
	for i := range rows {
		// Men around 2, women around 4, with some spread inside each
		// group so the F statistic is defined.
		if i%2 == 0 {
			rows[i] = []string{strconv.Itoa(i + 1), "1", "2", strconv.Itoa(1 + (i/2)%3)}
		} else {
			rows[i] = []string{strconv.Itoa(i + 1), "2", "4", strconv.Itoa(3 + (i/2)%3)}
		}
	}
	d := dataset.New("survey", cols, rows)

	spec, err := AnovaSignificance{}.Generate(surveyInputs(d), map[string]any{}, map[string]any{})
	require.NoError(t, err)

	charts := spec["concat"].([]any)
	require.NotEmpty(t, charts)
	title := charts[0].(map[string]any)["title"].(string)
	assert.Contains(t, title, "Sexe")
}

func TestImportancePerformanceQuadrantNames(t *testing.T) {
	d := bigSurveyFixture(t, 60)
	spec, err := ImportancePerformanceMatrix{}.Generate(surveyInputs(d), map[string]any{"min_n": 5}, map[string]any{})
	require.NoError(t, err)

	values := spec["data"].(map[string]any)["values"].([]map[string]any)
	require.NotEmpty(t, values)
	valid := map[any]bool{"À prioriser": true, "À maintenir": true, "Sur-investi": true, "Secondaire": true}
	for _, v := range values {
		assert.True(t, valid[v["quadrant"]], fmt.Sprintf("unexpected quadrant %v", v["quadrant"]))
	}
}

func TestDeterministicOutput(t *testing.T) {
	d := bigSurveyFixture(t, 60)
	in := surveyInputs(d)

	for _, key := range []string{"dimension_ci_bars", "likert_distribution", "clustering_profile"} {
		reg := viz.NewRegistry()
		RegisterAll(reg)
		s, ok := reg.Get(key)
		require.True(t, ok)

		first, err := s.Generate(in, map[string]any{"min_n": 5}, map[string]any{})
		require.NoError(t, err, key)
		second, err := s.Generate(in, map[string]any{"min_n": 5}, map[string]any{})
		require.NoError(t, err, key)
		assert.Equal(t, first, second, key)
	}
}
