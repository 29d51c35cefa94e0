// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package strategies

import "github.com/Aatricks/qvt-back/services/viz"

// RegisterAll installs every built-in strategy under its chart key.
// Called once during application startup, before the first request.
func RegisterAll(reg *viz.Registry) {
	reg.Register("time_series", TimeSeries{})
	reg.Register("time_series_ci", TimeSeriesCI{})
	reg.Register("likert_distribution", LikertDistribution{})
	reg.Register("likert_item_heatmap", LikertItemHeatmap{})
	reg.Register("correlation_matrix", CorrelationMatrix{})
	reg.Register("distribution_anomalies", DistributionAnomalies{})
	reg.Register("anova_significance", AnovaSignificance{})
	reg.Register("dimension_summary", DimensionSummary{})
	reg.Register("dimension_heatmap", DimensionHeatmap{})
	reg.Register("dimension_boxplot", DimensionBoxplot{})
	reg.Register("dimension_mean_std_scatter", DimensionMeanStdScatter{})
	reg.Register("dimension_ci_bars", DimensionCIBars{})
	reg.Register("scatter_regression", ScatterRegression{})
	reg.Register("eng_epui_quadrants", EngEpuiQuadrants{})
	reg.Register("demographic_distribution", DemographicDistribution{})
	reg.Register("benchmark_bullet", BenchmarkBullet{})
	reg.Register("example_new_chart", DimensionOverview{})
	reg.Register("action_priority_index", ActionPriorityIndex{})
	reg.Register("leverage_scatter", LeverageScatter{})
	reg.Register("importance_performance_matrix", ImportancePerformanceMatrix{})
	reg.Register("clustering_profile", ClusteringProfile{})
	reg.Register("predictive_simulation", PredictiveSimulation{})
}
