// Package impact aggregates recommendation lists into city-wide summary
// figures.
package impact

import (
	"github.com/sells-group/foodaccess-cli/internal/model"
)

// Aggregate folds a recommendation list into totals and averages. An empty
// list yields an all-zero summary with an empty priority histogram.
func Aggregate(recs []model.Recommendation) model.ImpactSummary {
	summary := model.ImpactSummary{
		PriorityCounts: make(map[string]int),
	}
	if len(recs) == 0 {
		return summary
	}

	var accessSum, equitySum, scoreSum float64
	for _, r := range recs {
		summary.TotalPopulationServed += r.Impact.PopulationServed
		summary.TotalJobs += r.Impact.Jobs
		summary.TotalEconomicImpact += r.Impact.EconomicImpact
		summary.TotalInvestment += r.Implementation.SetupCost + 12*r.Implementation.OperatingCostMonthly
		summary.PriorityCounts[r.Priority]++

		accessSum += r.Impact.AccessImprovement
		equitySum += r.Impact.EquityImprovement
		scoreSum += r.AdjustedScore
	}

	n := float64(len(recs))
	summary.AvgAccessImprovement = accessSum / n
	summary.AvgEquityImprovement = equitySum / n
	summary.AverageScore = scoreSum / n
	return summary
}
