package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/foodaccess-cli/internal/model"
)

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)

	assert.Zero(t, s.TotalPopulationServed)
	assert.Zero(t, s.TotalJobs)
	assert.Zero(t, s.TotalEconomicImpact)
	assert.Zero(t, s.TotalInvestment)
	assert.Zero(t, s.AvgAccessImprovement)
	assert.Zero(t, s.AvgEquityImprovement)
	assert.Zero(t, s.AverageScore)
	require.NotNil(t, s.PriorityCounts)
	assert.Empty(t, s.PriorityCounts)
}

func TestAggregateTotalsAndAverages(t *testing.T) {
	recs := []model.Recommendation{
		{
			Priority:      model.PriorityCritical,
			AdjustedScore: 0.9,
			Implementation: model.Implementation{
				SetupCost:            50000,
				OperatingCostMonthly: 5000,
			},
			Impact: model.ExpectedImpact{
				PopulationServed:  8000,
				AccessImprovement: 0.3,
				EquityImprovement: 0.2,
				Jobs:              15,
				EconomicImpact:    270000,
			},
		},
		{
			Priority:      model.PriorityHigh,
			AdjustedScore: 0.7,
			Implementation: model.Implementation{
				SetupCost:            30000,
				OperatingCostMonthly: 1500,
			},
			Impact: model.ExpectedImpact{
				PopulationServed:  1200,
				AccessImprovement: 0.1,
				EquityImprovement: 0.3,
				Jobs:              2,
				EconomicImpact:    81000,
			},
		},
		{
			Priority:      model.PriorityCritical,
			AdjustedScore: 0.8,
			Implementation: model.Implementation{
				SetupCost:            10000,
				OperatingCostMonthly: 3000,
			},
			Impact: model.ExpectedImpact{
				PopulationServed:  2500,
				AccessImprovement: 0.2,
				EquityImprovement: 0.1,
				Jobs:              3,
				EconomicImpact:    162000,
			},
		},
	}

	s := Aggregate(recs)

	assert.Equal(t, 11700, s.TotalPopulationServed)
	assert.Equal(t, 20, s.TotalJobs)
	assert.InDelta(t, 513000, s.TotalEconomicImpact, 1e-9)

	// Investment: setup plus one year of operation per recommendation.
	assert.InDelta(t, 50000+60000+30000+18000+10000+36000, s.TotalInvestment, 1e-9)

	assert.InDelta(t, 0.2, s.AvgAccessImprovement, 1e-9)
	assert.InDelta(t, 0.2, s.AvgEquityImprovement, 1e-9)
	assert.InDelta(t, 0.8, s.AverageScore, 1e-9)

	assert.Equal(t, map[string]int{
		model.PriorityCritical: 2,
		model.PriorityHigh:     1,
	}, s.PriorityCounts)
}
