package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/foodaccess-cli/internal/catalog"
	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/model"
)

func selection(id, typ string, p geo.Point, score float64, factors map[string]float64) Selection {
	return Selection{
		Type: typ,
		Candidate: model.ScoredCandidate{
			Location: model.CandidateLocation{ID: id, Center: p},
			Scores: map[string]model.TypeScore{
				typ: {
					Viable:      true,
					Score:       score,
					Suitability: model.SuitabilityFor(score),
					Factors:     factors,
					Impact: model.EstimatedImpact{
						PopulationReached: 4000,
						DesertReduction:   0.15,
						AccessDelta:       0.2,
						EquityDelta:       0.18,
					},
				},
			},
			BestUse:       typ,
			RawScore:      score,
			AdjustedScore: score,
		},
	}
}

func TestBuildPopulatesRecommendation(t *testing.T) {
	b := NewBuilder(catalog.Default())

	sel := selection("cell-1-1", catalog.FarmersMarket, geo.Point{Lat: 35.0, Lng: -80.0}, 0.85,
		map[string]float64{
			catalog.FactorEquity:        0.8,
			catalog.FactorAccessibility: 0.9,
		})

	recs, err := b.Build([]Selection{sel})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "cell-1-1", r.LocationID)
	assert.Equal(t, catalog.FarmersMarket, r.Type)
	assert.Equal(t, "Farmers Market", r.TypeName)
	assert.Equal(t, model.PriorityCritical, r.Priority)

	// Implementation block comes from the catalog.
	assert.Equal(t, 50000.0, r.Implementation.SetupCost)
	assert.Equal(t, 5000.0, r.Implementation.OperatingCostMonthly)
	assert.NotEmpty(t, r.Implementation.Partners)

	// Economic impact: monthly cost over three years with a 1.5x multiplier.
	assert.InDelta(t, 5000*12*3*1.5, r.Impact.EconomicImpact, 1e-9)
	assert.Equal(t, 4000, r.Impact.PopulationServed)
	assert.Equal(t, 15, r.Impact.Jobs)

	assert.Contains(t, r.Justification, "vulnerable population")
	assert.Contains(t, r.Justification, "transit")
}

func TestBuildUnknownTypeFails(t *testing.T) {
	b := NewBuilder(catalog.Default())
	sel := selection("x", "NOT_A_TYPE", geo.Point{}, 0.5, nil)

	_, err := b.Build([]Selection{sel})
	require.Error(t, err)
}

func TestBuildMissingScoreFails(t *testing.T) {
	b := NewBuilder(catalog.Default())

	sel := Selection{
		Type: catalog.UrbanFarm,
		Candidate: model.ScoredCandidate{
			Location: model.CandidateLocation{ID: "x"},
			Scores:   map[string]model.TypeScore{},
		},
	}

	_, err := b.Build([]Selection{sel})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no score")
}

func TestSynergyNotes(t *testing.T) {
	b := NewBuilder(catalog.Default())

	origin := geo.Point{Lat: 35.0, Lng: -80.0}
	nearby := geo.Point{Lat: 35.007, Lng: -80.0} // ~780m

	farm := selection("farm", catalog.UrbanFarm, origin, 0.7, nil)
	market := selection("market", catalog.FarmersMarket, nearby, 0.7, nil)

	recs, err := b.Build([]Selection{farm, market})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	require.NotEmpty(t, recs[0].Synergies)
	assert.Contains(t, recs[0].Synergies[0], "fresh produce")
	require.NotEmpty(t, recs[1].Synergies)
}

func TestRisksAndSuccessFactors(t *testing.T) {
	b := NewBuilder(catalog.Default())

	sel := selection("weak", catalog.CommunityGarden, geo.Point{}, 0.45,
		map[string]float64{
			catalog.FactorSoil:        0.2,
			catalog.FactorCommunity:   0.9,
			catalog.FactorEquity:      0.65,
			catalog.FactorCompetition: 0.2,
		})

	recs, err := b.Build([]Selection{sel})
	require.NoError(t, err)
	r := recs[0]

	// score < 0.5, soil < 0.3, competition < 0.3 all flagged.
	assert.Len(t, r.Risks, 3)

	// community and equity exceed 0.6, in sorted key order.
	require.Len(t, r.SuccessFactors, 2)
	assert.Contains(t, r.SuccessFactors[0], "community")
	assert.Contains(t, r.SuccessFactors[1], "equity")
}
