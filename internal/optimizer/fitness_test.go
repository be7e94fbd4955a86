package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/foodaccess-cli/internal/catalog"
	"github.com/sells-group/foodaccess-cli/internal/geo"
)

var testBBox = geo.BBox{South: 35.0, North: 35.1, West: -80.1, East: -80.0}

func member(id, typ string, p geo.Point) Member {
	return Member{
		LocationID:           id,
		Center:               p,
		Type:                 typ,
		Score:                0.7,
		PopulationServed:     5000,
		SetupCost:            50000,
		OperatingCostMonthly: 5000,
		ServiceRadiusM:       1500,
	}
}

func TestFitnessEmptySolution(t *testing.T) {
	e := NewEvaluator(testBBox, 7)
	assert.Zero(t, e.Fitness(Solution{}))
}

func TestFitnessBounds(t *testing.T) {
	e := NewEvaluator(testBBox, 7)

	s := NewSolution(
		member("a", catalog.FarmersMarket, geo.Point{Lat: 35.02, Lng: -80.08}),
		member("b", catalog.UrbanFarm, geo.Point{Lat: 35.05, Lng: -80.05}),
		member("c", catalog.FoodPantry, geo.Point{Lat: 35.08, Lng: -80.02}),
	)

	f := e.Fitness(s)
	assert.Greater(t, f, 0.0)
	assert.LessOrEqual(t, f, 1.0)
}

func TestFitnessOrderInvariant(t *testing.T) {
	e := NewEvaluator(testBBox, 7)

	ms := []Member{
		member("a", catalog.UrbanFarm, geo.Point{Lat: 35.02, Lng: -80.08}),
		member("b", catalog.FarmersMarket, geo.Point{Lat: 35.025, Lng: -80.075}),
		member("c", catalog.FoodHub, geo.Point{Lat: 35.05, Lng: -80.05}),
		member("d", catalog.FoodPantry, geo.Point{Lat: 35.08, Lng: -80.02}),
	}
	// Uneven reach so the equity term is not trivially flat.
	ms[1].PopulationServed = 12000
	ms[3].PopulationServed = 2000

	fwd := e.Fitness(NewSolution(ms[0], ms[1], ms[2], ms[3]))
	rev := e.Fitness(NewSolution(ms[3], ms[2], ms[1], ms[0]))
	mixed := e.Fitness(NewSolution(ms[2], ms[0], ms[3], ms[1]))

	assert.InDelta(t, fwd, rev, 1e-12)
	assert.InDelta(t, fwd, mixed, 1e-12)
}

func TestCoverageGrowsWithMembers(t *testing.T) {
	e := NewEvaluator(testBBox, 7)

	one := NewSolution(member("a", catalog.FarmersMarket, geo.Point{Lat: 35.02, Lng: -80.08}))
	two := one.withMember(member("b", catalog.FarmersMarket, geo.Point{Lat: 35.08, Lng: -80.02}))

	assert.Greater(t, e.coverage(two), e.coverage(one))
	assert.LessOrEqual(t, e.coverage(two), 1.0)
}

func TestGini(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{100}, 0},
		{"all equal", []float64{50, 50, 50, 50}, 0},
		{"all zero", []float64{0, 0, 0}, 0},
		{"one has everything", []float64{0, 0, 0, 100}, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, gini(tt.values), 1e-9)
		})
	}

	// Order invariance.
	assert.InDelta(t,
		gini([]float64{10, 40, 50}),
		gini([]float64{50, 10, 40}),
		1e-12,
	)
}

func TestEquityPrefersEvenDistribution(t *testing.T) {
	e := NewEvaluator(testBBox, 7)

	even := NewSolution(
		Member{LocationID: "a", PopulationServed: 5000},
		Member{LocationID: "b", PopulationServed: 5000},
	)
	skewed := NewSolution(
		Member{LocationID: "a", PopulationServed: 9900},
		Member{LocationID: "b", PopulationServed: 100},
	)

	assert.Greater(t, e.equity(even), e.equity(skewed))
}

func TestEfficiency(t *testing.T) {
	e := NewEvaluator(testBBox, 7)

	// 5000 people for 110k first-year dollars: 0.045 people per dollar,
	// just under the 0.05 perfect-score scale.
	s := NewSolution(member("a", catalog.FarmersMarket, geo.Point{Lat: 35.05, Lng: -80.05}))
	assert.InDelta(t, 5000.0/110000.0/0.05, e.efficiency(s), 1e-9)

	// Cheap and far-reaching clamps at 1.
	cheap := NewSolution(Member{LocationID: "x", PopulationServed: 100000, SetupCost: 1000})
	assert.Equal(t, 1.0, e.efficiency(cheap))
}

func TestDiversity(t *testing.T) {
	e := NewEvaluator(testBBox, 7)

	s := NewSolution(
		member("a", catalog.FarmersMarket, geo.Point{}),
		member("b", catalog.FarmersMarket, geo.Point{}),
		member("c", catalog.UrbanFarm, geo.Point{}),
	)
	assert.InDelta(t, 2.0/7.0, e.diversity(s), 1e-9)
}

func TestPairSynergy(t *testing.T) {
	origin := geo.Point{Lat: 35.0, Lng: -80.0}
	at := func(meters float64) geo.Point {
		return geo.Point{Lat: 35.0 + meters/111195.0, Lng: -80.0}
	}

	tests := []struct {
		name string
		a, b Member
		want float64
	}{
		{
			"farm feeds market within 1km",
			member("a", catalog.UrbanFarm, origin),
			member("b", catalog.FarmersMarket, at(900)),
			1.0,
		},
		{
			"farm and market too far",
			member("a", catalog.UrbanFarm, origin),
			member("b", catalog.FarmersMarket, at(1500)),
			0.5,
		},
		{
			"same type crowded",
			member("a", catalog.FoodPantry, origin),
			member("b", catalog.FoodPantry, at(1500)),
			0.0,
		},
		{
			"same type dispersed",
			member("a", catalog.FoodPantry, origin),
			member("b", catalog.FoodPantry, at(2500)),
			0.5,
		},
		{
			"hub within distribution range",
			member("a", catalog.FoodHub, origin),
			member("b", catalog.CommunityKitchen, at(4000)),
			0.7,
		},
		{
			"hub out of range",
			member("a", catalog.FoodHub, origin),
			member("b", catalog.CommunityKitchen, at(6000)),
			0.3,
		},
		{
			"unrelated pair",
			member("a", catalog.FoodPantry, origin),
			member("b", catalog.CommunityGarden, at(500)),
			0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pairSynergy(tt.a, tt.b)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, pairSynergy(tt.b, tt.a), "synergy is symmetric")
		})
	}
}

func TestSynergySmallSolutions(t *testing.T) {
	e := NewEvaluator(testBBox, 7)

	assert.Equal(t, 0.3, e.synergy(NewSolution(member("a", catalog.FarmersMarket, geo.Point{}))))
}

func TestSolutionImmutability(t *testing.T) {
	base := NewSolution(
		member("a", catalog.FarmersMarket, geo.Point{}),
		member("b", catalog.UrbanFarm, geo.Point{}),
	)

	grown := base.withMember(member("c", catalog.FoodHub, geo.Point{}))
	shrunk := base.withoutIndex(0)

	require.Equal(t, 2, base.Len())
	assert.Equal(t, 3, grown.Len())
	assert.Equal(t, 1, shrunk.Len())
	assert.True(t, base.contains("a"))
	assert.False(t, shrunk.contains("a"))
}
