package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	cat := Default()

	require.Equal(t, 7, cat.Len())
	assert.Equal(t, []string{
		FarmersMarket, UrbanFarm, CommunityGarden, FoodPantry,
		FoodHub, MobileMarketStop, CommunityKitchen,
	}, cat.Keys())
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	for _, typ := range Default().All() {
		t.Run(typ.Key, func(t *testing.T) {
			var sum float64
			for key, w := range typ.Weights {
				assert.GreaterOrEqual(t, w, 0.0, "factor %s", key)
				sum += w
			}
			assert.InDelta(t, 1.0, sum, 0.01)
		})
	}
}

func TestDefaultTypeConstants(t *testing.T) {
	cat := Default()

	for _, typ := range cat.All() {
		assert.Positive(t, typ.SetupCost, "%s setup cost", typ.Key)
		assert.Positive(t, typ.OperatingCostMonthly, "%s operating cost", typ.Key)
		assert.Positive(t, typ.ServiceRadiusM, "%s service radius", typ.Key)
		assert.Positive(t, typ.ReachMultiplier, "%s reach", typ.Key)
		assert.NotEmpty(t, typ.Timeframe, "%s timeframe", typ.Key)
	}

	market, err := cat.Get(FarmersMarket)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, market.ServiceRadiusM)
	assert.NotEmpty(t, market.CompetitorCategories)
}

func TestGetUnknownKey(t *testing.T) {
	_, err := Default().Get("BODEGA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BODEGA")
}

func TestFilter(t *testing.T) {
	cat := Default()

	sub, err := cat.Filter([]string{UrbanFarm, FoodHub})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, []string{UrbanFarm, FoodHub}, sub.Keys())

	_, err = cat.Filter([]string{UrbanFarm, "NOPE"})
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	override := `
types:
  - key: FARMERS_MARKET
    name: Weekend Market
    requirements:
      min_area_m2: 100
    weights:
      accessibility: 0.5
      population: 0.5
    setup_cost: 10000
    operating_cost_monthly: 1000
    timeframe: 1-2 months
    service_radius_m: 1200
    reach_multiplier: 5000
    jobs: 8
  - key: POP_UP_STAND
    name: Pop-up Produce Stand
    requirements:
      min_area_m2: 20
    weights:
      accessibility: 1.0
    setup_cost: 2000
    operating_cost_monthly: 300
    timeframe: under 1 month
    service_radius_m: 500
    reach_multiplier: 800
    jobs: 2
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	cat := Default()
	require.NoError(t, cat.LoadOverrides(path))

	// Known key replaced, new key appended.
	assert.Equal(t, 8, cat.Len())
	market, err := cat.Get(FarmersMarket)
	require.NoError(t, err)
	assert.Equal(t, "Weekend Market", market.Name)
	assert.Equal(t, 1200.0, market.ServiceRadiusM)

	standIn, err := cat.Get("POP_UP_STAND")
	require.NoError(t, err)
	assert.Equal(t, 2, standIn.Jobs)
}

func TestLoadOverridesRejectsBadWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	bad := `
types:
  - key: BROKEN
    name: Broken
    weights:
      accessibility: 0.2
    setup_cost: 1
    operating_cost_monthly: 1
    timeframe: x
    service_radius_m: 1
    reach_multiplier: 1
`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	err := Default().LoadOverrides(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights sum")
}
