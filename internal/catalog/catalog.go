// Package catalog is the static registry of intervention types. All ambient
// constant tables (service radii, reach multipliers, cost tables, partner
// suggestions) live here as explicit data so the scorer and optimizer stay
// data-driven: adding a type requires no change to scoring logic.
package catalog

import (
	"github.com/rotisserie/eris"
)

// Factor keys recognized by the scorer. A type's weight map may reference
// any subset; unknown keys score neutral.
const (
	FactorAccessibility  = "accessibility"
	FactorPopulation     = "population"
	FactorCompetition    = "competition"
	FactorSoil           = "soil"
	FactorClimate        = "climate"
	FactorEquity         = "equity"
	FactorInfrastructure = "infrastructure"
	FactorCommunity      = "community"
	FactorCentrality     = "centrality"
	FactorInnovation     = "innovation"
	FactorWater          = "water"
	FactorVisibility     = "visibility"
	FactorParking        = "parking"
)

// Intervention type keys.
const (
	FarmersMarket    = "FARMERS_MARKET"
	UrbanFarm        = "URBAN_FARM"
	CommunityGarden  = "COMMUNITY_GARDEN"
	FoodPantry       = "FOOD_PANTRY"
	FoodHub          = "FOOD_HUB"
	MobileMarketStop = "MOBILE_MARKET_STOP"
	CommunityKitchen = "COMMUNITY_KITCHEN"
)

// Requirements are the hard gates a candidate must pass before scoring.
type Requirements struct {
	MinAreaM2         float64  `yaml:"min_area_m2" json:"min_area_m2"`
	MaxSlopePct       *float64 `yaml:"max_slope_pct,omitempty" json:"max_slope_pct,omitempty"`
	Utilities         []string `yaml:"utilities,omitempty" json:"utilities,omitempty"`
	NeedsOutdoorSpace bool     `yaml:"needs_outdoor_space" json:"needs_outdoor_space"`
	NeedsIndoorSpace  bool     `yaml:"needs_indoor_space" json:"needs_indoor_space"`
}

// Type describes one intervention category: its gates, scoring weights, and
// cost/impact constants.
type Type struct {
	Key                  string             `yaml:"key" json:"key"`
	Name                 string             `yaml:"name" json:"name"`
	Icon                 string             `yaml:"icon" json:"icon"`
	Requirements         Requirements       `yaml:"requirements" json:"requirements"`
	Weights              map[string]float64 `yaml:"weights" json:"weights"`
	SetupCost            float64            `yaml:"setup_cost" json:"setup_cost"`
	OperatingCostMonthly float64            `yaml:"operating_cost_monthly" json:"operating_cost_monthly"`
	Timeframe            string             `yaml:"timeframe" json:"timeframe"`
	ServiceRadiusM       float64            `yaml:"service_radius_m" json:"service_radius_m"`
	ReachMultiplier      float64            `yaml:"reach_multiplier" json:"reach_multiplier"`
	Jobs                 int                `yaml:"jobs" json:"jobs"`
	Partners             []string           `yaml:"partners,omitempty" json:"partners,omitempty"`
	CompetitorCategories []string           `yaml:"competitor_categories,omitempty" json:"competitor_categories,omitempty"`
}

// Catalog is an ordered, immutable-after-construction registry of types.
type Catalog struct {
	types map[string]Type
	order []string
}

func slope(v float64) *float64 { return &v }

// Default returns the built-in catalog.
func Default() *Catalog {
	c := &Catalog{types: make(map[string]Type)}
	for _, t := range defaultTypes() {
		c.add(t)
	}
	return c
}

func defaultTypes() []Type {
	return []Type{
		{
			Key:  FarmersMarket,
			Name: "Farmers Market",
			Icon: "market",
			Requirements: Requirements{
				MinAreaM2:         500,
				Utilities:         []string{"water", "electricity"},
				NeedsOutdoorSpace: true,
			},
			Weights: map[string]float64{
				FactorAccessibility: 0.25,
				FactorPopulation:    0.20,
				FactorCompetition:   0.15,
				FactorEquity:        0.15,
				FactorVisibility:    0.10,
				FactorParking:       0.10,
				FactorCentrality:    0.05,
			},
			SetupCost:            50000,
			OperatingCostMonthly: 5000,
			Timeframe:            "3-6 months",
			ServiceRadiusM:       1500,
			ReachMultiplier:      8000,
			Jobs:                 15,
			Partners:             []string{"local grower associations", "city markets office", "neighborhood business alliance"},
			CompetitorCategories: []string{"supermarket", "grocery", "farmers_market"},
		},
		{
			Key:  UrbanFarm,
			Name: "Urban Farm",
			Icon: "farm",
			Requirements: Requirements{
				MinAreaM2:         2000,
				MaxSlopePct:       slope(10),
				Utilities:         []string{"water"},
				NeedsOutdoorSpace: true,
			},
			Weights: map[string]float64{
				FactorSoil:      0.30,
				FactorClimate:   0.20,
				FactorWater:     0.15,
				FactorEquity:    0.15,
				FactorCommunity: 0.10,
				FactorPopulation: 0.10,
			},
			SetupCost:            150000,
			OperatingCostMonthly: 8000,
			Timeframe:            "6-12 months",
			ServiceRadiusM:       2000,
			ReachMultiplier:      5000,
			Jobs:                 8,
			Partners:             []string{"agricultural extension service", "land trust", "workforce development board"},
			CompetitorCategories: []string{"farm", "community_garden"},
		},
		{
			Key:  CommunityGarden,
			Name: "Community Garden",
			Icon: "garden",
			Requirements: Requirements{
				MinAreaM2:         800,
				MaxSlopePct:       slope(15),
				Utilities:         []string{"water"},
				NeedsOutdoorSpace: true,
			},
			Weights: map[string]float64{
				FactorSoil:          0.25,
				FactorCommunity:     0.25,
				FactorEquity:        0.20,
				FactorClimate:       0.15,
				FactorAccessibility: 0.15,
			},
			SetupCost:            30000,
			OperatingCostMonthly: 1500,
			Timeframe:            "2-4 months",
			ServiceRadiusM:       1000,
			ReachMultiplier:      1200,
			Jobs:                 2,
			Partners:             []string{"parks department", "master gardener program", "neighborhood associations"},
			CompetitorCategories: []string{"community_garden"},
		},
		{
			Key:  FoodPantry,
			Name: "Food Pantry",
			Icon: "pantry",
			Requirements: Requirements{
				MinAreaM2:        300,
				Utilities:        []string{"electricity"},
				NeedsIndoorSpace: true,
			},
			Weights: map[string]float64{
				FactorEquity:         0.30,
				FactorPopulation:     0.25,
				FactorAccessibility:  0.20,
				FactorInfrastructure: 0.15,
				FactorCentrality:     0.10,
			},
			SetupCost:            40000,
			OperatingCostMonthly: 6000,
			Timeframe:            "1-3 months",
			ServiceRadiusM:       2500,
			ReachMultiplier:      6000,
			Jobs:                 6,
			Partners:             []string{"regional food bank", "faith-based organizations", "social services agency"},
			CompetitorCategories: []string{"food_pantry"},
		},
		{
			Key:  FoodHub,
			Name: "Food Hub",
			Icon: "hub",
			Requirements: Requirements{
				MinAreaM2:        3000,
				Utilities:        []string{"water", "electricity", "loading"},
				NeedsIndoorSpace: true,
			},
			Weights: map[string]float64{
				FactorInfrastructure: 0.25,
				FactorCentrality:     0.20,
				FactorAccessibility:  0.20,
				FactorPopulation:     0.15,
				FactorInnovation:     0.10,
				FactorParking:        0.10,
			},
			SetupCost:            400000,
			OperatingCostMonthly: 25000,
			Timeframe:            "12-18 months",
			ServiceRadiusM:       5000,
			ReachMultiplier:      20000,
			Jobs:                 25,
			Partners:             []string{"regional distributors", "economic development office", "cooperative extension"},
			CompetitorCategories: []string{"food_hub", "wholesale"},
		},
		{
			Key:  MobileMarketStop,
			Name: "Mobile Market Stop",
			Icon: "truck",
			Requirements: Requirements{
				MinAreaM2:         100,
				NeedsOutdoorSpace: true,
			},
			Weights: map[string]float64{
				FactorAccessibility: 0.30,
				FactorEquity:        0.25,
				FactorPopulation:    0.20,
				FactorCompetition:   0.15,
				FactorVisibility:    0.10,
			},
			SetupCost:            10000,
			OperatingCostMonthly: 3000,
			Timeframe:            "1-2 months",
			ServiceRadiusM:       800,
			ReachMultiplier:      2500,
			Jobs:                 3,
			Partners:             []string{"mobile market operators", "transit authority", "community health workers"},
			CompetitorCategories: []string{"supermarket", "grocery", "convenience"},
		},
		{
			Key:  CommunityKitchen,
			Name: "Community Kitchen",
			Icon: "kitchen",
			Requirements: Requirements{
				MinAreaM2:        400,
				Utilities:        []string{"water", "electricity", "gas"},
				NeedsIndoorSpace: true,
			},
			Weights: map[string]float64{
				FactorCommunity:      0.25,
				FactorEquity:         0.25,
				FactorPopulation:     0.20,
				FactorInfrastructure: 0.20,
				FactorInnovation:     0.10,
			},
			SetupCost:            120000,
			OperatingCostMonthly: 9000,
			Timeframe:            "4-8 months",
			ServiceRadiusM:       2000,
			ReachMultiplier:      3000,
			Jobs:                 10,
			Partners:             []string{"culinary training programs", "public health department", "small business incubators"},
			CompetitorCategories: []string{"community_kitchen"},
		},
	}
}

func (c *Catalog) add(t Type) {
	if _, exists := c.types[t.Key]; !exists {
		c.order = append(c.order, t.Key)
	}
	c.types[t.Key] = t
}

// Get returns the type for the given key.
func (c *Catalog) Get(key string) (Type, error) {
	t, ok := c.types[key]
	if !ok {
		return Type{}, eris.Errorf("catalog: unknown intervention type %q", key)
	}
	return t, nil
}

// All returns every type in stable registration order.
func (c *Catalog) All() []Type {
	out := make([]Type, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.types[k])
	}
	return out
}

// Keys returns all type keys in stable registration order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of registered types.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Filter returns a catalog restricted to the given type keys. An unknown key
// is a configuration error and fails fast.
func (c *Catalog) Filter(keys []string) (*Catalog, error) {
	if len(keys) == 0 {
		return c, nil
	}
	out := &Catalog{types: make(map[string]Type, len(keys))}
	for _, k := range keys {
		t, ok := c.types[k]
		if !ok {
			return nil, eris.Errorf("catalog: unknown intervention type %q", k)
		}
		out.add(t)
	}
	return out, nil
}
