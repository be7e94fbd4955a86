package model

import "github.com/sells-group/foodaccess-cli/internal/geo"

// Implementation holds the practical details for standing up an intervention.
type Implementation struct {
	SetupCost            float64  `json:"setup_cost"`
	OperatingCostMonthly float64  `json:"operating_cost_monthly"`
	Timeframe            string   `json:"timeframe"`
	RequiredUtilities    []string `json:"required_utilities,omitempty"`
	Partners             []string `json:"partners,omitempty"`
}

// ExpectedImpact holds the projected community effect of one recommendation.
type ExpectedImpact struct {
	PopulationServed  int     `json:"population_served"`
	DesertReduction   float64 `json:"desert_reduction"`
	AccessImprovement float64 `json:"access_improvement"`
	EquityImprovement float64 `json:"equity_improvement"`
	Jobs              int     `json:"jobs"`
	EconomicImpact    float64 `json:"economic_impact"`
}

// Recommendation is a finalized, user-facing placement record. Created once
// per run and immutable after creation.
type Recommendation struct {
	ID             string             `json:"id"`
	LocationID     string             `json:"location_id"`
	Type           string             `json:"type"`
	TypeName       string             `json:"type_name"`
	Icon           string             `json:"icon,omitempty"`
	Center         geo.Point          `json:"center"`
	Bounds         geo.BBox           `json:"bounds"`
	Score          float64            `json:"score"`
	AdjustedScore  float64            `json:"adjusted_score"`
	Factors        map[string]float64 `json:"factors,omitempty"`
	Priority       string             `json:"priority"`
	Justification  string             `json:"justification"`
	Implementation Implementation     `json:"implementation"`
	Impact         ExpectedImpact     `json:"impact"`
	Synergies      []string           `json:"synergies,omitempty"`
	Risks          []string           `json:"risks,omitempty"`
	SuccessFactors []string           `json:"success_factors,omitempty"`
}

// ImpactSummary aggregates a recommendation list into city-wide totals.
type ImpactSummary struct {
	TotalPopulationServed int            `json:"total_population_served"`
	AvgAccessImprovement  float64        `json:"avg_access_improvement"`
	AvgEquityImprovement  float64        `json:"avg_equity_improvement"`
	TotalJobs             int            `json:"total_jobs"`
	TotalEconomicImpact   float64        `json:"total_economic_impact"`
	TotalInvestment       float64        `json:"total_investment"`
	AverageScore          float64        `json:"average_score"`
	PriorityCounts        map[string]int `json:"priority_counts"`
}

// Marker is a map pin for the rendering collaborator.
type Marker struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label"`
	Icon  string  `json:"icon,omitempty"`
}

// HeatmapPoint is a weighted point for heatmap rendering.
type HeatmapPoint struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight float64 `json:"weight"`
}

// ServiceArea is a circular service footprint around a recommendation.
type ServiceArea struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	RadiusM float64 `json:"radius_m"`
}

// Visualizations is the display payload consumed by the map-rendering
// collaborator. The engine assumes nothing about its internals beyond this
// contract.
type Visualizations struct {
	Markers            []Marker       `json:"markers"`
	HeatmapPoints      []HeatmapPoint `json:"heatmap_points"`
	ServiceAreaCircles []ServiceArea  `json:"service_area_circles"`
}

// Placement is a (location, type) assignment from the optimizer's winning
// solution, in ranked order.
type Placement struct {
	LocationID    string    `json:"location_id"`
	Type          string    `json:"type"`
	Center        geo.Point `json:"center"`
	Score         float64   `json:"score"`
	AdjustedScore float64   `json:"adjusted_score"`
}

// PlanResult is the full output record of one placement analysis run.
type PlanResult struct {
	Placements      []Placement      `json:"placements"`
	Recommendations []Recommendation `json:"recommendations"`
	Impact          ImpactSummary    `json:"impact"`
	Visualizations  Visualizations   `json:"visualizations"`
	Diagnostics     []string         `json:"diagnostics,omitempty"`
	Fitness         float64          `json:"fitness"`
	CandidateCount  int              `json:"candidate_count"`
	DurationMS      int64            `json:"duration_ms"`
}
