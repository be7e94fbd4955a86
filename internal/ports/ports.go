// Package ports defines the typed collaborator interfaces the engine depends
// on (soil, climate, demographics, vacant space, transit, outlets). Each port
// has a neutral default so a missing collaborator degrades a factor instead
// of blocking a run, and every implementation is mockable in tests.
package ports

import (
	"context"

	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/model"
)

// SoilSample is a soil assessment for a point. Score is normalized to [0, 1].
type SoilSample struct {
	PH                float64 `json:"ph"`
	Category          string  `json:"category"`
	ContaminationRisk string  `json:"contamination_risk"`
	Score             float64 `json:"score"`
}

// SoilAssessor supplies soil suitability for a location.
type SoilAssessor interface {
	Assess(ctx context.Context, p geo.Point) (*SoilSample, error)
}

// ClimateSummary holds normalized climate scalars for a point.
type ClimateSummary struct {
	Solar         float64 `json:"solar"`
	Temperature   float64 `json:"temperature"`
	Precipitation float64 `json:"precipitation"`
	Score         float64 `json:"score"`
}

// ClimateProvider supplies growing-climate suitability for a location.
type ClimateProvider interface {
	Summary(ctx context.Context, p geo.Point) (*ClimateSummary, error)
}

// DemographicsProvider supplies normalized population density in [0, 1].
type DemographicsProvider interface {
	Density(ctx context.Context, p geo.Point) (float64, error)
}

// VulnerabilityProvider supplies a normalized social-vulnerability index
// in [0, 1] (higher means more vulnerable).
type VulnerabilityProvider interface {
	Index(ctx context.Context, p geo.Point) (float64, error)
}

// TransitLocator answers whether a transit stop exists near a point.
type TransitLocator interface {
	HasStopNear(ctx context.Context, p geo.Point, radiusM float64) (bool, error)
}

// VacantSpaceQuerier lists vacant or underutilized parcels inside a box.
type VacantSpaceQuerier interface {
	Query(ctx context.Context, bbox geo.BBox) ([]model.CandidateLocation, error)
}

// Outlet is an existing food outlet supplied by an upstream inventory.
type Outlet struct {
	Location geo.Point `json:"location"`
	Category string    `json:"category"`
	Quality  float64   `json:"quality"`
}

// OutletSource lists existing food outlets inside a box.
type OutletSource interface {
	Outlets(ctx context.Context, bbox geo.BBox) ([]Outlet, error)
}

// NeutralDensity is the population factor value used when no demographics
// collaborator is configured.
const NeutralDensity = 0.5

// StaticDemographics serves a fixed density grid, falling back to a neutral
// constant for points outside every cell.
type StaticDemographics struct {
	Cells []DensityCell
}

// DensityCell is one cell of a precomputed demographic grid.
type DensityCell struct {
	Bounds  geo.BBox `json:"bounds"`
	Density float64  `json:"density"`
}

// Density implements DemographicsProvider.
func (s *StaticDemographics) Density(_ context.Context, p geo.Point) (float64, error) {
	for _, c := range s.Cells {
		if c.Bounds.Contains(p) {
			return clamp01(c.Density), nil
		}
	}
	return NeutralDensity, nil
}

// StaticOutlets serves a fixed outlet inventory.
type StaticOutlets struct {
	All []Outlet
}

// Outlets implements OutletSource.
func (s *StaticOutlets) Outlets(_ context.Context, bbox geo.BBox) ([]Outlet, error) {
	var out []Outlet
	for _, o := range s.All {
		if bbox.Contains(o.Location) {
			out = append(out, o)
		}
	}
	return out, nil
}

// NeutralVulnerability is the index served for points outside every cell of
// a static vulnerability grid.
const NeutralVulnerability = 0.5

// StaticSoil serves a fixed soil-assessment grid, falling back to a neutral
// sample for points outside every cell.
type StaticSoil struct {
	Cells []SoilCell
}

// SoilCell is one cell of a precomputed soil-assessment grid.
type SoilCell struct {
	Bounds geo.BBox   `json:"bounds"`
	Sample SoilSample `json:"sample"`
}

// Assess implements SoilAssessor.
func (s *StaticSoil) Assess(_ context.Context, p geo.Point) (*SoilSample, error) {
	for _, c := range s.Cells {
		if c.Bounds.Contains(p) {
			sample := c.Sample
			sample.Score = clamp01(sample.Score)
			return &sample, nil
		}
	}
	return &SoilSample{Category: "unknown", Score: 0.5}, nil
}

// StaticVulnerability serves a fixed social-vulnerability grid.
type StaticVulnerability struct {
	Cells []VulnerabilityCell
}

// VulnerabilityCell is one cell of a precomputed vulnerability grid.
type VulnerabilityCell struct {
	Bounds geo.BBox `json:"bounds"`
	Index  float64  `json:"index"`
}

// Index implements VulnerabilityProvider.
func (s *StaticVulnerability) Index(_ context.Context, p geo.Point) (float64, error) {
	for _, c := range s.Cells {
		if c.Bounds.Contains(p) {
			return clamp01(c.Index), nil
		}
	}
	return NeutralVulnerability, nil
}

// StaticVacantSpaces serves a fixed vacant-parcel inventory.
type StaticVacantSpaces struct {
	All []model.CandidateLocation
}

// Query implements VacantSpaceQuerier.
func (s *StaticVacantSpaces) Query(_ context.Context, bbox geo.BBox) ([]model.CandidateLocation, error) {
	var out []model.CandidateLocation
	for _, c := range s.All {
		if bbox.Contains(c.Center) {
			out = append(out, c)
		}
	}
	return out, nil
}

// StaticClimate serves one climate summary for the whole target area, the
// shape in which upstream climate collaborators deliver their data.
type StaticClimate struct {
	Value ClimateSummary
}

// Summary implements ClimateProvider.
func (s *StaticClimate) Summary(_ context.Context, _ geo.Point) (*ClimateSummary, error) {
	v := s.Value
	v.Score = clamp01(v.Score)
	return &v, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
