// Package model holds the shared domain types for the placement engine.
package model

import (
	"github.com/sells-group/foodaccess-cli/internal/geo"
)

// CandidateLocation is a grid cell or supplied parcel evaluated as a
// possible intervention site. Candidates are ephemeral: created per plan
// run and discarded after.
type CandidateLocation struct {
	ID        string    `json:"id"`
	Center    geo.Point `json:"center"`
	Bounds    geo.BBox  `json:"bounds"`
	AreaM2    float64   `json:"area_m2"`
	Source    string    `json:"source"` // "grid" or "parcel"
	Category  string    `json:"category,omitempty"`
	Utilities []string  `json:"utilities,omitempty"`
	SlopePct  *float64  `json:"slope_pct,omitempty"`
}

// HasUtility reports whether the candidate lists the given utility.
func (c CandidateLocation) HasUtility(name string) bool {
	for _, u := range c.Utilities {
		if u == name {
			return true
		}
	}
	return false
}

// EstimatedImpact is the projected effect of placing one intervention at a
// scored location.
type EstimatedImpact struct {
	PopulationReached int     `json:"population_reached"`
	DesertReduction   float64 `json:"desert_reduction"`
	AccessDelta       float64 `json:"access_delta"`
	EquityDelta       float64 `json:"equity_delta"`
}

// TypeScore is the scoring outcome for one (candidate, intervention type)
// pair. Factors maps factor key to its computed value in [0, 1].
type TypeScore struct {
	Viable      bool               `json:"viable"`
	Score       float64            `json:"score"`
	Suitability string             `json:"suitability"`
	Factors     map[string]float64 `json:"factors,omitempty"`
	Impact      EstimatedImpact    `json:"impact"`
}

// ScoredCandidate couples a candidate with its per-type scores. BestUse is
// the type key with the highest score among viable types, or empty when no
// type is viable. AdjustedScore is set by the equity stage and never falls
// below RawScore.
type ScoredCandidate struct {
	Location      CandidateLocation    `json:"location"`
	Scores        map[string]TypeScore `json:"scores"`
	BestUse       string               `json:"best_use,omitempty"`
	RawScore      float64              `json:"raw_score"`
	AdjustedScore float64              `json:"adjusted_score"`
}

// Viable reports whether at least one intervention type passed its gate.
func (s ScoredCandidate) Viable() bool {
	return s.BestUse != ""
}

// Suitability categories for a raw score.
const (
	SuitabilityExcellent = "EXCELLENT"
	SuitabilityGood      = "GOOD"
	SuitabilityModerate  = "MODERATE"
	SuitabilityFair      = "FAIR"
	SuitabilityPoor      = "POOR"
)

// SuitabilityFor maps a score in [0, 1] to its category.
func SuitabilityFor(score float64) string {
	switch {
	case score >= 0.8:
		return SuitabilityExcellent
	case score >= 0.6:
		return SuitabilityGood
	case score >= 0.4:
		return SuitabilityModerate
	case score >= 0.2:
		return SuitabilityFair
	default:
		return SuitabilityPoor
	}
}

// Priority tiers for a recommendation.
const (
	PriorityCritical = "CRITICAL"
	PriorityHigh     = "HIGH"
	PriorityMedium   = "MEDIUM"
	PriorityLow      = "LOW"
)

// PriorityFor maps an adjusted score to its priority tier.
func PriorityFor(score float64) string {
	switch {
	case score >= 0.8:
		return PriorityCritical
	case score >= 0.6:
		return PriorityHigh
	case score >= 0.4:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
