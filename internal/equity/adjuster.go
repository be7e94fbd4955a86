// Package equity re-weights and thins the scored candidate pool: a proximity
// boost toward underserved zones, a best-effort minimum-coverage re-rank, and
// a declustering walk that enforces spatial separation.
package equity

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/model"
)

// coverageReachM is how close a candidate must be to a zone center to count
// as covering it during the re-rank, when the zone's own radius is smaller.
const coverageReachM = 2000

// Adjuster applies the equity stages to a scored pool.
type Adjuster struct {
	zones        []geo.Zone
	equityWeight float64
	minCoverage  float64
	maxClusterM  float64
}

// New creates an Adjuster. equityWeight scales the proximity boost,
// minCoverage is the target fraction of zones with a nearby candidate
// (best-effort only), and maxClusterM is the minimum separation between
// accepted candidates.
func New(zones []geo.Zone, equityWeight, minCoverage, maxClusterM float64) *Adjuster {
	return &Adjuster{
		zones:        zones,
		equityWeight: equityWeight,
		minCoverage:  minCoverage,
		maxClusterM:  maxClusterM,
	}
}

// Adjust runs boost, coverage re-rank, and decluster in order, returning a
// spatially dispersed pool ranked by adjusted score and coverage preference.
func (a *Adjuster) Adjust(scored []model.ScoredCandidate) []model.ScoredCandidate {
	boosted := a.Boost(scored)
	ranked := a.RerankForCoverage(boosted)
	declustered := a.Decluster(ranked)

	zap.L().Info("equity adjustment complete",
		zap.Int("input", len(scored)),
		zap.Int("declustered", len(declustered)),
		zap.Int("zones", len(a.zones)),
	)
	return declustered
}

// Boost raises each candidate's adjusted score by its proximity to the
// nearest underserved zone: adjusted = min(1, raw + proximity × weight).
// The raw score is retained and the adjusted score never falls below it.
func (a *Adjuster) Boost(scored []model.ScoredCandidate) []model.ScoredCandidate {
	out := make([]model.ScoredCandidate, len(scored))
	copy(out, scored)
	for i := range out {
		prox := a.proximityFactor(out[i].Location.Center)
		adjusted := out[i].RawScore + prox*a.equityWeight
		if adjusted > 1 {
			adjusted = 1
		}
		out[i].AdjustedScore = adjusted
	}
	return out
}

// proximityFactor maps distance to the nearest zone onto [0, 1] piecewise:
// <500m → 1.0, <1000m → 0.8, <2000m → 0.5, <5000m → 0.2, else 0.
func (a *Adjuster) proximityFactor(p geo.Point) float64 {
	if len(a.zones) == 0 {
		return 0
	}
	nearest := geo.Haversine(p, a.zones[0].Center)
	for _, z := range a.zones[1:] {
		if d := geo.Haversine(p, z.Center); d < nearest {
			nearest = d
		}
	}
	switch {
	case nearest < 500:
		return 1.0
	case nearest < 1000:
		return 0.8
	case nearest < 2000:
		return 0.5
	case nearest < 5000:
		return 0.2
	default:
		return 0
	}
}

// RerankForCoverage promotes candidates near zones not yet covered by a
// higher-ranked candidate, until the minCoverage fraction is reached. This
// is a greedy heuristic: it improves zone coverage but does not guarantee
// that minCoverage is achieved.
func (a *Adjuster) RerankForCoverage(scored []model.ScoredCandidate) []model.ScoredCandidate {
	remaining := make([]model.ScoredCandidate, len(scored))
	copy(remaining, scored)
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].AdjustedScore > remaining[j].AdjustedScore
	})

	if len(a.zones) == 0 || a.minCoverage <= 0 {
		return remaining
	}

	covered := make([]bool, len(a.zones))
	coveredCount := 0
	target := a.minCoverage * float64(len(a.zones))

	var out []model.ScoredCandidate
	for float64(coveredCount) < target && len(remaining) > 0 {
		pick := -1
		for i, c := range remaining {
			if a.coversUncoveredZone(c, covered) {
				pick = i
				break
			}
		}
		if pick < 0 {
			break // no remaining candidate reaches an uncovered zone
		}
		c := remaining[pick]
		remaining = append(remaining[:pick], remaining[pick+1:]...)
		out = append(out, c)
		coveredCount += a.markCovered(c, covered)
	}

	return append(out, remaining...)
}

func (a *Adjuster) coversUncoveredZone(c model.ScoredCandidate, covered []bool) bool {
	for zi, z := range a.zones {
		if covered[zi] {
			continue
		}
		if geo.Haversine(c.Location.Center, z.Center) <= reach(z) {
			return true
		}
	}
	return false
}

func (a *Adjuster) markCovered(c model.ScoredCandidate, covered []bool) int {
	newly := 0
	for zi, z := range a.zones {
		if covered[zi] {
			continue
		}
		if geo.Haversine(c.Location.Center, z.Center) <= reach(z) {
			covered[zi] = true
			newly++
		}
	}
	return newly
}

func reach(z geo.Zone) float64 {
	if z.RadiusM > coverageReachM {
		return z.RadiusM
	}
	return coverageReachM
}

// Decluster walks the ranked list and accepts a candidate only if it sits at
// least maxClusterDistance from every already-accepted candidate. On each
// acceptance, remaining candidates within half that distance are marked
// ineligible outright.
func (a *Adjuster) Decluster(ranked []model.ScoredCandidate) []model.ScoredCandidate {
	if a.maxClusterM <= 0 {
		return ranked
	}

	ineligible := make([]bool, len(ranked))
	var accepted []model.ScoredCandidate

	for i, c := range ranked {
		if ineligible[i] {
			continue
		}
		tooClose := false
		for _, acc := range accepted {
			if geo.Haversine(c.Location.Center, acc.Location.Center) < a.maxClusterM {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		accepted = append(accepted, c)
		for j := i + 1; j < len(ranked); j++ {
			if ineligible[j] {
				continue
			}
			if geo.Haversine(c.Location.Center, ranked[j].Location.Center) < a.maxClusterM/2 {
				ineligible[j] = true
			}
		}
	}
	return accepted
}
