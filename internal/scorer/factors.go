package scorer

import (
	"context"

	"github.com/sells-group/foodaccess-cli/internal/catalog"
	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/model"
	"github.com/sells-group/foodaccess-cli/internal/ports"
)

const (
	// roadConnectivityBase is the fixed road-connectivity contribution to
	// the accessibility factor; transit presence supplies the rest.
	roadConnectivityBase = 0.4

	// transitSearchRadiusM is how far to look for a transit stop.
	transitSearchRadiusM = 500

	// competitionRadiusM bounds the nearby-competitor count.
	competitionRadiusM = 1000

	// centralityScaleM is the distance at which centrality reaches zero.
	centralityScaleM = 10000
)

// factorValue computes one factor's value in [0, 1] for a candidate. The
// second return is false when the factor degrades (failed or missing
// collaborator) and must be dropped from the weighted sum for this call.
// Collaborator-backed factors are invoked lazily, only for factors that
// carry weight, and responses are shared through the rounded-coordinate
// cache.
func (s *Scorer) factorValue(ctx context.Context, key string, loc model.CandidateLocation, typ catalog.Type) (float64, bool) {
	switch key {
	case catalog.FactorAccessibility:
		return s.accessibility(ctx, loc)
	case catalog.FactorPopulation:
		return s.population(ctx, loc)
	case catalog.FactorCompetition:
		return s.competition(loc, typ), true
	case catalog.FactorSoil:
		return s.soil(ctx, loc)
	case catalog.FactorClimate:
		return s.climate(ctx, loc)
	case catalog.FactorEquity:
		return s.vulnerability(ctx, loc)
	case catalog.FactorInfrastructure:
		return infrastructure(loc, typ), true
	case catalog.FactorCommunity:
		return s.community(loc), true
	case catalog.FactorCentrality:
		return s.centrality(loc), true
	case catalog.FactorWater:
		if loc.HasUtility("water") {
			return 0.9, true
		}
		return 0.3, true
	default:
		// innovation, visibility, parking, and future keys: no signal yet,
		// score neutral so the weight neither rewards nor penalizes.
		return 0.5, true
	}
}

// accessibility combines transit-stop presence with a fixed road-connectivity
// constant.
func (s *Scorer) accessibility(ctx context.Context, loc model.CandidateLocation) (float64, bool) {
	if s.ports.Transit == nil {
		return roadConnectivityBase, true
	}
	near, err := cachedCall(ctx, s, "transit", loc.Center, func(ctx context.Context) (bool, error) {
		return s.ports.Transit.HasStopNear(ctx, loc.Center, transitSearchRadiusM)
	})
	if err != nil {
		s.recordFailure("transit", err)
		return 0, false
	}
	if near {
		return roadConnectivityBase + 0.6, true
	}
	return roadConnectivityBase, true
}

// population delegates to the demographics collaborator, defaulting to a
// neutral constant when none is configured.
func (s *Scorer) population(ctx context.Context, loc model.CandidateLocation) (float64, bool) {
	if s.ports.Demographics == nil {
		return ports.NeutralDensity, true
	}
	density, err := cachedCall(ctx, s, "demographics", loc.Center, func(ctx context.Context) (float64, error) {
		return s.ports.Demographics.Density(ctx, loc.Center)
	})
	if err != nil {
		s.recordFailure("demographics", err)
		return 0, false
	}
	return clamp01(density), true
}

// competition scores higher where fewer same-category outlets operate nearby:
// 1 − min(count/10, 1).
func (s *Scorer) competition(loc model.CandidateLocation, typ catalog.Type) float64 {
	count := 0
	for _, o := range s.outlets {
		if !matchesCategory(o.Category, typ.CompetitorCategories) {
			continue
		}
		if geo.Haversine(loc.Center, o.Location) <= competitionRadiusM {
			count++
		}
	}
	frac := float64(count) / 10.0
	if frac > 1 {
		frac = 1
	}
	return 1 - frac
}

func (s *Scorer) soil(ctx context.Context, loc model.CandidateLocation) (float64, bool) {
	if s.ports.Soil == nil {
		s.recordMissing("soil")
		return 0, false
	}
	sample, err := cachedCall(ctx, s, "soil", loc.Center, func(ctx context.Context) (*ports.SoilSample, error) {
		return s.ports.Soil.Assess(ctx, loc.Center)
	})
	if err != nil {
		s.recordFailure("soil", err)
		return 0, false
	}
	return clamp01(sample.Score), true
}

func (s *Scorer) climate(ctx context.Context, loc model.CandidateLocation) (float64, bool) {
	if s.ports.Climate == nil {
		s.recordMissing("climate")
		return 0, false
	}
	summary, err := cachedCall(ctx, s, "climate", loc.Center, func(ctx context.Context) (*ports.ClimateSummary, error) {
		return s.ports.Climate.Summary(ctx, loc.Center)
	})
	if err != nil {
		s.recordFailure("climate", err)
		return 0, false
	}
	return clamp01(summary.Score), true
}

func (s *Scorer) vulnerability(ctx context.Context, loc model.CandidateLocation) (float64, bool) {
	if s.ports.Vulnerability == nil {
		s.recordMissing("vulnerability")
		return 0, false
	}
	idx, err := cachedCall(ctx, s, "vulnerability", loc.Center, func(ctx context.Context) (float64, error) {
		return s.ports.Vulnerability.Index(ctx, loc.Center)
	})
	if err != nil {
		s.recordFailure("vulnerability", err)
		return 0, false
	}
	return clamp01(idx), true
}

// infrastructure is the fraction of the type's required utilities present at
// the candidate, or 0.5 when the type requires none.
func infrastructure(loc model.CandidateLocation, typ catalog.Type) float64 {
	required := typ.Requirements.Utilities
	if len(required) == 0 {
		return 0.5
	}
	present := 0
	for _, u := range required {
		if loc.HasUtility(u) {
			present++
		}
	}
	return float64(present) / float64(len(required))
}

// community scores 1.0 inside an identified food-desert zone, 0.3 outside.
func (s *Scorer) community(loc model.CandidateLocation) float64 {
	for _, z := range s.desertZones {
		if z.Contains(loc.Center) {
			return 1.0
		}
	}
	return 0.3
}

// centrality decays linearly with distance from the city center.
func (s *Scorer) centrality(loc model.CandidateLocation) float64 {
	if s.cityCenter == nil {
		return 0.5
	}
	d := geo.Haversine(loc.Center, *s.cityCenter)
	frac := d / centralityScaleM
	if frac > 1 {
		frac = 1
	}
	return 1 - frac
}

// recordMissing notes a factor skipped because its collaborator is absent.
func (s *Scorer) recordMissing(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.failures[provider]
	if !ok {
		rec = &failureRecord{}
		s.failures[provider] = rec
	}
	rec.count++
}

// cachedCall routes a collaborator lookup through the rounded-coordinate
// response cache and records call metrics.
func cachedCall[T any](ctx context.Context, s *Scorer, provider string, p geo.Point, fn func(ctx context.Context) (T, error)) (T, error) {
	invoked := false
	val, err := ports.Do(s.cache, ports.Key(provider, p), func() (T, error) {
		invoked = true
		v, callErr := fn(ctx)
		if callErr == nil {
			s.metrics.CollaboratorCalls.WithLabelValues(provider, "success").Inc()
		}
		return v, callErr
	})
	if invoked {
		s.metrics.CacheLookups.WithLabelValues("miss").Inc()
	} else {
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
	}
	return val, err
}

func matchesCategory(category string, competitors []string) bool {
	for _, c := range competitors {
		if c == category {
			return true
		}
	}
	return false
}
