// Package scorer evaluates every (candidate, intervention type) pair: a
// hard-requirement gate followed by a weighted multi-factor suitability
// score and an estimated impact.
package scorer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/foodaccess-cli/internal/catalog"
	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/model"
	"github.com/sells-group/foodaccess-cli/internal/monitoring"
	"github.com/sells-group/foodaccess-cli/internal/ports"
)

// Ports bundles the optional collaborator backends used by individual
// factors. Any entry may be nil; the corresponding factor degrades to
// absent and the degradation is surfaced in the run diagnostics.
type Ports struct {
	Soil          ports.SoilAssessor
	Climate       ports.ClimateProvider
	Demographics  ports.DemographicsProvider
	Vulnerability ports.VulnerabilityProvider
	Transit       ports.TransitLocator
}

// Scorer scores candidates against a catalog. Collaborator responses are
// cached by rounded coordinate so near-identical grid cells share lookups,
// and scoring fans out across candidates with bounded concurrency.
type Scorer struct {
	catalog     *catalog.Catalog
	ports       Ports
	cache       *ports.Cache
	outlets     []ports.Outlet
	desertZones []geo.Zone
	cityCenter  *geo.Point
	concurrency int
	metrics     *monitoring.Metrics

	mu       sync.Mutex
	failures map[string]*failureRecord
}

type failureRecord struct {
	count    int
	firstErr error
}

// Option configures the Scorer.
type Option func(*Scorer)

// WithConcurrency bounds the scoring fan-out. Default: 8.
func WithConcurrency(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithOutlets supplies the existing-outlet inventory for the competition
// factor.
func WithOutlets(outlets []ports.Outlet) Option {
	return func(s *Scorer) {
		s.outlets = outlets
	}
}

// WithDesertZones supplies the precomputed food-desert zones for the
// community factor.
func WithDesertZones(zones []geo.Zone) Option {
	return func(s *Scorer) {
		s.desertZones = zones
	}
}

// WithCityCenter supplies the city center for the centrality factor.
func WithCityCenter(center geo.Point) Option {
	return func(s *Scorer) {
		s.cityCenter = &center
	}
}

// WithMetrics installs prometheus collectors.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Scorer) {
		s.metrics = m
	}
}

// New creates a Scorer for the given catalog and collaborator ports.
func New(cat *catalog.Catalog, p Ports, opts ...Option) *Scorer {
	s := &Scorer{
		catalog:     cat,
		ports:       p,
		cache:       ports.NewCache(),
		concurrency: 8,
		metrics:     monitoring.NewNopMetrics(),
		failures:    make(map[string]*failureRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScoreAll scores every candidate against every catalog type with bounded
// concurrency. It returns the scored candidates in input order plus a
// diagnostics list describing any degraded factors. Individual collaborator
// failures never abort the batch.
func (s *Scorer) ScoreAll(ctx context.Context, locs []model.CandidateLocation) ([]model.ScoredCandidate, []string, error) {
	log := zap.L().With(zap.Int("candidates", len(locs)), zap.Int("types", s.catalog.Len()))
	log.Info("scoring candidate pool")

	results := make([]model.ScoredCandidate, len(locs))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	for i, loc := range locs {
		i, loc := i, loc
		eg.Go(func() error {
			results[i] = s.scoreOne(gCtx, loc)
			s.metrics.CandidatesScored.Inc()
			return gCtx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	diags := s.drainDiagnostics()
	viable := 0
	for _, r := range results {
		if r.Viable() {
			viable++
		}
	}
	log.Info("scoring complete", zap.Int("viable", viable), zap.Int("diagnostics", len(diags)))
	return results, diags, nil
}

// scoreOne evaluates one candidate against every type. Types whose hard
// requirements fail are excluded from the scored set entirely.
func (s *Scorer) scoreOne(ctx context.Context, loc model.CandidateLocation) model.ScoredCandidate {
	sc := model.ScoredCandidate{
		Location: loc,
		Scores:   make(map[string]model.TypeScore),
	}

	for _, typ := range s.catalog.All() {
		if !s.passesGate(loc, typ) {
			continue
		}

		score, factors := s.weightedScore(ctx, loc, typ)
		sc.Scores[typ.Key] = model.TypeScore{
			Viable:      true,
			Score:       score,
			Suitability: model.SuitabilityFor(score),
			Factors:     factors,
			Impact:      impactFor(typ, score),
		}

		if sc.BestUse == "" || score > sc.Scores[sc.BestUse].Score {
			sc.BestUse = typ.Key
		}
	}

	if sc.BestUse != "" {
		sc.RawScore = sc.Scores[sc.BestUse].Score
		sc.AdjustedScore = sc.RawScore
	}
	return sc
}

// passesGate applies the hard requirements: minimum area, maximum slope
// (when slope is known), and required utilities.
func (s *Scorer) passesGate(loc model.CandidateLocation, typ catalog.Type) bool {
	req := typ.Requirements
	if loc.AreaM2 < req.MinAreaM2 {
		return false
	}
	if req.MaxSlopePct != nil && loc.SlopePct != nil && *loc.SlopePct > *req.MaxSlopePct {
		return false
	}
	for _, u := range req.Utilities {
		if !loc.HasUtility(u) {
			return false
		}
	}
	return true
}

// weightedScore computes the factor-weighted suitability score. A factor
// that degrades (failed or absent collaborator) contributes zero; the
// surviving terms are never rescaled, so a candidate cannot outscore one
// with the same factor values and more of them known. Factor keys are
// walked in sorted order for bit-for-bit determinism.
func (s *Scorer) weightedScore(ctx context.Context, loc model.CandidateLocation, typ catalog.Type) (float64, map[string]float64) {
	keys := make([]string, 0, len(typ.Weights))
	for k, w := range typ.Weights {
		if w > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	factors := make(map[string]float64, len(keys))
	var total float64
	for _, key := range keys {
		v, ok := s.factorValue(ctx, key, loc, typ)
		if !ok {
			continue
		}
		factors[key] = v
		total += v * typ.Weights[key]
	}
	return clamp01(total), factors
}

// impactFor derives the estimated-impact block for a scored pair. Desert
// reduction is capped at 0.2 per intervention.
func impactFor(typ catalog.Type, score float64) model.EstimatedImpact {
	desert := 0.2 * score
	if desert > 0.2 {
		desert = 0.2
	}
	return model.EstimatedImpact{
		PopulationReached: int(typ.ReachMultiplier * score),
		DesertReduction:   desert,
		AccessDelta:       0.3 * score,
		EquityDelta:       0.25 * score,
	}
}

// recordFailure notes a degraded collaborator call for the diagnostics list.
func (s *Scorer) recordFailure(provider string, err error) {
	s.metrics.CollaboratorCalls.WithLabelValues(provider, "error").Inc()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.failures[provider]
	if !ok {
		rec = &failureRecord{firstErr: err}
		s.failures[provider] = rec
	}
	rec.count++
}

func (s *Scorer) drainDiagnostics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	providers := make([]string, 0, len(s.failures))
	for p := range s.failures {
		providers = append(providers, p)
	}
	sort.Strings(providers)

	var diags []string
	for _, p := range providers {
		rec := s.failures[p]
		if rec.firstErr != nil {
			diags = append(diags, fmt.Sprintf(
				"%s factor degraded for %d lookup(s): %v", p, rec.count, rec.firstErr))
		} else {
			diags = append(diags, fmt.Sprintf(
				"%s collaborator not configured; factor skipped for %d candidate(s)", p, rec.count))
		}
	}
	s.failures = make(map[string]*failureRecord)
	return diags
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
