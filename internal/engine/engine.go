// Package engine orchestrates a full placement analysis run: candidate
// generation, scoring, equity adjustment, portfolio optimization, and
// recommendation assembly.
package engine

import (
	"context"
	"sort"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/foodaccess-cli/internal/candidate"
	"github.com/sells-group/foodaccess-cli/internal/catalog"
	"github.com/sells-group/foodaccess-cli/internal/equity"
	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/impact"
	"github.com/sells-group/foodaccess-cli/internal/model"
	"github.com/sells-group/foodaccess-cli/internal/monitoring"
	"github.com/sells-group/foodaccess-cli/internal/optimizer"
	"github.com/sells-group/foodaccess-cli/internal/ports"
	"github.com/sells-group/foodaccess-cli/internal/recommend"
	"github.com/sells-group/foodaccess-cli/internal/scorer"
	"github.com/sells-group/foodaccess-cli/internal/store"
)

// Config holds the engine tuning knobs.
type Config struct {
	GridResolution      float64
	MaxSuggestions      int
	EquityWeight        float64
	MinCoverage         float64
	MaxClusterDistanceM float64
	ScoreConcurrency    int
	Seed                uint64
	Optimizer           optimizer.Config
}

// DefaultConfig returns the standard engine tuning.
func DefaultConfig() Config {
	return Config{
		GridResolution:      0.01,
		MaxSuggestions:      10,
		EquityWeight:        0.3,
		MinCoverage:         0.6,
		MaxClusterDistanceM: 800,
		ScoreConcurrency:    8,
		Optimizer:           optimizer.DefaultConfig(),
	}
}

// Request holds the inputs for one plan run.
type Request struct {
	City       string
	BBox       geo.BBox
	CityCenter geo.Point
	Types      []string // intervention type keys; empty means all
	Parcels    []model.CandidateLocation
	Zones      []geo.Zone
	Outlets    []ports.Outlet
}

// Engine runs placement analyses. It is safe for sequential reuse across
// runs; each run builds its own scorer so per-run inputs never leak.
type Engine struct {
	cfg          Config
	catalog      *catalog.Catalog
	scorerPorts  scorer.Ports
	outletSource ports.OutletSource
	vacantSource ports.VacantSpaceQuerier
	store        store.Store
	metrics      *monitoring.Metrics
	clock        clockwork.Clock
}

// Option configures the Engine.
type Option func(*Engine)

// WithStore enables run persistence.
func WithStore(st store.Store) Option {
	return func(e *Engine) { e.store = st }
}

// WithMetrics installs prometheus collectors.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the wall clock. Used by tests.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithOutletSource installs a live outlet source queried per bounding box,
// merged with any outlets supplied on the request.
func WithOutletSource(src ports.OutletSource) Option {
	return func(e *Engine) { e.outletSource = src }
}

// WithVacantSource installs a vacant-space source queried per bounding box,
// merged with any parcels supplied on the request.
func WithVacantSource(q ports.VacantSpaceQuerier) Option {
	return func(e *Engine) { e.vacantSource = q }
}

// New creates an Engine.
func New(cfg Config, cat *catalog.Catalog, sp scorer.Ports, opts ...Option) *Engine {
	e := &Engine{
		cfg:         cfg,
		catalog:     cat,
		scorerPorts: sp,
		metrics:     monitoring.NewNopMetrics(),
		clock:       clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Plan executes one full placement analysis.
func (e *Engine) Plan(ctx context.Context, req Request) (*model.PlanResult, error) {
	start := e.clock.Now()
	e.metrics.RunsStarted.Inc()
	log := zap.L().With(zap.String("city", req.City))
	log.Info("plan run starting")

	if err := req.BBox.Validate(); err != nil {
		e.metrics.RunsFailed.Inc()
		return nil, err
	}

	run, err := e.createRun(ctx, req)
	if err != nil {
		e.metrics.RunsFailed.Inc()
		return nil, err
	}

	result, err := e.plan(ctx, req)
	if err != nil {
		e.metrics.RunsFailed.Inc()
		e.finishRun(ctx, run, model.RunStatusFailed, nil)
		return nil, err
	}
	result.DurationMS = e.clock.Since(start).Milliseconds()

	e.metrics.RunsCompleted.Inc()
	e.finishRun(ctx, run, model.RunStatusComplete, result)
	log.Info("plan run complete",
		zap.Int("candidates", result.CandidateCount),
		zap.Int("recommendations", len(result.Recommendations)),
		zap.Float64("fitness", result.Fitness),
		zap.Int64("duration_ms", result.DurationMS),
	)
	return result, nil
}

func (e *Engine) plan(ctx context.Context, req Request) (*model.PlanResult, error) {
	cat, err := e.runCatalog(req.Types)
	if err != nil {
		return nil, err
	}

	gen, err := candidate.NewGenerator(e.cfg.GridResolution)
	if err != nil {
		return nil, err
	}
	parcels, parcelDiags := e.gatherParcels(ctx, req)
	pool, err := gen.Generate(ctx, req.BBox, parcels)
	if err != nil {
		return nil, err
	}

	outlets, outletDiags := e.gatherOutlets(ctx, req)

	sc := scorer.New(cat, e.scorerPorts,
		scorer.WithConcurrency(e.cfg.ScoreConcurrency),
		scorer.WithOutlets(outlets),
		scorer.WithDesertZones(req.Zones),
		scorer.WithCityCenter(req.CityCenter),
		scorer.WithMetrics(e.metrics),
	)

	scoreStart := e.clock.Now()
	scored, diags, err := sc.ScoreAll(ctx, pool)
	if err != nil {
		return nil, err
	}
	e.metrics.ScoringDuration.Observe(e.clock.Since(scoreStart).Seconds())
	diags = append(append(parcelDiags, outletDiags...), diags...)

	viable := make([]model.ScoredCandidate, 0, len(scored))
	for _, s := range scored {
		if s.Viable() {
			viable = append(viable, s)
		}
	}

	result := &model.PlanResult{
		CandidateCount: len(pool),
		Diagnostics:    diags,
		Impact:         impact.Aggregate(nil),
	}
	if len(viable) == 0 {
		result.Diagnostics = append(result.Diagnostics,
			"no candidate passed any intervention type's hard requirements; widen the area or relax the catalog")
		return result, nil
	}

	adjusted := equity.New(req.Zones, e.cfg.EquityWeight, e.cfg.MinCoverage, e.cfg.MaxClusterDistanceM).
		Adjust(viable)

	solution, fitness, err := e.optimize(ctx, req.BBox, cat, adjusted)
	if err != nil {
		return nil, err
	}

	selections := e.trim(solution, adjusted)
	recs, err := recommend.NewBuilder(cat).Build(selections)
	if err != nil {
		return nil, err
	}

	result.Fitness = fitness
	result.Placements = placements(selections)
	result.Recommendations = recs
	result.Impact = impact.Aggregate(recs)
	result.Visualizations = visualizations(recs, adjusted, cat)
	return result, nil
}

// runCatalog restricts the catalog to the requested type keys.
func (e *Engine) runCatalog(types []string) (*catalog.Catalog, error) {
	if len(types) == 0 {
		return e.catalog, nil
	}
	cat, err := e.catalog.Filter(types)
	if err != nil {
		return nil, eris.Wrap(err, "engine: restrict catalog")
	}
	return cat, nil
}

// gatherOutlets merges request-supplied outlets with the live source, if one
// is configured. Source failures degrade to the supplied list.
func (e *Engine) gatherOutlets(ctx context.Context, req Request) ([]ports.Outlet, []string) {
	outlets := req.Outlets
	if e.outletSource == nil {
		return outlets, nil
	}

	fetched, err := e.outletSource.Outlets(ctx, req.BBox)
	if err != nil {
		zap.L().Warn("outlet source failed, continuing with supplied outlets", zap.Error(err))
		return outlets, []string{"outlet source degraded: " + err.Error()}
	}
	return append(outlets, fetched...), nil
}

// gatherParcels merges request-supplied parcels with the vacant-space
// source, if one is configured. Source failures degrade to the supplied
// list.
func (e *Engine) gatherParcels(ctx context.Context, req Request) ([]model.CandidateLocation, []string) {
	parcels := req.Parcels
	if e.vacantSource == nil {
		return parcels, nil
	}

	found, err := e.vacantSource.Query(ctx, req.BBox)
	if err != nil {
		zap.L().Warn("vacant space source failed, continuing with supplied parcels", zap.Error(err))
		return parcels, []string{"vacant space source degraded: " + err.Error()}
	}
	return append(parcels, found...), nil
}

func (e *Engine) optimize(ctx context.Context, bbox geo.BBox, cat *catalog.Catalog, adjusted []model.ScoredCandidate) (optimizer.Solution, float64, error) {
	members := make([]optimizer.Member, 0, len(adjusted))
	for _, s := range adjusted {
		typ, err := cat.Get(s.BestUse)
		if err != nil {
			return optimizer.Solution{}, 0, eris.Wrapf(err, "engine: candidate %s", s.Location.ID)
		}
		members = append(members, optimizer.Member{
			LocationID:           s.Location.ID,
			Center:               s.Location.Center,
			Type:                 s.BestUse,
			Score:                s.AdjustedScore,
			PopulationServed:     float64(s.Scores[s.BestUse].Impact.PopulationReached),
			SetupCost:            typ.SetupCost,
			OperatingCostMonthly: typ.OperatingCostMonthly,
			ServiceRadiusM:       typ.ServiceRadiusM,
		})
	}

	eval := optimizer.NewEvaluator(bbox, cat.Len())
	opt := optimizer.New(e.cfg.Optimizer, eval, e.cfg.Seed)
	solution, fitness, err := opt.Run(ctx, members)
	if err != nil {
		return optimizer.Solution{}, 0, err
	}
	e.metrics.GenerationsRun.Add(float64(opt.Generations()))
	return solution, fitness, nil
}

// trim reduces the winning solution to the suggestion cap, keeping the
// highest-scoring members, and resolves each back to its scored candidate.
func (e *Engine) trim(solution optimizer.Solution, adjusted []model.ScoredCandidate) []recommend.Selection {
	byID := make(map[string]model.ScoredCandidate, len(adjusted))
	for _, s := range adjusted {
		byID[s.Location.ID] = s
	}

	members := solution.Members()
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Score > members[j].Score
	})
	if e.cfg.MaxSuggestions > 0 && len(members) > e.cfg.MaxSuggestions {
		members = members[:e.cfg.MaxSuggestions]
	}

	selections := make([]recommend.Selection, 0, len(members))
	for _, m := range members {
		selections = append(selections, recommend.Selection{
			Candidate: byID[m.LocationID],
			Type:      m.Type,
		})
	}
	return selections
}

func placements(selections []recommend.Selection) []model.Placement {
	out := make([]model.Placement, 0, len(selections))
	for _, sel := range selections {
		out = append(out, model.Placement{
			LocationID:    sel.Candidate.Location.ID,
			Type:          sel.Type,
			Center:        sel.Candidate.Location.Center,
			Score:         sel.Candidate.RawScore,
			AdjustedScore: sel.Candidate.AdjustedScore,
		})
	}
	return out
}

// visualizations builds the display payload: one marker and service circle
// per recommendation, plus a heatmap over the whole adjusted pool.
func visualizations(recs []model.Recommendation, adjusted []model.ScoredCandidate, cat *catalog.Catalog) model.Visualizations {
	viz := model.Visualizations{
		Markers:            make([]model.Marker, 0, len(recs)),
		HeatmapPoints:      make([]model.HeatmapPoint, 0, len(adjusted)),
		ServiceAreaCircles: make([]model.ServiceArea, 0, len(recs)),
	}

	for _, r := range recs {
		viz.Markers = append(viz.Markers, model.Marker{
			Lat:   r.Center.Lat,
			Lng:   r.Center.Lng,
			Label: r.TypeName,
			Icon:  r.Icon,
		})
		radius := 0.0
		if typ, err := cat.Get(r.Type); err == nil {
			radius = typ.ServiceRadiusM
		}
		viz.ServiceAreaCircles = append(viz.ServiceAreaCircles, model.ServiceArea{
			Lat:     r.Center.Lat,
			Lng:     r.Center.Lng,
			RadiusM: radius,
		})
	}

	for _, s := range adjusted {
		viz.HeatmapPoints = append(viz.HeatmapPoints, model.HeatmapPoint{
			Lat:    s.Location.Center.Lat,
			Lng:    s.Location.Center.Lng,
			Weight: s.AdjustedScore,
		})
	}
	return viz
}

// createRun records the run start when a store is configured.
func (e *Engine) createRun(ctx context.Context, req Request) (*model.Run, error) {
	if e.store == nil {
		return nil, nil
	}
	run, err := e.store.CreateRun(ctx, model.RunRequest{
		City:           req.City,
		BBox:           req.BBox,
		CityCenter:     req.CityCenter,
		Types:          req.Types,
		MaxSuggestions: e.cfg.MaxSuggestions,
		GridResolution: e.cfg.GridResolution,
		Seed:           int64(e.cfg.Seed),
	})
	if err != nil {
		return nil, eris.Wrap(err, "engine: create run")
	}
	if err := e.store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		zap.L().Warn("failed to mark run running", zap.String("run_id", run.ID), zap.Error(err))
	}
	return run, nil
}

// finishRun records the terminal state; persistence failures are logged,
// never surfaced.
func (e *Engine) finishRun(ctx context.Context, run *model.Run, status model.RunStatus, result *model.PlanResult) {
	if e.store == nil || run == nil {
		return
	}
	if status == model.RunStatusComplete && result != nil {
		if err := e.store.UpdateRunResult(ctx, run.ID, result); err != nil {
			zap.L().Warn("failed to persist run result", zap.String("run_id", run.ID), zap.Error(err))
		}
		return
	}
	if err := e.store.UpdateRunStatus(ctx, run.ID, status); err != nil {
		zap.L().Warn("failed to update run status", zap.String("run_id", run.ID), zap.Error(err))
	}
}
