package optimizer

import (
	"context"
	"math/rand"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config holds the genetic-algorithm knobs.
type Config struct {
	PopulationSize int
	Generations    int
	CrossoverRate  float64
	MutationRate   float64
	MinSize        int
	MaxSize        int
	EliteCount     int
	TournamentSize int
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 100,
		Generations:    200,
		CrossoverRate:  0.8,
		MutationRate:   0.2,
		MinSize:        5,
		MaxSize:        15,
		EliteCount:     5,
		TournamentSize: 3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PopulationSize <= 0 {
		c.PopulationSize = d.PopulationSize
	}
	if c.Generations <= 0 {
		c.Generations = d.Generations
	}
	if c.CrossoverRate <= 0 {
		c.CrossoverRate = d.CrossoverRate
	}
	if c.MutationRate <= 0 {
		c.MutationRate = d.MutationRate
	}
	if c.MinSize <= 0 {
		c.MinSize = d.MinSize
	}
	if c.MaxSize <= 0 {
		c.MaxSize = d.MaxSize
	}
	if c.EliteCount <= 0 {
		c.EliteCount = d.EliteCount
	}
	if c.TournamentSize <= 0 {
		c.TournamentSize = d.TournamentSize
	}
	return c
}

// Optimizer runs the genetic search. All randomness flows through the
// injected source, so a fixed seed reproduces the run bit for bit.
type Optimizer struct {
	cfg  Config
	eval *Evaluator
	rng  *rand.Rand
}

// New creates an Optimizer with the given config, evaluator, and seed.
func New(cfg Config, eval *Evaluator, seed uint64) *Optimizer {
	return &Optimizer{
		cfg:  cfg.withDefaults(),
		eval: eval,
		rng:  rand.New(rand.NewSource(int64(seed))),
	}
}

// Generations returns the effective generation budget after defaulting.
func (o *Optimizer) Generations() int {
	return o.cfg.Generations
}

// Run evolves a population drawn from the candidate pool and returns the
// best solution of the final generation together with its fitness. An empty
// pool yields the empty solution.
func (o *Optimizer) Run(ctx context.Context, pool []Member) (Solution, float64, error) {
	if len(pool) == 0 {
		return Solution{}, 0, nil
	}

	minSize := min(o.cfg.MinSize, len(pool))
	maxSize := min(o.cfg.MaxSize, len(pool))

	population := make([]Solution, o.cfg.PopulationSize)
	for i := range population {
		population[i] = o.randomSolution(pool, minSize, maxSize)
	}

	var fitnesses []float64
	for gen := 0; gen < o.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return Solution{}, 0, eris.Wrap(err, "optimizer: search aborted")
		}

		var err error
		fitnesses, err = o.evaluate(ctx, population)
		if err != nil {
			return Solution{}, 0, err
		}
		order := rankedOrder(fitnesses)

		next := make([]Solution, 0, o.cfg.PopulationSize)
		for i := 0; i < o.cfg.EliteCount && i < len(order); i++ {
			next = append(next, population[order[i]])
		}
		for len(next) < o.cfg.PopulationSize {
			child := o.breed(population, fitnesses, pool, minSize, maxSize)
			next = append(next, child)
		}
		population = next
	}

	final, err := o.evaluate(ctx, population)
	if err != nil {
		return Solution{}, 0, err
	}
	best := rankedOrder(final)[0]

	zap.L().Info("optimization complete",
		zap.Int("pool", len(pool)),
		zap.Int("generations", o.cfg.Generations),
		zap.Int("members", population[best].Len()),
		zap.Float64("fitness", final[best]),
	)
	return population[best], final[best], nil
}

// evaluate computes fitness for every solution in parallel. Each solution is
// independent, so the fan-out does not disturb determinism.
func (o *Optimizer) evaluate(ctx context.Context, population []Solution) ([]float64, error) {
	fitnesses := make([]float64, len(population))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(8)
	for i, s := range population {
		i, s := i, s
		eg.Go(func() error {
			fitnesses[i] = o.eval.Fitness(s)
			return gCtx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, eris.Wrap(err, "optimizer: fitness evaluation aborted")
	}
	return fitnesses, nil
}

// rankedOrder returns population indices sorted by fitness descending, with
// index order breaking ties so ranking is deterministic.
func rankedOrder(fitnesses []float64) []int {
	order := make([]int, len(fitnesses))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fitnesses[order[a]] > fitnesses[order[b]]
	})
	return order
}

func (o *Optimizer) randomSolution(pool []Member, minSize, maxSize int) Solution {
	size := minSize
	if maxSize > minSize {
		size += o.rng.Intn(maxSize - minSize + 1)
	}
	perm := o.rng.Perm(len(pool))
	members := make([]Member, 0, size)
	for _, idx := range perm[:size] {
		members = append(members, pool[idx])
	}
	return Solution{members: members}
}

// breed produces one child: tournament-selected parents crossed over at the
// crossover rate (otherwise the first parent is carried), then mutated at
// the mutation rate.
func (o *Optimizer) breed(population []Solution, fitnesses []float64, pool []Member, minSize, maxSize int) Solution {
	p1 := o.tournament(population, fitnesses)
	child := p1
	if o.rng.Float64() < o.cfg.CrossoverRate {
		p2 := o.tournament(population, fitnesses)
		child = o.crossover(p1, p2, minSize, maxSize)
	}
	if o.rng.Float64() < o.cfg.MutationRate {
		child = o.mutate(child, pool, maxSize)
	}
	return child
}

// tournament picks the fittest of TournamentSize uniformly sampled
// solutions.
func (o *Optimizer) tournament(population []Solution, fitnesses []float64) Solution {
	best := o.rng.Intn(len(population))
	for i := 1; i < o.cfg.TournamentSize; i++ {
		idx := o.rng.Intn(len(population))
		if fitnesses[idx] > fitnesses[best] {
			best = idx
		}
	}
	return population[best]
}

// crossover takes each parent's members with probability one half, dedupes
// by location, and repairs the child back inside the size bounds.
func (o *Optimizer) crossover(a, b Solution, minSize, maxSize int) Solution {
	var child Solution
	for _, m := range a.members {
		if o.rng.Float64() < 0.5 {
			child = child.withMember(m)
		}
	}
	for _, m := range b.members {
		if o.rng.Float64() < 0.5 && !child.contains(m.LocationID) {
			child = child.withMember(m)
		}
	}

	// Repair: top up from the parents in order, then trim at random.
	for _, parent := range []Solution{a, b} {
		for _, m := range parent.members {
			if child.Len() >= minSize {
				break
			}
			if !child.contains(m.LocationID) {
				child = child.withMember(m)
			}
		}
	}
	for child.Len() > maxSize {
		child = child.withoutIndex(o.rng.Intn(child.Len()))
	}
	return child
}

// mutate either drops a random member (when above the floor of three) or
// adds a random unused pool member.
func (o *Optimizer) mutate(s Solution, pool []Member, maxSize int) Solution {
	canDrop := s.Len() > 3
	canAdd := s.Len() < maxSize

	if canDrop && (!canAdd || o.rng.Intn(2) == 0) {
		return s.withoutIndex(o.rng.Intn(s.Len()))
	}
	if canAdd {
		unused := make([]Member, 0, len(pool))
		for _, m := range pool {
			if !s.contains(m.LocationID) {
				unused = append(unused, m)
			}
		}
		if len(unused) > 0 {
			return s.withMember(unused[o.rng.Intn(len(unused))])
		}
	}
	return s
}
