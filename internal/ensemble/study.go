package ensemble

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"epigraph/internal/graph"
	"epigraph/internal/logging"
	"epigraph/internal/secihurd"
	"epigraph/internal/timeseries"
)

// StudyConfig parameterizes a parameter study over a graph.
type StudyConfig struct {
	T0      float64
	Tmax    float64
	Dt      float64
	NumRuns int
	Workers int
	Seed    int64
}

// RunResult is the outcome of one sampled graph simulation. A failed
// run carries Err and empty results; the study continues past it.
type RunResult struct {
	RunIndex int
	Models   []*secihurd.Model
	Results  []*timeseries.TimeSeries
	Err      error
}

// ParameterStudy executes independent graph simulations from resampled
// parameters. Runs share nothing: each gets a deep copy of the graph
// and its own deterministically seeded RNG, so they can be dispatched
// to workers without synchronisation.
type ParameterStudy struct {
	cfg       StudyConfig
	prototype *graph.Graph
}

func NewParameterStudy(g *graph.Graph, cfg StudyConfig) (*ParameterStudy, error) {
	if g == nil || g.NumNodes() == 0 {
		return nil, fmt.Errorf("graph with at least one node is required")
	}
	if cfg.Tmax <= cfg.T0 {
		return nil, fmt.Errorf("tmax must be > t0")
	}
	if cfg.Dt <= 0 {
		cfg.Dt = graph.DefaultMigrationTick
	}
	if cfg.NumRuns <= 0 {
		return nil, fmt.Errorf("number of runs must be > 0")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &ParameterStudy{cfg: cfg, prototype: g}, nil
}

// Run executes all sampled simulations and returns their results in run
// order. Individual run failures are recorded, not propagated; only a
// cancelled context aborts the study.
func (s *ParameterStudy) Run(ctx context.Context) ([]RunResult, error) {
	jobs := make(chan int)
	results := make(chan RunResult, s.cfg.NumRuns)

	workerCount := s.cfg.Workers
	if workerCount > s.cfg.NumRuns {
		workerCount = s.cfg.NumRuns
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results <- RunResult{RunIndex: idx, Err: err}
					continue
				}
				results <- s.runOne(idx)
			}
		}()
	}

	for i := 0; i < s.cfg.NumRuns; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			i = s.cfg.NumRuns
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ordered := make([]RunResult, s.cfg.NumRuns)
	for r := range results {
		ordered[r.RunIndex] = r
	}
	for _, r := range ordered {
		if r.Err != nil {
			logging.Warn("ensemble: run %d failed: %v", r.RunIndex, r.Err)
		}
	}
	return ordered, nil
}

func (s *ParameterStudy) runOne(idx int) RunResult {
	rng := rand.New(rand.NewSource(s.cfg.Seed + int64(idx)))

	g, models := s.cloneGraph(rng)
	sim := graph.NewSimulation(g, s.cfg.T0, s.cfg.Dt)
	if err := sim.Advance(s.cfg.Tmax); err != nil {
		return RunResult{RunIndex: idx, Err: fmt.Errorf("run %d: %w", idx, err)}
	}

	series := make([]*timeseries.TimeSeries, g.NumNodes())
	for i, n := range g.Nodes() {
		series[i] = n.Sim.Result()
	}
	return RunResult{RunIndex: idx, Models: models, Results: series}
}

// cloneGraph deep-copies the prototype: cloned and resampled models,
// fresh simulations at t0, copied edges and damping schedules. Sampling
// happens before the simulation snapshots its initial state.
func (s *ParameterStudy) cloneGraph(rng *rand.Rand) (*graph.Graph, []*secihurd.Model) {
	g := graph.New()
	models := make([]*secihurd.Model, 0, s.prototype.NumNodes())
	for _, proto := range s.prototype.Nodes() {
		m := proto.Sim.Model().Clone()
		secihurd.DrawSample(m, rng)
		models = append(models, m)
		sim := secihurd.NewSimulation(m, s.cfg.T0, s.cfg.Dt)
		src := proto.Sim.Integrator()
		dst := sim.Integrator()
		dst.AbsTolerance = src.AbsTolerance
		dst.RelTolerance = src.RelTolerance
		dst.DtMin = src.DtMin
		dst.DtMax = src.DtMax
		node := g.AddNode(sim, proto.StayDuration)
		node.DampingEvents = append(node.DampingEvents, proto.DampingEvents...)
	}
	for _, e := range s.prototype.Edges() {
		if _, err := g.AddEdge(e.Start, e.End, e.Coefficients); err != nil {
			// the prototype already validated these edges
			panic(err)
		}
	}
	return g, models
}
