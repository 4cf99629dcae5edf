package search

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/XiaoConstantine/mosa-go/pkg/archive"
	"github.com/XiaoConstantine/mosa-go/pkg/core"
	"github.com/XiaoConstantine/mosa-go/pkg/errors"
	"github.com/XiaoConstantine/mosa-go/pkg/goals"
	"github.com/XiaoConstantine/mosa-go/pkg/logging"
	"github.com/sourcegraph/conc/pool"
)

// State is the lifecycle of an Engine.
type State int32

const (
	StateInitializing State = iota
	StateRunning
	StateTerminated
)

func (s State) String() string {
	return [...]string{"INITIALIZING", "RUNNING", "TERMINATED"}[s]
}

// EngineConfig contains configuration options for the search engine.
type EngineConfig struct {
	// Target population size N. Environmental selection fills exactly N
	// slots unless the first front alone exceeds N, in which case the whole
	// first front survives.
	PopulationSize int `json:"population_size"` // Default: 50

	// MaxGenerations bounds the generational loop; the external budget
	// predicate and full coverage can stop the search earlier.
	MaxGenerations int `json:"max_generations"` // Default: 100

	// MaxGoroutines caps concurrent candidate evaluations within one
	// generation.
	MaxGoroutines int `json:"max_goroutines"` // Default: 4
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		PopulationSize: 50,
		MaxGenerations: 100,
		MaxGoroutines:  4,
	}
}

// Engine is the generational driver. Each generation it breeds offspring
// through the external variation operator, evaluates them through the goal
// manager (which grows the covered set and the archive as a side effect),
// re-ranks the parent/offspring union against the goals active after those
// evaluations, and environmentally selects the next population.
type Engine struct {
	config  EngineConfig
	manager *goals.Manager

	factory   core.Factory
	variation core.Variation
	budget    core.Budget
	observer  core.Observer
	archive   *archive.Archive

	logger   *logging.Logger
	recorder *logging.FlightRecorder

	mu         sync.RWMutex
	state      State
	generation int
	population []*core.Individual
	ranks      map[string]int
	diversity  map[string]float64
}

// EngineOption defines functional options for engine configuration.
type EngineOption func(*Engine)

// WithPopulationSize sets the target population size.
func WithPopulationSize(n int) EngineOption {
	return func(e *Engine) {
		e.config.PopulationSize = n
	}
}

// WithMaxGenerations sets the generation budget.
func WithMaxGenerations(n int) EngineOption {
	return func(e *Engine) {
		e.config.MaxGenerations = n
	}
}

// WithMaxGoroutines caps concurrent candidate evaluations.
func WithMaxGoroutines(n int) EngineOption {
	return func(e *Engine) {
		e.config.MaxGoroutines = n
	}
}

// WithBudget installs the external termination predicate. It is consulted
// before each generation here and before each evaluation by the goal
// manager.
func WithBudget(b core.Budget) EngineOption {
	return func(e *Engine) {
		e.budget = b
	}
}

// WithObserver installs the per-generation snapshot sink. Use a
// core.MultiObserver for several sinks.
func WithObserver(o core.Observer) EngineOption {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithInitialPopulation seeds the search with candidates instead of drawing
// the initial population from the factory.
func WithInitialPopulation(candidates []core.Candidate) EngineOption {
	return func(e *Engine) {
		e.population = make([]*core.Individual, 0, len(candidates))
		for _, c := range candidates {
			e.population = append(e.population, core.NewIndividual(c))
		}
	}
}

// WithArchive installs a preconfigured archive, e.g. one with a non-default
// replacement preference.
func WithArchive(a *archive.Archive) EngineOption {
	return func(e *Engine) {
		e.archive = a
	}
}

// WithFlightRecorder attaches a flight recorder; the engine snapshots it
// when an invariant violation aborts the search.
func WithFlightRecorder(fr *logging.FlightRecorder) EngineOption {
	return func(e *Engine) {
		e.recorder = fr
	}
}

// NewEngine wires the engine to its collaborators. The goal inventory and
// evaluator become a goal manager owned by the engine; factory and variation
// stay external.
func NewEngine(inventory []core.Goal, evaluator core.Evaluator, factory core.Factory, variation core.Variation, opts ...EngineOption) (*Engine, error) {
	if factory == nil {
		return nil, errors.New(errors.InvalidInput, "engine requires a candidate factory")
	}
	if variation == nil {
		return nil, errors.New(errors.InvalidInput, "engine requires a variation operator")
	}

	e := &Engine{
		config:    DefaultEngineConfig(),
		factory:   factory,
		variation: variation,
		budget:    core.Unbounded,
		logger:    logging.GetLogger(),
		state:     StateInitializing,
		ranks:     make(map[string]int),
		diversity: make(map[string]float64),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.config.PopulationSize <= 0 {
		return nil, errors.WithFields(
			errors.New(errors.ValidationFailed, "population size must be positive"),
			errors.Fields{"population_size": e.config.PopulationSize},
		)
	}

	if e.archive == nil {
		e.archive = archive.New()
	}

	manager, err := goals.NewManager(inventory, evaluator, e.budget, e.archive)
	if err != nil {
		return nil, err
	}
	e.manager = manager

	return e, nil
}

// Run executes the search until the generation budget, the external budget
// predicate, or full coverage terminates it, and returns the archive's
// solutions. Structural invariant violations abort with an error carrying
// the generational state; evaluator faults short of fatal never do.
func (e *Engine) Run(ctx context.Context) ([]*core.Individual, error) {
	start := time.Now()

	if err := e.initialize(ctx); err != nil {
		e.setState(StateTerminated)
		return nil, err
	}
	e.setState(StateRunning)

	covered, current, uncovered := e.manager.Counts()
	e.logger.Info(ctx, "search initialized: %d goals total, %d current, population=%d",
		e.manager.TotalGoals(), current, len(e.population))

	for e.Generation() < e.config.MaxGenerations {
		if e.budget.IsFinished() {
			e.logger.Info(ctx, "search budget exhausted at generation %d", e.Generation())
			break
		}
		if err := errors.CheckContext(ctx, "search"); err != nil {
			e.setState(StateTerminated)
			return nil, err
		}
		if _, _, uncovered = e.manager.Counts(); uncovered == 0 {
			e.logger.Info(ctx, "all goals covered at generation %d", e.Generation())
			break
		}

		genCtx := logging.WithGeneration(ctx, e.Generation()+1)
		if err := e.evolve(genCtx); err != nil {
			e.setState(StateTerminated)
			if e.recorder != nil && errors.IsInvariant(err) {
				e.recorder.Snapshot("invariant_violation.trace")
			}
			return nil, err
		}

		e.mu.Lock()
		e.generation++
		e.mu.Unlock()

		e.notifyObserver(genCtx)

		covered, current, uncovered = e.manager.Counts()
		e.logger.Debug(genCtx, "generation complete: covered=%d current=%d uncovered=%d population=%d",
			covered, current, uncovered, len(e.Population()))
	}

	e.setState(StateTerminated)
	solutions := e.manager.Archive().Solutions()
	e.logger.Info(ctx, "search finished after %d generations in %v: %d/%d goals covered, %d archived solutions",
		e.Generation(), time.Since(start), covered, e.manager.TotalGoals(), len(solutions))
	return solutions, nil
}

// initialize builds and evaluates the initial population, then ranks it and
// assigns per-front crowding so the first breeding round has selection
// pressure to work with.
func (e *Engine) initialize(ctx context.Context) error {
	ctx = logging.WithGeneration(ctx, 0)

	if len(e.population) == 0 {
		e.population = make([]*core.Individual, 0, e.config.PopulationSize)
		for i := 0; i < e.config.PopulationSize; i++ {
			c, err := e.factory.New(ctx)
			if err != nil {
				return errors.Wrap(err, errors.InvalidInput, "candidate factory failed")
			}
			e.population = append(e.population, core.NewIndividual(c))
		}
	}

	if err := e.evaluateAll(ctx, e.population); err != nil {
		return err
	}
	// Members evaluated in parallel before another member's coverage
	// unlocked a goal are missing that goal's distance; the second pass
	// fills only those gaps.
	if err := e.evaluateAll(ctx, e.population); err != nil {
		return err
	}

	currentGoals := e.manager.CurrentGoals()
	fronts := Rank(e.population, currentGoals)
	e.assignPressure(fronts, currentGoals)

	e.notifyObserver(ctx)
	return nil
}

// evolve runs one generational step: breed, evaluate, re-rank the union
// against the refreshed goal set, environmentally select.
func (e *Engine) evolve(ctx context.Context) error {
	defer logging.TraceRegion(ctx, "evolve")()

	parents := e.Population()

	e.mu.RLock()
	ranks, diversity := e.ranks, e.diversity
	e.mu.RUnlock()

	offspringCandidates, err := e.variation.Breed(ctx, parents, ranks, diversity)
	if err != nil {
		return errors.Wrap(err, errors.InvalidInput, "variation operator failed")
	}

	offspring := make([]*core.Individual, 0, len(offspringCandidates))
	for _, c := range offspringCandidates {
		offspring = append(offspring, core.NewIndividual(c))
	}

	// Coverage growth, archive updates and current-set extension all happen
	// inside these evaluations.
	if err := e.evaluateAll(ctx, offspring); err != nil {
		return err
	}

	union := make([]*core.Individual, 0, len(parents)+len(offspring))
	union = append(union, parents...)
	union = append(union, offspring...)

	// Individuals evaluated before an unlock are missing distances for the
	// goals it added, and ranking would score those gaps as worst. A second
	// pass over the union fills exactly the gaps: cached distances are
	// skipped, so fully evaluated individuals cost nothing.
	if err := e.evaluateAll(ctx, union); err != nil {
		return err
	}

	// Re-read the active goals after the offspring evaluations so newly
	// unlocked goals take part in this ranking. The slice is a snapshot:
	// this generation's ranking and diversity all use exactly this set.
	currentGoals := e.manager.CurrentGoals()
	fronts := Rank(union, currentGoals)

	if got := fronts.Size(); got != len(union) {
		return e.invariantViolation("front decomposition lost or duplicated individuals",
			errors.Fields{"union": len(union), "ranked": got})
	}

	next, err := e.selectEnvironmental(fronts, currentGoals)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.population = next
	e.mu.Unlock()
	return nil
}

// selectEnvironmental walks fronts in order, admitting whole fronts while
// they fit and truncating the first overflowing front by crowding distance.
// The remain lower bound of max(N, |front 0|) keeps the entire non-dominated
// front even when it exceeds the population size.
func (e *Engine) selectEnvironmental(fronts Fronts, currentGoals []core.Goal) ([]*core.Individual, error) {
	if len(fronts) == 0 {
		return nil, e.invariantViolation("ranking produced no fronts for a non-empty union", nil)
	}

	remain := e.config.PopulationSize
	if len(fronts[0]) > remain {
		remain = len(fronts[0])
	}

	next := make([]*core.Individual, 0, remain)
	ranks := make(map[string]int)
	diversity := make(map[string]float64)

	index := 0
	for index < len(fronts) && remain > 0 && remain >= len(fronts[index]) {
		front := fronts[index]
		if len(front) == 0 {
			return nil, e.invariantViolation("empty front in decomposition",
				errors.Fields{"front": index})
		}

		for id, d := range AssignCrowdingDistance(front, currentGoals) {
			diversity[id] = d
		}
		for _, ind := range front {
			ranks[ind.ID()] = index
		}
		next = append(next, front...)
		remain -= len(front)
		index++
	}

	// The first front that no longer fits is truncated by descending
	// crowding distance; this is the only admission decided by diversity
	// rather than dominance.
	if remain > 0 && index < len(fronts) {
		front := fronts[index]
		scores := AssignCrowdingDistance(front, currentGoals)

		sorted := make([]*core.Individual, len(front))
		copy(sorted, front)
		sort.SliceStable(sorted, func(i, j int) bool {
			return scores[sorted[i].ID()] > scores[sorted[j].ID()]
		})

		for _, ind := range sorted[:remain] {
			ranks[ind.ID()] = index
			diversity[ind.ID()] = scores[ind.ID()]
			next = append(next, ind)
		}
		remain = 0
	}

	if remain < 0 {
		return nil, e.invariantViolation("environmental selection overfilled the population",
			errors.Fields{"remain": remain, "selected": len(next)})
	}

	e.mu.Lock()
	e.ranks = ranks
	e.diversity = diversity
	e.mu.Unlock()
	return next, nil
}

// evaluateAll pushes every individual through the goal manager, in parallel
// up to MaxGoroutines. Each individual only writes its own fitness map; the
// partition and the archive serialize internally. A fatal evaluator signal
// aborts; everything else has already been absorbed by the manager.
func (e *Engine) evaluateAll(ctx context.Context, individuals []*core.Individual) error {
	defer logging.TraceRegion(ctx, "evaluate")()

	errs := make([]error, len(individuals))

	p := pool.New().WithMaxGoroutines(e.config.MaxGoroutines)
	for i, ind := range individuals {
		i, ind := i, ind
		p.Go(func() {
			errs[i] = e.manager.Evaluate(ctx, ind)
		})
	}
	p.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// assignPressure stores front ranks and per-front crowding for the given
// decomposition; used for the initial population, where every front gets
// scores (there is no selection to piggyback on yet).
func (e *Engine) assignPressure(fronts Fronts, currentGoals []core.Goal) {
	ranks := make(map[string]int)
	diversity := make(map[string]float64)
	for index, front := range fronts {
		for id, d := range AssignCrowdingDistance(front, currentGoals) {
			diversity[id] = d
		}
		for _, ind := range front {
			ranks[ind.ID()] = index
		}
	}

	e.mu.Lock()
	e.ranks = ranks
	e.diversity = diversity
	e.mu.Unlock()
}

func (e *Engine) invariantViolation(message string, fields errors.Fields) error {
	if fields == nil {
		fields = errors.Fields{}
	}
	fields["generation"] = e.Generation()
	fields["population"] = len(e.Population())
	covered, current, uncovered := e.manager.Counts()
	fields["covered"] = covered
	fields["current"] = current
	fields["uncovered"] = uncovered
	return errors.WithFields(errors.New(errors.InvariantViolation, message), fields)
}

// notifyObserver assembles the per-generation snapshot and hands it to the
// configured observer, if any.
func (e *Engine) notifyObserver(ctx context.Context) {
	if e.observer == nil {
		return
	}
	e.observer.OnGeneration(ctx, e.Snapshot())
}

// Snapshot builds a frozen view of the engine's current generation.
func (e *Engine) Snapshot() *core.GenerationSnapshot {
	e.mu.RLock()
	population := make([]*core.Individual, len(e.population))
	copy(population, e.population)
	generation := e.generation
	e.mu.RUnlock()

	snap := &core.GenerationSnapshot{
		Generation: generation,
		Population: make([]string, 0, len(population)),
		Archive:    make([]string, 0),
		Fitness:    make(map[string]map[string]float64, len(population)),
	}
	for _, ind := range population {
		snap.Population = append(snap.Population, ind.ID())
		snap.Fitness[ind.ID()] = ind.FitnessValues()
	}
	sort.Strings(snap.Population)

	snap.Covered = goalIDs(e.manager.CoveredGoals())
	snap.Current = goalIDs(e.manager.CurrentGoals())
	snap.Uncovered = goalIDs(e.manager.UncoveredGoals())

	for _, ind := range e.manager.Archive().Solutions() {
		snap.Archive = append(snap.Archive, ind.ID())
	}
	snap.ArchiveByGoal = e.manager.Archive().Entries()

	return snap
}

func goalIDs(gs []core.Goal) []string {
	ids := make([]string, 0, len(gs))
	for _, g := range gs {
		ids = append(ids, g.ID())
	}
	return ids
}

// Population returns a copy of the current parent population.
func (e *Engine) Population() []*core.Individual {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*core.Individual, len(e.population))
	copy(out, e.population)
	return out
}

// Generation returns the index of the last completed generation.
func (e *Engine) Generation() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

// State returns the engine lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Manager exposes the goal manager, e.g. for inspecting the partition after
// a run.
func (e *Engine) Manager() *goals.Manager {
	return e.manager
}

// Archive exposes the accumulating archive.
func (e *Engine) Archive() *archive.Archive {
	return e.manager.Archive()
}
