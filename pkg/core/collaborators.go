package core

import "context"

// Evaluator computes the raw fitness distance of a candidate against a
// single goal by executing it on the subject program. The returned distance
// is non-negative and 0 exactly when the candidate satisfies the goal.
//
// A non-nil error marks the evaluation as failed for that goal; the goal
// manager absorbs it and scores the goal as not-yet-satisfied. An error
// wrapped as EvaluationFatal aborts the whole search instead. Bounding the
// cost of a single execution (timeouts, sandboxing) is the evaluator's
// responsibility.
type Evaluator interface {
	Evaluate(ctx context.Context, c Candidate, g Goal) (float64, error)
}

// Factory produces random or seeded candidates for the initial population.
type Factory interface {
	New(ctx context.Context) (Candidate, error)
}

// Variation breeds an offspring set from the current population, using the
// previous generation's front ranks and diversity scores as parent-selection
// pressure. The offspring size is the implementation's choice. Offspring
// must be fresh candidates; parents are never mutated in place.
type Variation interface {
	Breed(ctx context.Context, population []*Individual, ranks map[string]int, diversity map[string]float64) ([]Candidate, error)
}

// Budget is the external termination predicate. It is consulted before each
// fitness evaluation and before each generation; once it reports true,
// further evaluations are no-ops and no new generation starts. Budget
// exhaustion is a normal termination signal, not an error.
type Budget interface {
	IsFinished() bool
}

// BudgetFunc adapts a plain function to the Budget interface.
type BudgetFunc func() bool

func (f BudgetFunc) IsFinished() bool { return f() }

// Unbounded is a Budget that never exhausts; the search then runs for its
// configured number of generations or until full coverage.
var Unbounded Budget = BudgetFunc(func() bool { return false })

// Observer receives the per-generation snapshot. Observers are purely
// observational; nothing they do feeds back into the search.
type Observer interface {
	OnGeneration(ctx context.Context, snap *GenerationSnapshot)
}

// MultiObserver fans a snapshot out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) OnGeneration(ctx context.Context, snap *GenerationSnapshot) {
	for _, o := range m {
		o.OnGeneration(ctx, snap)
	}
}
