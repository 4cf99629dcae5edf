package goals

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/mosa-go/pkg/archive"
	"github.com/XiaoConstantine/mosa-go/pkg/core"
	"github.com/XiaoConstantine/mosa-go/pkg/errors"
)

// scriptedEvaluator returns preset distances per (candidate, goal) and
// counts calls; unknown pairs score 1.
type scriptedEvaluator struct {
	mu        sync.Mutex
	distances map[string]map[string]float64
	errs      map[string]error
	calls     int
}

func newScriptedEvaluator() *scriptedEvaluator {
	return &scriptedEvaluator{
		distances: make(map[string]map[string]float64),
		errs:      make(map[string]error),
	}
}

func (e *scriptedEvaluator) set(candidateID, goalID string, d float64) {
	if e.distances[candidateID] == nil {
		e.distances[candidateID] = make(map[string]float64)
	}
	e.distances[candidateID][goalID] = d
}

func (e *scriptedEvaluator) Evaluate(_ context.Context, c core.Candidate, g core.Goal) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if err, ok := e.errs[g.ID()]; ok {
		return 0, err
	}
	if d, ok := e.distances[c.ID()][g.ID()]; ok {
		return d, nil
	}
	return 1, nil
}

func (e *scriptedEvaluator) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func individual(id string) *core.Individual {
	return core.NewIndividual(core.BasicCandidate{CandidateID: id, Length: 1})
}

func chainInventory() []core.Goal {
	// g1 <- g2 <- g3, g4 independent
	return []core.Goal{
		core.NewStaticGoal("g1"),
		core.NewStaticGoal("g2", "g1"),
		core.NewStaticGoal("g3", "g2"),
		core.NewStaticGoal("g4"),
	}
}

func goalIDs(gs []core.Goal) []string {
	ids := make([]string, 0, len(gs))
	for _, g := range gs {
		ids = append(ids, g.ID())
	}
	return ids
}

func TestNewManagerInitialPartition(t *testing.T) {
	m, err := NewManager(chainInventory(), newScriptedEvaluator(), core.Unbounded, archive.New())
	require.NoError(t, err)

	assert.Equal(t, []string{"g1", "g4"}, goalIDs(m.CurrentGoals()))
	assert.Equal(t, []string{"g1", "g2", "g3", "g4"}, goalIDs(m.UncoveredGoals()))
	assert.Empty(t, m.CoveredGoals())
	assert.Equal(t, 4, m.TotalGoals())
}

func TestNewManagerValidation(t *testing.T) {
	tests := []struct {
		name      string
		inventory []core.Goal
	}{
		{"duplicate id", []core.Goal{core.NewStaticGoal("g1"), core.NewStaticGoal("g1")}},
		{"unknown dependency", []core.Goal{core.NewStaticGoal("g1", "missing")}},
		{"self dependency", []core.Goal{core.NewStaticGoal("g1", "g1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManager(tt.inventory, newScriptedEvaluator(), core.Unbounded, archive.New())
			require.Error(t, err)
			var e *errors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, errors.ValidationFailed, e.Code())
		})
	}
}

func TestEvaluateCoversAndUnlocks(t *testing.T) {
	eval := newScriptedEvaluator()
	eval.set("c1", "g1", 0)
	eval.set("c1", "g2", 0) // unlocked mid-call and immediately covered
	eval.set("c1", "g3", 4) // unlocked by g2, evaluated but not covered

	arch := archive.New()
	m, err := NewManager(chainInventory(), eval, core.Unbounded, arch)
	require.NoError(t, err)

	ind := individual("c1")
	require.NoError(t, m.Evaluate(context.Background(), ind))

	assert.Equal(t, []string{"g1", "g2"}, goalIDs(m.CoveredGoals()))
	assert.Equal(t, []string{"g3", "g4"}, goalIDs(m.CurrentGoals()))
	assert.Equal(t, []string{"g3", "g4"}, goalIDs(m.UncoveredGoals()))

	// The unlocked chain was evaluated against the same candidate.
	d, ok := ind.Fitness(core.NewStaticGoal("g3"))
	assert.True(t, ok)
	assert.Equal(t, 4.0, d)

	// Covered goals landed in the archive.
	assert.Equal(t, []string{"g1", "g2"}, arch.GoalIDs())
}

func TestEvaluatePartitionInvariants(t *testing.T) {
	eval := newScriptedEvaluator()
	eval.set("c1", "g1", 0)

	m, err := NewManager(chainInventory(), eval, core.Unbounded, archive.New())
	require.NoError(t, err)
	require.NoError(t, m.Evaluate(context.Background(), individual("c1")))

	covered := goalIDs(m.CoveredGoals())
	current := goalIDs(m.CurrentGoals())
	uncovered := goalIDs(m.UncoveredGoals())

	// current ⊆ uncovered
	uncoveredSet := make(map[string]bool)
	for _, id := range uncovered {
		uncoveredSet[id] = true
	}
	for _, id := range current {
		assert.True(t, uncoveredSet[id], "current goal %s not in uncovered", id)
	}

	// uncovered ∩ covered = ∅
	for _, id := range covered {
		assert.False(t, uncoveredSet[id], "goal %s in both covered and uncovered", id)
	}
}

func TestEvaluateIdempotentForCoveredGoals(t *testing.T) {
	eval := newScriptedEvaluator()
	eval.set("c1", "g1", 0)

	arch := archive.New()
	m, err := NewManager(chainInventory(), eval, core.Unbounded, arch)
	require.NoError(t, err)

	ind := individual("c1")
	require.NoError(t, m.Evaluate(context.Background(), ind))
	callsAfterFirst := eval.callCount()

	// Same candidate again: covered goals are out of the current set and the
	// candidate's remaining distances are cached, so nothing is recomputed.
	require.NoError(t, m.Evaluate(context.Background(), ind))
	assert.Equal(t, callsAfterFirst, eval.callCount())
	assert.Equal(t, []string{"g1"}, arch.GoalIDs())
}

func TestEvaluateNoopAfterBudgetExhaustion(t *testing.T) {
	eval := newScriptedEvaluator()
	eval.set("c1", "g1", 0)

	exhausted := false
	budget := core.BudgetFunc(func() bool { return exhausted })

	m, err := NewManager(chainInventory(), eval, budget, archive.New())
	require.NoError(t, err)

	exhausted = true
	ind := individual("c1")
	require.NoError(t, m.Evaluate(context.Background(), ind))

	assert.Zero(t, eval.callCount())
	assert.Empty(t, m.CoveredGoals())
	assert.Empty(t, ind.FitnessValues())
}

func TestEvaluateAbsorbsEvaluatorFaults(t *testing.T) {
	eval := newScriptedEvaluator()
	eval.errs["g1"] = fmt.Errorf("instrumentation hiccup")
	eval.set("c1", "g4", 0)

	m, err := NewManager(chainInventory(), eval, core.Unbounded, archive.New())
	require.NoError(t, err)

	ind := individual("c1")
	require.NoError(t, m.Evaluate(context.Background(), ind))

	// The failed goal scores as not-yet-satisfied and stays uncovered.
	d, ok := ind.Fitness(core.NewStaticGoal("g1"))
	assert.True(t, ok)
	assert.True(t, math.IsInf(d, 1))
	assert.Equal(t, []string{"g4"}, goalIDs(m.CoveredGoals()))
}

func TestEvaluatePropagatesFatalFaults(t *testing.T) {
	eval := newScriptedEvaluator()
	eval.errs["g1"] = errors.New(errors.EvaluationFatal, "subject crashed the harness")

	m, err := NewManager(chainInventory(), eval, core.Unbounded, archive.New())
	require.NoError(t, err)

	err = m.Evaluate(context.Background(), individual("c1"))
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestCoveredGoalsAreMonotonic(t *testing.T) {
	eval := newScriptedEvaluator()
	eval.set("c1", "g1", 0)
	eval.set("c2", "g2", 0)

	m, err := NewManager(chainInventory(), eval, core.Unbounded, archive.New())
	require.NoError(t, err)

	require.NoError(t, m.Evaluate(context.Background(), individual("c1")))
	covered, _, _ := m.Counts()
	assert.Equal(t, 1, covered)

	require.NoError(t, m.Evaluate(context.Background(), individual("c2")))
	coveredAfter, _, _ := m.Counts()
	assert.GreaterOrEqual(t, coveredAfter, covered)
	assert.Equal(t, []string{"g1", "g2"}, goalIDs(m.CoveredGoals()))
}

func TestEvaluateConcurrentCandidates(t *testing.T) {
	eval := newScriptedEvaluator()
	for i := 0; i < 16; i++ {
		eval.set(fmt.Sprintf("c%d", i), "g1", 0)
	}

	arch := archive.New()
	m, err := NewManager(chainInventory(), eval, core.Unbounded, arch)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, m.Evaluate(context.Background(), individual(fmt.Sprintf("c%d", i))))
		}(i)
	}
	wg.Wait()

	// All candidates covered g1; exactly one archive entry survives and the
	// partition transitioned once.
	assert.Contains(t, goalIDs(m.CoveredGoals()), "g1")
	best, ok := arch.Best(core.NewStaticGoal("g1"))
	assert.True(t, ok)
	assert.NotNil(t, best)
}
