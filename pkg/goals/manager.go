// Package goals owns the partition of the goal inventory into uncovered,
// current and covered sets, and drives it forward as candidates are
// evaluated. The current set is the dependency frontier: the uncovered goals
// whose dependencies are all covered, and therefore the only goals worth
// exerting optimization pressure on.
package goals

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/XiaoConstantine/mosa-go/pkg/archive"
	"github.com/XiaoConstantine/mosa-go/pkg/core"
	"github.com/XiaoConstantine/mosa-go/pkg/errors"
	"github.com/XiaoConstantine/mosa-go/pkg/logging"
)

// Manager maintains the goal partition and delegates distance computation to
// the external evaluator. All partition transitions are monotonic: a goal
// moves uncovered→current→covered and never back.
//
// Evaluate may be called concurrently for independent individuals; the
// partition and the archive are the only shared structures and both are
// updated under a serializing lock.
type Manager struct {
	evaluator core.Evaluator
	budget    core.Budget
	archive   *archive.Archive
	logger    *logging.Logger

	mu        sync.RWMutex
	inventory map[string]core.Goal
	uncovered map[string]core.Goal
	current   map[string]core.Goal
	covered   map[string]core.Goal
}

// NewManager builds the partition from the full goal inventory. Goals with
// no dependencies start in the current set; everything starts uncovered.
// The inventory must have unique ids and dependencies must reference goals
// in the inventory.
func NewManager(inventory []core.Goal, evaluator core.Evaluator, budget core.Budget, arch *archive.Archive) (*Manager, error) {
	if evaluator == nil {
		return nil, errors.New(errors.InvalidInput, "goal manager requires an evaluator")
	}
	if budget == nil {
		budget = core.Unbounded
	}
	if arch == nil {
		arch = archive.New()
	}

	m := &Manager{
		evaluator: evaluator,
		budget:    budget,
		archive:   arch,
		logger:    logging.GetLogger(),
		inventory: make(map[string]core.Goal, len(inventory)),
		uncovered: make(map[string]core.Goal, len(inventory)),
		current:   make(map[string]core.Goal),
		covered:   make(map[string]core.Goal),
	}

	for _, g := range inventory {
		if _, dup := m.inventory[g.ID()]; dup {
			return nil, errors.WithFields(
				errors.New(errors.ValidationFailed, "duplicate goal id in inventory"),
				errors.Fields{"goal": g.ID()},
			)
		}
		m.inventory[g.ID()] = g
		m.uncovered[g.ID()] = g
	}

	for _, g := range inventory {
		for _, dep := range g.DependsOn() {
			if _, ok := m.inventory[dep]; !ok {
				return nil, errors.WithFields(
					errors.New(errors.ValidationFailed, "goal depends on unknown goal"),
					errors.Fields{"goal": g.ID(), "dependency": dep},
				)
			}
			if dep == g.ID() {
				return nil, errors.WithFields(
					errors.New(errors.ValidationFailed, "goal depends on itself"),
					errors.Fields{"goal": g.ID()},
				)
			}
		}
		if len(g.DependsOn()) == 0 {
			m.current[g.ID()] = g
		}
	}

	return m, nil
}

// Archive returns the archive the manager records covering candidates into.
func (m *Manager) Archive() *archive.Archive {
	return m.archive
}

// Evaluate computes fitness distances for the individual against every goal
// in the current set, plus any goal unlocked by coverage achieved during
// this same call. Covering a goal moves it to the covered set, records the
// individual in the archive and extends the current set with the uncovered
// goals whose dependencies are now all covered.
//
// Once the budget is exhausted the call is a no-op: no distances are
// attached and no partition state changes.
func (m *Manager) Evaluate(ctx context.Context, ind *core.Individual) error {
	if m.budget.IsFinished() {
		return nil
	}
	if err := errors.CheckContext(ctx, "goal evaluation"); err != nil {
		return err
	}

	ctx = logging.WithCandidateID(ctx, ind.ID())

	queue := m.CurrentGoals()
	processed := make(map[string]bool, len(queue))

	for len(queue) > 0 {
		g := queue[0]
		queue = queue[1:]
		if processed[g.ID()] {
			continue
		}
		processed[g.ID()] = true

		if m.budget.IsFinished() {
			return nil
		}

		distance, evaluated := ind.Fitness(g)
		if !evaluated {
			var err error
			distance, err = m.evaluator.Evaluate(ctx, ind.Candidate, g)
			if err != nil {
				if errors.IsFatal(err) {
					return errors.WithFields(
						errors.Wrap(err, errors.EvaluationFatal, "evaluator signaled a fatal condition"),
						errors.Fields{"goal": g.ID(), "candidate": ind.ID()},
					)
				}
				// A failed evaluation scores as not-yet-satisfied; the goal
				// stays uncovered.
				m.logger.Warn(ctx, "evaluation failed for goal %s, scoring as uncovered: %v", g.ID(), err)
				distance = math.Inf(1)
			}
			ind.SetFitness(g, distance)
		}

		if distance == 0 {
			unlocked := m.cover(ctx, g, ind)
			queue = append(queue, unlocked...)
		}
	}

	return nil
}

// cover transitions g to the covered set and returns the goals it unlocked,
// sorted by id. Safe to call when g was covered concurrently by another
// individual: the archive's strictly-better comparison is still applied and
// the partition is left untouched.
func (m *Manager) cover(ctx context.Context, g core.Goal, ind *core.Individual) []core.Goal {
	m.mu.Lock()

	if _, done := m.covered[g.ID()]; done {
		m.mu.Unlock()
		m.archive.Record(g, ind)
		return nil
	}

	delete(m.uncovered, g.ID())
	delete(m.current, g.ID())
	m.covered[g.ID()] = g

	// Unlock uncovered goals whose dependency set is now fully covered.
	var unlocked []core.Goal
	for id, candidate := range m.uncovered {
		if _, active := m.current[id]; active {
			continue
		}
		if m.dependenciesCoveredLocked(candidate) {
			m.current[id] = candidate
			unlocked = append(unlocked, candidate)
		}
	}
	m.mu.Unlock()

	m.archive.Record(g, ind)
	m.logger.Debug(ctx, "goal %s covered, %d goals unlocked", g.ID(), len(unlocked))

	sort.Slice(unlocked, func(i, j int) bool { return unlocked[i].ID() < unlocked[j].ID() })
	return unlocked
}

func (m *Manager) dependenciesCoveredLocked(g core.Goal) bool {
	for _, dep := range g.DependsOn() {
		if _, ok := m.covered[dep]; !ok {
			return false
		}
	}
	return true
}

// CurrentGoals returns the goals eligible for active optimization, sorted by
// id. This is the objective set handed to ranking and diversity computation
// for the generation in progress.
func (m *Manager) CurrentGoals() []core.Goal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedGoals(m.current)
}

// UncoveredGoals returns the goals not yet covered, sorted by id. The
// current set is a subset of this.
func (m *Manager) UncoveredGoals() []core.Goal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedGoals(m.uncovered)
}

// CoveredGoals returns the goals covered so far, sorted by id.
func (m *Manager) CoveredGoals() []core.Goal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedGoals(m.covered)
}

// Counts returns the sizes of the covered, current and uncovered sets in a
// single consistent read.
func (m *Manager) Counts() (covered, current, uncovered int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.covered), len(m.current), len(m.uncovered)
}

// TotalGoals returns the size of the goal inventory.
func (m *Manager) TotalGoals() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.inventory)
}

func sortedGoals(set map[string]core.Goal) []core.Goal {
	out := make([]core.Goal, 0, len(set))
	for _, g := range set {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
