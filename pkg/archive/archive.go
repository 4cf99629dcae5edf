// Package archive accumulates the best candidate discovered per covered
// goal. The archive only ever grows: entries are added when a goal is first
// covered and replaced only by strictly preferable candidates, so its
// contents at termination are the result of the search.
package archive

import (
	"sort"
	"sync"

	"github.com/XiaoConstantine/mosa-go/pkg/core"
)

// Preference decides whether challenger is strictly preferable to the
// incumbent for a goal both of them cover. It is never called with a nil
// challenger; a nil incumbent means the goal has no entry yet and any
// covering candidate wins.
//
// Replacement happens only when Preference returns true, so a comparison
// that treats ties as "not preferable" keeps the first candidate found and
// makes the archive stable under re-evaluation.
type Preference func(incumbent, challenger *core.Individual) bool

// SmallerCandidate is the default preference: a covering candidate beats no
// candidate, and a strictly smaller candidate beats the incumbent. Ties on
// size keep the incumbent.
func SmallerCandidate(incumbent, challenger *core.Individual) bool {
	if incumbent == nil {
		return true
	}
	return challenger.Size() < incumbent.Size()
}

// FirstWins keeps whichever candidate covered the goal first; later covering
// candidates never replace it, regardless of size.
func FirstWins(incumbent, challenger *core.Individual) bool {
	return incumbent == nil
}

// Archive stores, per covered goal, the best individual seen so far.
// Recording is keyed and serialized per goal id, so concurrent evaluators
// covering the same goal cannot interleave a non-atomic replacement.
type Archive struct {
	mu      sync.RWMutex
	entries map[string]*core.Individual
	prefer  Preference
}

// Option configures an Archive.
type Option func(*Archive)

// WithPreference overrides the replacement comparison.
func WithPreference(p Preference) Option {
	return func(a *Archive) {
		a.prefer = p
	}
}

// New creates an empty archive with the SmallerCandidate preference.
func New(opts ...Option) *Archive {
	a := &Archive{
		entries: make(map[string]*core.Individual),
		prefer:  SmallerCandidate,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Record offers ind as the candidate for goal g and reports whether the
// entry was inserted or replaced. The incumbent is replaced only when ind is
// strictly preferable; re-recording the same individual is a no-op.
func (a *Archive) Record(g core.Goal, ind *core.Individual) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	incumbent := a.entries[g.ID()]
	if incumbent != nil && incumbent.ID() == ind.ID() {
		return false
	}
	if !a.prefer(incumbent, ind) {
		return false
	}
	a.entries[g.ID()] = ind
	return true
}

// Best returns the stored individual for the goal, if any.
func (a *Archive) Best(g core.Goal) (*core.Individual, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ind, ok := a.entries[g.ID()]
	return ind, ok
}

// Has reports whether the goal has an archive entry.
func (a *Archive) Has(g core.Goal) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.entries[g.ID()]
	return ok
}

// Len returns the number of goals with an entry.
func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// Solutions returns the current best-known individuals across all covered
// goals, deduplicated by candidate identity (one candidate may be best for
// several goals) and sorted by id for reproducible output.
func (a *Archive) Solutions() []*core.Individual {
	a.mu.RLock()
	defer a.mu.RUnlock()

	seen := make(map[string]*core.Individual, len(a.entries))
	for _, ind := range a.entries {
		seen[ind.ID()] = ind
	}

	solutions := make([]*core.Individual, 0, len(seen))
	for _, ind := range seen {
		solutions = append(solutions, ind)
	}
	sort.Slice(solutions, func(i, j int) bool {
		return solutions[i].ID() < solutions[j].ID()
	})
	return solutions
}

// Entries returns a copy of the goal-id to candidate-id mapping, for
// snapshots and coverage reporting.
func (a *Archive) Entries() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entries := make(map[string]string, len(a.entries))
	for goalID, ind := range a.entries {
		entries[goalID] = ind.ID()
	}
	return entries
}

// GoalIDs returns the sorted ids of goals with an entry.
func (a *Archive) GoalIDs() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]string, 0, len(a.entries))
	for id := range a.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reset drops all entries. Only meant for search (re)initialization; during
// a run the archive never shrinks.
func (a *Archive) Reset() {
	a.mu.Lock()
	a.entries = make(map[string]*core.Individual)
	a.mu.Unlock()
}
