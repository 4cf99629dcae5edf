package core

import (
	"math"
	"sync"

	"github.com/google/uuid"
)

// Candidate is one externally produced solution instance under evaluation.
// How a candidate is constructed, mutated or recombined is the concern of
// the Factory and Variation collaborators; the engine only needs identity
// and a minimality measure for archive tie-breaking.
type Candidate interface {
	// ID returns the unique identifier assigned at creation.
	ID() string

	// Size returns a non-negative measure of the candidate's length or
	// complexity. Smaller candidates are preferred when two candidates
	// cover the same goal.
	Size() int
}

// NewID returns a fresh candidate identifier.
func NewID() string {
	return uuid.New().String()
}

// BasicCandidate is a minimal Candidate for factories that keep their genome
// elsewhere, and for tests.
type BasicCandidate struct {
	CandidateID string
	Length      int
}

// NewBasicCandidate creates a candidate with a generated id.
func NewBasicCandidate(size int) BasicCandidate {
	return BasicCandidate{CandidateID: NewID(), Length: size}
}

func (c BasicCandidate) ID() string { return c.CandidateID }

func (c BasicCandidate) Size() int { return c.Length }

// Individual pairs a Candidate with the fitness distances computed for it so
// far. The distance map is built lazily, one entry per evaluated goal; a
// distance of 0 means the goal is satisfied by this candidate.
//
// Individuals are evaluated at most once per goal and treated as immutable
// afterwards; Variation implementations must produce new candidates rather
// than mutate ones already evaluated.
type Individual struct {
	Candidate

	mu      sync.RWMutex
	fitness map[string]float64
}

// NewIndividual wraps a candidate with an empty fitness map.
func NewIndividual(c Candidate) *Individual {
	return &Individual{
		Candidate: c,
		fitness:   make(map[string]float64),
	}
}

// Fitness returns the recorded distance for the goal, and whether the goal
// has been evaluated against this individual at all.
func (in *Individual) Fitness(g Goal) (float64, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	d, ok := in.fitness[g.ID()]
	return d, ok
}

// SetFitness records the distance for the goal. Distances are clamped to be
// non-negative; NaN is recorded as +Inf so it can never count as covering.
func (in *Individual) SetFitness(g Goal, distance float64) {
	if math.IsNaN(distance) || distance < 0 {
		distance = math.Inf(1)
	}
	in.mu.Lock()
	in.fitness[g.ID()] = distance
	in.mu.Unlock()
}

// Covers reports whether this individual satisfies the goal.
func (in *Individual) Covers(g Goal) bool {
	d, ok := in.Fitness(g)
	return ok && d == 0
}

// FitnessValues returns a copy of the goal-id to distance map evaluated so
// far. The copy is safe to hand to observers while evaluation continues.
func (in *Individual) FitnessValues() map[string]float64 {
	in.mu.RLock()
	defer in.mu.RUnlock()
	values := make(map[string]float64, len(in.fitness))
	for id, d := range in.fitness {
		values[id] = d
	}
	return values
}
