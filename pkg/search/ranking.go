// Package search implements the generational many-objective search loop:
// non-dominated ranking over the currently active goal set, crowding-based
// diversity estimation, and the environmental selection that assembles each
// next population.
package search

import (
	"sort"

	"github.com/XiaoConstantine/mosa-go/pkg/core"
)

// Fronts is the ordered non-dominated decomposition of a candidate set.
// Fronts[0] is the best front; every individual in Fronts[i] (i > 0) is
// dominated by at least one individual in an earlier front, and no
// individual is dominated by anything in a later front.
type Fronts [][]*core.Individual

// Size returns the total number of individuals across all fronts.
func (f Fronts) Size() int {
	n := 0
	for _, front := range f {
		n += len(front)
	}
	return n
}

// Dominates reports whether a dominates b with respect to the given goal
// set: a's distance is <= on every goal and strictly < on at least one.
// Goals not yet evaluated on an individual count as +Inf, i.e. worst.
// With an empty goal set nothing dominates anything.
func Dominates(a, b *core.Individual, goals []core.Goal) bool {
	better := false
	for _, g := range goals {
		da := distanceOrWorst(a, g)
		db := distanceOrWorst(b, g)
		if da > db {
			return false
		}
		if da < db {
			better = true
		}
	}
	return better
}

func distanceOrWorst(ind *core.Individual, g core.Goal) float64 {
	if d, ok := ind.Fitness(g); ok {
		return d
	}
	return worstDistance
}

const worstDistance = 1e308

// Rank partitions individuals into ordered non-dominated fronts with respect
// to the goal set, using the classical O(M*N^2) fast non-dominated sort.
// The decomposition is deterministic: individuals keep their input order
// within each front, so identical inputs always produce identical fronts.
//
// The goal set must stay fixed for the duration of one ranking; callers pass
// a snapshot of the active goals, never a live view.
func Rank(individuals []*core.Individual, goals []core.Goal) Fronts {
	if len(individuals) == 0 {
		return Fronts{}
	}

	n := len(individuals)
	dominationCount := make([]int, n)
	dominated := make([][]int, n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			switch {
			case Dominates(individuals[i], individuals[j], goals):
				dominated[i] = append(dominated[i], j)
				dominationCount[j]++
			case Dominates(individuals[j], individuals[i], goals):
				dominated[j] = append(dominated[j], i)
				dominationCount[i]++
			}
		}
	}

	var fronts Fronts
	var current []int
	for i := 0; i < n; i++ {
		if dominationCount[i] == 0 {
			current = append(current, i)
		}
	}

	for len(current) > 0 {
		front := make([]*core.Individual, 0, len(current))
		for _, i := range current {
			front = append(front, individuals[i])
		}
		fronts = append(fronts, front)

		var next []int
		for _, i := range current {
			for _, j := range dominated[i] {
				dominationCount[j]--
				if dominationCount[j] == 0 {
					next = append(next, j)
				}
			}
		}
		// Restore input order so the decomposition is reproducible.
		sort.Ints(next)
		current = next
	}

	return fronts
}
