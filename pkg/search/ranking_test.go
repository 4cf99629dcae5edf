package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/mosa-go/pkg/core"
)

// vec builds an individual with the given distances assigned to goals in
// order.
func vec(id string, goals []core.Goal, distances ...float64) *core.Individual {
	ind := core.NewIndividual(core.BasicCandidate{CandidateID: id, Length: 1})
	for i, d := range distances {
		ind.SetFitness(goals[i], d)
	}
	return ind
}

func twoGoals() []core.Goal {
	return []core.Goal{core.NewStaticGoal("g1"), core.NewStaticGoal("g2")}
}

func TestDominates(t *testing.T) {
	goals := twoGoals()

	tests := []struct {
		name string
		a, b []float64
		want bool
	}{
		{"strictly better on both", []float64{1, 1}, []float64{2, 2}, true},
		{"better on one, equal on other", []float64{1, 2}, []float64{2, 2}, true},
		{"equal vectors", []float64{1, 1}, []float64{1, 1}, false},
		{"trade-off", []float64{1, 3}, []float64{3, 1}, false},
		{"worse on one", []float64{1, 3}, []float64{2, 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := vec("a", goals, tt.a...)
			b := vec("b", goals, tt.b...)
			assert.Equal(t, tt.want, Dominates(a, b, goals))
		})
	}
}

func TestDominatesUnevaluatedGoalIsWorst(t *testing.T) {
	goals := twoGoals()
	full := vec("full", goals, 5, 5)
	partial := vec("partial", goals[:1], 5)

	assert.True(t, Dominates(full, partial, goals))
	assert.False(t, Dominates(partial, full, goals))
}

func TestDominatesEmptyGoalSet(t *testing.T) {
	goals := twoGoals()
	a := vec("a", goals, 0, 0)
	b := vec("b", goals, 9, 9)
	assert.False(t, Dominates(a, b, nil))
}

func TestRankLayeredFronts(t *testing.T) {
	goals := twoGoals()
	// Two non-dominated layers plus a fully dominated tail.
	a := vec("a", goals, 1, 4)
	b := vec("b", goals, 4, 1)
	c := vec("c", goals, 2, 5)
	d := vec("d", goals, 5, 2)
	e := vec("e", goals, 6, 6)

	fronts := Rank([]*core.Individual{a, b, c, d, e}, goals)
	require.Len(t, fronts, 3)
	assert.Equal(t, []*core.Individual{a, b}, fronts[0])
	assert.Equal(t, []*core.Individual{c, d}, fronts[1])
	assert.Equal(t, []*core.Individual{e}, fronts[2])
}

func TestRankCompleteness(t *testing.T) {
	goals := twoGoals()
	var individuals []*core.Individual
	for i := 0; i < 20; i++ {
		individuals = append(individuals, vec(fmt.Sprintf("i%d", i), goals, float64(i%7), float64((13*i)%11)))
	}

	fronts := Rank(individuals, goals)
	assert.Equal(t, len(individuals), fronts.Size())

	seen := make(map[string]int)
	for _, front := range fronts {
		for _, ind := range front {
			seen[ind.ID()]++
		}
	}
	for _, ind := range individuals {
		assert.Equal(t, 1, seen[ind.ID()], "individual %s must appear exactly once", ind.ID())
	}
}

func TestRankFrontsAreNonDominated(t *testing.T) {
	goals := twoGoals()
	var individuals []*core.Individual
	for i := 0; i < 15; i++ {
		individuals = append(individuals, vec(fmt.Sprintf("i%d", i), goals, float64((7*i)%9), float64((5*i)%8)))
	}

	fronts := Rank(individuals, goals)
	for fi, front := range fronts {
		// No domination within a front.
		for _, x := range front {
			for _, y := range front {
				assert.False(t, Dominates(x, y, goals), "front %d: %s dominates peer %s", fi, x.ID(), y.ID())
			}
		}
		// Every member of a later front is dominated by someone earlier.
		if fi == 0 {
			continue
		}
		for _, y := range front {
			dominated := false
			for _, x := range fronts[fi-1] {
				if Dominates(x, y, goals) {
					dominated = true
					break
				}
			}
			assert.True(t, dominated, "front %d: %s not dominated by previous front", fi, y.ID())
		}
	}
}

func TestRankDeterministic(t *testing.T) {
	goals := twoGoals()
	var individuals []*core.Individual
	for i := 0; i < 12; i++ {
		individuals = append(individuals, vec(fmt.Sprintf("i%d", i), goals, float64(i%5), float64((3*i)%7)))
	}

	first := Rank(individuals, goals)
	for run := 0; run < 5; run++ {
		again := Rank(individuals, goals)
		require.Len(t, again, len(first))
		for fi := range first {
			assert.Equal(t, first[fi], again[fi], "front %d differs between runs", fi)
		}
	}
}

func TestRankEmptyGoalSetSingleFront(t *testing.T) {
	goals := twoGoals()
	a := vec("a", goals, 0, 0)
	b := vec("b", goals, 9, 9)

	fronts := Rank([]*core.Individual{a, b}, nil)
	require.Len(t, fronts, 1)
	assert.Len(t, fronts[0], 2)
}

func TestRankEmptyInput(t *testing.T) {
	assert.Empty(t, Rank(nil, twoGoals()))
}
