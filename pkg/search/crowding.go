package search

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/XiaoConstantine/mosa-go/pkg/core"
)

// AssignCrowdingDistance computes the NSGA-II crowding distance for every
// individual of one front within the objective subspace spanned by the goal
// set. Higher is more isolated and therefore preferred when a front has to
// be truncated.
//
// Two guarantees hold: individuals at either extreme of any single-goal
// projection receive +Inf, and individuals with identical fitness vectors
// receive identical scores. Scores are only comparable within the front they
// were computed for.
func AssignCrowdingDistance(front []*core.Individual, goals []core.Goal) map[string]float64 {
	distances := make(map[string]float64, len(front))
	if len(front) == 0 {
		return distances
	}

	// Collapse identical fitness vectors so duplicates share one score
	// instead of one of them grabbing a boundary slot.
	type group struct {
		representative *core.Individual
		members        []string
	}
	groupIndex := make(map[string]int)
	var groups []group
	for _, ind := range front {
		key := vectorKey(ind, goals)
		if idx, ok := groupIndex[key]; ok {
			groups[idx].members = append(groups[idx].members, ind.ID())
			continue
		}
		groupIndex[key] = len(groups)
		groups = append(groups, group{representative: ind, members: []string{ind.ID()}})
	}

	scores := make([]float64, len(groups))
	if len(groups) <= 2 {
		// Every distinct vector sits on a boundary.
		for i := range scores {
			scores[i] = math.Inf(1)
		}
	} else {
		order := make([]int, len(groups))
		for _, g := range goals {
			for i := range order {
				order[i] = i
			}
			sort.SliceStable(order, func(a, b int) bool {
				return distanceOrWorst(groups[order[a]].representative, g) <
					distanceOrWorst(groups[order[b]].representative, g)
			})

			low := distanceOrWorst(groups[order[0]].representative, g)
			high := distanceOrWorst(groups[order[len(order)-1]].representative, g)

			scores[order[0]] = math.Inf(1)
			scores[order[len(order)-1]] = math.Inf(1)

			span := high - low
			if span <= 0 {
				continue
			}
			for i := 1; i < len(order)-1; i++ {
				prev := distanceOrWorst(groups[order[i-1]].representative, g)
				next := distanceOrWorst(groups[order[i+1]].representative, g)
				scores[order[i]] += (next - prev) / span
			}
		}
	}

	for i, grp := range groups {
		for _, id := range grp.members {
			distances[id] = scores[i]
		}
	}
	return distances
}

// vectorKey renders the fitness vector over the goal set into a comparable
// string. Goal order is the caller's goal slice, which is already a fixed
// snapshot for the generation.
func vectorKey(ind *core.Individual, goals []core.Goal) string {
	var b strings.Builder
	for _, g := range goals {
		b.WriteString(strconv.FormatFloat(distanceOrWorst(ind, g), 'g', -1, 64))
		b.WriteByte('|')
	}
	return b.String()
}
