// Package metrics computes coverage summary numbers from generation
// snapshots, for reporting sinks.
package metrics

import "github.com/XiaoConstantine/mosa-go/pkg/core"

// CoverageRatio returns covered/total, or 0 when the inventory is empty.
func CoverageRatio(covered, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(covered) / float64(total)
}

// GenerationStats summarizes one generation snapshot.
type GenerationStats struct {
	Generation     int
	Covered        int
	Current        int
	Uncovered      int
	Coverage       float64
	PopulationSize int
	ArchiveSize    int
}

// Summarize computes GenerationStats from a snapshot.
func Summarize(snap *core.GenerationSnapshot) GenerationStats {
	total := snap.TotalGoals()
	return GenerationStats{
		Generation:     snap.Generation,
		Covered:        len(snap.Covered),
		Current:        len(snap.Current),
		Uncovered:      len(snap.Uncovered),
		Coverage:       CoverageRatio(len(snap.Covered), total),
		PopulationSize: len(snap.Population),
		ArchiveSize:    len(snap.Archive),
	}
}

// BestDistance returns the smallest distance any population member achieved
// for the goal, and false when no member has been evaluated against it.
// Useful for tracking progress on goals that resist coverage.
func BestDistance(snap *core.GenerationSnapshot, goalID string) (float64, bool) {
	best := 0.0
	found := false
	for _, fitness := range snap.Fitness {
		d, ok := fitness[goalID]
		if !ok {
			continue
		}
		if !found || d < best {
			best = d
			found = true
		}
	}
	return best, found
}
