package core

// GenerationSnapshot is the frozen view of one completed generation handed
// to observers. All slices and maps are copies owned by the snapshot; goal
// and candidate identifiers are sorted so identical search states produce
// identical snapshots.
type GenerationSnapshot struct {
	// Generation is the index of the generation that just completed.
	// Generation 0 is the evaluated initial population.
	Generation int

	// Population holds the candidate ids of the environmental-selection
	// survivors forming the next parent population.
	Population []string

	// Goal partition identities at the end of the generation.
	Covered   []string
	Current   []string
	Uncovered []string

	// Archive holds the candidate ids currently stored as best-per-goal,
	// deduplicated.
	Archive []string

	// ArchiveByGoal maps each covered goal id to the candidate id currently
	// archived for it.
	ArchiveByGoal map[string]string

	// Fitness maps candidate id to goal id to distance for every member of
	// Population, restricted to the goals evaluated against that candidate.
	Fitness map[string]map[string]float64
}

// CoveredCount returns the number of covered goals in the snapshot.
func (s *GenerationSnapshot) CoveredCount() int { return len(s.Covered) }

// TotalGoals returns the size of the goal inventory visible in the
// snapshot's partition.
func (s *GenerationSnapshot) TotalGoals() int {
	return len(s.Covered) + len(s.Uncovered)
}
