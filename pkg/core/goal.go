package core

// Goal represents a single testable objective a candidate may or may not
// satisfy. A goal becomes eligible for active optimization only once every
// goal in its dependency set is covered.
//
// Implementations must be immutable after search start: the identifier and
// dependency set are read many times per generation and never synchronized.
type Goal interface {
	// ID returns the stable identifier of the goal. Two goals with the same
	// ID are the same goal.
	ID() string

	// DependsOn returns the IDs of the goals that must be covered before
	// this goal becomes eligible. An empty result means the goal is eligible
	// from generation zero.
	DependsOn() []string
}

// StaticGoal is a plain-value Goal for subjects whose objectives carry no
// behavior of their own (tests, examples, precomputed goal inventories).
type StaticGoal struct {
	GoalID       string
	Dependencies []string
}

// NewStaticGoal creates a goal with the given id and dependency ids.
func NewStaticGoal(id string, deps ...string) StaticGoal {
	return StaticGoal{GoalID: id, Dependencies: deps}
}

func (g StaticGoal) ID() string { return g.GoalID }

func (g StaticGoal) DependsOn() []string { return g.Dependencies }
