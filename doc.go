// Package mosa is a Go implementation of many-objective sorting search in
// the DynaMOSA style: a generational evolutionary engine that grows a set of
// candidate solutions collectively covering as many testable goals as
// possible within a fixed budget, with dynamic selection of the goals worth
// optimizing at each generation.
//
// The engine treats candidate construction, variation and raw fitness
// computation as external collaborators, and owns everything in between:
//   - Goal management: the partition of the goal inventory into uncovered,
//     current and covered sets, driven by a dependency relation so goals
//     only attract optimization pressure once reachable.
//   - Ranking: non-dominated sorting of the parent/offspring union,
//     restricted to the goals active for the generation.
//   - Diversity: NSGA-II crowding distance within each front, used to
//     truncate the one front that does not fit.
//   - Archive: the best candidate discovered per covered goal, which is the
//     search's result.
//
// Key Packages:
//
//   - core: the Goal, Candidate and Individual types and the collaborator
//     contracts (Evaluator, Factory, Variation, Budget, Observer).
//
//   - goals: the Manager owning the goal partition and delegating distance
//     computation to the evaluator.
//
//   - search: the Engine generational loop, ranking and crowding distance.
//
//   - archive: the per-goal best-candidate store with a pluggable
//     strictly-better replacement policy.
//
//   - report: observational sinks consuming per-generation snapshots: a
//     SQLite coverage journal and an Arrow fitness-matrix exporter.
//
//   - config, logging, errors, metrics: YAML configuration, structured
//     logging, structured errors and coverage summaries.
//
// A minimal run wires an inventory of goals and three collaborator
// implementations into an engine:
//
//	engine, err := search.NewEngine(inventory, evaluator, factory, variation,
//	    search.WithPopulationSize(50),
//	    search.WithMaxGenerations(200),
//	    search.WithObserver(report.NewLogObserver()),
//	)
//	if err != nil {
//	    // ...
//	}
//	solutions, err := engine.Run(ctx)
//
// See examples/stringmatch for a complete self-contained subject.
package mosa
