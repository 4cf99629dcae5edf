// Package report contains reporting sinks consuming generation snapshots:
// a SQLite coverage journal and an Arrow fitness-matrix exporter. Sinks are
// purely observational; nothing here feeds back into the search.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/XiaoConstantine/mosa-go/pkg/core"
	"github.com/XiaoConstantine/mosa-go/pkg/errors"
	"github.com/XiaoConstantine/mosa-go/pkg/logging"
	"github.com/XiaoConstantine/mosa-go/pkg/metrics"
)

// SQLiteJournal persists per-generation coverage history and first-coverage
// events to a SQLite database, so long searches can be analyzed or resumed
// offline. It implements core.Observer.
type SQLiteJournal struct {
	db     *sql.DB
	logger *logging.Logger

	mu       sync.Mutex
	recorded map[string]bool // goal ids already journaled as covered
}

// NewSQLiteJournal opens (or creates) the journal database at path.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	if path == "" {
		path = "search_journal.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to open journal database")
	}

	j := &SQLiteJournal{
		db:       db,
		logger:   logging.GetLogger(),
		recorded: make(map[string]bool),
	}

	if err := j.initDB(); err != nil {
		db.Close()
		return nil, err
	}

	// WAL keeps journal writes off the search's critical path.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to enable WAL mode")
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		j.logger.Warn(context.Background(), "failed to set synchronous pragma: %v", err)
	}

	return j, nil
}

func (j *SQLiteJournal) initDB() error {
	schema := `
	CREATE TABLE IF NOT EXISTS generations (
		generation  INTEGER PRIMARY KEY,
		covered     INTEGER NOT NULL,
		current     INTEGER NOT NULL,
		uncovered   INTEGER NOT NULL,
		coverage    REAL    NOT NULL,
		population  INTEGER NOT NULL,
		archive     INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS coverage_events (
		goal_id     TEXT PRIMARY KEY,
		candidate_id TEXT NOT NULL,
		generation  INTEGER NOT NULL
	);`

	if _, err := j.db.Exec(schema); err != nil {
		return errors.Wrap(err, errors.InvalidInput, "failed to initialize journal schema")
	}
	return nil
}

// OnGeneration journals the generation's summary row and a coverage event
// for every goal that became covered since the last snapshot. Journal
// failures are logged, never propagated: reporting must not stop a search.
func (j *SQLiteJournal) OnGeneration(ctx context.Context, snap *core.GenerationSnapshot) {
	stats := metrics.Summarize(snap)

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO generations
		 (generation, covered, current, uncovered, coverage, population, archive)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stats.Generation, stats.Covered, stats.Current, stats.Uncovered,
		stats.Coverage, stats.PopulationSize, stats.ArchiveSize)
	if err != nil {
		j.logger.Warn(ctx, "failed to journal generation %d: %v", snap.Generation, err)
		return
	}

	for _, goalID := range snap.Covered {
		if j.recorded[goalID] {
			continue
		}
		candidateID := coveringCandidate(snap, goalID)
		_, err := j.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO coverage_events (goal_id, candidate_id, generation)
			 VALUES (?, ?, ?)`,
			goalID, candidateID, snap.Generation)
		if err != nil {
			j.logger.Warn(ctx, "failed to journal coverage of goal %s: %v", goalID, err)
			continue
		}
		j.recorded[goalID] = true
	}
}

// coveringCandidate finds a witness for the goal's coverage: a population
// member with distance 0, or the archived candidate when the covering
// individual did not survive environmental selection into the snapshot.
func coveringCandidate(snap *core.GenerationSnapshot, goalID string) string {
	for candidateID, fitness := range snap.Fitness {
		if d, ok := fitness[goalID]; ok && d == 0 {
			return candidateID
		}
	}
	return snap.ArchiveByGoal[goalID]
}

// History returns the journaled per-generation stats in generation order.
func (j *SQLiteJournal) History(ctx context.Context) ([]metrics.GenerationStats, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT generation, covered, current, uncovered, coverage, population, archive
		 FROM generations ORDER BY generation`)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to read journal history")
	}
	defer rows.Close()

	var history []metrics.GenerationStats
	for rows.Next() {
		var s metrics.GenerationStats
		if err := rows.Scan(&s.Generation, &s.Covered, &s.Current, &s.Uncovered,
			&s.Coverage, &s.PopulationSize, &s.ArchiveSize); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to scan journal row")
		}
		history = append(history, s)
	}
	return history, rows.Err()
}

// CoveredAt returns the generation a goal was first journaled as covered.
func (j *SQLiteJournal) CoveredAt(ctx context.Context, goalID string) (int, error) {
	var generation int
	err := j.db.QueryRowContext(ctx,
		`SELECT generation FROM coverage_events WHERE goal_id = ?`, goalID).Scan(&generation)
	if err == sql.ErrNoRows {
		return 0, errors.WithFields(
			errors.New(errors.InvalidInput, "goal has no coverage event"),
			errors.Fields{"goal": goalID})
	}
	if err != nil {
		return 0, errors.Wrap(err, errors.Unknown, fmt.Sprintf("failed to look up goal %s", goalID))
	}
	return generation, nil
}

// Close flushes and closes the underlying database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
