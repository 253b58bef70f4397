// Package runlog persists batch results to SQLite so estimates from
// different configurations can be compared after the fact.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/facetlab/stonesim/internal/sim"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	seed        INTEGER NOT NULL,
	requested   INTEGER NOT NULL,
	completed   INTEGER NOT NULL,
	success     INTEGER NOT NULL,
	failure     INTEGER NOT NULL,
	abandoned   INTEGER NOT NULL,
	probability REAL NOT NULL,
	goal        TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_sessions (
	run_id        TEXT NOT NULL REFERENCES runs(run_id),
	session_index INTEGER NOT NULL,
	outcome       TEXT NOT NULL,
	rounds        INTEGER NOT NULL,
	level_a       INTEGER NOT NULL,
	level_b       INTEGER NOT NULL,
	level_neg     INTEGER NOT NULL,
	PRIMARY KEY (run_id, session_index)
);
`

// RunSummary is one persisted batch, newest first from ListRuns.
type RunSummary struct {
	RunID       string
	Seed        int64
	Requested   int
	Completed   int
	Success     int
	Failure     int
	Abandoned   int
	Probability float64
	Goal        string
	CreatedAt   time.Time
}

// Store provides SQLite-backed batch result persistence.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the run log at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("runlog path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordRun persists one batch aggregate plus whatever per-session
// outcomes it kept. goal is the textual form of the acceptance goal
// the batch ran against.
func (s *Store) RecordRun(ctx context.Context, res *sim.AggregateResult, goal string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("runlog is not configured")
	}
	if res == nil {
		return fmt.Errorf("result is required")
	}
	if strings.TrimSpace(res.RunID) == "" {
		return fmt.Errorf("run id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin runlog tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (
	run_id,
	seed,
	requested,
	completed,
	success,
	failure,
	abandoned,
	probability,
	goal,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		res.RunID,
		res.Seed,
		res.Requested,
		res.Completed,
		res.Success,
		res.Failure,
		res.Abandoned,
		res.Probability,
		goal,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	if len(res.Sessions) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_sessions (
	run_id,
	session_index,
	outcome,
	rounds,
	level_a,
	level_b,
	level_neg
) VALUES (?, ?, ?, ?, ?, ?, ?)
`)
		if err != nil {
			return fmt.Errorf("prepare session insert: %w", err)
		}
		defer stmt.Close()

		for i, out := range res.Sessions {
			_, err := stmt.ExecContext(ctx,
				res.RunID,
				i,
				out.Outcome.String(),
				out.Rounds,
				out.Final[0],
				out.Final[1],
				out.Final[2],
			)
			if err != nil {
				return fmt.Errorf("record session %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit runlog tx: %w", err)
	}
	return nil
}

// ListRuns lists newest-first persisted batches.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("runlog is not configured")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT run_id, seed, requested, completed, success, failure, abandoned, probability, goal, created_at
FROM runs
ORDER BY created_at DESC, run_id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var createdAt int64
		if err := rows.Scan(
			&r.RunID,
			&r.Seed,
			&r.Requested,
			&r.Completed,
			&r.Success,
			&r.Failure,
			&r.Abandoned,
			&r.Probability,
			&r.Goal,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// SessionOutcomes returns the persisted per-session outcome counts for
// one run, keyed by outcome label.
func (s *Store) SessionOutcomes(ctx context.Context, runID string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("runlog is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT outcome, COUNT(*)
FROM run_sessions
WHERE run_id = ?
GROUP BY outcome
`, runID)
	if err != nil {
		return nil, fmt.Errorf("count session outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts[outcome] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome counts: %w", err)
	}
	return counts, nil
}
