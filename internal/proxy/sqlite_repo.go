package proxy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS proxy_runs (
	id             TEXT PRIMARY KEY,
	deck_name      TEXT NOT NULL,
	status         TEXT NOT NULL,
	cards_total    INTEGER NOT NULL DEFAULT 0,
	cards_resolved INTEGER NOT NULL DEFAULT 0,
	images_fetched INTEGER NOT NULL DEFAULT 0,
	error          TEXT NOT NULL DEFAULT '',
	started_at     INTEGER NOT NULL,
	finished_at    INTEGER
);

CREATE TABLE IF NOT EXISTS proxy_run_failures (
	run_id    TEXT NOT NULL REFERENCES proxy_runs(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	card_name TEXT NOT NULL,
	quantity  INTEGER NOT NULL,
	reason    TEXT NOT NULL,
	message   TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);`

// SQLiteRepo keeps the run ledger in a local SQLite file. Times are stored
// as unix nanoseconds.
type SQLiteRepo struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a ledger database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// One connection, so the pragma below applies to every statement.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &SQLiteRepo{db: db}, nil
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepo) CreateRun(ctx context.Context, run *Run) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO proxy_runs (id, deck_name, status, started_at) VALUES (?, ?, ?, ?)",
		run.ID, run.DeckName, run.Status, run.StartedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) UpdateRun(ctx context.Context, run *Run) error {
	var finished sql.NullInt64
	if run.FinishedAt != nil {
		finished = sql.NullInt64{Int64: run.FinishedAt.UnixNano(), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE proxy_runs SET finished_at = ?, status = ?, cards_total = ?, cards_resolved = ?,
			images_fetched = ?, error = ? WHERE id = ?`,
		finished, run.Status, run.CardsTotal, run.CardsResolved, run.ImagesFetched, run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) AddFailure(ctx context.Context, runID string, position int, f Failure) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO proxy_run_failures (run_id, position, card_name, quantity, reason, message)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, position, f.Card.Name, f.Card.Quantity, string(f.Reason), f.Message,
	)
	if err != nil {
		return fmt.Errorf("add failure: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) GetRun(ctx context.Context, id string) (*Run, error) {
	var (
		run      Run
		started  int64
		finished sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, deck_name, status, cards_total, cards_resolved, images_fetched, error, started_at, finished_at
		FROM proxy_runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.DeckName, &run.Status, &run.CardsTotal, &run.CardsResolved,
		&run.ImagesFetched, &run.Error, &started, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	run.StartedAt = time.Unix(0, started).UTC()
	if finished.Valid {
		t := time.Unix(0, finished.Int64).UTC()
		run.FinishedAt = &t
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT card_name, quantity, reason, message FROM proxy_run_failures WHERE run_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	defer rows.Close()

	run.Failures = []Failure{}
	for rows.Next() {
		var f Failure
		var reason string
		if err := rows.Scan(&f.Card.Name, &f.Card.Quantity, &reason, &f.Message); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		f.Reason = Reason(reason)
		run.Failures = append(run.Failures, f)
	}
	return &run, rows.Err()
}
