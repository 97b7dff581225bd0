package proxy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) error {
	const sql = `
		INSERT INTO proxy_runs (id, deck_name, status, started_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, sql, run.ID, run.DeckName, run.Status, run.StartedAt)
	return err
}

func (r *PostgresRepo) UpdateRun(ctx context.Context, run *Run) error {
	const sql = `
		UPDATE proxy_runs SET
			finished_at = $1,
			status = $2,
			cards_total = $3,
			cards_resolved = $4,
			images_fetched = $5,
			error = $6
		WHERE id = $7`

	_, err := r.db.Exec(ctx, sql, run.FinishedAt, run.Status, run.CardsTotal, run.CardsResolved, run.ImagesFetched, run.Error, run.ID)
	return err
}

func (r *PostgresRepo) AddFailure(ctx context.Context, runID string, position int, f Failure) error {
	const sql = `
		INSERT INTO proxy_run_failures (run_id, position, card_name, quantity, reason, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING`

	_, err := r.db.Exec(ctx, sql, runID, position, f.Card.Name, f.Card.Quantity, string(f.Reason), f.Message)
	return err
}

func (r *PostgresRepo) GetRun(ctx context.Context, id string) (*Run, error) {
	const runSQL = `
		SELECT id::text, deck_name, status, cards_total, cards_resolved, images_fetched,
			COALESCE(error, ''), started_at, finished_at
		FROM proxy_runs
		WHERE id = $1`

	var run Run
	err := r.db.QueryRow(ctx, runSQL, id).Scan(
		&run.ID, &run.DeckName, &run.Status, &run.CardsTotal, &run.CardsResolved,
		&run.ImagesFetched, &run.Error, &run.StartedAt, &run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, err
	}

	const failuresSQL = `
		SELECT card_name, quantity, reason, message
		FROM proxy_run_failures
		WHERE run_id = $1
		ORDER BY position`

	rows, err := r.db.Query(ctx, failuresSQL, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Failures = []Failure{}
	for rows.Next() {
		var f Failure
		var reason string
		if err := rows.Scan(&f.Card.Name, &f.Card.Quantity, &reason, &f.Message); err != nil {
			return nil, err
		}
		f.Reason = Reason(reason)
		run.Failures = append(run.Failures, f)
	}
	return &run, rows.Err()
}
