package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo on the analysis_runs table.
type PGRepo struct {
	DB *sql.DB
}

const runColumns = `id, kind, status, request, result, fallback_reason, error_message, raw_key, duration_ms, created_at`

// Create inserts a run.
func (r *PGRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO analysis_runs (` + runColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		run.ID,
		run.Kind,
		run.Status,
		jsonbOrEmpty(run.Request),
		jsonbOrNull(run.Result),
		run.FallbackReason,
		run.ErrorMessage,
		run.RawKey,
		run.DurationMs,
		run.CreatedAt,
	)
	return err
}

// GetByID returns a run by ID.
func (r *PGRepo) GetByID(ctx context.Context, runID string) (Run, error) {
	query := `SELECT ` + runColumns + ` FROM analysis_runs WHERE id = $1 LIMIT 1`
	run, err := scanRun(r.DB.QueryRowContext(ctx, query, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return run, err
}

// List returns runs newest first, optionally filtered by kind.
func (r *PGRepo) List(ctx context.Context, filter ListFilter) ([]Run, error) {
	filter = filter.normalized()
	query := `SELECT ` + runColumns + ` FROM analysis_runs
WHERE ($1 = '' OR kind = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, filter.Kind, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var request, result sql.NullString
	err := row.Scan(
		&run.ID,
		&run.Kind,
		&run.Status,
		&request,
		&result,
		&run.FallbackReason,
		&run.ErrorMessage,
		&run.RawKey,
		&run.DurationMs,
		&run.CreatedAt,
	)
	if err != nil {
		return Run{}, err
	}
	if request.Valid {
		run.Request = json.RawMessage(request.String)
	}
	if result.Valid {
		run.Result = json.RawMessage(result.String)
	}
	return run, nil
}

func jsonbOrEmpty(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("{}")
	}
	return raw
}

func jsonbOrNull(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

var _ Repo = (*PGRepo)(nil)
