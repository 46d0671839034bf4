package runs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var pgColumns = []string{"id", "kind", "status", "request", "result", "fallback_reason", "error_message", "raw_key", "duration_ms", "created_at"}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	run := Run{
		ID:             "7d0f3c1e-0000-4000-8000-000000000001",
		Kind:           "brand-visibility",
		Status:         "fallback",
		Request:        json.RawMessage(`{"prompt":"p","brand":"b"}`),
		FallbackReason: "parse",
		RawKey:         RawKey("7d0f3c1e-0000-4000-8000-000000000001"),
		DurationMs:     42,
		CreatedAt:      time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO analysis_runs").
		WithArgs(
			run.ID,
			run.Kind,
			run.Status,
			[]byte(run.Request),
			nil, // result
			run.FallbackReason,
			"",
			run.RawKey,
			run.DurationMs,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), run); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM analysis_runs WHERE id = \\$1").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow("run-1", "trend-scan", "completed", `{"brand":"b"}`, `{"trends":[]}`, "", "", "runs/run-1/completion.txt", int64(900), created))

	run, err := repo.GetByID(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if run.Kind != "trend-scan" || string(run.Result) != `{"trends":[]}` || !run.CreatedAt.Equal(created) {
		t.Fatalf("unexpected run %+v", run)
	}

	mock.ExpectQuery("SELECT (.+) FROM analysis_runs WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(pgColumns))
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListAppliesFilter(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM analysis_runs").
		WithArgs("prompt-refinement", defaultListLimit, 0).
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow("run-2", "prompt-refinement", "failed", `{"prompt":"p"}`, nil, "", "model call failed", "", int64(10), created))

	got, err := repo.List(context.Background(), ListFilter{Kind: "prompt-refinement"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Result != nil || got[0].ErrorMessage != "model call failed" {
		t.Fatalf("unexpected runs %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
