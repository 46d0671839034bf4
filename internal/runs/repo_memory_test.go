package runs

import (
	"context"
	"errors"
	"testing"
	"time"
)

const (
	runID1 = "7d0f3c1e-0000-4000-8000-000000000001"
	runID2 = "7d0f3c1e-0000-4000-8000-000000000002"
	runID3 = "7d0f3c1e-0000-4000-8000-000000000003"
)

func seedRuns(t *testing.T, repo Repo) []Run {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []Run{
		{ID: runID1, Kind: "brand-visibility", Status: "completed", CreatedAt: base},
		{ID: runID2, Kind: "trend-scan", Status: "fallback", CreatedAt: base.Add(time.Minute)},
		{ID: runID3, Kind: "brand-visibility", Status: "failed", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, run := range runs {
		if err := repo.Create(context.Background(), run); err != nil {
			t.Fatalf("Create %s: %v", run.ID, err)
		}
	}
	return runs
}

func TestMemoryRepoListNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	seedRuns(t, repo)

	got, err := repo.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 || got[0].ID != runID3 || got[2].ID != runID1 {
		t.Fatalf("unexpected order %+v", ids(got))
	}

	got, _ = repo.List(context.Background(), ListFilter{Kind: "brand-visibility", Limit: 1, Offset: 1})
	if len(got) != 1 || got[0].ID != runID1 {
		t.Fatalf("unexpected filtered page %+v", ids(got))
	}

	got, _ = repo.List(context.Background(), ListFilter{Offset: 10})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil page, got %#v", got)
	}
}

func TestMemoryRepoGetByID(t *testing.T) {
	repo := NewMemoryRepo()
	seedRuns(t, repo)

	run, err := repo.GetByID(context.Background(), runID2)
	if err != nil || run.Status != "fallback" {
		t.Fatalf("GetByID: %+v, %v", run, err)
	}
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.GetByID(ctx, runID2); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestListFilterNormalized(t *testing.T) {
	tests := []struct {
		in   ListFilter
		want ListFilter
	}{
		{in: ListFilter{}, want: ListFilter{Limit: defaultListLimit}},
		{in: ListFilter{Limit: 500, Offset: -3}, want: ListFilter{Limit: maxListLimit}},
		{in: ListFilter{Kind: "trend-scan", Limit: 5, Offset: 2}, want: ListFilter{Kind: "trend-scan", Limit: 5, Offset: 2}},
	}
	for _, tt := range tests {
		if got := tt.in.normalized(); got != tt.want {
			t.Fatalf("normalized(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func ids(runs []Run) []string {
	out := make([]string, 0, len(runs))
	for _, r := range runs {
		out = append(out, r.ID)
	}
	return out
}
