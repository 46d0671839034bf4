package runs

import "context"

// Repo persists run records.
type Repo interface {
	Create(ctx context.Context, run Run) error
	GetByID(ctx context.Context, runID string) (Run, error)
	List(ctx context.Context, filter ListFilter) ([]Run, error)
}
