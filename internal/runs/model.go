package runs

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

// Run is the stored record of one analysis or refinement invocation.
type Run struct {
	ID             string          `json:"id"`
	Kind           string          `json:"kind"`
	Status         string          `json:"status"`
	Request        json.RawMessage `json:"request"`
	Result         json.RawMessage `json:"result,omitempty"`
	FallbackReason string          `json:"fallbackReason,omitempty"`
	ErrorMessage   string          `json:"errorMessage,omitempty"`
	RawKey         string          `json:"rawKey,omitempty"`
	DurationMs     int64           `json:"durationMs"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ListFilter narrows List results. An empty Kind matches every kind.
type ListFilter struct {
	Kind   string
	Limit  int
	Offset int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// RawKey returns the object store key holding a run's raw completion.
func RawKey(runID string) string {
	return "runs/" + runID + "/completion.txt"
}
