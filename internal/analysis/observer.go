package analysis

import (
	"context"
	"time"
)

// Event describes one analysis or refinement invocation that reached the model.
type Event struct {
	RunID    string
	Kind     TaskKind
	Request  TaskRequest
	Raw      string
	Result   any
	Fallback bool
	// FallbackReason is extraction, parse or validation.
	FallbackReason string
	Err            error
	StartedAt      time.Time
	Duration       time.Duration
}

const (
	StatusCompleted = "completed"
	StatusFallback  = "fallback"
	StatusFailed    = "failed"
)

// Status summarizes the outcome for storage and notifications.
func (e Event) Status() string {
	switch {
	case e.Err != nil:
		return StatusFailed
	case e.Fallback:
		return StatusFallback
	default:
		return StatusCompleted
	}
}

// Observer is notified after every invocation. Observers cannot alter the result.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) Observe(ctx context.Context, ev Event) { f(ctx, ev) }

type runIDSinkKey struct{}

// WithRunIDSink asks the analyzer to store the id of the outermost run in sink.
func WithRunIDSink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, runIDSinkKey{}, sink)
}

func runIDSinkFromContext(ctx context.Context) (*string, bool) {
	sink, ok := ctx.Value(runIDSinkKey{}).(*string)
	return sink, ok && sink != nil
}
