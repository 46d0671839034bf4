package runs

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"visibility-backend/internal/analysis"
	"visibility-backend/internal/queue"
	"visibility-backend/internal/shared/storage/object"
	"visibility-backend/internal/shared/telemetry"
)

const recordTimeout = 10 * time.Second

// Recorder stores every analysis event as a Run. Store and Queue are optional.
type Recorder struct {
	Repo  Repo
	Store object.ObjectStore
	Queue queue.Client
}

// NewRecorder constructs a Recorder.
func NewRecorder(repo Repo, store object.ObjectStore, q queue.Client) *Recorder {
	return &Recorder{Repo: repo, Store: store, Queue: q}
}

// Observe implements analysis.Observer. Failures are logged, never returned.
func (r *Recorder) Observe(ctx context.Context, ev analysis.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	run, err := RunFromEvent(ev)
	if err != nil {
		r.logFailure("encode", ev, err)
		return
	}

	if r.Store != nil && ev.Raw != "" {
		key := RawKey(ev.RunID)
		if _, err := r.Store.Put(ctx, key, "text/plain; charset=utf-8", strings.NewReader(ev.Raw)); err != nil {
			r.logFailure("store_raw", ev, err)
		} else {
			run.RawKey = key
		}
	}

	if r.Repo == nil {
		return
	}
	if err := r.Repo.Create(ctx, run); err != nil {
		r.logFailure("create", ev, err)
		return
	}

	if r.Queue != nil {
		msg := queue.Message{RunID: run.ID, Kind: run.Kind, Status: run.Status}
		if err := r.Queue.Send(ctx, msg); err != nil {
			r.logFailure("notify", ev, err)
		}
	}
}

func (r *Recorder) logFailure(stage string, ev analysis.Event, err error) {
	telemetry.Warn("runs.record_failed", map[string]any{
		"stage":  stage,
		"run_id": ev.RunID,
		"task":   string(ev.Kind),
		"error":  analysis.SanitizeError(err),
	})
}

// RunFromEvent converts an analysis event into a Run without a raw key.
func RunFromEvent(ev analysis.Event) (Run, error) {
	request, err := json.Marshal(ev.Request)
	if err != nil {
		return Run{}, err
	}
	var result json.RawMessage
	if ev.Result != nil {
		result, err = json.Marshal(ev.Result)
		if err != nil {
			return Run{}, err
		}
	}
	return Run{
		ID:             ev.RunID,
		Kind:           string(ev.Kind),
		Status:         ev.Status(),
		Request:        request,
		Result:         result,
		FallbackReason: ev.FallbackReason,
		ErrorMessage:   analysis.SanitizeError(ev.Err),
		DurationMs:     ev.Duration.Milliseconds(),
		CreatedAt:      ev.StartedAt.UTC(),
	}, nil
}

var _ analysis.Observer = (*Recorder)(nil)
