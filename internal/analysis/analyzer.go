package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"visibility-backend/internal/llm"
	"visibility-backend/internal/pagefetch"
	"visibility-backend/internal/shared/metrics"
	"visibility-backend/internal/shared/telemetry"
)

// PageFetcher loads the page behind a content-suggestions request.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (pagefetch.Page, error)
}

// Analyzer runs single-shot analyses and refinements against a model client.
// It holds no per-request state and is safe for concurrent use.
type Analyzer struct {
	LLM llm.Client
	// Extractor defaults to FenceExtractor.
	Extractor Extractor
	// TrendModel overrides the client model for trend scans when set.
	TrendModel string
	JSONMode   bool
	Pages      PageFetcher
	Observers  []Observer
	Now        func() time.Time
}

// BrandVisibility scores how likely a brand is to surface for a prompt.
func (a *Analyzer) BrandVisibility(ctx context.Context, req BrandVisibilityRequest) (BrandVisibilityResult, error) {
	return run(ctx, a, brandVisibilityTask, req)
}

// ContentSuggestions fetches the page, when possible, and scores it.
// A failed fetch is logged and the analysis proceeds on the URL alone.
func (a *Analyzer) ContentSuggestions(ctx context.Context, req ContentSuggestionsRequest) (ContentSuggestionsResult, error) {
	if err := req.Validate(); err != nil {
		return ContentSuggestionsResult{}, err
	}
	if req.Page == nil && a.Pages != nil {
		page, err := a.Pages.Fetch(ctx, strings.TrimSpace(req.URL))
		if err != nil {
			telemetry.Warn("pagefetch.failed", map[string]any{
				"url":   req.URL,
				"error": SanitizeError(err),
			})
		} else {
			req.Page = &page
		}
	}
	return run(ctx, a, contentSuggestionsTask, req)
}

// AdCounterStrategy refines the competitor message, then analyzes it.
// If refinement fails for any reason the original message is analyzed.
func (a *Analyzer) AdCounterStrategy(ctx context.Context, req AdCounterStrategyRequest) (AdCounterStrategyResult, error) {
	if err := req.Validate(); err != nil {
		return AdCounterStrategyResult{}, err
	}
	iterations := req.Iterations
	if iterations == 0 {
		iterations = DefaultIterations
	}
	outcome, err := a.Refine(ctx, PromptRefinementRequest{
		Prompt:     req.CompetitorPrompt,
		Brand:      req.TargetBrand,
		Iterations: &iterations,
	})
	if err != nil {
		telemetry.Warn("ad_counter.refinement_failed", map[string]any{
			"error": SanitizeError(err),
		})
		req.refinedPrompt = ""
	} else {
		req.refinedPrompt = outcome.BestText
	}
	return run(ctx, a, adCounterStrategyTask, req)
}

// AnswerSimulation proposes an improved prompt and scores both versions.
func (a *Analyzer) AnswerSimulation(ctx context.Context, req AnswerSimulationRequest) (AnswerSimulationResult, error) {
	return run(ctx, a, answerSimulationTask, req)
}

// TrendScan asks the model for recent brand trends across platforms.
func (a *Analyzer) TrendScan(ctx context.Context, req TrendScanRequest) (TrendScanResult, error) {
	return run(ctx, a, trendScanTask, req)
}

// Analyze dispatches on the request variant.
func (a *Analyzer) Analyze(ctx context.Context, req TaskRequest) (any, error) {
	switch r := req.(type) {
	case BrandVisibilityRequest:
		return boxed(a.BrandVisibility(ctx, r))
	case ContentSuggestionsRequest:
		return boxed(a.ContentSuggestions(ctx, r))
	case AdCounterStrategyRequest:
		return boxed(a.AdCounterStrategy(ctx, r))
	case AnswerSimulationRequest:
		return boxed(a.AnswerSimulation(ctx, r))
	case TrendScanRequest:
		return boxed(a.TrendScan(ctx, r))
	case PromptRefinementRequest:
		return boxed(a.Refine(ctx, r))
	default:
		return nil, &InvalidInputError{Field: "kind", Message: "unsupported task kind"}
	}
}

func boxed[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

// run is the single-shot pipeline shared by every task kind. Transport
// failures surface as *UpstreamError; anything wrong with the completion
// itself is replaced by the task's fallback.
func run[Req TaskRequest, Res any](ctx context.Context, a *Analyzer, spec taskSpec[Req, Res], req Req) (Res, error) {
	var zero Res
	if err := req.Validate(); err != nil {
		return zero, err
	}

	start := a.now()
	metrics.IncAnalysisStarted()
	ev := Event{RunID: uuid.NewString(), Kind: req.Kind(), Request: req, StartedAt: start}

	system, user := spec.prompt(req)
	raw, err := a.client().Complete(ctx, llm.CompletionRequest{
		System:      system,
		User:        user,
		Model:       a.modelFor(spec.trendModel),
		MaxTokens:   spec.maxTokens,
		Temperature: spec.temperature,
		JSONMode:    a.JSONMode,
	})
	if err != nil {
		uerr := &UpstreamError{Err: err}
		telemetry.Error("analysis.upstream_error", map[string]any{
			"task":   string(ev.Kind),
			"run_id": ev.RunID,
			"error":  SanitizeError(err),
		})
		ev.Err = uerr
		a.finish(ctx, ev, start)
		return zero, uerr
	}
	ev.Raw = raw

	res, err := decode[Res](a.extractor(), raw, spec.schema)
	if err != nil {
		res = spec.fallback(req)
		ev.Fallback = true
		ev.FallbackReason = fallbackReason(err)
		telemetry.Warn("analysis.fallback", map[string]any{
			"task":   string(ev.Kind),
			"run_id": ev.RunID,
			"reason": ev.FallbackReason,
			"error":  SanitizeError(err),
		})
	} else if spec.normalize != nil {
		spec.normalize(a, &res)
	}
	ev.Result = res
	a.finish(ctx, ev, start)
	return res, nil
}

func fallbackReason(err error) string {
	var extractErr *ExtractionError
	var parseErr *ParseError
	switch {
	case errors.As(err, &extractErr):
		return "extraction"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "validation"
	}
}

// finish records metrics and notifies observers.
func (a *Analyzer) finish(ctx context.Context, ev Event, start time.Time) {
	ev.Duration = a.now().Sub(start)
	switch ev.Status() {
	case StatusFailed:
		metrics.IncAnalysisFailed()
	case StatusFallback:
		metrics.IncAnalysisFallback()
		metrics.IncAnalysisCompleted()
	default:
		metrics.IncAnalysisCompleted()
	}
	metrics.ObserveAnalysisDurationMs(float64(ev.Duration.Milliseconds()))

	if sink, ok := runIDSinkFromContext(ctx); ok {
		*sink = ev.RunID
	}
	for _, o := range a.Observers {
		if o != nil {
			o.Observe(ctx, ev)
		}
	}
}

func (a *Analyzer) client() llm.Client {
	if a.LLM == nil {
		return llm.PlaceholderClient{}
	}
	return a.LLM
}

func (a *Analyzer) extractor() Extractor {
	if a.Extractor == nil {
		return FenceExtractor{}
	}
	return a.Extractor
}

func (a *Analyzer) modelFor(trend bool) string {
	if trend {
		return strings.TrimSpace(a.TrendModel)
	}
	return ""
}

func (a *Analyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
