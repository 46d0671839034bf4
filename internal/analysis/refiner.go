package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"visibility-backend/internal/llm"
	"visibility-backend/internal/shared/metrics"
	"visibility-backend/internal/shared/telemetry"
)

type roundPayload struct {
	ImprovedPrompt string     `json:"improvedPrompt"`
	Score          RoundScore `json:"score"`
	Reasoning      string     `json:"reasoning"`
}

const rawRoundSeparator = "\n\n----- round -----\n\n"

// Refine improves req.Prompt over the requested number of sequential rounds.
// Any failed round aborts the whole refinement with an *UpstreamError.
func (a *Analyzer) Refine(ctx context.Context, req PromptRefinementRequest) (RefinementOutcome, error) {
	if err := req.Validate(); err != nil {
		return RefinementOutcome{}, err
	}

	start := a.now()
	metrics.IncAnalysisStarted()
	ev := Event{RunID: uuid.NewString(), Kind: KindPromptRefinement, Request: req, StartedAt: start}

	outcome, raws, err := a.refine(ctx, ev.RunID, req.Prompt, req.Brand, req.IterationCount())
	ev.Raw = strings.Join(raws, rawRoundSeparator)
	if err != nil {
		telemetry.Error("refinement.failed", map[string]any{
			"run_id": ev.RunID,
			"rounds": len(raws),
			"error":  SanitizeError(err),
		})
		ev.Err = err
		a.finish(ctx, ev, start)
		return RefinementOutcome{}, err
	}
	ev.Result = outcome
	a.finish(ctx, ev, start)
	return outcome, nil
}

// refine carries currentText forward from every round, win or not; only
// strict improvements replace the best candidate. Advancing only on
// improvement would instead restart each losing round from the incumbent.
func (a *Analyzer) refine(ctx context.Context, runID, seed, subject string, iterations int) (RefinementOutcome, []string, error) {
	current := seed
	best := seed
	bestScore := 0
	hasBest := false
	history := make([]RefinementRound, 0, iterations)
	raws := make([]string, 0, iterations)

	for i := 1; i <= iterations; i++ {
		system, user := refinementPrompt(current, subject)
		raw, err := a.client().Complete(ctx, llm.CompletionRequest{
			System:      system,
			User:        user,
			MaxTokens:   refinementMaxTokens,
			Temperature: refinementTemperature,
			JSONMode:    a.JSONMode,
		})
		if err != nil {
			return RefinementOutcome{}, raws, &UpstreamError{Err: fmt.Errorf("round %d: %w", i, err)}
		}
		raws = append(raws, raw)

		round, err := decode[roundPayload](a.extractor(), raw, refinementRoundSchema)
		if err == nil && strings.TrimSpace(round.ImprovedPrompt) == "" {
			err = &ValidationError{InvalidFields: []FieldIssue{{Field: "improvedPrompt", Issue: "must not be empty"}}}
		}
		if err != nil {
			return RefinementOutcome{}, raws, &UpstreamError{Err: fmt.Errorf("round %d: %w", i, err)}
		}

		total := round.Score.Total()
		history = append(history, RefinementRound{
			Index:      i,
			InputText:  current,
			OutputText: round.ImprovedPrompt,
			Score:      round.Score,
			ScoreTotal: total,
			Rationale:  round.Reasoning,
		})
		metrics.IncRefinementRounds()

		if !hasBest || total > bestScore {
			best = round.ImprovedPrompt
			bestScore = total
			hasBest = true
		}
		current = round.ImprovedPrompt

		telemetry.Info("refinement.round", map[string]any{
			"run_id":      runID,
			"index":       i,
			"score_total": total,
			"best":        bestScore,
		})
	}

	return RefinementOutcome{BestText: best, BestScoreTotal: bestScore, History: history}, raws, nil
}
