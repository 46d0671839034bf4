package analysis

import (
	"encoding/json"
	"net/url"
	"strings"

	"visibility-backend/internal/pagefetch"
)

// TaskKind names one of the supported analysis operations.
type TaskKind string

const (
	KindBrandVisibility    TaskKind = "brand-visibility"
	KindContentSuggestions TaskKind = "content-suggestions"
	KindAdCounterStrategy  TaskKind = "ad-counter-strategy"
	KindAnswerSimulation   TaskKind = "answer-simulation"
	KindTrendScan          TaskKind = "trend-scan"
	KindPromptRefinement   TaskKind = "prompt-refinement"
)

// Kinds lists every task kind in a stable order.
var Kinds = []TaskKind{
	KindBrandVisibility,
	KindContentSuggestions,
	KindAdCounterStrategy,
	KindAnswerSimulation,
	KindTrendScan,
	KindPromptRefinement,
}

// ParseKind maps a string to a known TaskKind.
func ParseKind(raw string) (TaskKind, bool) {
	k := TaskKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

const trendInputMessage = "Please provide a brand name and at least one platform"

const (
	DefaultIterations = 3
	MinIterations     = 1
	MaxIterations     = 100
)

// TaskRequest is implemented by every request variant.
type TaskRequest interface {
	Kind() TaskKind
	Validate() error
}

type BrandVisibilityRequest struct {
	Prompt string `json:"prompt"`
	Brand  string `json:"brand"`
}

func (BrandVisibilityRequest) Kind() TaskKind { return KindBrandVisibility }

func (r BrandVisibilityRequest) Validate() error {
	if blank(r.Prompt) {
		return missing("prompt")
	}
	if blank(r.Brand) {
		return missing("brand")
	}
	return nil
}

type ContentSuggestionsRequest struct {
	URL string `json:"url"`
	// Page is filled by the analyzer when a fetcher is configured.
	Page *pagefetch.Page `json:"-"`
}

func (ContentSuggestionsRequest) Kind() TaskKind { return KindContentSuggestions }

func (r ContentSuggestionsRequest) Validate() error {
	if blank(r.URL) {
		return missing("url")
	}
	u, err := url.Parse(strings.TrimSpace(r.URL))
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &InvalidInputError{Field: "url", Message: "url must be an absolute http or https URL"}
	}
	return nil
}

type AdCounterStrategyRequest struct {
	CompetitorPrompt string `json:"competitorPrompt"`
	TargetBrand      string `json:"targetBrand"`
	// Iterations drives the prompt refinement stage; 0 means DefaultIterations.
	Iterations int `json:"iterations,omitempty"`

	refinedPrompt string
}

func (AdCounterStrategyRequest) Kind() TaskKind { return KindAdCounterStrategy }

func (r AdCounterStrategyRequest) Validate() error {
	if blank(r.CompetitorPrompt) {
		return missing("competitorPrompt")
	}
	if blank(r.TargetBrand) {
		return missing("targetBrand")
	}
	if r.Iterations != 0 {
		return validIterations(r.Iterations)
	}
	return nil
}

type AnswerSimulationRequest struct {
	Prompt     string `json:"prompt"`
	Competitor string `json:"competitor,omitempty"`
}

func (AnswerSimulationRequest) Kind() TaskKind { return KindAnswerSimulation }

func (r AnswerSimulationRequest) Validate() error {
	if blank(r.Prompt) {
		return missing("prompt")
	}
	return nil
}

type TrendScanRequest struct {
	Brand     string   `json:"brand"`
	Platforms []string `json:"platforms"`
}

func (TrendScanRequest) Kind() TaskKind { return KindTrendScan }

func (r TrendScanRequest) Validate() error {
	if blank(r.Brand) {
		return &InvalidInputError{Field: "brand", Message: trendInputMessage}
	}
	if len(r.Platforms) == 0 {
		return &InvalidInputError{Field: "platforms", Message: trendInputMessage}
	}
	for _, p := range r.Platforms {
		if blank(p) {
			return &InvalidInputError{Field: "platforms", Message: trendInputMessage}
		}
	}
	return nil
}

type PromptRefinementRequest struct {
	Prompt string `json:"prompt"`
	Brand  string `json:"brand"`
	// Iterations is a pointer so an explicit 0 is rejected rather than defaulted.
	Iterations *int `json:"iterations,omitempty"`
}

func (PromptRefinementRequest) Kind() TaskKind { return KindPromptRefinement }

func (r PromptRefinementRequest) Validate() error {
	if blank(r.Prompt) || blank(r.Brand) {
		return &InvalidInputError{Field: "prompt", Message: "Both prompt and brand are required"}
	}
	return validIterations(r.IterationCount())
}

// IterationCount resolves the requested rounds, applying the default.
func (r PromptRefinementRequest) IterationCount() int {
	if r.Iterations == nil {
		return DefaultIterations
	}
	return *r.Iterations
}

func validIterations(n int) error {
	if n < MinIterations || n > MaxIterations {
		return &InvalidInputError{Field: "iterations", Message: "Iterations must be between 1 and 100"}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func missing(field string) error {
	return &InvalidInputError{Field: field, Message: field + " is required"}
}

// DecodeRequest unmarshals a JSON body into the request variant for kind.
func DecodeRequest(kind TaskKind, body []byte) (TaskRequest, error) {
	switch kind {
	case KindBrandVisibility:
		return decodeAs[BrandVisibilityRequest](body)
	case KindContentSuggestions:
		return decodeAs[ContentSuggestionsRequest](body)
	case KindAdCounterStrategy:
		return decodeAs[AdCounterStrategyRequest](body)
	case KindAnswerSimulation:
		return decodeAs[AnswerSimulationRequest](body)
	case KindTrendScan:
		return decodeAs[TrendScanRequest](body)
	case KindPromptRefinement:
		return decodeAs[PromptRefinementRequest](body)
	default:
		return nil, &InvalidInputError{Field: "kind", Message: "unsupported task kind"}
	}
}

func decodeAs[T TaskRequest](body []byte) (TaskRequest, error) {
	var req T
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &InvalidInputError{Field: "body", Message: "request body must be a JSON object"}
	}
	return req, nil
}
