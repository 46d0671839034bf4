package analysis

import (
	"fmt"
	"strings"
	"time"

	"visibility-backend/internal/llm"
)

// taskSpec is one row of the task table consumed by run.
type taskSpec[Req TaskRequest, Res any] struct {
	schema      *Schema
	maxTokens   int
	temperature float32
	// trendModel selects Analyzer.TrendModel instead of the client default.
	trendModel bool
	prompt     func(Req) (system, user string)
	fallback   func(Req) Res
	normalize  func(a *Analyzer, res *Res)
}

const maxPageTextChars = 2000

var brandVisibilityTask = taskSpec[BrandVisibilityRequest, BrandVisibilityResult]{
	schema:      brandVisibilitySchema,
	maxTokens:   300,
	temperature: 0.3,
	prompt: func(r BrandVisibilityRequest) (string, string) {
		return llm.Render(llm.PromptBrandVisibility, nil),
			fmt.Sprintf("Analyze this prompt: %q for brand visibility of %q. Provide detailed scoring and analysis in JSON format.",
				strings.TrimSpace(r.Prompt), strings.TrimSpace(r.Brand))
	},
	fallback: brandVisibilityFallback,
}

var contentSuggestionsTask = taskSpec[ContentSuggestionsRequest, ContentSuggestionsResult]{
	schema:      contentSuggestionsSchema,
	maxTokens:   600,
	temperature: 0.3,
	prompt: func(r ContentSuggestionsRequest) (string, string) {
		var b strings.Builder
		b.WriteString("Analyze this URL and content for SEO and AI visibility: ")
		b.WriteString(strings.TrimSpace(r.URL))
		if r.Page != nil && r.Page.Text != "" {
			b.WriteString("\n\nPage content: ")
			b.WriteString(truncateRunes(r.Page.Text, maxPageTextChars))
		}
		b.WriteString(". Provide detailed analysis in JSON format.")
		return llm.Render(llm.PromptContentSuggestions, nil), b.String()
	},
	fallback: contentSuggestionsFallback,
}

var adCounterStrategyTask = taskSpec[AdCounterStrategyRequest, AdCounterStrategyResult]{
	schema:      adCounterStrategySchema,
	maxTokens:   500,
	temperature: 0.4,
	prompt: func(r AdCounterStrategyRequest) (string, string) {
		message := r.refinedPrompt
		if message == "" {
			message = r.CompetitorPrompt
		}
		return llm.Render(llm.PromptAdCounterStrategy, nil),
			fmt.Sprintf("Analyze this competitor's marketing message: %q and generate a strategically superior alternative for %q. Return only valid JSON.",
				strings.TrimSpace(message), strings.TrimSpace(r.TargetBrand))
	},
	fallback: adCounterStrategyFallback,
}

var answerSimulationTask = taskSpec[AnswerSimulationRequest, AnswerSimulationResult]{
	schema:      answerSimulationSchema,
	maxTokens:   500,
	temperature: 0.4,
	prompt: func(r AnswerSimulationRequest) (string, string) {
		competitor := ""
		if c := strings.TrimSpace(r.Competitor); c != "" {
			competitor = fmt.Sprintf(" Focus on how %s could be positioned more prominently.", c)
		}
		return llm.Render(llm.PromptAnswerSimulation, map[string]string{"COMPETITOR_CONTEXT": competitor}),
			fmt.Sprintf("Analyze and improve this prompt: %q for better brand visibility and engagement. Provide detailed scoring comparison in JSON format.",
				strings.TrimSpace(r.Prompt))
	},
	fallback: answerSimulationFallback,
}

var trendScanTask = taskSpec[TrendScanRequest, TrendScanResult]{
	schema:      trendScanSchema,
	maxTokens:   2000,
	temperature: 0.3,
	trendModel:  true,
	prompt: func(r TrendScanRequest) (string, string) {
		platforms := make([]string, 0, len(r.Platforms))
		for _, p := range r.Platforms {
			platforms = append(platforms, strings.TrimSpace(p))
		}
		return llm.Render(llm.PromptTrendScanSystem, nil),
			llm.Render(llm.PromptTrendScan, map[string]string{
				"BRAND":     strings.TrimSpace(r.Brand),
				"PLATFORMS": strings.Join(platforms, ", "),
			})
	},
	fallback:  trendScanFallback,
	normalize: normalizeTrends,
}

const (
	refinementMaxTokens   = 500
	refinementTemperature = 0.7
)

func refinementPrompt(current, subject string) (string, string) {
	return llm.Render(llm.PromptRefinementRound, nil),
		fmt.Sprintf("Brand: %q\nPrompt: %q", strings.TrimSpace(subject), current)
}

func normalizeTrends(a *Analyzer, res *TrendScanResult) {
	if len(res.Trends) == 0 {
		res.Trends = []Trend{{
			Summary:     "No significant trends found with verifiable data",
			Sentiment:   "neutral",
			Influencers: []Influencer{},
			PlatformDistribution: map[string]float64{
				"twitter":   0,
				"instagram": 0,
				"tiktok":    0,
				"reddit":    0,
				"youtube":   0,
			},
			Timestamp: a.now().UTC().Format(time.RFC3339),
			Sources:   []string{},
		}}
		res.Insights = []string{
			"No verifiable trends were detected at this time.",
			"Try checking again later as trends may develop.",
		}
	}
	for i := range res.Trends {
		if res.Trends[i].Sources == nil {
			res.Trends[i].Sources = []string{}
		}
		if res.Trends[i].Influencers == nil {
			res.Trends[i].Influencers = []Influencer{}
		}
		if res.Trends[i].PlatformDistribution == nil {
			res.Trends[i].PlatformDistribution = map[string]float64{}
		}
	}
	if res.Insights == nil {
		res.Insights = []string{}
	}
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
