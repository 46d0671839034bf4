package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/brand_visibility.txt
	promptBrandVisibility string
	//go:embed prompts/content_suggestions.txt
	promptContentSuggestions string
	//go:embed prompts/ad_counter_strategy.txt
	promptAdCounterStrategy string
	//go:embed prompts/answer_simulation.txt
	promptAnswerSimulation string
	//go:embed prompts/trend_scan_system.txt
	promptTrendScanSystem string
	//go:embed prompts/trend_scan.txt
	promptTrendScan string
	//go:embed prompts/refinement_round.txt
	promptRefinementRound string
)

// Template names.
const (
	PromptBrandVisibility    = "brand_visibility"
	PromptContentSuggestions = "content_suggestions"
	PromptAdCounterStrategy  = "ad_counter_strategy"
	PromptAnswerSimulation   = "answer_simulation"
	PromptTrendScanSystem    = "trend_scan_system"
	PromptTrendScan          = "trend_scan"
	PromptRefinementRound    = "refinement_round"
)

// PromptTemplate returns the prompt template text and whether the name was recognized.
func PromptTemplate(name string) (string, bool) {
	switch name {
	case PromptBrandVisibility:
		return promptBrandVisibility, true
	case PromptContentSuggestions:
		return promptContentSuggestions, true
	case PromptAdCounterStrategy:
		return promptAdCounterStrategy, true
	case PromptAnswerSimulation:
		return promptAnswerSimulation, true
	case PromptTrendScanSystem:
		return promptTrendScanSystem, true
	case PromptTrendScan:
		return promptTrendScan, true
	case PromptRefinementRound:
		return promptRefinementRound, true
	default:
		return "", false
	}
}

// Render fills {{KEY}} placeholders of the named template.
// Unknown placeholders are left in place.
func Render(name string, vars map[string]string) string {
	tmpl, ok := PromptTemplate(name)
	if !ok {
		return ""
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(tmpl))
}
