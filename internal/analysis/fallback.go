package analysis

import "strings"

// Fallback results are deterministic and depend only on the request.

const improvedPromptSuffix = " Please include specific examples and comparisons."

func brandVisibilityFallback(BrandVisibilityRequest) BrandVisibilityResult {
	return BrandVisibilityResult{
		BrandMentioned:    false,
		LLMContextMatch:   35,
		MentionVisibility: 30,
		SourceBreakdown:   SourceBreakdown{Blog: 40, Wiki: 35, Social: 25},
		SocialSignals:     30,
		Summary:           "Automated analysis failed, showing baseline estimates. Brand context appears limited for this prompt type.",
	}
}

func contentSuggestionsFallback(req ContentSuggestionsRequest) ContentSuggestionsResult {
	var detected DetectedSchema
	if req.Page != nil {
		detected = DetectedSchema{
			JSONLD:         req.Page.HasJSONLD,
			Microdata:      req.Page.HasMicrodata,
			OpenGraph:      req.Page.HasOpenGraph,
			StructuredData: req.Page.HasJSONLD || req.Page.HasMicrodata,
		}
	}
	return ContentSuggestionsResult{
		SchemaUsage:       45,
		Readability:       65,
		SocialSignals:     40,
		LLMContextMatch:   55,
		MentionVisibility: 35,
		Improvements: []string{
			"Automated analysis failed; these are baseline suggestions.",
			"Add structured data markup for better search visibility",
			"Improve heading structure with clear H1-H3 hierarchy",
			"Add social sharing buttons and Open Graph metadata",
		},
		DetectedSchema: detected,
	}
}

func adCounterStrategyFallback(req AdCounterStrategyRequest) AdCounterStrategyResult {
	brand := strings.TrimSpace(req.TargetBrand)
	return AdCounterStrategyResult{
		CompetitorAnalysis: CompetitorAnalysis{
			ValueProposition: "Cost-effective solution with competitive pricing",
			EmotionalAppeal:  "Security and reliability focused messaging",
			ConversionGoal:   "Drive immediate sign-up or trial conversion",
		},
		CounterPrompt: "Experience the difference with " + brand + ", where innovation meets simplicity. " +
			"Join thousands who've already made the switch to smarter, more intuitive solutions. " +
			"Try " + brand + " free for 30 days and see why industry leaders choose us.",
		StrategySummary: "Automated analysis failed, so this is a baseline counter-strategy. It emphasizes innovation and social proof while keeping urgency, differentiating from price-focused competitors.",
	}
}

func answerSimulationFallback(req AnswerSimulationRequest) AnswerSimulationResult {
	return AnswerSimulationResult{
		OriginalPrompt: req.Prompt,
		ImprovedPrompt: req.Prompt + improvedPromptSuffix,
		Explanation:    "Automated analysis failed. Added a request for specific examples to increase brand mention likelihood.",
		OriginalScores: PromptScores{
			Visibility:      35,
			MentionPosition: 30,
			SocialLanguage:  30,
			StyleComplexity: 40,
			SourceBreakdown: SourceBreakdown{Blog: 45, Wiki: 35, Social: 20},
		},
		ImprovedScores: PromptScores{
			Visibility:      65,
			MentionPosition: 55,
			SocialLanguage:  45,
			StyleComplexity: 60,
			SourceBreakdown: SourceBreakdown{Blog: 35, Wiki: 25, Social: 40},
		},
		CompetitorNote: "The enhanced version uses more engaging language and specific requests that favor brand mentions.",
	}
}

func trendScanFallback(TrendScanRequest) TrendScanResult {
	return TrendScanResult{
		Trends:   []Trend{},
		Insights: []string{"Error parsing AI response. Please try again."},
	}
}
