package analysis

// SourceBreakdown splits attribution across source types; members sum to 100.
type SourceBreakdown struct {
	Blog   int `json:"blog"`
	Wiki   int `json:"wiki"`
	Social int `json:"social"`
}

type BrandVisibilityResult struct {
	BrandMentioned    bool            `json:"brandMentioned"`
	LLMContextMatch   float64         `json:"llmContextMatch"`
	MentionVisibility float64         `json:"mentionVisibility"`
	SourceBreakdown   SourceBreakdown `json:"sourceBreakdown"`
	SocialSignals     float64         `json:"socialSignals"`
	Summary           string          `json:"summary"`
}

type DetectedSchema struct {
	JSONLD         bool `json:"jsonLd"`
	Microdata      bool `json:"microdata"`
	OpenGraph      bool `json:"openGraph"`
	StructuredData bool `json:"structuredData"`
}

type ContentSuggestionsResult struct {
	SchemaUsage       float64        `json:"schemaUsage"`
	Readability       float64        `json:"readability"`
	SocialSignals     float64        `json:"socialSignals"`
	LLMContextMatch   float64        `json:"llmContextMatch"`
	MentionVisibility float64        `json:"mentionVisibility"`
	Improvements      []string       `json:"improvements"`
	DetectedSchema    DetectedSchema `json:"detectedSchema"`
}

type CompetitorAnalysis struct {
	ValueProposition string `json:"valueProposition"`
	EmotionalAppeal  string `json:"emotionalAppeal"`
	ConversionGoal   string `json:"conversionGoal"`
}

type AdCounterStrategyResult struct {
	CompetitorAnalysis CompetitorAnalysis `json:"competitorAnalysis"`
	CounterPrompt      string             `json:"counterPrompt"`
	StrategySummary    string             `json:"strategySummary"`
}

type PromptScores struct {
	Visibility      float64         `json:"visibility"`
	MentionPosition float64         `json:"mentionPosition"`
	SocialLanguage  float64         `json:"socialLanguage"`
	StyleComplexity float64         `json:"styleComplexity"`
	SourceBreakdown SourceBreakdown `json:"sourceBreakdown"`
}

type AnswerSimulationResult struct {
	OriginalPrompt string       `json:"originalPrompt"`
	ImprovedPrompt string       `json:"improvedPrompt"`
	Explanation    string       `json:"explanation"`
	OriginalScores PromptScores `json:"originalScores"`
	ImprovedScores PromptScores `json:"improvedScores"`
	CompetitorNote string       `json:"competitorNote"`
}

type Engagement struct {
	Mentions float64 `json:"mentions"`
	Likes    float64 `json:"likes"`
	Shares   float64 `json:"shares"`
	Comments float64 `json:"comments"`
}

type Influencer struct {
	Username       string  `json:"username"`
	Platform       string  `json:"platform"`
	Followers      float64 `json:"followers"`
	EngagementRate float64 `json:"engagement_rate"`
	Content        string  `json:"content"`
}

type Trend struct {
	Summary              string             `json:"summary"`
	Engagement           Engagement         `json:"engagement"`
	Sentiment            string             `json:"sentiment"`
	Influencers          []Influencer       `json:"influencers"`
	PlatformDistribution map[string]float64 `json:"platform_distribution"`
	Timestamp            string             `json:"timestamp"`
	Sources              []string           `json:"sources"`
}

type TrendScanResult struct {
	Trends   []Trend  `json:"trends"`
	Insights []string `json:"insights"`
}

// RoundScore is the model's self-assessment of one refinement round.
type RoundScore struct {
	EmotionalAppeal int `json:"emotionalAppeal"`
	Clarity         int `json:"clarity"`
	LLMVisibility   int `json:"llmVisibility"`
}

// Total sums the three sub-scores.
func (s RoundScore) Total() int {
	return s.EmotionalAppeal + s.Clarity + s.LLMVisibility
}

// RefinementRound records one iteration; InputText is what the round was asked to improve.
type RefinementRound struct {
	Index      int        `json:"iteration"`
	InputText  string     `json:"prompt"`
	OutputText string     `json:"improvedPrompt"`
	Score      RoundScore `json:"score"`
	ScoreTotal int        `json:"scoreTotal"`
	Rationale  string     `json:"reasoning"`
}

// RefinementOutcome serializes with the names the refinement endpoint returns.
type RefinementOutcome struct {
	BestText       string            `json:"finalPrompt"`
	History        []RefinementRound `json:"history"`
	BestScoreTotal int               `json:"bestScore"`
}
