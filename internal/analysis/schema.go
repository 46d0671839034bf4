package analysis

// FieldType is the JSON shape a schema field accepts.
type FieldType int

const (
	TypeNumber FieldType = iota
	TypeBoolean
	TypeString
	TypeStringArray
	TypeObject
	TypeObjectArray
)

func (t FieldType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeString:
		return "string"
	case TypeStringArray:
		return "array<string>"
	case TypeObject:
		return "object"
	case TypeObjectArray:
		return "array<object>"
	default:
		return "unknown"
	}
}

// Range bounds a number field, inclusive.
type Range struct {
	Min float64
	Max float64
}

// Field constrains one key of an object.
type Field struct {
	Name     string
	Type     FieldType
	Range    *Range
	Integer  bool
	Optional bool
	// Schema describes the nested object, or each item of an object array.
	Schema *Schema
}

// PercentageGroup is a set of sibling integer fields that must sum to 100.
type PercentageGroup struct {
	Members []string
	// Tolerance allows |sum-100| <= Tolerance. Zero is strict.
	Tolerance int
}

// Schema describes the required shape of one object level.
type Schema struct {
	Fields []Field
	Groups []PercentageGroup
}

var score100 = &Range{Min: 0, Max: 100}

func number(name string) Field {
	return Field{Name: name, Type: TypeNumber, Range: score100}
}

func text(name string) Field {
	return Field{Name: name, Type: TypeString}
}

func percentageSchema(tolerance int, members ...string) *Schema {
	s := &Schema{Groups: []PercentageGroup{{Members: members, Tolerance: tolerance}}}
	for _, m := range members {
		s.Fields = append(s.Fields, Field{Name: m, Type: TypeNumber, Range: score100, Integer: true})
	}
	return s
}

var sourceBreakdownSchema = percentageSchema(0, "blog", "wiki", "social")

var brandVisibilitySchema = &Schema{Fields: []Field{
	{Name: "brandMentioned", Type: TypeBoolean},
	number("llmContextMatch"),
	number("mentionVisibility"),
	{Name: "sourceBreakdown", Type: TypeObject, Schema: sourceBreakdownSchema},
	number("socialSignals"),
	text("summary"),
}}

var contentSuggestionsSchema = &Schema{Fields: []Field{
	number("schemaUsage"),
	number("readability"),
	number("socialSignals"),
	number("llmContextMatch"),
	number("mentionVisibility"),
	{Name: "improvements", Type: TypeStringArray},
	{Name: "detectedSchema", Type: TypeObject, Schema: &Schema{Fields: []Field{
		{Name: "jsonLd", Type: TypeBoolean},
		{Name: "microdata", Type: TypeBoolean},
		{Name: "openGraph", Type: TypeBoolean},
		{Name: "structuredData", Type: TypeBoolean},
	}}},
}}

var adCounterStrategySchema = &Schema{Fields: []Field{
	{Name: "competitorAnalysis", Type: TypeObject, Schema: &Schema{Fields: []Field{
		text("valueProposition"),
		text("emotionalAppeal"),
		text("conversionGoal"),
	}}},
	text("counterPrompt"),
	text("strategySummary"),
}}

var promptScoresSchema = &Schema{Fields: []Field{
	number("visibility"),
	number("mentionPosition"),
	number("socialLanguage"),
	number("styleComplexity"),
	{Name: "sourceBreakdown", Type: TypeObject, Schema: sourceBreakdownSchema},
}}

var answerSimulationSchema = &Schema{Fields: []Field{
	text("originalPrompt"),
	text("improvedPrompt"),
	text("explanation"),
	{Name: "originalScores", Type: TypeObject, Schema: promptScoresSchema},
	{Name: "improvedScores", Type: TypeObject, Schema: promptScoresSchema},
	text("competitorNote"),
}}

var nonNegative = &Range{Min: 0, Max: 1e15}

var trendSchema = &Schema{Fields: []Field{
	text("summary"),
	{Name: "engagement", Type: TypeObject, Optional: true, Schema: &Schema{Fields: []Field{
		{Name: "mentions", Type: TypeNumber, Range: nonNegative, Optional: true},
		{Name: "likes", Type: TypeNumber, Range: nonNegative, Optional: true},
		{Name: "shares", Type: TypeNumber, Range: nonNegative, Optional: true},
		{Name: "comments", Type: TypeNumber, Range: nonNegative, Optional: true},
	}}},
	{Name: "sentiment", Type: TypeString, Optional: true},
	{Name: "influencers", Type: TypeObjectArray, Optional: true, Schema: &Schema{Fields: []Field{
		{Name: "username", Type: TypeString, Optional: true},
		{Name: "platform", Type: TypeString, Optional: true},
		{Name: "followers", Type: TypeNumber, Optional: true},
		{Name: "engagement_rate", Type: TypeNumber, Optional: true},
		{Name: "content", Type: TypeString, Optional: true},
	}}},
	{Name: "platform_distribution", Type: TypeObject, Optional: true, Schema: &Schema{}},
	{Name: "timestamp", Type: TypeString, Optional: true},
	{Name: "sources", Type: TypeStringArray, Optional: true},
}}

var trendScanSchema = &Schema{Fields: []Field{
	{Name: "trends", Type: TypeObjectArray, Schema: trendSchema},
	{Name: "insights", Type: TypeStringArray, Optional: true},
}}

// Round sub-scores are integers; their 1-10 range is advisory only.
var refinementRoundSchema = &Schema{Fields: []Field{
	text("improvedPrompt"),
	{Name: "score", Type: TypeObject, Schema: &Schema{Fields: []Field{
		{Name: "emotionalAppeal", Type: TypeNumber, Integer: true},
		{Name: "clarity", Type: TypeNumber, Integer: true},
		{Name: "llmVisibility", Type: TypeNumber, Integer: true},
	}}},
	text("reasoning"),
}}

// SchemaFor returns the output schema of a task kind.
func SchemaFor(kind TaskKind) (*Schema, bool) {
	switch kind {
	case KindBrandVisibility:
		return brandVisibilitySchema, true
	case KindContentSuggestions:
		return contentSuggestionsSchema, true
	case KindAdCounterStrategy:
		return adCounterStrategySchema, true
	case KindAnswerSimulation:
		return answerSimulationSchema, true
	case KindTrendScan:
		return trendScanSchema, true
	case KindPromptRefinement:
		return refinementRoundSchema, true
	default:
		return nil, false
	}
}
