package analysis

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Extractor isolates the JSON object embedded in a raw model completion.
// It does not parse the object.
type Extractor interface {
	Extract(raw string) (string, error)
}

// FenceExtractor tolerates code fences and surrounding prose. It keeps the
// outermost brace span so nested objects stay intact.
type FenceExtractor struct{}

func (FenceExtractor) Extract(raw string) (string, error) {
	s := stripFences(raw)
	if isBareObject(s) {
		return s, nil
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", &ExtractionError{Reason: "no brace-delimited span"}
	}
	return s[start : end+1], nil
}

// StrictExtractor accepts only a bare object, optionally fenced. Used when
// the provider runs in native JSON mode.
type StrictExtractor struct{}

func (StrictExtractor) Extract(raw string) (string, error) {
	s := stripFences(raw)
	if !isBareObject(s) {
		return "", &ExtractionError{Reason: "completion is not a bare JSON object"}
	}
	return s, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isBareObject(s string) bool {
	return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}

// decode runs extraction, parsing, validation and typed decoding. The
// returned error is an *ExtractionError, *ParseError or *ValidationError.
func decode[Res any](ex Extractor, raw string, schema *Schema) (Res, error) {
	var out Res
	span, err := ex.Extract(raw)
	if err != nil {
		return out, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return out, &ParseError{Err: err}
	}
	if obj == nil {
		return out, &ParseError{Err: errNullObject}
	}
	if err := Validate(obj, schema); err != nil {
		return out, err
	}
	// Re-encode the validated map so integral floats like 40.0 decode into ints.
	normalized, err := json.Marshal(obj)
	if err != nil {
		return out, &ParseError{Err: err}
	}
	dec := json.NewDecoder(bytes.NewReader(normalized))
	if err := dec.Decode(&out); err != nil {
		return out, &ValidationError{InvalidFields: []FieldIssue{{Field: "(root)", Issue: SanitizeError(err)}}}
	}
	return out, nil
}
