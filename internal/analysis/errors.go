package analysis

import (
	"errors"
	"strings"
)

// InvalidInputError rejects a request before any model call is made.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

// UpstreamError reports a failed model call or, inside a refinement, a round
// whose output could not be trusted.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "model call failed: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ExtractionError means no JSON object could be located in a completion.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return "no JSON object in completion: " + e.Reason
}

// ParseError means the located span is not a valid JSON object.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "completion is not valid JSON: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// FieldIssue describes one invalid field, addressed by dotted path.
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationError carries every missing and invalid field found.
type ValidationError struct {
	MissingFields []string
	InvalidFields []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.MissingFields) > 0 {
		parts = append(parts, "missing "+strings.Join(e.MissingFields, ", "))
	}
	if len(e.InvalidFields) > 0 {
		issues := make([]string, 0, len(e.InvalidFields))
		for _, f := range e.InvalidFields {
			issues = append(issues, f.Field+" "+f.Issue)
		}
		parts = append(parts, "invalid "+strings.Join(issues, ", "))
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// SanitizeError flattens err to a single line capped at 500 bytes.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

var errNullObject = errors.New("null is not an object")
