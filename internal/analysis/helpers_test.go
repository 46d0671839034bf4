package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"visibility-backend/internal/llm"
)

// stubLLM replays responses in order and repeats the last one.
type stubLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	requests  []llm.CompletionRequest
}

func (s *stubLLM) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("stub has no responses")
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

func (s *stubLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubLLM) lastRequest() llm.CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return llm.CompletionRequest{}
	}
	return s.requests[len(s.requests)-1]
}

func roundJSON(text string, emotional, clarity, visibility int) string {
	return fmt.Sprintf(`{"improvedPrompt":%q,"score":{"emotionalAppeal":%d,"clarity":%d,"llmVisibility":%d},"reasoning":"because"}`,
		text, emotional, clarity, visibility)
}

func intPtr(v int) *int { return &v }

const brandVisibilityJSON = `{
  "brandMentioned": true,
  "llmContextMatch": 72,
  "mentionVisibility": 64,
  "sourceBreakdown": {"blog": 50, "wiki": 20, "social": 30},
  "socialSignals": 58,
  "summary": "Strong fit."
}`

func toObject(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return obj
}
