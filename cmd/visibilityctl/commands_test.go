package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"visibility-backend/internal/analysis"
	"visibility-backend/internal/llm"
	"visibility-backend/internal/shared/config"
)

type replayLLM struct {
	responses []string
	calls     int
}

func (r *replayLLM) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	resp := r.responses[r.calls%len(r.responses)]
	r.calls++
	return resp, nil
}

func execute(t *testing.T, stub *replayLLM, args ...string) (string, error) {
	t.Helper()
	testChdir(t, t.TempDir())
	factory := func(cfg config.Config) (*analysis.Analyzer, error) {
		return &analysis.Analyzer{LLM: stub}, nil
	}
	root := newRootCmd(factory)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunBrandVisibility(t *testing.T) {
	stub := &replayLLM{responses: []string{"```json\n" + `{"brandMentioned":true,"llmContextMatch":70,"mentionVisibility":60,"sourceBreakdown":{"blog":50,"wiki":25,"social":25},"socialSignals":40,"summary":"ok"}` + "\n```"}}
	out, err := execute(t, stub, "run", "brand-visibility", "--json", `{"prompt":"best crm","brand":"Acme"}`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var got analysis.BrandVisibilityResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if !got.BrandMentioned || got.LLMContextMatch != 70 || stub.calls != 1 {
		t.Fatalf("unexpected result %+v (calls %d)", got, stub.calls)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	stub := &replayLLM{responses: []string{"{}"}}
	tests := [][]string{
		{"run", "poetry", "--json", "{}"},
		{"run", "brand-visibility"},
		{"run", "brand-visibility", "--json", `{"prompt":"p"}`},
		{"run", "brand-visibility", "--json", "{}", "--file", "x.json"},
	}
	for _, args := range tests {
		if _, err := execute(t, stub, args...); err == nil {
			t.Fatalf("%v: expected error", args)
		}
	}
	if stub.calls != 0 {
		t.Fatalf("invalid input must not reach the model, got %d calls", stub.calls)
	}
}

func TestRefineCommand(t *testing.T) {
	var responses []string
	for i, total := range []int{5, 9} {
		responses = append(responses, fmt.Sprintf(`{"improvedPrompt":"v%d","score":{"emotionalAppeal":%d,"clarity":1,"llmVisibility":1},"reasoning":"r"}`, i+1, total))
	}
	stub := &replayLLM{responses: responses}
	out, err := execute(t, stub, "refine", "--prompt", "p", "--brand", "Acme", "--iterations", "2")
	if err != nil {
		t.Fatalf("refine: %v", err)
	}
	var got analysis.RefinementOutcome
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if got.BestText != "v2" || len(got.History) != 2 || stub.calls != 2 {
		t.Fatalf("unexpected outcome %+v", got)
	}

	if _, err := execute(t, stub, "refine", "--prompt", "p", "--brand", "Acme", "--iterations", "0"); err == nil {
		t.Fatalf("expected iteration bound error")
	}
}

func TestKindsCommand(t *testing.T) {
	out, err := execute(t, &replayLLM{}, "kinds")
	if err != nil {
		t.Fatalf("kinds: %v", err)
	}
	if !strings.Contains(out, "prompt-refinement") || !strings.Contains(out, "trend-scan") {
		t.Fatalf("unexpected kinds output %q", out)
	}
}
