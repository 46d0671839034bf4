package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
)

func setupRouter(t *testing.T, client *stubLLM) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(&Analyzer{LLM: client}).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doPost(t *testing.T, r http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, payload
}

func TestHandlerBrandVisibilityEnvelope(t *testing.T) {
	r := setupRouter(t, &stubLLM{responses: []string{brandVisibilityJSON}})
	w, payload := doPost(t, r, "/api/v1/analyze-prompt", `{"prompt":"best shoes","brand":"Acme"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	analysis, ok := payload["analysis"].(map[string]any)
	if !ok || analysis["brandMentioned"] != true {
		t.Fatalf("unexpected payload %v", payload)
	}
	if w.Header().Get("X-Run-Id") == "" {
		t.Fatalf("expected run id header")
	}
}

func TestHandlerInvalidInputAndUpstream(t *testing.T) {
	stub := &stubLLM{responses: []string{brandVisibilityJSON}}
	r := setupRouter(t, stub)
	w, payload := doPost(t, r, "/api/v1/analyze-prompt", `{"prompt":"best shoes"}`)
	if w.Code != http.StatusBadRequest || payload["error"] != "brand is required" {
		t.Fatalf("unexpected response %d %v", w.Code, payload)
	}
	if stub.callCount() != 0 {
		t.Fatalf("expected no model calls")
	}

	r = setupRouter(t, &stubLLM{err: errors.New("status 500")})
	w, payload = doPost(t, r, "/api/v1/simulate-answer", `{"prompt":"p"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if _, ok := payload["error"].(string); !ok {
		t.Fatalf("expected error string, got %v", payload)
	}
}

func TestHandlerTrendScanSoftErrors(t *testing.T) {
	tests := []struct {
		name    string
		client  *stubLLM
		body    string
		insight string
	}{
		{
			name:    "invalid input",
			client:  &stubLLM{},
			body:    `{"brand":"Acme","platforms":[]}`,
			insight: "Please provide a brand name and at least one platform",
		},
		{
			name:    "malformed body",
			client:  &stubLLM{},
			body:    `not json`,
			insight: "request body must be a JSON object",
		},
		{
			name:    "upstream",
			client:  &stubLLM{err: errors.New("rate limited")},
			body:    `{"brand":"Acme","platforms":["twitter"]}`,
			insight: "model call failed: rate limited",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(t, tt.client)
			w, payload := doPost(t, r, "/api/v1/analyze-trends", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("expected soft 200, got %d", w.Code)
			}
			want := map[string]any{
				"brand":     nil,
				"platforms": nil,
				"analysis": map[string]any{
					"trends":   []any{},
					"insights": []any{tt.insight},
				},
			}
			if diff := cmp.Diff(want, payload); diff != "" {
				t.Fatalf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandlerTrendScanSuccessEchoesInput(t *testing.T) {
	r := setupRouter(t, &stubLLM{responses: []string{`{"trends":[{"summary":"s","sources":["https://a"]}],"insights":["i"]}`}})
	w, payload := doPost(t, r, "/api/v1/analyze-trends", `{"brand":"Acme","platforms":["twitter","reddit"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if payload["brand"] != "Acme" {
		t.Fatalf("expected brand echo, got %v", payload["brand"])
	}
	if diff := cmp.Diff([]any{"twitter", "reddit"}, payload["platforms"]); diff != "" {
		t.Fatalf("platforms mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlerRefinement(t *testing.T) {
	r := setupRouter(t, &stubLLM{responses: []string{roundJSON("better", 3, 3, 3)}})
	w, payload := doPost(t, r, "/api/v1/optimize-prompt", `{"prompt":"seed","brand":"Acme","iterations":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if payload["finalPrompt"] != "better" || payload["bestScore"] != float64(9) {
		t.Fatalf("unexpected payload %v", payload)
	}
	history, _ := payload["history"].([]any)
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	first, _ := history[0].(map[string]any)
	for _, key := range []string{"iteration", "prompt", "improvedPrompt", "score", "scoreTotal", "reasoning"} {
		if _, ok := first[key]; !ok {
			t.Fatalf("history entry missing %q: %v", key, first)
		}
	}

	w, payload = doPost(t, r, "/api/v1/optimize-prompt", `{"prompt":"seed","brand":"Acme","iterations":0}`)
	if w.Code != http.StatusBadRequest || payload["error"] != "Iterations must be between 1 and 100" {
		t.Fatalf("unexpected response %d %v", w.Code, payload)
	}
	w, payload = doPost(t, r, "/api/v1/optimize-prompt", `{"prompt":"seed"}`)
	if w.Code != http.StatusBadRequest || payload["error"] != "Both prompt and brand are required" {
		t.Fatalf("unexpected response %d %v", w.Code, payload)
	}
}
