package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitRefineStricterThanDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		Limiter: limiter,
		GroupFor: func(c *gin.Context) string {
			if c.FullPath() == "/api/v1/optimize-prompt" {
				return "REFINE"
			}
			return ""
		},
		Rules: map[string]RateLimitRule{
			DefaultRateLimitGroup: {Rate: 1, Burst: 3},
			"REFINE":              {Rate: 0.5, Burst: 1},
		},
	}))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.POST("/api/v1/optimize-prompt", ok)
	r.POST("/api/v1/analyze-prompt", ok)

	post := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		return w
	}

	if w := post("/api/v1/optimize-prompt"); w.Code != http.StatusOK {
		t.Fatalf("first refine expected 200, got %d", w.Code)
	}
	w := post("/api/v1/optimize-prompt")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second refine expected 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}
	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "rate_limited" || body.Error.Details["retryAfterMs"] != float64(2000) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	for i := 0; i < 3; i++ {
		if w := post("/api/v1/analyze-prompt"); w.Code != http.StatusOK {
			t.Fatalf("default request %d expected 200, got %d", i+1, w.Code)
		}
	}
	if w := post("/api/v1/analyze-prompt"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("fourth default request expected 429, got %d", w.Code)
	}

	now = now.Add(time.Second)
	if w := post("/api/v1/analyze-prompt"); w.Code != http.StatusOK {
		t.Fatalf("expected refill after one second, got %d", w.Code)
	}
}

func TestRateLimiterDisabledRule(t *testing.T) {
	l := NewRateLimiter(nil)
	for i := 0; i < 5; i++ {
		if ok, _ := l.Allow("k", RateLimitRule{}); !ok {
			t.Fatalf("zero rule should never limit")
		}
	}
	var nilLimiter *RateLimiter
	if ok, _ := nilLimiter.Allow("k", RateLimitRule{Rate: 1, Burst: 1}); !ok {
		t.Fatalf("nil limiter should allow")
	}
}

func TestRateLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 5}

	for _, key := range []string{"10.0.0.1|DEFAULT", "10.0.0.2|DEFAULT"} {
		if ok, _ := limiter.Allow(key, rule); !ok {
			t.Fatalf("%s: expected first request allowed", key)
		}
	}
	if got := len(limiter.buckets); got != 2 {
		t.Fatalf("expected 2 buckets, got %d", got)
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := limiter.Allow("10.0.0.3|DEFAULT", rule); !ok {
		t.Fatalf("expected request allowed")
	}
	if got := len(limiter.buckets); got != 1 {
		t.Fatalf("expected idle buckets swept, %d remain", got)
	}
	if _, ok := limiter.buckets["10.0.0.3|DEFAULT"]; !ok {
		t.Fatalf("expected active bucket kept")
	}
}

func TestRateLimiterSweepKeepsDrainedBuckets(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	slow := RateLimitRule{Rate: 0.01, Burst: 2}

	limiter.Allow("10.0.0.1|REFINE", slow)
	limiter.Allow("10.0.0.1|REFINE", slow)

	now = now.Add(time.Minute)
	limiter.Allow("10.0.0.2|REFINE", slow)
	if ok, _ := limiter.Allow("10.0.0.1|REFINE", slow); ok {
		t.Fatalf("expected drained bucket to survive the sweep and reject")
	}
}
