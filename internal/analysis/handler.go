package analysis

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"visibility-backend/internal/shared/server/respond"
)

const maxBodyBytes = 1 << 20

// Handler exposes every task kind over HTTP.
type Handler struct {
	Analyzer *Analyzer
}

// NewHandler constructs a Handler.
func NewHandler(a *Analyzer) *Handler {
	return &Handler{Analyzer: a}
}

// Routes maps each endpoint path to its task kind.
var Routes = map[string]TaskKind{
	"/analyze-prompt":       KindBrandVisibility,
	"/generate-suggestions": KindContentSuggestions,
	"/ad-duel-analyzer":     KindAdCounterStrategy,
	"/simulate-answer":      KindAnswerSimulation,
	"/analyze-trends":       KindTrendScan,
	"/optimize-prompt":      KindPromptRefinement,
}

// RegisterRoutes attaches the task endpoints to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	for path, kind := range Routes {
		rg.POST(path, h.handle(kind))
	}
}

func (h *Handler) handle(kind TaskKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("task", string(kind))
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read request body", nil)
			return
		}

		req, err := DecodeRequest(kind, body)
		if err != nil {
			h.writeError(c, kind, err)
			return
		}

		var runID string
		ctx := WithRunIDSink(c.Request.Context(), &runID)
		result, err := h.Analyzer.Analyze(ctx, req)
		if runID != "" {
			c.Set("runId", runID)
			c.Header("X-Run-Id", runID)
		}
		if err != nil {
			h.writeError(c, kind, err)
			return
		}
		h.writeResult(c, req, result)
	}
}

func (h *Handler) writeResult(c *gin.Context, req TaskRequest, result any) {
	switch r := req.(type) {
	case TrendScanRequest:
		respond.OK(c, gin.H{
			"brand":     r.Brand,
			"platforms": r.Platforms,
			"analysis":  result,
		})
	case PromptRefinementRequest:
		respond.OK(c, result)
	default:
		respond.OK(c, gin.H{"analysis": result})
	}
}

// writeError applies the per-kind failure contract. Trend scans report every
// failure as a 200 with an empty analysis; refinements use 400 throughout.
func (h *Handler) writeError(c *gin.Context, kind TaskKind, err error) {
	msg := SanitizeError(err)
	var invalid *InvalidInputError
	isInvalid := errors.As(err, &invalid)

	switch kind {
	case KindTrendScan:
		respond.OK(c, gin.H{
			"brand":     nil,
			"platforms": nil,
			"analysis": gin.H{
				"trends":   []Trend{},
				"insights": []string{msg},
			},
		})
	case KindPromptRefinement:
		respond.JSON(c, http.StatusBadRequest, gin.H{"error": msg})
	default:
		status := http.StatusBadGateway
		if isInvalid {
			status = http.StatusBadRequest
		}
		respond.JSON(c, status, gin.H{"error": msg})
	}
}
