package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"visibility-backend/internal/analysis"
	"visibility-backend/internal/runs"
	"visibility-backend/internal/shared/config"
	"visibility-backend/internal/shared/metrics"
	"visibility-backend/internal/shared/server/middleware"
	"visibility-backend/internal/shared/server/respond"
)

const (
	rateGroupRefine = "REFINE"
	rateGroupRead   = "READ"
)

// RouterDeps carries the handlers mounted on the router. Nil handlers are skipped.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analysis.Handler
	RunsHandler     *runs.Handler
}

// NewRouter constructs the gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(rateLimitConfig(deps.Config)),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.RunsHandler != nil {
		deps.RunsHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	return r
}

// rateLimitConfig limits task endpoints per client IP. Refinement-backed
// endpoints get a tighter bucket since one request can fan out to many model
// calls. Reads are not limited.
func rateLimitConfig(cfg config.Config) middleware.RateLimitConfig {
	refineBurst := cfg.RateLimitBurst / 5
	if refineBurst < 1 {
		refineBurst = 1
	}
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			middleware.DefaultRateLimitGroup: {Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
			rateGroupRefine:                  {Rate: cfg.RateLimitRPS / 10, Burst: refineBurst},
		},
		GroupFor: rateGroupFor,
	}
}

func rateGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return rateGroupRead
	}
	switch c.FullPath() {
	case "/api/v1/optimize-prompt", "/api/v1/ad-duel-analyzer":
		return rateGroupRefine
	default:
		return middleware.DefaultRateLimitGroup
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
