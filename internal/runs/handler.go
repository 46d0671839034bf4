package runs

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"visibility-backend/internal/analysis"
	"visibility-backend/internal/shared/server/respond"
	"visibility-backend/internal/shared/storage/object"
)

// Handler serves run history.
type Handler struct {
	Repo  Repo
	Store object.ObjectStore
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo, store object.ObjectStore) *Handler {
	return &Handler{Repo: repo, Store: store}
}

// RegisterRoutes attaches run history endpoints to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/runs", h.list)
	rg.GET("/runs/:id", h.get)
	rg.GET("/runs/:id/raw", h.raw)
}

func (h *Handler) list(c *gin.Context) {
	kind := c.Query("kind")
	if kind != "" {
		parsed, ok := analysis.ParseKind(kind)
		if !ok {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown kind", gin.H{"kind": kind})
			return
		}
		kind = string(parsed)
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return
	}

	items, err := h.Repo.List(c.Request.Context(), ListFilter{Kind: kind, Limit: limit, Offset: offset})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list runs", nil)
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) get(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	respond.OK(c, run)
}

func (h *Handler) raw(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	if run.RawKey == "" || h.Store == nil {
		respond.Error(c, http.StatusNotFound, "not_found", "raw completion not stored", nil)
		return
	}
	rc, err := h.Store.Open(c.Request.Context(), run.RawKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "raw completion not stored", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open raw completion", nil)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

func (h *Handler) lookup(c *gin.Context) (Run, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "run not found", nil)
		return Run{}, false
	}
	run, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "run not found", nil)
			return Run{}, false
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load run", nil)
		return Run{}, false
	}
	return run, true
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid "+key, gin.H{key: raw})
		return 0, false
	}
	return v, true
}
