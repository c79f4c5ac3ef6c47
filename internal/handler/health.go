package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ifrs-console/internal/logger"
	"ifrs-console/internal/middleware"
)

type HealthHandler struct {
	api   API
	stats func() any
}

// NewHealthHandler takes an optional stats func for the token store.
func NewHealthHandler(api API, stats func() any) *HealthHandler {
	return &HealthHandler{api: api, stats: stats}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	resp := gin.H{"status": "ok", "backend": "ok"}
	if _, err := h.api.Health(ctx); err != nil {
		logger.Warn("health.backend.unreachable", "err", err)
		resp["backend"] = "unreachable"
	}
	if h.stats != nil {
		resp["store"] = h.stats()
	}
	c.JSON(http.StatusOK, resp)
}

// Session reports the current session as JSON for scripts and the SPA shell.
func (h *HealthHandler) Session(c *gin.Context) {
	st := middleware.CurrentSession(c)
	user := st.User()
	c.JSON(http.StatusOK, gin.H{
		"loading":       st.Loading(),
		"authenticated": user != nil,
		"user":          user,
	})
}
