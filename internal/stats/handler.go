package stats

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/pkg/response"
)

// Handler serves the dashboard statistics endpoint.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a stats handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Overview handles GET /api/stats.
func (h *Handler) Overview(c *gin.Context) {
	o, err := h.repo.GetOverview(c.Request.Context())
	if err != nil {
		h.logger.Error("stats query failed", zap.Error(err))
		response.Internal(c, "failed to compute statistics")
		return
	}
	response.OK(c, o)
}
