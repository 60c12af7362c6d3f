package emaillog

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/pkg/response"
)

// Handler serves the email delivery audit log.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an email log handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/email-logs.
func (h *Handler) List(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			response.BadRequest(c, "limit must be between 1 and 500")
			return
		}
		limit = n
	}
	logs, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list email logs failed", zap.Error(err))
		response.Internal(c, "failed to list email logs")
		return
	}
	response.OK(c, logs)
}
