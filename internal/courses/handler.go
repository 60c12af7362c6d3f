package courses

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/pkg/response"
)

// Handler serves the course catalog.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a courses handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/courses.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list courses failed", zap.Error(err))
		response.Internal(c, "failed to list courses")
		return
	}
	response.OK(c, list)
}

// CreateRequest registers a course definition ahead of issuance.
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create handles POST /api/courses. Re-posting an existing name returns the
// existing record.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	course, err := h.repo.GetOrCreateByName(c.Request.Context(), req.Name)
	if err != nil {
		h.logger.Error("create course failed", zap.Error(err))
		response.Internal(c, "failed to create course")
		return
	}
	response.Created(c, course)
}
