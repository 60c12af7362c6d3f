package institutions

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/pkg/response"
)

// Handler serves the institution catalog.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an institutions handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/institutions.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list institutions failed", zap.Error(err))
		response.Internal(c, "failed to list institutions")
		return
	}
	response.OK(c, list)
}

// CreateRequest registers an institution ahead of imports.
type CreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

// Create handles POST /api/institutions. Re-posting an existing name returns
// the existing record.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	inst, err := h.repo.GetOrCreateByName(c.Request.Context(), req.Name, req.Location)
	if err != nil {
		h.logger.Error("create institution failed", zap.Error(err))
		response.Internal(c, "failed to create institution")
		return
	}
	response.Created(c, inst)
}
