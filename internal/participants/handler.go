package participants

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/internal/models"
	"github.com/constancia-hub/backend/pkg/database"
	"github.com/constancia-hub/backend/pkg/response"
)

// CertificateHistory lists a participant's issued certificates. Satisfied by
// *certificates.Repository.
type CertificateHistory interface {
	ListByParticipant(ctx context.Context, participantID uuid.UUID) ([]models.CertificateDetail, error)
}

// Handler serves the participant management API.
type Handler struct {
	repo    *Repository
	history CertificateHistory
	logger  *zap.Logger
}

// NewHandler creates a participants handler.
func NewHandler(repo *Repository, history CertificateHistory, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, history: history, logger: logger}
}

// List handles GET /api/participants.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list participants failed", zap.Error(err))
		response.Internal(c, "failed to list participants")
		return
	}
	response.OK(c, list)
}

// Get handles GET /api/participants/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid participant id")
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "participant not found")
			return
		}
		h.logger.Error("get participant failed", zap.Error(err))
		response.Internal(c, "failed to get participant")
		return
	}
	response.OK(c, p)
}

// History handles GET /api/participants/:id/certificates.
func (h *Handler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid participant id")
		return
	}
	certs, err := h.history.ListByParticipant(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("participant history failed", zap.Error(err))
		response.Internal(c, "failed to list certificates")
		return
	}
	response.OK(c, certs)
}

// CreateRequest registers a participant manually, ahead of any import.
type CreateRequest struct {
	FullName      string     `json:"full_name" binding:"required"`
	Email         string     `json:"email" binding:"required,email"`
	Title         string     `json:"title"`
	InstitutionID *uuid.UUID `json:"institution_id"`
}

// Create handles POST /api/participants.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !models.ValidParticipantTitle(req.Title) {
		response.BadRequest(c, "unsupported professional title")
		return
	}
	p, err := h.repo.Create(c.Request.Context(), req.FullName, req.Email, req.Title, req.InstitutionID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			response.BadRequest(c, "email already registered")
			return
		}
		h.logger.Error("create participant failed", zap.Error(err))
		response.Internal(c, "failed to create participant")
		return
	}
	response.Created(c, p)
}

// UpdateRequest edits a participant's profile fields.
type UpdateRequest struct {
	FullName      string     `json:"full_name" binding:"required"`
	Title         string     `json:"title"`
	InstitutionID *uuid.UUID `json:"institution_id"`
}

// Update handles PUT /api/participants/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid participant id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !models.ValidParticipantTitle(req.Title) {
		response.BadRequest(c, "unsupported professional title")
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.FullName, req.Title, req.InstitutionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "participant not found")
			return
		}
		h.logger.Error("update participant failed", zap.Error(err))
		response.Internal(c, "failed to update participant")
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("reload participant failed", zap.Error(err))
		response.Internal(c, "failed to load participant")
		return
	}
	response.OK(c, p)
}
