package certificates

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/internal/auth"
	"github.com/constancia-hub/backend/pkg/response"
)

// Handler serves the certificate management API.
type Handler struct {
	svc           *Service
	delivery      *Delivery
	repo          *Repository
	surveyBaseURL string
	logger        *zap.Logger
}

// NewHandler creates a certificates handler.
func NewHandler(svc *Service, delivery *Delivery, repo *Repository, surveyBaseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, delivery: delivery, repo: repo, surveyBaseURL: surveyBaseURL, logger: logger}
}

// BatchRequest is the manual issuance payload.
type BatchRequest struct {
	CourseID       uuid.UUID   `json:"course_id" binding:"required"`
	ParticipantIDs []uuid.UUID `json:"participant_ids" binding:"required,min=1"`
	SessionStart   time.Time   `json:"session_start" binding:"required"`
	SessionEnd     time.Time   `json:"session_end" binding:"required"`
	DurationHours  float64     `json:"duration_hours" binding:"required,gt=0"`
	SpecialistID   uuid.UUID   `json:"specialist_id" binding:"required"`
	IsWebinar      bool        `json:"is_webinar"`
}

// idsRequest selects certificates for delete, archive and send operations.
type idsRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// CreateBatch handles POST /api/certificates/batch.
func (h *Handler) CreateBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !req.SessionEnd.After(req.SessionStart) {
		response.BadRequest(c, "session_end must be after session_start")
		return
	}

	sum, err := h.svc.IssueBatch(c.Request.Context(), req.CourseID, req.ParticipantIDs, SessionParams{
		SessionStart:  req.SessionStart,
		SessionEnd:    req.SessionEnd,
		DurationHours: req.DurationHours,
		SpecialistID:  req.SpecialistID,
		IsWebinar:     req.IsWebinar,
	})
	if err != nil {
		if errors.Is(err, auth.ErrNoManager) {
			response.Conflict(c, "no manager designated; assign one before issuing certificates")
			return
		}
		h.logger.Error("batch issuance failed", zap.Error(err))
		response.Internal(c, "failed to issue certificates")
		return
	}
	response.Created(c, sum)
}

// List handles GET /api/certificates.
func (h *Handler) List(c *gin.Context) {
	limit := 200
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			response.BadRequest(c, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	certs, err := h.repo.ListAll(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list certificates failed", zap.Error(err))
		response.Internal(c, "failed to list certificates")
		return
	}
	response.OK(c, certs)
}

// Delete handles DELETE /api/certificates.
func (h *Handler) Delete(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	deleted, err := h.repo.DeleteByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		h.logger.Error("delete certificates failed", zap.Error(err))
		response.Internal(c, "failed to delete certificates")
		return
	}
	response.OK(c, gin.H{"deleted": deleted})
}

// Download handles GET /api/certificates/:id/pdf.
func (h *Handler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid certificate id")
		return
	}
	cert, pdf, err := h.delivery.RenderOne(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "certificate not found")
			return
		}
		h.logger.Error("certificate render failed", zap.String("certificate_id", id.String()), zap.Error(err))
		response.Internal(c, "failed to render certificate")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ArchiveEntryName(cert)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Archive handles POST /api/certificates/archive, returning a zip of PDFs.
func (h *Handler) Archive(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	archive, err := h.delivery.BuildArchive(c.Request.Context(), req.IDs)
	if err != nil {
		h.logger.Error("archive build failed", zap.Error(err))
		response.Internal(c, "failed to build archive")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="constancias.zip"`)
	c.Data(http.StatusOK, "application/zip", archive)
}

// Send handles POST /api/certificates/send, emailing each selected
// certificate to its participant.
func (h *Handler) Send(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	sum, err := h.delivery.SendBatch(c.Request.Context(), req.IDs, h.surveyBaseURL)
	if err != nil {
		h.logger.Error("send batch failed", zap.Error(err))
		response.Internal(c, "failed to send certificates")
		return
	}
	response.OK(c, sum)
}
