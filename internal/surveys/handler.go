package surveys

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/internal/models"
	"github.com/constancia-hub/backend/pkg/response"
)

// CertificateLookup resolves survey tokens to certificates. Satisfied by
// *certificates.Repository.
type CertificateLookup interface {
	GetDetailBySurveyToken(ctx context.Context, token string) (*models.CertificateDetail, error)
}

// ResponseStore is the persistence surface the handler needs. Satisfied by
// *Repository.
type ResponseStore interface {
	CreateResponse(ctx context.Context, resp *models.SurveyResponse) (bool, error)
	GetResponseByCertificate(ctx context.Context, certificateID uuid.UUID) (*models.SurveyResponse, error)
	CreateLead(ctx context.Context, participantID, courseID uuid.UUID, source string) error
	ListLeads(ctx context.Context) ([]LeadDetail, error)
}

// Handler serves the public survey endpoints and the lead listing.
type Handler struct {
	repo   ResponseStore
	certs  CertificateLookup
	logger *zap.Logger
}

// NewHandler creates a surveys handler.
func NewHandler(repo ResponseStore, certs CertificateLookup, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, certs: certs, logger: logger}
}

func validRating(r string) bool {
	switch r {
	case models.SurveyRatingExcellent, models.SurveyRatingGood, models.SurveyRatingAverage, models.SurveyRatingPoor:
		return true
	}
	return false
}

// Show handles GET /api/public/surveys/:token, returning the event context
// the questionnaire is about.
func (h *Handler) Show(c *gin.Context) {
	cert, err := h.certs.GetDetailBySurveyToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "survey not found")
			return
		}
		h.logger.Error("survey lookup failed", zap.Error(err))
		response.Internal(c, "failed to load survey")
		return
	}

	answered := true
	if _, err := h.repo.GetResponseByCertificate(c.Request.Context(), cert.ID); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			h.logger.Error("survey response lookup failed", zap.Error(err))
			response.Internal(c, "failed to load survey")
			return
		}
		answered = false
	}

	response.OK(c, gin.H{
		"course_name":      cert.CourseName,
		"session_end":      cert.SessionEnd,
		"participant_name": cert.ParticipantName,
		"answered":         answered,
	})
}

// SubmitRequest is the questionnaire payload.
type SubmitRequest struct {
	ContentRating    string `json:"content_rating" binding:"required"`
	SpeakerRating    string `json:"speaker_rating" binding:"required"`
	Comments         string `json:"comments"`
	TopicsOfInterest string `json:"topics_of_interest"`
	ContactOptIn     bool   `json:"contact_opt_in"`
}

// Submit handles POST /api/public/surveys/:token. Resubmitting an answered
// survey succeeds without overwriting the first response.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !validRating(req.ContentRating) || !validRating(req.SpeakerRating) {
		response.BadRequest(c, "ratings must be one of: excellent, good, average, poor")
		return
	}

	cert, err := h.certs.GetDetailBySurveyToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "survey not found")
			return
		}
		h.logger.Error("survey lookup failed", zap.Error(err))
		response.Internal(c, "failed to load survey")
		return
	}

	resp := &models.SurveyResponse{
		CertificateID:    cert.ID,
		ContentRating:    req.ContentRating,
		SpeakerRating:    req.SpeakerRating,
		Comments:         req.Comments,
		TopicsOfInterest: req.TopicsOfInterest,
		ContactOptIn:     req.ContactOptIn,
	}
	created, err := h.repo.CreateResponse(c.Request.Context(), resp)
	if err != nil {
		h.logger.Error("survey save failed", zap.Error(err))
		response.Internal(c, "failed to save survey response")
		return
	}

	if created && req.ContactOptIn {
		if err := h.repo.CreateLead(c.Request.Context(), cert.ParticipantID, cert.CourseID, LeadSourceSurvey); err != nil {
			h.logger.Error("lead save failed", zap.Error(err))
		}
	}

	response.OK(c, gin.H{"recorded": created, "already_answered": !created})
}

// ListLeads handles GET /api/leads.
func (h *Handler) ListLeads(c *gin.Context) {
	leads, err := h.repo.ListLeads(c.Request.Context())
	if err != nil {
		h.logger.Error("list leads failed", zap.Error(err))
		response.Internal(c, "failed to list leads")
		return
	}
	response.OK(c, leads)
}
