// Package portal serves the public, unauthenticated certificate surface:
// recent-certificate lookup by email and verification by code.
package portal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/internal/certificates"
	"github.com/constancia-hub/backend/internal/models"
	"github.com/constancia-hub/backend/pkg/response"
)

// lookupNotFoundMsg is deliberately identical for unknown emails and emails
// with no recent certificates, so the portal leaks nothing about who exists.
const lookupNotFoundMsg = "no recent certificates found for that email"

// Handler serves the public portal endpoints.
type Handler struct {
	repo       *certificates.Repository
	delivery   *certificates.Delivery
	windowDays int
	logger     *zap.Logger
}

// NewHandler creates a portal handler.
func NewHandler(repo *certificates.Repository, delivery *certificates.Delivery, windowDays int, logger *zap.Logger) *Handler {
	if windowDays <= 0 {
		windowDays = 7
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, delivery: delivery, windowDays: windowDays, logger: logger}
}

// withinWindow reports whether an issuance instant still falls inside the
// trailing exposure window. A certificate issued exactly windowDays ago is
// still visible.
func withinWindow(issued, now time.Time, windowDays int) bool {
	return now.Sub(issued) <= time.Duration(windowDays)*24*time.Hour
}

// listing is the public shape of one certificate, without internal IDs
// beyond what the download link needs.
type listing struct {
	ID           uuid.UUID  `json:"id"`
	CourseName   string     `json:"course_name"`
	SessionStart time.Time  `json:"session_start"`
	SessionEnd   time.Time  `json:"session_end"`
	IssuedAt     time.Time  `json:"issued_at"`
	IsWebinar    bool       `json:"is_webinar"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// Lookup handles GET and form POST /api/public/constancias: one recent
// certificate streams its PDF directly, several return a listing, none is a
// uniform not-found.
func (h *Handler) Lookup(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		email = strings.TrimSpace(c.PostForm("email"))
	}
	if email == "" || !strings.Contains(email, "@") {
		response.BadRequest(c, "a valid email is required")
		return
	}

	since := time.Now().UTC().Add(-time.Duration(h.windowDays) * 24 * time.Hour)
	certs, err := h.repo.ListRecentByEmail(c.Request.Context(), email, since)
	if err != nil {
		h.logger.Error("portal lookup failed", zap.Error(err))
		response.Internal(c, "lookup failed")
		return
	}

	switch len(certs) {
	case 0:
		response.NotFound(c, lookupNotFoundMsg)
	case 1:
		h.streamPDF(c, &certs[0])
	default:
		list := make([]listing, 0, len(certs))
		for _, cert := range certs {
			list = append(list, listing{
				ID:           cert.ID,
				CourseName:   cert.CourseName,
				SessionStart: cert.SessionStart,
				SessionEnd:   cert.SessionEnd,
				IssuedAt:     cert.IssuedAt,
				IsWebinar:    cert.IsWebinar,
				ExpiresAt:    cert.ExpiresAt,
			})
		}
		response.OK(c, list)
	}
}

// Download handles GET /api/public/constancias/:id/pdf. Certificates outside
// the exposure window answer the same not-found as unknown IDs.
func (h *Handler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, lookupNotFoundMsg)
		return
	}
	cert, err := h.repo.GetDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, lookupNotFoundMsg)
			return
		}
		h.logger.Error("portal download failed", zap.Error(err))
		response.Internal(c, "download failed")
		return
	}
	if !withinWindow(cert.IssuedAt, time.Now().UTC(), h.windowDays) {
		response.NotFound(c, lookupNotFoundMsg)
		return
	}
	h.streamPDF(c, cert)
}

// Verify handles GET /api/public/verify/:code, confirming a certificate's
// authenticity by its printed verification code.
func (h *Handler) Verify(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		response.NotFound(c, "certificate not found")
		return
	}
	cert, err := h.repo.GetDetailByCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "certificate not found")
			return
		}
		h.logger.Error("verification lookup failed", zap.Error(err))
		response.Internal(c, "verification failed")
		return
	}

	expired := cert.ExpiresAt != nil && time.Now().UTC().After(*cert.ExpiresAt)
	response.OK(c, gin.H{
		"participant_name": cert.ParticipantName,
		"course_name":      cert.CourseName,
		"session_start":    cert.SessionStart,
		"session_end":      cert.SessionEnd,
		"duration_hours":   cert.DurationHours,
		"issued_at":        cert.IssuedAt,
		"is_webinar":       cert.IsWebinar,
		"expires_at":       cert.ExpiresAt,
		"expired":          expired,
	})
}

func (h *Handler) streamPDF(c *gin.Context, cert *models.CertificateDetail) {
	_, pdf, err := h.delivery.RenderOne(c.Request.Context(), cert.ID)
	if err != nil {
		h.logger.Error("portal render failed", zap.String("certificate_id", cert.ID.String()), zap.Error(err))
		response.Internal(c, "failed to render certificate")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", certificates.ArchiveEntryName(cert)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
