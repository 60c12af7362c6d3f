package attendance

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/internal/auth"
	"github.com/constancia-hub/backend/internal/certificates"
	"github.com/constancia-hub/backend/pkg/response"
)

// MaxUploadBytes caps attendance report uploads.
const MaxUploadBytes = 10 << 20

// Handler serves the two-step attendance import wizard: upload and review,
// then confirm into certificates.
type Handler struct {
	staging    *Staging
	certs      *certificates.Service
	minMinutes int
	logger     *zap.Logger
}

// NewHandler creates an attendance import handler.
func NewHandler(staging *Staging, certs *certificates.Service, minMinutes int, logger *zap.Logger) *Handler {
	if minMinutes <= 0 {
		minMinutes = DefaultMinMinutes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{staging: staging, certs: certs, minMinutes: minMinutes, logger: logger}
}

// Upload handles POST /api/imports: parses the report, stages the result and
// returns both classification lists for review.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "attendance report file is required")
		return
	}
	if fileHeader.Size > MaxUploadBytes {
		response.BadRequest(c, "file exceeds the 10 MB limit")
		return
	}

	minMinutes := h.minMinutes
	if raw := c.PostForm("min_minutes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(c, "min_minutes must be a positive integer")
			return
		}
		minMinutes = n
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("open upload failed", zap.Error(err))
		response.Internal(c, "failed to read upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		h.logger.Error("read upload failed", zap.Error(err))
		response.Internal(c, "failed to read upload")
		return
	}

	res, err := Parse(data, minMinutes)
	if err != nil {
		if errors.Is(err, ErrEncoding) {
			response.BadRequest(c, "unrecognized file encoding; re-export the report as xlsx or UTF-8/UTF-16 text")
			return
		}
		response.BadRequest(c, "could not parse attendance report: "+err.Error())
		return
	}

	staged, err := h.staging.Put(c.Request.Context(), res, minMinutes)
	if err != nil {
		h.logger.Error("stage import failed", zap.Error(err))
		response.Internal(c, "failed to stage import")
		return
	}

	response.Created(c, gin.H{
		"import_id":     staged.ID,
		"qualified":     res.Qualified,
		"not_qualified": res.NotQualified,
		"min_minutes":   minMinutes,
		"expires_at":    staged.UploadedAt.Add(h.staging.TTL()),
	})
}

// ConfirmRequest finalizes a staged import into certificates.
type ConfirmRequest struct {
	CourseName    string    `json:"course_name" binding:"required"`
	SessionStart  time.Time `json:"session_start" binding:"required"`
	SessionEnd    time.Time `json:"session_end" binding:"required"`
	DurationHours float64   `json:"duration_hours" binding:"required,gt=0"`
	SpecialistID  uuid.UUID `json:"specialist_id" binding:"required"`
	IsWebinar     bool      `json:"is_webinar"`
	// Emails optionally narrows the staged qualified list to a selection.
	Emails []string `json:"emails,omitempty"`
}

// Confirm handles POST /api/imports/:id/confirm: consumes the staged result
// and commits course, participants and certificates in one transaction.
func (h *Handler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !req.SessionEnd.After(req.SessionStart) {
		response.BadRequest(c, "session_end must be after session_start")
		return
	}

	staged, err := h.staging.Take(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrImportExpired) {
			response.NotFound(c, "pending import not found or expired; upload the report again")
			return
		}
		h.logger.Error("take pending import failed", zap.Error(err))
		response.Internal(c, "failed to load pending import")
		return
	}

	attendees := selectAttendees(staged.Result.Qualified, req.Emails)
	if len(attendees) == 0 {
		response.BadRequest(c, "no qualified attendees selected")
		return
	}

	sum, course, err := h.certs.CommitSession(c.Request.Context(), req.CourseName, attendees, certificates.SessionParams{
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
		h.logger.Error("commit session failed", zap.Error(err))
		response.Internal(c, "failed to commit import; nothing was saved")
		return
	}

	response.Created(c, gin.H{
		"course":  course,
		"summary": sum,
	})
}

// selectAttendees filters qualified attendees to the requested emails, or
// returns all of them when no selection was made.
func selectAttendees(qualified []Attendee, emails []string) []certificates.SessionAttendee {
	var wanted map[string]bool
	if len(emails) > 0 {
		wanted = make(map[string]bool, len(emails))
		for _, e := range emails {
			wanted[strings.ToLower(strings.TrimSpace(e))] = true
		}
	}
	out := make([]certificates.SessionAttendee, 0, len(qualified))
	for _, a := range qualified {
		if wanted != nil && !wanted[a.Email] {
			continue
		}
		out = append(out, certificates.SessionAttendee{
			FullName:    a.FullName,
			Email:       a.Email,
			Institution: a.Institution,
		})
	}
	return out
}
