package models

import (
	"time"

	"github.com/google/uuid"
)

// Certificate is an issued constancia for a participant's completion of a
// course session. Unique per (participant, course, session_start).
type Certificate struct {
	ID               uuid.UUID  `json:"id"`
	ParticipantID    uuid.UUID  `json:"participant_id"`
	CourseID         uuid.UUID  `json:"course_id"`
	SessionStart     time.Time  `json:"session_start"`
	SessionEnd       time.Time  `json:"session_end"`
	DurationHours    float64    `json:"duration_hours"`
	ManagerID        uuid.UUID  `json:"manager_id"`
	SpecialistID     uuid.UUID  `json:"specialist_id"`
	VerificationCode string     `json:"verification_code"`
	IssuedAt         time.Time  `json:"issued_at"`
	IsWebinar        bool       `json:"is_webinar"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	SurveyToken      string     `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
}

// CertificateDetail is a certificate joined with the names needed for
// rendering and listings.
type CertificateDetail struct {
	Certificate
	ParticipantName     string `json:"participant_name"`
	ParticipantTitle    string `json:"participant_title,omitempty"`
	ParticipantEmail    string `json:"participant_email"`
	CourseName          string `json:"course_name"`
	ManagerName         string `json:"manager_name"`
	ManagerJobTitle     string `json:"manager_job_title,omitempty"`
	ManagerSignature    string `json:"-"`
	SpecialistName      string `json:"specialist_name"`
	SpecialistJobTitle  string `json:"specialist_job_title,omitempty"`
	SpecialistSignature string `json:"-"`
}
