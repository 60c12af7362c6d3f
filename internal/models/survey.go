package models

import (
	"time"

	"github.com/google/uuid"
)

// Survey ratings are a fixed enumerated scale.
const (
	SurveyRatingExcellent = "excellent"
	SurveyRatingGood      = "good"
	SurveyRatingAverage   = "average"
	SurveyRatingPoor      = "poor"
)

// SurveyResponse is the post-event questionnaire answer, at most one per certificate.
type SurveyResponse struct {
	ID               uuid.UUID `json:"id"`
	CertificateID    uuid.UUID `json:"certificate_id"`
	ContentRating    string    `json:"content_rating"`
	SpeakerRating    string    `json:"speaker_rating"`
	Comments         string    `json:"comments,omitempty"`
	TopicsOfInterest string    `json:"topics_of_interest,omitempty"`
	ContactOptIn     bool      `json:"contact_opt_in"`
	CreatedAt        time.Time `json:"created_at"`
}

// Lead is a sales-interest record created when a survey respondent opts in.
// Unique per (participant, course).
type Lead struct {
	ID            uuid.UUID `json:"id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	CourseID      uuid.UUID `json:"course_id"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"created_at"`
}
