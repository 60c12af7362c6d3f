package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailType for outbound certificate mail.
const (
	EmailTypeCertificate  = "certificate_delivery"
	EmailTypeSurveyInvite = "survey_invite"
)

// EmailLogStatus for delivery.
const (
	EmailLogStatusSent   = "sent"
	EmailLogStatusFailed = "failed"
)

// EmailLog records each outbound delivery attempt.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	CertificateID  *uuid.UUID `json:"certificate_id,omitempty"`
	EmailType      string     `json:"email_type"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
