package models

import (
	"time"

	"github.com/google/uuid"
)

// Institution is where a participant comes from.
type Institution struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Course is a named course/webinar definition; sessions are carried on certificates.
type Course struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Professional titles a participant may carry on the certificate.
var ParticipantTitles = []string{"Dr.", "Dra.", "Q.F.B.", "Q.B.P.", "M.C.", "Lic.", "Ing.", "T.L.C."}

// ValidParticipantTitle reports whether the title is in the allowed set.
// Empty is allowed; the certificate simply omits it.
func ValidParticipantTitle(title string) bool {
	if title == "" {
		return true
	}
	for _, t := range ParticipantTitles {
		if t == title {
			return true
		}
	}
	return false
}

// Participant is a certificate recipient, unique by email (case-insensitive).
type Participant struct {
	ID            uuid.UUID  `json:"id"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email"`
	Title         string     `json:"title,omitempty"` // professional title, e.g. Q.F.B.
	InstitutionID *uuid.UUID `json:"institution_id,omitempty"`
	Institution   string     `json:"institution,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
