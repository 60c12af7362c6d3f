package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents an evaluator's role in the platform.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEvaluator Role = "evaluator"
)

// Evaluator is a platform user who signs certificates (gerente or especialista).
type Evaluator struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	JobTitle     string    `json:"job_title,omitempty"`
	PhotoKey     string    `json:"photo_key,omitempty"`
	SignatureKey string    `json:"signature_key,omitempty"`
	IsManager    bool      `json:"is_manager"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EvaluatorPublic is Evaluator without sensitive fields for API responses.
type EvaluatorPublic struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	JobTitle  string    `json:"job_title,omitempty"`
	IsManager bool      `json:"is_manager"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts Evaluator to EvaluatorPublic.
func (e *Evaluator) ToPublic() EvaluatorPublic {
	return EvaluatorPublic{
		ID:        e.ID,
		Email:     e.Email,
		FullName:  e.FullName,
		Role:      e.Role,
		JobTitle:  e.JobTitle,
		IsManager: e.IsManager,
		CreatedAt: e.CreatedAt,
	}
}
