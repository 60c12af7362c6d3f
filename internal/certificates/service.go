package certificates

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/internal/courses"
	"github.com/constancia-hub/backend/internal/institutions"
	"github.com/constancia-hub/backend/internal/models"
	"github.com/constancia-hub/backend/internal/participants"
)

// courseValidityYears is how long a course certificate stays valid.
// Webinar certificates never expire.
const courseValidityYears = 1

// certStore is the persistence surface IssueBatch needs.
type certStore interface {
	CreateIfAbsent(ctx context.Context, cert *models.Certificate) (bool, error)
}

// ManagerSource resolves the designated signing manager. Satisfied by
// *auth.Repository.
type ManagerSource interface {
	GetManager(ctx context.Context) (*models.Evaluator, error)
}

// SessionParams describes the session shared by every certificate in a batch.
type SessionParams struct {
	SessionStart  time.Time
	SessionEnd    time.Time
	DurationHours float64
	SpecialistID  uuid.UUID
	IsWebinar     bool
}

// SessionAttendee is one qualified attendee to certify when committing an
// imported session.
type SessionAttendee struct {
	FullName    string
	Email       string
	Institution string
}

// BatchSummary tallies the outcome of a batch issuance.
type BatchSummary struct {
	Created  int      `json:"created"`
	Existing int      `json:"existing"`
	Failed   []string `json:"failed,omitempty"`
}

// Service issues certificates, one per participant per session.
type Service struct {
	pool         *pgxpool.Pool
	repo         *Repository
	courses      *courses.Repository
	participants *participants.Repository
	institutions *institutions.Repository
	managers     ManagerSource
	logger       *zap.Logger
}

// NewService wires the issuance service.
func NewService(pool *pgxpool.Pool, repo *Repository, coursesRepo *courses.Repository,
	participantsRepo *participants.Repository, institutionsRepo *institutions.Repository,
	managers ManagerSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		pool:         pool,
		repo:         repo,
		courses:      coursesRepo,
		participants: participantsRepo,
		institutions: institutionsRepo,
		managers:     managers,
		logger:       logger,
	}
}

// NewVerificationCode returns a short public lookup code, the uppercased
// first segment of a random UUID.
func NewVerificationCode() string {
	return strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
}

// NewSurveyToken returns an unguessable token for the post-issuance survey link.
func NewSurveyToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("survey token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ExpiryFor computes the validity end of a certificate issued at the given
// time. Webinar certificates carry no expiry.
func ExpiryFor(issued time.Time, isWebinar bool) *time.Time {
	if isWebinar {
		return nil
	}
	t := issued.AddDate(courseValidityYears, 0, 0)
	return &t
}

func newCertificate(participantID, courseID uuid.UUID, managerID uuid.UUID, p SessionParams, issued time.Time) (*models.Certificate, error) {
	token, err := NewSurveyToken()
	if err != nil {
		return nil, err
	}
	return &models.Certificate{
		ParticipantID:    participantID,
		CourseID:         courseID,
		SessionStart:     p.SessionStart,
		SessionEnd:       p.SessionEnd,
		DurationHours:    p.DurationHours,
		ManagerID:        managerID,
		SpecialistID:     p.SpecialistID,
		VerificationCode: NewVerificationCode(),
		IssuedAt:         issued,
		IsWebinar:        p.IsWebinar,
		ExpiresAt:        ExpiryFor(issued, p.IsWebinar),
		SurveyToken:      token,
	}, nil
}

func (s *Service) issueAll(ctx context.Context, store certStore, courseID uuid.UUID, participantIDs []uuid.UUID, p SessionParams, stopOnError bool) (*BatchSummary, error) {
	manager, err := s.managers.GetManager(ctx)
	if err != nil {
		return nil, err
	}
	issued := time.Now().UTC()

	sum := &BatchSummary{}
	for _, pid := range participantIDs {
		cert, err := newCertificate(pid, courseID, manager.ID, p, issued)
		if err != nil {
			return nil, err
		}
		created, err := store.CreateIfAbsent(ctx, cert)
		if err != nil {
			if stopOnError {
				return nil, err
			}
			s.logger.Warn("certificate issuance failed",
				zap.String("participant_id", pid.String()), zap.Error(err))
			sum.Failed = append(sum.Failed, fmt.Sprintf("%s: %v", pid, err))
			continue
		}
		if created {
			sum.Created++
		} else {
			sum.Existing++
		}
	}
	return sum, nil
}

// IssueBatch issues one certificate per participant for the given course
// session. Participants that already hold a certificate for the session are
// counted, not duplicated; individual failures are collected so the rest of
// the batch still proceeds.
func (s *Service) IssueBatch(ctx context.Context, courseID uuid.UUID, participantIDs []uuid.UUID, p SessionParams) (*BatchSummary, error) {
	return s.issueAll(ctx, s.repo, courseID, participantIDs, p, false)
}

// CommitSession materializes an imported attendance session inside a single
// transaction: the course, the participants with their institutions, and one
// certificate each. Any failure rolls the whole session back.
func (s *Service) CommitSession(ctx context.Context, courseName string, attendees []SessionAttendee, p SessionParams) (*BatchSummary, *models.Course, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	course, err := s.courses.WithTx(tx).GetOrCreateByName(ctx, courseName)
	if err != nil {
		return nil, nil, err
	}

	txParticipants := s.participants.WithTx(tx)
	txInstitutions := s.institutions.WithTx(tx)

	ids := make([]uuid.UUID, 0, len(attendees))
	for _, a := range attendees {
		var instID *uuid.UUID
		if a.Institution != "" {
			inst, err := txInstitutions.GetOrCreateByName(ctx, a.Institution, "")
			if err != nil {
				return nil, nil, fmt.Errorf("institution %q: %w", a.Institution, err)
			}
			instID = &inst.ID
		}
		part, err := txParticipants.UpsertByEmail(ctx, a.FullName, a.Email, "", instID)
		if err != nil {
			return nil, nil, fmt.Errorf("participant %q: %w", a.Email, err)
		}
		ids = append(ids, part.ID)
	}

	sum, err := s.issueAll(ctx, s.repo.WithTx(tx), course.ID, ids, p, true)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return sum, course, nil
}
