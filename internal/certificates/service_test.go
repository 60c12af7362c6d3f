package certificates

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/internal/auth"
	"github.com/constancia-hub/backend/internal/models"
)

func TestExpiryFor(t *testing.T) {
	issued := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	exp := ExpiryFor(issued, false)
	require.NotNil(t, exp)
	assert.Equal(t, time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC), *exp)

	assert.Nil(t, ExpiryFor(issued, true), "webinar certificates never expire")
}

func TestNewVerificationCode(t *testing.T) {
	re := regexp.MustCompile(`^[0-9A-F]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code := NewVerificationCode()
		assert.Regexp(t, re, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1, "codes should vary")
}

func TestNewSurveyToken(t *testing.T) {
	a, err := NewSurveyToken()
	require.NoError(t, err)
	b, err := NewSurveyToken()
	require.NoError(t, err)
	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "/")
	assert.NotContains(t, a, "+")
}

type fakeManagers struct {
	manager *models.Evaluator
	err     error
}

func (f fakeManagers) GetManager(context.Context) (*models.Evaluator, error) {
	return f.manager, f.err
}

type fakeStore struct {
	created map[uuid.UUID]bool // true: insert, false: already exists
	failOn  uuid.UUID
	seen    []*models.Certificate
}

func (f *fakeStore) CreateIfAbsent(_ context.Context, cert *models.Certificate) (bool, error) {
	if cert.ParticipantID == f.failOn {
		return false, errors.New("boom")
	}
	f.seen = append(f.seen, cert)
	return f.created[cert.ParticipantID], nil
}

func testService(managers ManagerSource) *Service {
	return &Service{managers: managers, logger: zap.NewNop()}
}

func TestIssueAllTally(t *testing.T) {
	manager := &models.Evaluator{ID: uuid.New()}
	newID, existingID, failID := uuid.New(), uuid.New(), uuid.New()

	store := &fakeStore{
		created: map[uuid.UUID]bool{newID: true, existingID: false},
		failOn:  failID,
	}
	svc := testService(fakeManagers{manager: manager})
	params := SessionParams{
		SessionStart:  time.Now().Add(-2 * time.Hour),
		SessionEnd:    time.Now(),
		DurationHours: 2,
		SpecialistID:  uuid.New(),
	}

	sum, err := svc.issueAll(context.Background(), store, uuid.New(),
		[]uuid.UUID{newID, existingID, failID}, params, false)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Created)
	assert.Equal(t, 1, sum.Existing)
	require.Len(t, sum.Failed, 1)
	assert.Contains(t, sum.Failed[0], failID.String())

	for _, cert := range store.seen {
		assert.Equal(t, manager.ID, cert.ManagerID)
		assert.NotEmpty(t, cert.VerificationCode)
		assert.NotEmpty(t, cert.SurveyToken)
		assert.NotNil(t, cert.ExpiresAt)
	}
}

func TestIssueAllStopsOnErrorWhenRequired(t *testing.T) {
	manager := &models.Evaluator{ID: uuid.New()}
	failID := uuid.New()
	store := &fakeStore{failOn: failID}
	svc := testService(fakeManagers{manager: manager})

	_, err := svc.issueAll(context.Background(), store, uuid.New(),
		[]uuid.UUID{failID, uuid.New()}, SessionParams{DurationHours: 1}, true)
	require.Error(t, err)
	assert.Empty(t, store.seen, "nothing after the failure should be attempted")
}

func TestIssueAllRequiresManager(t *testing.T) {
	svc := testService(fakeManagers{err: auth.ErrNoManager})
	_, err := svc.issueAll(context.Background(), &fakeStore{}, uuid.New(),
		[]uuid.UUID{uuid.New()}, SessionParams{DurationHours: 1}, false)
	assert.ErrorIs(t, err, auth.ErrNoManager)
}

func TestIssueAllWebinarHasNoExpiry(t *testing.T) {
	manager := &models.Evaluator{ID: uuid.New()}
	store := &fakeStore{created: map[uuid.UUID]bool{}}
	svc := testService(fakeManagers{manager: manager})

	_, err := svc.issueAll(context.Background(), store, uuid.New(),
		[]uuid.UUID{uuid.New()}, SessionParams{DurationHours: 1, IsWebinar: true}, false)
	require.NoError(t, err)
	require.Len(t, store.seen, 1)
	assert.True(t, store.seen[0].IsWebinar)
	assert.Nil(t, store.seen[0].ExpiresAt)
}
