package surveys

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/constancia-hub/backend/internal/models"
)

type fakeLookup struct {
	cert *models.CertificateDetail
}

func (f fakeLookup) GetDetailBySurveyToken(_ context.Context, token string) (*models.CertificateDetail, error) {
	if f.cert == nil || token != f.cert.SurveyToken {
		return nil, pgx.ErrNoRows
	}
	return f.cert, nil
}

type fakeStore struct {
	responses map[uuid.UUID]*models.SurveyResponse
	leads     []models.Lead
}

func newFakeStore() *fakeStore {
	return &fakeStore{responses: make(map[uuid.UUID]*models.SurveyResponse)}
}

func (f *fakeStore) CreateResponse(_ context.Context, resp *models.SurveyResponse) (bool, error) {
	if _, ok := f.responses[resp.CertificateID]; ok {
		return false, nil
	}
	resp.ID = uuid.New()
	f.responses[resp.CertificateID] = resp
	return true, nil
}

func (f *fakeStore) GetResponseByCertificate(_ context.Context, certificateID uuid.UUID) (*models.SurveyResponse, error) {
	resp, ok := f.responses[certificateID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return resp, nil
}

func (f *fakeStore) CreateLead(_ context.Context, participantID, courseID uuid.UUID, source string) error {
	for _, l := range f.leads {
		if l.ParticipantID == participantID && l.CourseID == courseID {
			return nil
		}
	}
	f.leads = append(f.leads, models.Lead{ID: uuid.New(), ParticipantID: participantID, CourseID: courseID, Source: source})
	return nil
}

func (f *fakeStore) ListLeads(context.Context) ([]LeadDetail, error) {
	return nil, nil
}

func surveyRouter(store *fakeStore, cert *models.CertificateDetail) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, fakeLookup{cert: cert}, nil)
	router := gin.New()
	router.GET("/surveys/:token", h.Show)
	router.POST("/surveys/:token", h.Submit)
	return router
}

func submit(router *gin.Engine, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/surveys/"+token, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func surveyCert() *models.CertificateDetail {
	return &models.CertificateDetail{
		Certificate: models.Certificate{
			ID:            uuid.New(),
			ParticipantID: uuid.New(),
			CourseID:      uuid.New(),
			SurveyToken:   "tok-abc",
		},
		CourseName:      "Curso de Hematología",
		ParticipantName: "Ana García",
	}
}

const optInBody = `{"content_rating":"excellent","speaker_rating":"good","contact_opt_in":true}`

func TestSubmitSecondAttemptIsIgnored(t *testing.T) {
	store := newFakeStore()
	cert := surveyCert()
	router := surveyRouter(store, cert)

	first := submit(router, "tok-abc", optInBody)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), `"recorded":true`)

	second := submit(router, "tok-abc", `{"content_rating":"poor","speaker_rating":"poor","contact_opt_in":true}`)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), `"already_answered":true`)

	require.Len(t, store.responses, 1, "second submission must not create a second response")
	assert.Equal(t, models.SurveyRatingExcellent, store.responses[cert.ID].ContentRating,
		"first response must not be overwritten")
	assert.Len(t, store.leads, 1, "opt-in on a resubmission must not duplicate the lead")
}

func TestSubmitCreatesLeadOnlyOnOptIn(t *testing.T) {
	store := newFakeStore()
	router := surveyRouter(store, surveyCert())

	w := submit(router, "tok-abc", `{"content_rating":"good","speaker_rating":"good","contact_opt_in":false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.leads)
}

func TestSubmitValidatesRatings(t *testing.T) {
	store := newFakeStore()
	router := surveyRouter(store, surveyCert())

	w := submit(router, "tok-abc", `{"content_rating":"amazing","speaker_rating":"good"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.responses)
}

func TestSubmitUnknownToken(t *testing.T) {
	router := surveyRouter(newFakeStore(), surveyCert())
	w := submit(router, "tok-wrong", optInBody)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShowReportsAnswered(t *testing.T) {
	store := newFakeStore()
	cert := surveyCert()
	router := surveyRouter(store, cert)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/surveys/tok-abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"answered":false`)

	submit(router, "tok-abc", optInBody)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/surveys/tok-abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"answered":true`)
}
