package participants

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/constancia-hub/backend/internal/models"
)

func postCreate(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, nil)
	router := gin.New()
	router.POST("/participants", h.Create)

	req := httptest.NewRequest(http.MethodPost, "/participants", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateRejectsUnknownTitle(t *testing.T) {
	w := postCreate(t, `{"full_name":"Ana García","email":"ana@example.com","title":"Prof."}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported professional title")
}

func TestCreateRequiresValidEmail(t *testing.T) {
	w := postCreate(t, `{"full_name":"Ana García","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidParticipantTitle(t *testing.T) {
	assert.True(t, models.ValidParticipantTitle(""))
	assert.True(t, models.ValidParticipantTitle("Q.F.B."))
	assert.True(t, models.ValidParticipantTitle("Dra."))
	assert.False(t, models.ValidParticipantTitle("Prof."))
	assert.False(t, models.ValidParticipantTitle("qfb"))
}
