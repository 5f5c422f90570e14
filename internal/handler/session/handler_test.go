package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Engrjalalkhan/easydoctor/internal/model"
	"github.com/Engrjalalkhan/easydoctor/internal/repository"
	"github.com/Engrjalalkhan/easydoctor/internal/repository/memory"
	"github.com/Engrjalalkhan/easydoctor/pkg/auth"
	"github.com/Engrjalalkhan/easydoctor/pkg/metrics"
)

type fakeDoctors struct {
	byEmail map[string]*model.Doctor
}

func (f *fakeDoctors) Get(context.Context, uuid.UUID) (*model.Doctor, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeDoctors) GetByEmail(_ context.Context, email string) (*model.Doctor, error) {
	d, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}

type fakeAuthn struct {
	password string
}

func (f *fakeAuthn) SignIn(_ context.Context, _, password string) error {
	if password != f.password {
		return repository.ErrInvalidCredentials
	}
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	doctors := &fakeDoctors{byEmail: map[string]*model.Doctor{
		"ayesha@example.com": {
			ID:        uuid.New(),
			Email:     "ayesha@example.com",
			Name:      "Dr. Ayesha Khan",
			Specialty: "Cardiologist",
			ImageURL:  "https://example.com/ayesha.png",
		},
	}}
	h := NewHandler(
		memory.NewStore(),
		doctors,
		&fakeAuthn{password: "secret-pass"},
		auth.NewJWTService("test-secret", time.Hour),
		metrics.NewWithRegistry("test", prometheus.NewRegistry()),
		time.Hour,
	)

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doLogin(r *gin.Engine, deviceID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if deviceID != "" {
		req.Header.Set(HeaderDeviceID, deviceID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doResume(r *gin.Engine, deviceID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/resume", nil)
	if deviceID != "" {
		req.Header.Set(HeaderDeviceID, deviceID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_RequiresDeviceHeader(t *testing.T) {
	r := newTestRouter(t)
	w := doLogin(r, "", `{"email":"ayesha@example.com","password":"secret-pass"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_Success(t *testing.T) {
	r := newTestRouter(t)
	w := doLogin(r, "device-a", `{"email":"ayesha@example.com","password":"secret-pass"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Status  string `json:"status"`
			Token   string `json:"token"`
			Profile struct {
				SpecialtyFilter string `json:"specialtyFilter"`
				ProfileImage    string `json:"profileImage"`
				UserName        string `json:"userName"`
			} `json:"profile"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "resumed", body.Data.Status)
	assert.NotEmpty(t, body.Data.Token)
	assert.Equal(t, "Cardiologist", body.Data.Profile.SpecialtyFilter)
	assert.Equal(t, "https://example.com/ayesha.png", body.Data.Profile.ProfileImage)
	assert.Equal(t, "Dr. Ayesha Khan", body.Data.Profile.UserName)
}

func TestLogin_EmptyPassword(t *testing.T) {
	r := newTestRouter(t)
	w := doLogin(r, "device-a", `{"email":"ayesha@example.com","password":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_MalformedEmail(t *testing.T) {
	r := newTestRouter(t)
	w := doLogin(r, "device-a", `{"email":"not-an-email","password":"secret-pass"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	r := newTestRouter(t)
	w := doLogin(r, "device-a", `{"email":"ayesha@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_ProfileMissing(t *testing.T) {
	r := newTestRouter(t)
	w := doLogin(r, "device-a", `{"email":"new@example.com","password":"secret-pass"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResume_NoSession(t *testing.T) {
	r := newTestRouter(t)
	w := doResume(r, "device-a")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"no_session"`)
}

func TestResume_AfterLogin(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusOK,
		doLogin(r, "device-a", `{"email":"ayesha@example.com","password":"secret-pass"}`).Code)

	w := doResume(r, "device-a")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"resumed"`)
	assert.Contains(t, w.Body.String(), `"userName":"Dr. Ayesha Khan"`)
}

func TestResume_SessionsAreDeviceScoped(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusOK,
		doLogin(r, "device-a", `{"email":"ayesha@example.com","password":"secret-pass"}`).Code)

	w := doResume(r, "device-b")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"no_session"`)
}
