package session

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	gocache "github.com/patrickmn/go-cache"

	"github.com/Engrjalalkhan/easydoctor/internal/model"
	"github.com/Engrjalalkhan/easydoctor/internal/repository"
	sessionService "github.com/Engrjalalkhan/easydoctor/internal/service/session"
	"github.com/Engrjalalkhan/easydoctor/pkg/auth"
	apperrors "github.com/Engrjalalkhan/easydoctor/pkg/errors"
	"github.com/Engrjalalkhan/easydoctor/pkg/httputil"
	"github.com/Engrjalalkhan/easydoctor/pkg/metrics"
)

const HeaderDeviceID = "X-Device-ID"

var validate = validator.New()

// Handler exposes the session gate over HTTP. Gates are cached per
// device so concurrent logins from the same device share one instance
// and its write lock.
type Handler struct {
	store   repository.SessionStore
	doctors repository.DoctorRepository
	authn   repository.Authenticator
	jwtSvc  auth.JWTService
	metrics *metrics.Metrics
	ttl     time.Duration
	gates   *gocache.Cache
}

func NewHandler(store repository.SessionStore, doctors repository.DoctorRepository,
	authn repository.Authenticator, jwtSvc auth.JWTService, m *metrics.Metrics,
	ttl time.Duration) *Handler {
	return &Handler{
		store:   store,
		doctors: doctors,
		authn:   authn,
		jwtSvc:  jwtSvc,
		metrics: m,
		ttl:     ttl,
		gates:   gocache.New(15*time.Minute, time.Hour),
	}
}

type loginRequest struct {
	// Emptiness is the gate's validation concern, so no required tag;
	// a non-empty but malformed email is rejected here.
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Status  string                `json:"status"`
	Profile *model.SessionProfile `json:"profile,omitempty"`
	Token   string                `json:"token,omitempty"`
}

func (h *Handler) Login(c *gin.Context) {
	deviceID := c.GetHeader(HeaderDeviceID)
	if deviceID == "" {
		httputil.RespondWithError(c, apperrors.Validation("X-Device-ID header is required"))
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("email must be a valid address"))
		return
	}

	start := time.Now()
	result, err := h.gate(deviceID).Login(c.Request.Context(), req.Email, req.Password)
	h.metrics.LoginLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		h.metrics.Logins.WithLabelValues("error").Inc()
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.Logins.WithLabelValues(string(result.Status)).Inc()

	switch result.Status {
	case model.LoginStatusResumed:
		h.respondResumed(c, result.Doctor)
	case model.LoginStatusProfileMissing:
		httputil.RespondWithError(c, apperrors.ProfileMissing(req.Email))
	default:
		httputil.RespondWithError(c, apperrors.InvalidCredentials(nil))
	}
}

func (h *Handler) Resume(c *gin.Context) {
	deviceID := c.GetHeader(HeaderDeviceID)
	if deviceID == "" {
		httputil.RespondWithError(c, apperrors.Validation("X-Device-ID header is required"))
		return
	}

	result, err := h.gate(deviceID).CheckResumableSession(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.SessionResumes.WithLabelValues(string(result.Status)).Inc()

	if result.Status == model.ResumeStatusResumed {
		h.respondResumed(c, result.Doctor)
		return
	}
	httputil.RespondWithSuccess(c, sessionResponse{Status: string(result.Status)})
}

func (h *Handler) respondResumed(c *gin.Context, doctor *model.Doctor) {
	token, err := h.jwtSvc.GenerateAccessToken(doctor)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}

	profile := doctor.Profile()
	httputil.RespondWithSuccess(c, sessionResponse{
		Status:  string(model.ResumeStatusResumed),
		Profile: &profile,
		Token:   token,
	})
}

// gate returns the session gate for a device, creating and caching it
// on first use so repeated calls share one write lock.
func (h *Handler) gate(deviceID string) *sessionService.Service {
	if cached, found := h.gates.Get(deviceID); found {
		return cached.(*sessionService.Service)
	}

	gate := sessionService.NewService(
		h.store.WithNamespace(deviceID),
		h.doctors,
		h.authn,
		sessionService.WithTTL(h.ttl),
	)
	h.gates.Set(deviceID, gate, gocache.DefaultExpiration)
	return gate
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	session := r.Group("/session")
	{
		session.POST("/login", h.Login)
		session.GET("/resume", h.Resume)
	}
}
