package roster

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/Engrjalalkhan/easydoctor/internal/email"
	"github.com/Engrjalalkhan/easydoctor/internal/middleware"
	"github.com/Engrjalalkhan/easydoctor/internal/repository"
	rosterService "github.com/Engrjalalkhan/easydoctor/internal/service/roster"
	apperrors "github.com/Engrjalalkhan/easydoctor/pkg/errors"
	"github.com/Engrjalalkhan/easydoctor/pkg/httputil"
	"github.com/Engrjalalkhan/easydoctor/pkg/metrics"
)

// Handler exposes the booking roster over HTTP. One roster instance is
// kept per doctor for the lifetime of their screen session, so the
// in-memory view survives between the list call and a removal.
type Handler struct {
	bookings repository.BookingRepository
	mail     email.Service
	metrics  *metrics.Metrics
	rosters  *gocache.Cache
}

func NewHandler(bookings repository.BookingRepository, mail email.Service, m *metrics.Metrics) *Handler {
	return &Handler{
		bookings: bookings,
		mail:     mail,
		metrics:  m,
		rosters:  gocache.New(15*time.Minute, time.Hour),
	}
}

func (h *Handler) ListBookings(c *gin.Context) {
	doctorID, ok := h.doctorID(c)
	if !ok {
		return
	}

	start := time.Now()
	entries, err := h.roster(doctorID).Load(c.Request.Context())
	h.metrics.RosterLatency.WithLabelValues("load").Observe(time.Since(start).Seconds())

	if err != nil {
		h.metrics.RosterLoads.WithLabelValues("store_unavailable").Inc()
		// Empty roster plus retriable flag keeps the screen usable.
		httputil.RespondWithRetriable(c, entries, err)
		return
	}

	h.metrics.RosterLoads.WithLabelValues("success").Inc()
	h.metrics.RosterSize.Set(float64(len(entries)))
	httputil.RespondWithSuccess(c, entries)
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	doctorID, ok := h.doctorID(c)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid booking ID"))
		return
	}

	start := time.Now()
	err = h.roster(doctorID).Remove(c.Request.Context(), bookingID)
	h.metrics.RosterLatency.WithLabelValues("remove").Observe(time.Since(start).Seconds())

	if err != nil {
		if appErr, ok := apperrors.As(err); ok && appErr.Code == apperrors.ErrNotFound {
			h.metrics.RosterRemovals.WithLabelValues("not_found").Inc()
		} else {
			h.metrics.RosterRemovals.WithLabelValues("error").Inc()
		}
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.RosterRemovals.WithLabelValues("success").Inc()
	httputil.RespondWithSuccess(c, nil)
}

func (h *Handler) doctorID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(middleware.ContextDoctorID))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Unauthorized(err))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) roster(doctorID uuid.UUID) *rosterService.Service {
	key := doctorID.String()
	if cached, found := h.rosters.Get(key); found {
		return cached.(*rosterService.Service)
	}

	svc := rosterService.NewService(doctorID, h.bookings, h.mail)
	h.rosters.Set(key, svc, gocache.DefaultExpiration)
	return svc
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.GET("", h.ListBookings)
		bookings.DELETE("/:id", h.DeleteBooking)
	}
}
