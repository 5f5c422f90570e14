package roster

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Engrjalalkhan/easydoctor/internal/email"
	"github.com/Engrjalalkhan/easydoctor/internal/model"
	"github.com/Engrjalalkhan/easydoctor/internal/repository"
	apperrors "github.com/Engrjalalkhan/easydoctor/pkg/errors"
)

// Service materializes the list of bookings for one doctor and keeps
// an in-memory view of the last load. The view is a point-in-time
// snapshot, not a live subscription: a caller needing freshness calls
// Load again. The store is the source of truth; the snapshot only
// exists to keep the screen stable between loads.
type Service struct {
	doctorID uuid.UUID
	bookings repository.BookingRepository
	mail     email.Service

	mu     sync.Mutex
	loaded []*model.Booking
}

func NewService(doctorID uuid.UUID, bookings repository.BookingRepository, mail email.Service) *Service {
	if mail == nil {
		mail = email.Noop{}
	}
	return &Service{
		doctorID: doctorID,
		bookings: bookings,
		mail:     mail,
	}
}

// Load fetches every booking for the doctor. Records without an
// embedded patient snapshot are unusable for display and are silently
// excluded. On store failure the roster comes back empty alongside a
// retriable error so the screen stays usable.
func (s *Service) Load(ctx context.Context) ([]model.RosterEntry, error) {
	all, err := s.bookings.ListByDoctor(ctx, s.doctorID)
	if err != nil {
		return []model.RosterEntry{}, apperrors.StoreUnavailable(err)
	}

	kept := make([]*model.Booking, 0, len(all))
	for _, b := range all {
		if !b.Patient.Valid {
			continue
		}
		kept = append(kept, b)
	}

	// The store already orders by date, but the roster guarantees the
	// ordering itself rather than trusting query plumbing.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Date.Before(kept[j].Date)
	})

	s.mu.Lock()
	s.loaded = kept
	s.mu.Unlock()

	return s.Entries(), nil
}

// Remove deletes the booking from the store, then drops it from the
// in-memory view. Removing an id that is already gone reports NotFound
// and leaves the roster unchanged, so a retried removal is harmless.
func (s *Service) Remove(ctx context.Context, bookingID uuid.UUID) error {
	if err := s.bookings.Delete(ctx, bookingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("booking", err)
		}
		return apperrors.StoreUnavailable(err)
	}

	removed := s.drop(bookingID)

	// Cancellation notice is best effort; the removal already
	// committed and must not be failed retroactively.
	if removed != nil && removed.Patient.Snapshot.Email != "" {
		if err := s.mail.SendBookingCancelled(ctx, removed.Patient.Snapshot.Email,
			removed.Patient.Snapshot.Name, removed.Date); err != nil {
			log.Warn().Err(err).
				Str("booking_id", bookingID.String()).
				Msg("failed to send cancellation notice")
		}
	}

	return nil
}

// Entries returns a copy of the current view projected for display.
func (s *Service) Entries() []model.RosterEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]model.RosterEntry, 0, len(s.loaded))
	for _, b := range s.loaded {
		entries = append(entries, b.Entry())
	}
	return entries
}

func (s *Service) drop(bookingID uuid.UUID) *model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.loaded {
		if b.ID == bookingID {
			s.loaded = append(s.loaded[:i], s.loaded[i+1:]...)
			return b
		}
	}
	return nil
}
