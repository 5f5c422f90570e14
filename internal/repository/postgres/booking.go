package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Engrjalalkhan/easydoctor/internal/model"
	"github.com/Engrjalalkhan/easydoctor/internal/repository"
)

type bookingRepository struct {
	db *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

// ListByDoctor returns every booking owned by the doctor, ordered by
// date ascending so roster output is deterministic.
func (r *bookingRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Booking, error) {
	query := `
		SELECT id, doctor_id, patient, date,
			   morning_slot, evening_slot, payment_status, created_at
		FROM bookings
		WHERE doctor_id = $1
		ORDER BY date ASC
	`
	var bookings []*model.Booking
	err := r.db.SelectContext(ctx, &bookings, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM bookings
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}
