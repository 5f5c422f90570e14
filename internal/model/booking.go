package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PatientSnapshot is the denormalized patient record embedded in a
// booking at creation time. It is a copy, not a reference: later edits
// to the canonical patient record do not rewrite historical bookings.
type PatientSnapshot struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// NullPatientSnapshot maps the nullable JSONB patient column. A NULL
// column marks a malformed or legacy booking that is unusable for
// display and gets filtered out of the roster.
type NullPatientSnapshot struct {
	Snapshot PatientSnapshot
	Valid    bool
}

func (n *NullPatientSnapshot) Scan(src interface{}) error {
	if src == nil {
		n.Snapshot, n.Valid = PatientSnapshot{}, false
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported patient column type %T", src)
	}

	if err := json.Unmarshal(raw, &n.Snapshot); err != nil {
		return fmt.Errorf("failed to decode patient snapshot: %w", err)
	}
	n.Valid = true
	return nil
}

func (n NullPatientSnapshot) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return json.Marshal(n.Snapshot)
}

// Booking reserves at least one of the two daily slots for a doctor.
// Mutation is limited to deletion; any field change goes through an
// external flow that rewrites the whole record.
type Booking struct {
	ID            uuid.UUID           `db:"id" json:"id"`
	DoctorID      uuid.UUID           `db:"doctor_id" json:"doctor_id"`
	Patient       NullPatientSnapshot `db:"patient" json:"-"`
	Date          time.Time           `db:"date" json:"date"`
	MorningSlot   *string             `db:"morning_slot" json:"morning_slot,omitempty"`
	EveningSlot   *string             `db:"evening_slot" json:"evening_slot,omitempty"`
	PaymentStatus PaymentStatus       `db:"payment_status" json:"payment_status"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
}

// RosterEntry is the projection handed to the view layer: the patient
// snapshot flattened together with the slot and payment fields.
type RosterEntry struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Age           int           `json:"age"`
	Gender        string        `json:"gender"`
	Date          time.Time     `json:"date"`
	MorningSlot   *string       `json:"morningSlot,omitempty"`
	EveningSlot   *string       `json:"eveningSlot,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

// Entry projects a booking into its roster form. The caller must have
// checked Patient.Valid first.
func (b *Booking) Entry() RosterEntry {
	return RosterEntry{
		ID:            b.ID,
		Name:          b.Patient.Snapshot.Name,
		Age:           b.Patient.Snapshot.Age,
		Gender:        b.Patient.Snapshot.Gender,
		Date:          b.Date,
		MorningSlot:   b.MorningSlot,
		EveningSlot:   b.EveningSlot,
		PaymentStatus: b.PaymentStatus,
	}
}
