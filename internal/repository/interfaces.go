package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Engrjalalkhan/easydoctor/internal/model"
)

var (
	// ErrNotFound is returned when a queried record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrKeyNotFound is returned by a session store for an absent key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrInvalidCredentials is returned when a credential check fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// All repository interfaces in one file
type (
	// DoctorRepository resolves doctor identities. Doctors are created
	// by the registration flow; this service only reads them.
	DoctorRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByEmail(ctx context.Context, email string) (*model.Doctor, error)
	}

	// BookingRepository is the document-store capability scoped to
	// bookings: query by owning doctor, delete by id.
	BookingRepository interface {
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Booking, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	// SessionStore is the key-value capability backing the session
	// cache. Get returns ErrKeyNotFound for an absent key.
	// WithNamespace scopes keys to one device, mirroring the
	// device-local storage the mobile client uses.
	SessionStore interface {
		Get(ctx context.Context, key string) (string, error)
		Set(ctx context.Context, key, value string) error
		Delete(ctx context.Context, key string) error
		WithNamespace(ns string) SessionStore
	}

	// Authenticator is the opaque credential-verification capability.
	// A failed check returns ErrInvalidCredentials; transport failures
	// come back as-is and are collapsed by the caller.
	Authenticator interface {
		SignIn(ctx context.Context, email, password string) error
	}
)
