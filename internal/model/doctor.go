package model

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is the identity record created by the registration flow.
// It is read-only to this service; lookups happen by email after
// the credential check succeeds.
type Doctor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Specialty string    `db:"specialty" json:"specialty"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SessionProfile is the only doctor data the rest of the app may rely
// on after a resume or login succeeds.
type SessionProfile struct {
	SpecialtyFilter string `json:"specialtyFilter"`
	ProfileImage    string `json:"profileImage"`
	UserName        string `json:"userName"`
}

func (d *Doctor) Profile() SessionProfile {
	return SessionProfile{
		SpecialtyFilter: d.Specialty,
		ProfileImage:    d.ImageURL,
		UserName:        d.Name,
	}
}
