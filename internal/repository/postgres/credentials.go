package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Engrjalalkhan/easydoctor/internal/repository"
	"github.com/Engrjalalkhan/easydoctor/pkg/security"
)

// credentialRepository implements the authentication capability on top
// of a doctor_credentials table. Only the bcrypt hash is stored; the
// session layer above never sees it.
type credentialRepository struct {
	db     *sqlx.DB
	hasher security.PasswordHasher
}

func NewCredentialRepository(db *sqlx.DB, hasher security.PasswordHasher) repository.Authenticator {
	return &credentialRepository{db: db, hasher: hasher}
}

func (r *credentialRepository) SignIn(ctx context.Context, email, password string) error {
	query := `
		SELECT password_hash
		FROM doctor_credentials
		WHERE email = $1
	`
	var hash string
	err := r.db.GetContext(ctx, &hash, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	if err := r.hasher.Compare(hash, password); err != nil {
		return repository.ErrInvalidCredentials
	}
	return nil
}
