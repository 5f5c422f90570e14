package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Engrjalalkhan/easydoctor/internal/model"
	"github.com/Engrjalalkhan/easydoctor/internal/repository"
	apperrors "github.com/Engrjalalkhan/easydoctor/pkg/errors"
)

// Service gates app entry between "show credential form" and "resume
// prior session". It owns a time-boxed session record in the store and
// never sees raw credentials beyond the single sign-in call.
//
// A Service is constructed per device namespace; the mutex serializes
// session-record writes so two concurrent logins cannot leave two
// divergent records.
type Service struct {
	store   repository.SessionStore
	doctors repository.DoctorRepository
	authn   repository.Authenticator
	ttl     time.Duration
	now     func() time.Time

	mu sync.Mutex
}

type Option func(*Service)

// WithTTL overrides the one-hour session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store repository.SessionStore, doctors repository.DoctorRepository,
	authn repository.Authenticator, opts ...Option) *Service {
	s := &Service{
		store:   store,
		doctors: doctors,
		authn:   authn,
		ttl:     model.SessionTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckResumableSession decides whether the previously logged-in
// doctor may skip the credential form. An expired record is reported
// but left in place untouched; the next login overwrites it. Any store
// trouble degrades to NoSession so app start never blocks on an error
// screen.
func (s *Service) CheckResumableSession(ctx context.Context) (*model.ResumeResult, error) {
	record, ok := s.readRecord(ctx)
	if !ok {
		return &model.ResumeResult{Status: model.ResumeStatusNoSession}, nil
	}

	if s.now().Sub(record.LastLoginAt) >= s.ttl {
		return &model.ResumeResult{Status: model.ResumeStatusExpired}, nil
	}

	doctor, err := s.doctors.GetByEmail(ctx, record.RememberedEmail)
	if errors.Is(err, repository.ErrNotFound) {
		// The remembered email no longer maps to a doctor. Fall back
		// to the credential form quietly instead of failing loudly.
		return &model.ResumeResult{Status: model.ResumeStatusNoSession}, nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("identity lookup failed during session resume")
		return &model.ResumeResult{Status: model.ResumeStatusNoSession}, nil
	}

	return &model.ResumeResult{Status: model.ResumeStatusResumed, Doctor: doctor}, nil
}

// Login verifies credentials and, on success, writes a fresh session
// record. Exactly one authentication attempt is made; retry is the
// caller's decision. Provider error detail is collapsed into the
// invalid-credentials outcome and never reaches the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*model.LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperrors.Validation("email and password are required")
	}

	if err := s.authn.SignIn(ctx, email, password); err != nil {
		if !errors.Is(err, repository.ErrInvalidCredentials) {
			log.Debug().Err(err).Msg("sign-in capability failure collapsed to invalid credentials")
		}
		return &model.LoginResult{Status: model.LoginStatusInvalidCredentials}, nil
	}

	doctor, err := s.doctors.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		// Credential is valid but no profile exists; the caller routes
		// to profile creation, not a retry.
		return &model.LoginResult{Status: model.LoginStatusProfileMissing}, nil
	}
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	if err := s.writeRecord(ctx, email); err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	return &model.LoginResult{Status: model.LoginStatusResumed, Doctor: doctor}, nil
}

// readRecord loads the session record. A record missing either key is
// treated as absent, which is what keeps the both-or-neither invariant
// observable even if a write was torn.
func (s *Service) readRecord(ctx context.Context) (model.SessionRecord, bool) {
	raw, err := s.store.Get(ctx, model.SessionKeyLastLogin)
	if err != nil {
		if !errors.Is(err, repository.ErrKeyNotFound) {
			log.Warn().Err(err).Msg("session store read failed")
		}
		return model.SessionRecord{}, false
	}

	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Warn().Str("lastLoginTime", raw).Msg("malformed session timestamp")
		return model.SessionRecord{}, false
	}

	email, err := s.store.Get(ctx, model.SessionKeyDoctorEmail)
	if err != nil {
		if !errors.Is(err, repository.ErrKeyNotFound) {
			log.Warn().Err(err).Msg("session store read failed")
		}
		return model.SessionRecord{}, false
	}

	return model.SessionRecord{
		LastLoginAt:     time.UnixMilli(millis),
		RememberedEmail: email,
	}, true
}

func (s *Service) writeRecord(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	millis := strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := s.store.Set(ctx, model.SessionKeyLastLogin, millis); err != nil {
		return err
	}
	return s.store.Set(ctx, model.SessionKeyDoctorEmail, email)
}
