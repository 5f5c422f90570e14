package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Engrjalalkhan/easydoctor/internal/model"
	"github.com/Engrjalalkhan/easydoctor/internal/repository"
	apperrors "github.com/Engrjalalkhan/easydoctor/pkg/errors"
)

type fakeStore struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", repository.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeStore) WithNamespace(string) repository.SessionStore { return f }

type fakeDoctors struct {
	byEmail map[string]*model.Doctor
	err     error
	calls   int
}

func (f *fakeDoctors) Get(context.Context, uuid.UUID) (*model.Doctor, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeDoctors) GetByEmail(_ context.Context, email string) (*model.Doctor, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}

type fakeAuthn struct {
	err   error
	calls int
}

func (f *fakeAuthn) SignIn(context.Context, string, string) error {
	f.calls++
	return f.err
}

func testDoctor(email string) *model.Doctor {
	return &model.Doctor{
		ID:        uuid.New(),
		Email:     email,
		Name:      "Dr. Ayesha Khan",
		Specialty: "Cardiologist",
		ImageURL:  "https://example.com/ayesha.png",
	}
}

func seedRecord(store *fakeStore, at time.Time, email string) {
	store.data[model.SessionKeyLastLogin] = strconv.FormatInt(at.UnixMilli(), 10)
	store.data[model.SessionKeyDoctorEmail] = email
}

func TestCheckResumableSession_NoRecord(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeDoctors{}, &fakeAuthn{})

	result, err := svc.CheckResumableSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ResumeStatusNoSession, result.Status)
	assert.Nil(t, result.Doctor)
}

func TestCheckResumableSession_FreshRecord(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	seedRecord(store, now.Add(-30*time.Minute), "ayesha@example.com")
	doctors := &fakeDoctors{byEmail: map[string]*model.Doctor{
		"ayesha@example.com": testDoctor("ayesha@example.com"),
	}}
	svc := NewService(store, doctors, &fakeAuthn{}, WithClock(func() time.Time { return now }))

	result, err := svc.CheckResumableSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ResumeStatusResumed, result.Status)
	require.NotNil(t, result.Doctor)
	assert.Equal(t, "ayesha@example.com", result.Doctor.Email)
}

func TestCheckResumableSession_Expired(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	seedRecord(store, now.Add(-2*time.Hour), "ayesha@example.com")
	before := map[string]string{}
	for k, v := range store.data {
		before[k] = v
	}
	svc := NewService(store, &fakeDoctors{}, &fakeAuthn{}, WithClock(func() time.Time { return now }))

	result, err := svc.CheckResumableSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ResumeStatusExpired, result.Status)
	// The expired record stays in place until the next login overwrites it.
	assert.Equal(t, before, store.data)
}

func TestCheckResumableSession_ExactTTLIsExpired(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	seedRecord(store, now.Add(-time.Hour), "ayesha@example.com")
	svc := NewService(store, &fakeDoctors{}, &fakeAuthn{}, WithClock(func() time.Time { return now }))

	result, err := svc.CheckResumableSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ResumeStatusExpired, result.Status)
}

func TestCheckResumableSession_CustomTTL(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	seedRecord(store, now.Add(-45*time.Minute), "ayesha@example.com")
	svc := NewService(store, &fakeDoctors{}, &fakeAuthn{},
		WithTTL(30*time.Minute), WithClock(func() time.Time { return now }))

	result, err := svc.CheckResumableSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ResumeStatusExpired, result.Status)
}

func TestCheckResumableSession_MalformedTimestamp(t *testing.T) {
	store := newFakeStore()
	store.data[model.SessionKeyLastLogin] = "not-a-number"
	store.data[model.SessionKeyDoctorEmail] = "ayesha@example.com"
	doctors := &fakeDoctors{}
	svc := NewService(store, doctors, &fakeAuthn{})

	result, err := svc.CheckResumableSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ResumeStatusNoSession, result.Status)
	assert.Zero(t, doctors.calls)
}

func TestCheckResumableSession_TornRecordReadsAsAbsent(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	store.data[model.SessionKeyLastLogin] = strconv.FormatInt(now.UnixMilli(), 10)
	svc := NewService(store, &fakeDoctors{}, &fakeAuthn{}, WithClock(func() time.Time { return now }))

	result, err := svc.CheckResumableSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ResumeStatusNoSession, result.Status)
}

func TestCheckResumableSession_UnknownEmailFallsBack(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	seedRecord(store, now.Add(-10*time.Minute), "gone@example.com")
	svc := NewService(store, &fakeDoctors{}, &fakeAuthn{}, WithClock(func() time.Time { return now }))

	result, err := svc.CheckResumableSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ResumeStatusNoSession, result.Status)
}

func TestCheckResumableSession_StoreFailureDegradesToNoSession(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	svc := NewService(store, &fakeDoctors{}, &fakeAuthn{})

	result, err := svc.CheckResumableSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ResumeStatusNoSession, result.Status)
}

func TestLogin_EmptyFieldsRejectedBeforeAnyCall(t *testing.T) {
	authn := &fakeAuthn{}
	doctors := &fakeDoctors{}
	svc := NewService(newFakeStore(), doctors, authn)

	for _, tc := range []struct{ email, password string }{
		{"", "secret-pass"},
		{"ayesha@example.com", ""},
		{"", ""},
	} {
		result, err := svc.Login(context.Background(), tc.email, tc.password)
		assert.Nil(t, result)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	}
	assert.Zero(t, authn.calls)
	assert.Zero(t, doctors.calls)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	store := newFakeStore()
	authn := &fakeAuthn{err: repository.ErrInvalidCredentials}
	svc := NewService(store, &fakeDoctors{}, authn)

	result, err := svc.Login(context.Background(), "ayesha@example.com", "wrong-pass")
	require.NoError(t, err)
	assert.Equal(t, model.LoginStatusInvalidCredentials, result.Status)
	assert.Nil(t, result.Doctor)
	assert.Empty(t, store.data)
}

func TestLogin_ProviderFailureCollapsesToInvalidCredentials(t *testing.T) {
	authn := &fakeAuthn{err: errors.New("identity provider timeout")}
	svc := NewService(newFakeStore(), &fakeDoctors{}, authn)

	result, err := svc.Login(context.Background(), "ayesha@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, model.LoginStatusInvalidCredentials, result.Status)
	assert.Equal(t, 1, authn.calls)
}

func TestLogin_ProfileMissing(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeDoctors{}, &fakeAuthn{})

	result, err := svc.Login(context.Background(), "new@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, model.LoginStatusProfileMissing, result.Status)
	assert.Empty(t, store.data, "no session record without a profile")
}

func TestLogin_ProfileLookupFailure(t *testing.T) {
	doctors := &fakeDoctors{err: errors.New("db down")}
	svc := NewService(newFakeStore(), doctors, &fakeAuthn{})

	result, err := svc.Login(context.Background(), "ayesha@example.com", "secret-pass")
	assert.Nil(t, result)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrStoreUnavailable, appErr.Code)
	assert.True(t, appErr.Retriable)
}

func TestLogin_Success(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	doctors := &fakeDoctors{byEmail: map[string]*model.Doctor{
		"ayesha@example.com": testDoctor("ayesha@example.com"),
	}}
	svc := NewService(store, doctors, &fakeAuthn{}, WithClock(func() time.Time { return now }))

	result, err := svc.Login(context.Background(), "ayesha@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, model.LoginStatusResumed, result.Status)
	require.NotNil(t, result.Doctor)

	assert.Equal(t, strconv.FormatInt(now.UnixMilli(), 10), store.data[model.SessionKeyLastLogin])
	assert.Equal(t, "ayesha@example.com", store.data[model.SessionKeyDoctorEmail])
}

func TestLogin_OverwritesExpiredRecord(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	seedRecord(store, now.Add(-3*time.Hour), "old@example.com")
	doctors := &fakeDoctors{byEmail: map[string]*model.Doctor{
		"ayesha@example.com": testDoctor("ayesha@example.com"),
	}}
	svc := NewService(store, doctors, &fakeAuthn{}, WithClock(func() time.Time { return now }))

	_, err := svc.Login(context.Background(), "ayesha@example.com", "secret-pass")
	require.NoError(t, err)

	result, err := svc.CheckResumableSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ResumeStatusResumed, result.Status)
}

func TestLogin_StoreWriteFailure(t *testing.T) {
	store := newFakeStore()
	store.setErr = errors.New("disk full")
	doctors := &fakeDoctors{byEmail: map[string]*model.Doctor{
		"ayesha@example.com": testDoctor("ayesha@example.com"),
	}}
	svc := NewService(store, doctors, &fakeAuthn{})

	result, err := svc.Login(context.Background(), "ayesha@example.com", "secret-pass")
	assert.Nil(t, result)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrStoreUnavailable, appErr.Code)
}

func TestLogin_ConcurrentLoginsLeaveConsistentRecord(t *testing.T) {
	store := newFakeStore()
	doctors := &fakeDoctors{byEmail: map[string]*model.Doctor{
		"a@example.com": testDoctor("a@example.com"),
		"b@example.com": testDoctor("b@example.com"),
	}}
	svc := NewService(store, doctors, &fakeAuthn{})

	var wg sync.WaitGroup
	for _, email := range []string{"a@example.com", "b@example.com"} {
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			_, err := svc.Login(context.Background(), email, "secret-pass")
			assert.NoError(t, err)
		}(email)
	}
	wg.Wait()

	// Whichever login won, both keys must describe the same login.
	email := store.data[model.SessionKeyDoctorEmail]
	assert.Contains(t, []string{"a@example.com", "b@example.com"}, email)
	_, err := strconv.ParseInt(store.data[model.SessionKeyLastLogin], 10, 64)
	assert.NoError(t, err)
}
