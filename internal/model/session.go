package model

import "time"

// SessionTTL is how long a cached login may be resumed without
// re-entering credentials.
const SessionTTL = time.Hour

// Session store keys. lastLoginTime holds epoch milliseconds as a
// string, matching what mobile clients already persist.
const (
	SessionKeyLastLogin   = "lastLoginTime"
	SessionKeyDoctorEmail = "doctorEmail"
)

// SessionRecord is the local cache entry written on a successful
// credential check. Both fields are set together or neither is; a
// record with only one of them present reads as absent.
type SessionRecord struct {
	LastLoginAt     time.Time
	RememberedEmail string
}

type ResumeStatus string

const (
	ResumeStatusResumed   ResumeStatus = "resumed"
	ResumeStatusNoSession ResumeStatus = "no_session"
	ResumeStatusExpired   ResumeStatus = "expired"
)

// ResumeResult is the outcome of the app-start session check. Doctor
// is set only when Status is ResumeStatusResumed.
type ResumeResult struct {
	Status ResumeStatus
	Doctor *Doctor
}

type LoginStatus string

const (
	LoginStatusResumed            LoginStatus = "resumed"
	LoginStatusInvalidCredentials LoginStatus = "invalid_credentials"
	LoginStatusProfileMissing     LoginStatus = "profile_missing"
)

// LoginResult is the outcome of a credential login. ProfileMissing is
// distinct from InvalidCredentials: the credential checked out but no
// doctor profile exists, so the caller routes to profile creation
// instead of a retry.
type LoginResult struct {
	Status LoginStatus
	Doctor *Doctor
}
