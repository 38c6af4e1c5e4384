package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailTaken         = errors.New("user already registered")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrMissingFields      = errors.New("please fill in all required fields")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrEmptyTitle         = errors.New("title must not be empty")
)

// MinPasswordLength is enforced on sign-up by both client and server.
const MinPasswordLength = 6

// Wire codes carried in API error bodies so clients can recover the sentinel.
var errorCodes = []struct {
	code string
	err  error
}{
	{"not_found", ErrNotFound},
	{"forbidden", ErrForbidden},
	{"unauthorized", ErrUnauthorized},
	{"invalid_credentials", ErrInvalidCredentials},
	{"email_taken", ErrEmailTaken},
	{"invalid_status", ErrInvalidStatus},
	{"missing_fields", ErrMissingFields},
	{"weak_password", ErrWeakPassword},
	{"empty_title", ErrEmptyTitle},
}

// ErrorCode returns the wire code of the sentinel err wraps, or "" for anything else.
func ErrorCode(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return ""
}

// ErrorForCode is the inverse of ErrorCode.
func ErrorForCode(code string) error {
	for _, e := range errorCodes {
		if e.code == code {
			return e.err
		}
	}
	return nil
}
