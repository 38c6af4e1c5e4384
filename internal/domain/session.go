package domain

import "time"

// User metadata keys written at sign-up.
const (
	MetaFirstName = "first_name"
	MetaLastName  = "last_name"
)

// AuthUser is the account attached to a session.
type AuthUser struct {
	ID       string            `json:"id" yaml:"id"`
	Email    string            `json:"email" yaml:"email"`
	Metadata map[string]string `json:"user_metadata,omitempty" yaml:"user_metadata,omitempty"`
}

// Session is an authenticated session as issued by the token endpoint.
type Session struct {
	AccessToken  string    `json:"access_token" yaml:"access_token"`
	RefreshToken string    `json:"refresh_token" yaml:"refresh_token"`
	TokenType    string    `json:"token_type" yaml:"token_type"`
	ExpiresAt    time.Time `json:"expires_at" yaml:"expires_at"`
	User         AuthUser  `json:"user" yaml:"user"`
}

// Expired reports whether the access token should be refreshed before use.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt.Add(-30*time.Second))
}

// AuthEvent names a session change.
type AuthEvent string

const (
	EventInitialSession AuthEvent = "INITIAL_SESSION"
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
	EventUserUpdated    AuthEvent = "USER_UPDATED"
)

// Account is the server-side auth record.
type Account struct {
	ID           string            `db:"id"`
	Email        string            `db:"email"`
	PasswordHash string            `db:"password_hash"`
	Metadata     map[string]string `db:"user_metadata"`
	CreatedAt    time.Time         `db:"created_at"`
}

// AuthUser strips the credentials from the account.
func (a *Account) AuthUser() AuthUser {
	return AuthUser{ID: a.ID, Email: a.Email, Metadata: a.Metadata}
}

// RefreshSession is a stored refresh token.
type RefreshSession struct {
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
	CreatedAt time.Time `db:"created_at"`
}
