package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService owns accounts and sessions: the GoTrue-style half of the backend.
type AuthService struct {
	accounts   AccountStore
	sessions   SessionStore
	jwt        *JWT
	audit      *AuditService
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthService(accounts AccountStore, sessions SessionStore, jwt *JWT, audit *AuditService, refreshTTL time.Duration) *AuthService {
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &AuthService{
		accounts:   accounts,
		sessions:   sessions,
		jwt:        jwt,
		audit:      audit,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// SignUpInput is the payload of the signup endpoint.
type SignUpInput struct {
	Email    string
	Password string
	Metadata map[string]string
}

// SignUp creates the account and signs it in. The profile row is created by the database
// trigger, so it may not be readable the instant this returns.
func (s *AuthService) SignUp(ctx context.Context, caller Caller, in SignUpInput) (*domain.Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, domain.ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrMissingFields)
	}
	if len(in.Password) < domain.MinPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	meta := make(map[string]string, len(in.Metadata))
	for k, v := range in.Metadata {
		meta[k] = strings.TrimSpace(v)
	}
	acc := &domain.Account{Email: email, PasswordHash: string(hash), Metadata: meta}
	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, err
	}

	caller.UserID = acc.ID
	s.audit.LogAuth(ctx, caller, domain.AuditActionSignup)
	logger.Info("account created", "user_id", acc.ID)
	return s.issue(ctx, acc.AuthUser())
}

// SignInWithPassword checks the credentials and issues a new session.
func (s *AuthService) SignInWithPassword(ctx context.Context, caller Caller, email, password string) (*domain.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.ErrMissingFields
	}
	acc, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	caller.UserID = acc.ID
	s.audit.LogAuth(ctx, caller, domain.AuditActionLogin)
	return s.issue(ctx, acc.AuthUser())
}

// Refresh rotates a refresh token: the presented token is revoked and a new pair issued.
func (s *AuthService) Refresh(ctx context.Context, caller Caller, refreshToken string) (*domain.Session, error) {
	if refreshToken == "" {
		return nil, domain.ErrUnauthorized
	}
	rs, err := s.sessions.Get(ctx, refreshToken)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if rs.Revoked || !s.now().Before(rs.ExpiresAt) {
		return nil, domain.ErrUnauthorized
	}
	live, err := s.sessions.Revoke(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, domain.ErrUnauthorized
	}

	acc, err := s.accounts.GetByID(ctx, rs.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	caller.UserID = acc.ID
	s.audit.LogAuth(ctx, caller, domain.AuditActionRefresh)
	return s.issue(ctx, acc.AuthUser())
}

// SignOut revokes every refresh token of the user. Access tokens live until they expire.
func (s *AuthService) SignOut(ctx context.Context, caller Caller) error {
	if err := s.sessions.RevokeAll(ctx, caller.UserID); err != nil {
		return err
	}
	s.audit.LogAuth(ctx, caller, domain.AuditActionLogout)
	return nil
}

// User returns the account behind an access token.
func (s *AuthService) User(ctx context.Context, userID string) (domain.AuthUser, error) {
	acc, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return domain.AuthUser{}, err
	}
	return acc.AuthUser(), nil
}

// Verify parses an access token.
func (s *AuthService) Verify(token string) (domain.AuthUser, error) {
	return s.jwt.Parse(token)
}

func (s *AuthService) issue(ctx context.Context, u domain.AuthUser) (*domain.Session, error) {
	access, exp, err := s.jwt.Generate(u)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	rs := &domain.RefreshSession{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.sessions.Create(ctx, rs); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &domain.Session{
		AccessToken:  access,
		RefreshToken: rs.Token,
		TokenType:    "bearer",
		ExpiresAt:    exp,
		User:         u,
	}, nil
}
