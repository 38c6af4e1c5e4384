package service

import (
	"context"

	"kanban_board/internal/domain"
)

// The repository package satisfies these; tests use in-memory fakes.

type AccountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}

type SessionStore interface {
	Create(ctx context.Context, s *domain.RefreshSession) error
	Get(ctx context.Context, token string) (*domain.RefreshSession, error)
	Revoke(ctx context.Context, token string) (bool, error)
	RevokeAll(ctx context.Context, userID string) error
}

type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	List(ctx context.Context, ascending bool) ([]*domain.Profile, error)
	SetAdmin(ctx context.Context, id string, isAdmin bool) (*domain.Profile, error)
	Delete(ctx context.Context, id string) error
}

type TaskStore interface {
	ListByUser(ctx context.Context, userID string, ascending bool) ([]*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByUserID(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error)
	GetRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error)
}

// Publisher pushes auth events to a user's connected clients.
type Publisher interface {
	Publish(ctx context.Context, userID string, event domain.AuthEvent) error
}

// Caller is the authenticated principal a request runs as.
type Caller struct {
	UserID    string
	IP        string
	UserAgent string
}
