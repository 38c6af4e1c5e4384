// Package admin holds the user list shown to administrators.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
)

// Backend is the slice of the backend client admin operations go through.
type Backend interface {
	ListProfiles(ctx context.Context, ascending bool) ([]domain.Profile, error)
	SetAdmin(ctx context.Context, id string, isAdmin bool) (*domain.Profile, error)
	DeleteProfile(ctx context.Context, id string) error
	ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error)
}

type Store struct {
	backend Backend
	log     *slog.Logger

	mu    sync.RWMutex
	users []domain.Profile
}

func NewStore(backend Backend, log *slog.Logger) *Store {
	if log == nil {
		log = logger.Get()
	}
	return &Store{backend: backend, log: log.With("component", "admin")}
}

// Load replaces the list with every profile, newest first.
func (s *Store) Load(ctx context.Context) error {
	users, err := s.backend.ListProfiles(ctx, false)
	if err != nil {
		s.log.Error("failed to fetch users", "error", err)
		return fmt.Errorf("load users: %w", err)
	}
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}

// ToggleAdmin flips the admin flag of a loaded user and returns the new value.
func (s *Store) ToggleAdmin(ctx context.Context, id string) (bool, error) {
	u, err := s.find(id)
	if err != nil {
		return false, err
	}
	next := !u.IsAdmin
	if _, err := s.backend.SetAdmin(ctx, id, next); err != nil {
		s.log.Error("failed to update admin flag", "error", err, "user_id", id)
		return u.IsAdmin, err
	}

	s.mu.Lock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].IsAdmin = next
		}
	}
	s.mu.Unlock()
	return next, nil
}

// Delete removes the user remotely, which cascades to their tasks, then drops the row.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.backend.DeleteProfile(ctx, id); err != nil {
		s.log.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users = append(s.users[:i:i], s.users[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Users() []domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Profile, len(s.users))
	copy(out, s.users)
	return out
}

// Resolve matches a full id, a unique id prefix or an exact email.
func (s *Store) Resolve(ref string) (domain.Profile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Profile{}, domain.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.users {
		if p.ID == ref || strings.EqualFold(p.Email, ref) {
			return p, nil
		}
	}

	var match *domain.Profile
	for i := range s.users {
		p := &s.users[i]
		if strings.HasPrefix(p.ID, ref) {
			if match != nil {
				return domain.Profile{}, fmt.Errorf("user %q is ambiguous", ref)
			}
			match = p
		}
	}
	if match == nil {
		return domain.Profile{}, fmt.Errorf("user %q: %w", ref, domain.ErrNotFound)
	}
	return *match, nil
}

func (s *Store) find(id string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.users {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Profile{}, fmt.Errorf("user %q: %w", id, domain.ErrNotFound)
}

// AuditTrail returns the most recent audit entries.
func (s *Store) AuditTrail(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	logs, err := s.backend.ListAuditLogs(ctx, limit)
	if err != nil {
		s.log.Error("failed to fetch audit logs", "error", err)
		return nil, err
	}
	return logs, nil
}
