package service

import (
	"context"
	"errors"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
)

// ProfileService applies the profile row policies: owners and admins read, admins manage.
type ProfileService struct {
	profiles ProfileStore
	sessions SessionStore
	events   Publisher
	audit    *AuditService
}

func NewProfileService(profiles ProfileStore, sessions SessionStore, events Publisher, audit *AuditService) *ProfileService {
	return &ProfileService{profiles: profiles, sessions: sessions, events: events, audit: audit}
}

// IsAdmin reports whether the caller's profile carries the admin flag.
// A caller without a profile row is not an admin.
func (s *ProfileService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	p, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.IsAdmin, nil
}

func (s *ProfileService) requireAdmin(ctx context.Context, caller Caller) error {
	ok, err := s.IsAdmin(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}

// Get returns one profile. Non-admins only see their own row; anything else reads as absent.
func (s *ProfileService) Get(ctx context.Context, caller Caller, id string) (*domain.Profile, error) {
	if id != caller.UserID {
		ok, err := s.IsAdmin(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrNotFound
		}
	}
	return s.profiles.GetByID(ctx, id)
}

// List returns every profile. Non-admins get only their own row.
func (s *ProfileService) List(ctx context.Context, caller Caller, ascending bool) ([]*domain.Profile, error) {
	ok, err := s.IsAdmin(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if ok {
		return s.profiles.List(ctx, ascending)
	}
	p, err := s.profiles.GetByID(ctx, caller.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return []*domain.Profile{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []*domain.Profile{p}, nil
}

// SetAdmin changes the admin flag of a profile and tells the target's clients.
func (s *ProfileService) SetAdmin(ctx context.Context, caller Caller, id string, isAdmin bool) (*domain.Profile, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	p, err := s.profiles.SetAdmin(ctx, id, isAdmin)
	if err != nil {
		return nil, err
	}

	action := domain.AuditActionAdminRevoke
	if isAdmin {
		action = domain.AuditActionAdminGrant
	}
	s.audit.LogAdminAction(ctx, caller, action, id, map[string]any{"is_admin": isAdmin})
	s.publish(ctx, id, domain.EventUserUpdated)
	return p, nil
}

// Delete removes a profile. The database cascades to the account, its sessions and its tasks.
func (s *ProfileService) Delete(ctx context.Context, caller Caller, id string) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	if err := s.sessions.RevokeAll(ctx, id); err != nil {
		return err
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.LogAdminAction(ctx, caller, domain.AuditActionAdminDeleteUser, id, nil)
	s.publish(ctx, id, domain.EventSignedOut)
	return nil
}

func (s *ProfileService) publish(ctx context.Context, userID string, event domain.AuthEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, userID, event); err != nil {
		logger.Warn("failed to publish auth event", "error", err, "user_id", userID, "event", string(event))
	}
}
