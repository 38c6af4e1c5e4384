package service

import (
	"context"
	"strings"

	"kanban_board/internal/domain"
)

// TaskService enforces task ownership: every operation is scoped to the caller's rows.
type TaskService struct {
	tasks TaskStore
	audit *AuditService
}

func NewTaskService(tasks TaskStore, audit *AuditService) *TaskService {
	return &TaskService{tasks: tasks, audit: audit}
}

// List returns the caller's tasks. Filtering on another user's id yields nothing.
func (s *TaskService) List(ctx context.Context, caller Caller, userID string, ascending bool) ([]*domain.Task, error) {
	if userID == "" {
		userID = caller.UserID
	}
	if userID != caller.UserID {
		return []*domain.Task{}, nil
	}
	return s.tasks.ListByUser(ctx, userID, ascending)
}

// Create inserts a task owned by the caller.
func (s *TaskService) Create(ctx context.Context, caller Caller, t *domain.Task) error {
	if t.UserID == "" {
		t.UserID = caller.UserID
	}
	if t.UserID != caller.UserID {
		return domain.ErrForbidden
	}
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return domain.ErrEmptyTitle
	}
	if t.Status == "" {
		t.Status = domain.StatusUpcoming
	}
	if !t.Status.Valid() {
		return domain.ErrInvalidStatus
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return err
	}
	s.audit.LogTask(ctx, caller, domain.AuditActionTaskCreate, t.ID, map[string]any{"status": string(t.Status)})
	return nil
}

// Update patches one of the caller's tasks.
func (s *TaskService) Update(ctx context.Context, caller Caller, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, domain.ErrEmptyTitle
		}
		patch.Title = &title
	}
	if err := s.owned(ctx, caller, id); err != nil {
		return nil, err
	}

	t, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	details := map[string]any{}
	if patch.Status != nil {
		details["status"] = string(*patch.Status)
	}
	if patch.Title != nil {
		details["title"] = *patch.Title
	}
	s.audit.LogTask(ctx, caller, domain.AuditActionTaskUpdate, id, details)
	return t, nil
}

// Delete removes one of the caller's tasks.
func (s *TaskService) Delete(ctx context.Context, caller Caller, id string) error {
	if err := s.owned(ctx, caller, id); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.LogTask(ctx, caller, domain.AuditActionTaskDelete, id, nil)
	return nil
}

// owned hides other users' rows behind ErrNotFound.
func (s *TaskService) owned(ctx context.Context, caller Caller, id string) error {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.UserID != caller.UserID {
		return domain.ErrNotFound
	}
	return nil
}

