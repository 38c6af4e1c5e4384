package service

import (
	"context"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
)

// AuditService handles audit logging
type AuditService struct {
	repo AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// Log creates a new audit log entry. Failures are logged, never returned.
func (s *AuditService) Log(ctx context.Context, caller Caller, action, category string, details map[string]any) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		UserID:    caller.UserID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        caller.IP,
		UserAgent: caller.UserAgent,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "user_id", caller.UserID)
	}
}

// LogAuth logs a sign-up, login, refresh or logout.
func (s *AuditService) LogAuth(ctx context.Context, caller Caller, action string) {
	s.Log(ctx, caller, action, domain.AuditCategoryAuth, nil)
}

// LogTask logs a task mutation.
func (s *AuditService) LogTask(ctx context.Context, caller Caller, action, taskID string, details map[string]any) {
	if details == nil {
		details = make(map[string]any)
	}
	details["task_id"] = taskID
	s.Log(ctx, caller, action, domain.AuditCategoryTask, details)
}

// LogAdminAction logs an admin action
func (s *AuditService) LogAdminAction(ctx context.Context, admin Caller, action, targetUserID string, details map[string]any) {
	if details == nil {
		details = make(map[string]any)
	}
	details["admin_id"] = admin.UserID
	details["target_user_id"] = targetUserID

	s.Log(ctx, admin, action, domain.AuditCategoryAdmin, details)
}

// GetUserAuditLogs returns audit logs for a user
func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByUserID(ctx, userID, clampLimit(limit))
}

// GetRecentLogs returns recent audit logs
func (s *AuditService) GetRecentLogs(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetRecent(ctx, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 500 {
		return 500
	}
	return limit
}
