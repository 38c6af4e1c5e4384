package domain

import "time"

// AuditLog represents an audit log entry for tracking important actions
type AuditLog struct {
	ID        int64          `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	Action    string         `db:"action" json:"action"`
	Category  string         `db:"category" json:"category"`
	Details   map[string]any `db:"details" json:"details"`
	IP        string         `db:"ip" json:"ip,omitempty"`
	UserAgent string         `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Audit action categories
const (
	AuditCategoryAuth  = "auth"
	AuditCategoryTask  = "task"
	AuditCategoryAdmin = "admin"
)

// Audit actions
const (
	// Auth actions
	AuditActionSignup  = "signup"
	AuditActionLogin   = "login"
	AuditActionLogout  = "logout"
	AuditActionRefresh = "token_refresh"

	// Task actions
	AuditActionTaskCreate = "task_create"
	AuditActionTaskUpdate = "task_update"
	AuditActionTaskDelete = "task_delete"

	// Admin actions
	AuditActionAdminGrant      = "admin_grant"
	AuditActionAdminRevoke     = "admin_revoke"
	AuditActionAdminDeleteUser = "admin_delete_user"
)
