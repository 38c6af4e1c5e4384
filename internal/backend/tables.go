package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"kanban_board/internal/domain"
)

func orderParam(ascending bool) string {
	if ascending {
		return "created_at.asc"
	}
	return "created_at.desc"
}

// GetProfile selects the profile with the given id. domain.ErrNotFound when the
// row does not exist yet or is not visible to the caller.
func (c *Client) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	var rows []domain.Profile
	q := url.Values{"id": {"eq." + id}}
	if err := c.do(ctx, http.MethodGet, "/rest/v1/profiles", q, nil, &rows, true); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	return &rows[0], nil
}

func (c *Client) ListProfiles(ctx context.Context, ascending bool) ([]domain.Profile, error) {
	var rows []domain.Profile
	q := url.Values{"order": {orderParam(ascending)}}
	err := c.do(ctx, http.MethodGet, "/rest/v1/profiles", q, nil, &rows, true)
	return rows, err
}

func (c *Client) SetAdmin(ctx context.Context, id string, isAdmin bool) (*domain.Profile, error) {
	var p domain.Profile
	body := map[string]bool{"is_admin": isAdmin}
	if err := c.do(ctx, http.MethodPatch, "/rest/v1/profiles/"+url.PathEscape(id), nil, body, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProfile(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rest/v1/profiles/"+url.PathEscape(id), nil, nil, nil, true)
}

func (c *Client) ListTasks(ctx context.Context, userID string, ascending bool) ([]domain.Task, error) {
	var rows []domain.Task
	q := url.Values{"user_id": {"eq." + userID}, "order": {orderParam(ascending)}}
	err := c.do(ctx, http.MethodGet, "/rest/v1/tasks", q, nil, &rows, true)
	return rows, err
}

// InsertTask stores t and returns the row as the backend saved it.
func (c *Client) InsertTask(ctx context.Context, t domain.Task) (*domain.Task, error) {
	body := map[string]string{"user_id": t.UserID, "title": t.Title, "status": string(t.Status)}
	var out domain.Task
	if err := c.do(ctx, http.MethodPost, "/rest/v1/tasks", nil, body, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	var out domain.Task
	if err := c.do(ctx, http.MethodPatch, "/rest/v1/tasks/"+url.PathEscape(id), nil, patch, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rest/v1/tasks/"+url.PathEscape(id), nil, nil, nil, true)
}

// ListAuditLogs returns the newest entries first. Admin only.
func (c *Client) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	var rows []domain.AuditLog
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	err := c.do(ctx, http.MethodGet, "/rest/v1/audit_logs", q, nil, &rows, true)
	return rows, err
}
