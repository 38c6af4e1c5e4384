package handlers

import (
	"errors"
	"net/http"
	"strings"

	"kanban_board/internal/domain"
	"kanban_board/internal/http/middleware"
	"kanban_board/internal/logger"
	"kanban_board/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Auth     *service.AuthService
	Profiles *service.ProfileService
	Tasks    *service.TaskService
	Audit    *service.AuditService
}

func NewHandler(auth *service.AuthService, profiles *service.ProfileService, tasks *service.TaskService, audit *service.AuditService) *Handler {
	return &Handler{Auth: auth, Profiles: profiles, Tasks: tasks, Audit: audit}
}

// caller builds the principal for the request. user_id is empty on public routes.
func caller(c *gin.Context) service.Caller {
	return service.Caller{
		UserID:    c.GetString(middleware.ContextUserID),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// respondError maps domain sentinels to status codes. Anything unknown is a 500
// and its details stay in the server log.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrMissingFields),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrEmptyTitle):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err, "path", c.FullPath(), "method", c.Request.Method)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": domain.ErrorCode(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// eqFilter accepts both "eq.<v>" and a bare value.
func eqFilter(raw string) string {
	return strings.TrimPrefix(raw, "eq.")
}

// parseOrder understands created_at.asc and created_at.desc (the default).
func parseOrder(raw string) (ascending bool, ok bool) {
	switch raw {
	case "", "created_at", "created_at.desc":
		return false, true
	case "created_at.asc":
		return true, true
	default:
		return false, false
	}
}
