package handlers

import (
	"net/http"
	"strconv"

	"kanban_board/internal/domain"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs is admin only. ?user_id= narrows to one user.
func (h *Handler) ListAuditLogs(c *gin.Context) {
	ctx := c.Request.Context()
	who := caller(c)

	isAdmin, err := h.Profiles.IsAdmin(ctx, who.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !isAdmin {
		respondError(c, domain.ErrForbidden)
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	var logs []*domain.AuditLog
	if userID := eqFilter(c.Query("user_id")); userID != "" {
		logs, err = h.Audit.GetUserAuditLogs(ctx, userID, limit)
	} else {
		logs, err = h.Audit.GetRecentLogs(ctx, limit)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if logs == nil {
		logs = []*domain.AuditLog{}
	}
	c.JSON(http.StatusOK, logs)
}
