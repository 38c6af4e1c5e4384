package handlers

import (
	"errors"
	"net/http"

	"kanban_board/internal/domain"

	"github.com/gin-gonic/gin"
)

type ProfilePatch struct {
	IsAdmin *bool `json:"is_admin"`
}

// ListProfiles returns rows as an array. With ?id= the array holds at most one row.
func (h *Handler) ListProfiles(c *gin.Context) {
	ctx := c.Request.Context()
	who := caller(c)

	if id := eqFilter(c.Query("id")); id != "" {
		p, err := h.Profiles.Get(ctx, who, id)
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusOK, []*domain.Profile{})
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, []*domain.Profile{p})
		return
	}

	ascending, ok := parseOrder(c.Query("order"))
	if !ok {
		badRequest(c, "unsupported order")
		return
	}
	list, err := h.Profiles.List(ctx, who, ascending)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req ProfilePatch
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAdmin == nil {
		badRequest(c, "is_admin is required")
		return
	}

	p, err := h.Profiles.SetAdmin(c.Request.Context(), caller(c), c.Param("id"), *req.IsAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProfile(c *gin.Context) {
	if err := h.Profiles.Delete(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
