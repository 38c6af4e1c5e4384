package handlers

import (
	"net/http"

	"kanban_board/internal/domain"

	"github.com/gin-gonic/gin"
)

type CreateTaskRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

type UpdateTaskRequest struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

func (h *Handler) ListTasks(c *gin.Context) {
	ascending, ok := parseOrder(c.Query("order"))
	if !ok {
		badRequest(c, "unsupported order")
		return
	}

	tasks, err := h.Tasks.List(c.Request.Context(), caller(c), eqFilter(c.Query("user_id")), ascending)
	if err != nil {
		respondError(c, err)
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bad request")
		return
	}

	t := &domain.Task{UserID: req.UserID, Title: req.Title}
	if req.Status != "" {
		st, err := domain.ParseStatus(req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		t.Status = st
	}

	if err := h.Tasks.Create(c.Request.Context(), caller(c), t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bad request")
		return
	}

	patch := domain.TaskPatch{Title: req.Title}
	if req.Status != nil {
		st, err := domain.ParseStatus(*req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		patch.Status = &st
	}

	t, err := h.Tasks.Update(c.Request.Context(), caller(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.Tasks.Delete(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
