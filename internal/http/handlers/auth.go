package handlers

import (
	"net/http"

	"kanban_board/internal/domain"
	"kanban_board/internal/http/middleware"
	"kanban_board/internal/service"

	"github.com/gin-gonic/gin"
)

type SignUpRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Data     map[string]string `json:"data"`
}

type TokenRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bad request")
		return
	}

	sess, err := h.Auth.SignUp(c.Request.Context(), caller(c), service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Metadata: req.Data,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Token handles grant_type=password and grant_type=refresh_token.
func (h *Handler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bad request")
		return
	}

	var (
		sess *domain.Session
		err  error
	)
	switch c.Query("grant_type") {
	case "password":
		sess, err = h.Auth.SignInWithPassword(c.Request.Context(), caller(c), req.Email, req.Password)
	case "refresh_token":
		sess, err = h.Auth.Refresh(c.Request.Context(), caller(c), req.RefreshToken)
	default:
		badRequest(c, "unsupported grant_type")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Auth.SignOut(c.Request.Context(), caller(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) User(c *gin.Context) {
	u, err := h.Auth.User(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
