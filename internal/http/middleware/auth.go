package middleware

import (
	"net/http"
	"strings"

	"kanban_board/internal/domain"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWT.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextUser   = "auth_user"
)

// TokenVerifier resolves an access token to its user.
type TokenVerifier interface {
	Verify(token string) (domain.AuthUser, error)
}

// JWT requires a valid "Authorization: Bearer <token>" header.
func JWT(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextEmail, user.Email)
		c.Set(ContextUser, user)
		c.Next()
	}
}
