package realtime

import (
	"net/http"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// TokenVerifier resolves an access token to its user.
type TokenVerifier interface {
	Verify(token string) (domain.AuthUser, error)
}

// Handle upgrades GET /realtime/v1?token=... and subscribes the socket to the
// token owner's auth events.
func Handle(hub *Hub, verifier TokenVerifier, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		user, err := verifier.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("realtime upgrade failed", "error", err)
			return
		}

		client := NewClient(user.ID, conn, hub)
		go client.Run()
	}
}
