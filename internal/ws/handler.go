package ws

import (
	"net/http"

	"tasklists/internal/logger"
	"tasklists/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades an authenticated request and streams the user's
// events. Browsers cannot set headers on websocket requests, so the token
// travels in the query string.
func HandleWS(hub *Hub, auth *service.AuthService, allowedOrigin string) gin.HandlerFunc {
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

		claims, ok := auth.VerifyToken(token)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "user_id", claims.UserID, "error", err)
			return
		}

		client := NewClient(claims.UserID, conn, hub)
		go client.Run()
	}
}
