package middleware

import (
	"net/http"

	"tasklists/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
)

// JWT requires an "Authorization: Bearer <token>" header and stores the
// caller's id in the gin context. Any failure is a uniform 401.
func JWT(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := service.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, ok := auth.VerifyToken(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Next()
	}
}

// UserID returns the id stored by JWT.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
