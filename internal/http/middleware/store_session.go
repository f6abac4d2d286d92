package middleware

import (
	"net/http"

	"tasklists/internal/db"
	"tasklists/internal/logger"

	"github.com/gin-gonic/gin"
)

const ctxSession = "store_session"

// StoreSession attaches a lazily acquired store session to the request and
// releases it when the handler chain returns, including on panic. Handlers
// that never run a statement never take a connection.
func StoreSession(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store.Closed() {
			logger.WithContext(c.Request.Context()).Error("acquire store session", "error", db.ErrStoreUnavailable)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		sess := store.Lazy()
		defer sess.Release()

		c.Set(ctxSession, sess)
		c.Next()
	}
}

// Session returns the request's store session.
func Session(c *gin.Context) (*db.LazySession, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*db.LazySession)
	return sess, ok
}
