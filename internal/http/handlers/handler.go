package handlers

import (
	"net/http"
	"strconv"

	"tasklists/internal/db"
	"tasklists/internal/domain"
	"tasklists/internal/http/middleware"
	"tasklists/internal/service"

	"github.com/gin-gonic/gin"
)

// EventPublisher receives list and task mutations for live subscribers.
type EventPublisher interface {
	Publish(userID int64, ev domain.Event) int
}

type nopPublisher struct{}

func (nopPublisher) Publish(int64, domain.Event) int { return 0 }

type Handler struct {
	Accounts *service.AccountService
	Events   EventPublisher
}

func NewHandler(accounts *service.AccountService, events EventPublisher) *Handler {
	if events == nil {
		events = nopPublisher{}
	}
	return &Handler{Accounts: accounts, Events: events}
}

// querier returns the request's store session. Routes that touch the store
// must run behind middleware.StoreSession.
func querier(c *gin.Context) (db.Querier, bool) {
	sess, ok := middleware.Session(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return sess, true
}

// getUserID reads the id set by middleware.JWT.
func getUserID(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, false
	}
	return id, true
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
