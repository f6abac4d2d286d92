package handlers

import (
	"net/http"

	"tasklists/internal/repository"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	q, ok := querier(c)
	if !ok {
		return
	}

	user, err := repository.NewUserRepository(q).FindUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "me", err)
		return
	}
	if user == nil {
		// token outlived its account
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}
