package handlers

import (
	"errors"
	"net/http"
	"strings"

	"tasklists/internal/db"
	"tasklists/internal/domain"
	"tasklists/internal/logger"
	"tasklists/internal/repository"
	"tasklists/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	msgInvalidInput       = "Invalid input"
	msgInternal           = "Internal server error"
	msgEmailTaken         = "User with this email already exists"
	msgInvalidCredentials = "Invalid email or password"
	msgNotFound           = "not found"
)

// respondBindError answers a failed ShouldBindJSON with 400 and the
// offending fields.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, gin.H{
				"field": strings.ToLower(fe.Field()),
				"rule":  fe.Tag(),
			})
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidInput, "details": details})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidInput})
}

// respondError maps service and store errors to a status and a fixed
// message. Unknown errors are logged and hidden behind a 500.
func respondError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgEmailTaken})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, service.ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidInput})
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, db.ErrForeignKeyViolation):
		// the parent vanished between the ownership check and the write
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
	default:
		logger.WithContext(c.Request.Context()).Error(op+" failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}
