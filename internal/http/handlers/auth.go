package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

func (h *Handler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	q, ok := querier(c)
	if !ok {
		return
	}

	user, token, err := h.Accounts.Register(c.Request.Context(), q, req.Email, req.Password)
	if err != nil {
		respondError(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	q, ok := querier(c)
	if !ok {
		return
	}

	user, token, err := h.Accounts.Login(c.Request.Context(), q, req.Email, req.Password)
	if err != nil {
		respondError(c, "login", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}
