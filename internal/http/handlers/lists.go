package handlers

import (
	"net/http"

	"tasklists/internal/domain"
	"tasklists/internal/repository"

	"github.com/gin-gonic/gin"
)

type CreateListRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// GetLists returns the caller's lists, oldest first.
func (h *Handler) GetLists(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	q, ok := querier(c)
	if !ok {
		return
	}

	lists, err := repository.NewTaskListRepository(q).GetTaskListsByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "get lists", err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (h *Handler) CreateList(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	q, ok := querier(c)
	if !ok {
		return
	}

	list, err := repository.NewTaskListRepository(q).CreateTaskList(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondError(c, "create list", err)
		return
	}

	h.Events.Publish(userID, domain.Event{Type: domain.EventListCreated, ListID: list.ID, Data: list})
	c.JSON(http.StatusCreated, list)
}

// DeleteList answers 204 whether or not the caller owned the list, so
// other users' ids cannot be probed.
func (h *Handler) DeleteList(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	listID, ok := paramID(c, "id")
	if !ok {
		return
	}
	q, ok := querier(c)
	if !ok {
		return
	}

	deleted, err := repository.NewTaskListRepository(q).DeleteTaskList(c.Request.Context(), listID, userID)
	if err != nil {
		respondError(c, "delete list", err)
		return
	}
	if deleted {
		h.Events.Publish(userID, domain.Event{Type: domain.EventListDeleted, ListID: listID})
	}
	c.Status(http.StatusNoContent)
}
