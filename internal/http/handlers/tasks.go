package handlers

import (
	"net/http"

	"tasklists/internal/db"
	"tasklists/internal/domain"
	"tasklists/internal/repository"

	"github.com/gin-gonic/gin"
)

type CreateTaskRequest struct {
	Title       string            `json:"title" binding:"required,max=500"`
	Description *string           `json:"description"`
	DueDate     *string           `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Status      domain.TaskStatus `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
}

type UpdateTaskRequest struct {
	Title       *string            `json:"title" binding:"omitempty,max=500"`
	Description *string            `json:"description"`
	DueDate     *string            `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Status      *domain.TaskStatus `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
}

// ownedList resolves the :id list for the caller, answering 404 when it
// does not exist or belongs to someone else.
func ownedList(c *gin.Context, q db.Querier, userID int64) (*domain.TaskList, bool) {
	listID, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	list, err := repository.NewTaskListRepository(q).GetTaskList(c.Request.Context(), listID, userID)
	if err != nil {
		respondError(c, "get list", err)
		return nil, false
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "list not found"})
		return nil, false
	}
	return list, true
}

func (h *Handler) GetTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	q, ok := querier(c)
	if !ok {
		return
	}
	list, ok := ownedList(c, q, userID)
	if !ok {
		return
	}

	tasks, err := repository.NewTaskRepository(q).GetTasksByListID(c.Request.Context(), list.ID)
	if err != nil {
		respondError(c, "get tasks", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	q, ok := querier(c)
	if !ok {
		return
	}
	list, ok := ownedList(c, q, userID)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := repository.NewTaskRepository(q).CreateTask(c.Request.Context(), list.ID, domain.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, "create task", err)
		return
	}

	h.Events.Publish(userID, domain.Event{Type: domain.EventTaskCreated, ListID: list.ID, TaskID: task.ID, Data: task})
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	in := domain.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
	}
	if in.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidInput})
		return
	}
	q, ok := querier(c)
	if !ok {
		return
	}

	repo := repository.NewTaskRepository(q)
	ctx := c.Request.Context()

	existing, err := repo.GetTaskForUser(ctx, taskID, userID)
	if err != nil {
		respondError(c, "get task", err)
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	task, err := repo.UpdateTask(ctx, taskID, in)
	if err != nil {
		respondError(c, "update task", err)
		return
	}

	h.Events.Publish(userID, domain.Event{Type: domain.EventTaskUpdated, ListID: task.ListID, TaskID: task.ID, Data: task})
	c.JSON(http.StatusOK, task)
}

// DeleteTask answers 204 for missing and foreign tasks alike.
func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	q, ok := querier(c)
	if !ok {
		return
	}

	repo := repository.NewTaskRepository(q)
	ctx := c.Request.Context()

	existing, err := repo.GetTaskForUser(ctx, taskID, userID)
	if err != nil {
		respondError(c, "get task", err)
		return
	}
	if existing == nil {
		c.Status(http.StatusNoContent)
		return
	}

	deleted, err := repo.DeleteTask(ctx, taskID)
	if err != nil {
		respondError(c, "delete task", err)
		return
	}
	if deleted {
		h.Events.Publish(userID, domain.Event{Type: domain.EventTaskDeleted, ListID: existing.ListID, TaskID: taskID})
	}
	c.Status(http.StatusNoContent)
}
