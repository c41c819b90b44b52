package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/velmar/taskrelay-api/internal/middleware"
	"github.com/velmar/taskrelay-api/internal/services"
	"github.com/velmar/taskrelay-api/pkg/dto"
)

type TaskHandler struct {
	taskService      TaskServiceInterface
	workspaceService WorkspaceServiceInterface
	streakService    StreakServiceInterface
	registry         RegistryInterface
}

func NewTaskHandler(
	taskService TaskServiceInterface,
	workspaceService WorkspaceServiceInterface,
	streakService StreakServiceInterface,
	registry RegistryInterface,
) *TaskHandler {
	return &TaskHandler{
		taskService:      taskService,
		workspaceService: workspaceService,
		streakService:    streakService,
		registry:         registry,
	}
}

func (h *TaskHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}

	var req dto.CreateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()

	canAccess, err := h.workspaceService.CanAccess(ctx, workspaceID, userID)
	if err != nil || !canAccess {
		c.NotFound("workspace not found")
		return
	}

	task, err := h.taskService.Create(ctx, workspaceID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTitleRequired):
			c.BadRequest("title is required")
		case errors.Is(err, services.ErrInvalidStatus):
			c.BadRequest("invalid status")
		case errors.Is(err, services.ErrInvalidPriority):
			c.BadRequest("invalid priority")
		default:
			c.InternalServerError("failed to create task")
		}
		return
	}

	resp := dto.NewTaskResponse(task)
	h.registry.BroadcastTaskCreated(workspaceID, resp)

	_ = c.JSON(201, resp)
}

func (h *TaskHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}

	ctx := context.Background()

	canAccess, err := h.workspaceService.CanAccess(ctx, workspaceID, userID)
	if err != nil || !canAccess {
		c.NotFound("workspace not found")
		return
	}

	includeArchived := c.QueryParam("include_archived") == "true"

	tasks, err := h.taskService.GetByWorkspace(ctx, workspaceID, includeArchived)
	if err != nil {
		c.InternalServerError("failed to get tasks")
		return
	}

	response := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = dto.NewTaskResponse(&tasks[i])
	}

	_ = c.JSON(200, response)
}

func (h *TaskHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	ctx := context.Background()

	task, err := h.taskService.GetByID(ctx, taskID)
	if err != nil {
		c.NotFound("task not found")
		return
	}

	canAccess, err := h.workspaceService.CanAccess(ctx, task.WorkspaceID, userID)
	if err != nil || !canAccess {
		c.NotFound("task not found")
		return
	}

	_ = c.JSON(200, dto.NewTaskResponse(task))
}

// Update applies a partial update. The write is acknowledged to the database
// first; the streak hook runs when this update completed the task, then the
// event is broadcast, then the caller gets the merged task back.
func (h *TaskHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()

	existing, err := h.taskService.GetByID(ctx, taskID)
	if err != nil {
		c.NotFound("task not found")
		return
	}

	canAccess, err := h.workspaceService.CanAccess(ctx, existing.WorkspaceID, userID)
	if err != nil || !canAccess {
		c.NotFound("task not found")
		return
	}

	task, completed, err := h.taskService.Update(ctx, taskID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			c.NotFound("task not found")
		case errors.Is(err, services.ErrInvalidStatus):
			c.BadRequest("invalid status")
		case errors.Is(err, services.ErrInvalidPriority):
			c.BadRequest("invalid priority")
		default:
			c.InternalServerError("failed to update task")
		}
		return
	}

	if completed {
		if err := h.streakService.TaskCompleted(ctx, userID, time.Now()); err != nil {
			log.Printf("streak update failed for user %s: %v", userID, err)
		}
	}

	resp := dto.NewTaskResponse(task)
	h.registry.BroadcastTaskUpdated(task.WorkspaceID, resp)

	_ = c.JSON(200, resp)
}

// Delete removes a task. Deleting an already-deleted task succeeds without
// broadcasting anything.
func (h *TaskHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}

	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	ctx := context.Background()

	canAccess, err := h.workspaceService.CanAccess(ctx, workspaceID, userID)
	if err != nil || !canAccess {
		c.NotFound("workspace not found")
		return
	}

	found, err := h.taskService.Delete(ctx, taskID)
	if err != nil {
		c.InternalServerError("failed to delete task")
		return
	}

	if found {
		h.registry.BroadcastTaskDeleted(workspaceID, taskID)
	}

	_ = c.JSON(200, map[string]string{"message": "task deleted"})
}
