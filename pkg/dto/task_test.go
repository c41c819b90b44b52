package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velmar/taskrelay-api/internal/models"
)

func TestNewTaskResponse(t *testing.T) {
	due := time.Now().Add(24 * time.Hour)
	priority := models.PriorityHigh
	assignee := uuid.New()

	task := &models.Task{
		ID:          uuid.New(),
		WorkspaceID: uuid.New(),
		Title:       "Write the changelog",
		ContentBlocks: []models.ContentBlock{
			{Type: models.BlockHeading1, Text: "Changelog"},
			{Type: models.BlockTodo, Text: "v2 entry", Checked: true},
		},
		Status:     models.StatusInProgress,
		Tags:       []string{"docs"},
		Labels:     []string{"release"},
		Subtasks:   []models.Subtask{{ID: uuid.New(), Title: "Draft", Completed: true}},
		AssigneeID: &assignee,
		DueDate:    &due,
		Priority:   &priority,
		Archived:   false,
		CreatedBy:  uuid.New(),
		CreatedAt:  time.Now().Add(-time.Hour),
		UpdatedAt:  time.Now(),
	}

	resp := NewTaskResponse(task)

	assert.Equal(t, task.ID, resp.ID)
	assert.Equal(t, task.WorkspaceID, resp.WorkspaceID)
	assert.Equal(t, task.Title, resp.Title)
	assert.Equal(t, task.Status, resp.Status)
	assert.Equal(t, task.Tags, resp.Tags)
	assert.Equal(t, task.Labels, resp.Labels)
	assert.Equal(t, task.AssigneeID, resp.AssigneeID)
	assert.Equal(t, task.DueDate, resp.DueDate)
	assert.Equal(t, task.Priority, resp.Priority)
	assert.Equal(t, task.CreatedBy, resp.CreatedBy)

	require.Len(t, resp.ContentBlocks, 2)
	assert.Equal(t, models.BlockHeading1, resp.ContentBlocks[0].Type)
	assert.True(t, resp.ContentBlocks[1].Checked)

	require.Len(t, resp.Subtasks, 1)
	assert.Equal(t, task.Subtasks[0].ID, resp.Subtasks[0].ID)
	assert.True(t, resp.Subtasks[0].Completed)
}

func TestNewTaskResponse_EmptyCollectionsStaySlices(t *testing.T) {
	task := &models.Task{
		ID:          uuid.New(),
		WorkspaceID: uuid.New(),
		Title:       "Bare task",
		Status:      models.StatusTodo,
	}

	resp := NewTaskResponse(task)

	// Empty, not nil, so the JSON payload carries [] rather than null.
	assert.NotNil(t, resp.ContentBlocks)
	assert.NotNil(t, resp.Subtasks)
	assert.Empty(t, resp.ContentBlocks)
	assert.Empty(t, resp.Subtasks)
}
