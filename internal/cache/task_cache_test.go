package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/models"
	"tasktracker/internal/testutil"
)

func TestTaskCache(t *testing.T) {
	client, mr := testutil.NewRedis(t)
	c := NewTaskCache(client, time.Hour)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	assignee := 3
	task := models.Task{
		ID:             1,
		Title:          "Patch server",
		Priority:       models.PriorityHigh,
		Status:         models.StatusOnHold,
		StartDate:      models.NewDate(2025, time.January, 1),
		Deadline:       models.NewDate(2025, time.January, 5),
		AssignedUserID: &assignee,
		Assignee:       &models.UserSummary{ID: 3, Name: "Alice"},
		IsActive:       true,
	}
	require.NoError(t, c.Set(ctx, task))
	assert.Equal(t, time.Hour, mr.TTL("task:1"))

	got, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, task.Title, got.Title)
	assert.Equal(t, task.Deadline, got.Deadline)
	assert.Equal(t, "Alice", got.Assignee.Name)

	require.NoError(t, c.Invalidate(ctx, 1))
	_, ok, err = c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
