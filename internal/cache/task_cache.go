// Package cache keeps a read-through copy of single tasks in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"tasktracker/internal/models"
)

type TaskCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTaskCache(client *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{client: client, ttl: ttl}
}

func taskKey(id int) string {
	return fmt.Sprintf("task:%d", id)
}

// Get returns the cached task. ok is false on a miss.
func (c *TaskCache) Get(ctx context.Context, id int) (models.Task, bool, error) {
	raw, err := c.client.Get(ctx, taskKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Task{}, false, nil
	}
	if err != nil {
		return models.Task{}, false, err
	}
	var t models.Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return models.Task{}, false, err
	}
	return t, true, nil
}

func (c *TaskCache) Set(ctx context.Context, t models.Task) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, taskKey(t.ID), raw, c.ttl).Err()
}

func (c *TaskCache) Invalidate(ctx context.Context, id int) error {
	return c.client.Del(ctx, taskKey(id)).Err()
}
