package client

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"flowdash/internal/models"
)

// tasksKey is the single conceptual cache key: the whole task collection.
const tasksKey = "tasks"

// Cache mirrors the server's task collection for a UI. It never mutates
// its snapshot in place: every mutation invalidates the entry and the next
// read refetches full server truth. Mutations issued in quick succession
// are independent requests; whatever order they complete in, the refetch
// triggered by the last invalidation re-reads the server, so the cache
// converges to true server state.
type Cache struct {
	client *Client
	group  singleflight.Group

	mu       sync.Mutex
	tasks    []models.Task
	valid    bool
	loading  bool
	fetchErr error
}

// NewCache builds an empty, stale cache around the given API client.
func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

// Tasks returns the cached collection, refetching from the server when the
// entry is stale. Concurrent calls during a refetch share one request.
func (c *Cache) Tasks(ctx context.Context) ([]models.Task, error) {
	c.mu.Lock()
	if c.valid {
		tasks := c.tasks
		c.mu.Unlock()
		return tasks, nil
	}
	c.loading = true
	c.mu.Unlock()

	v, err, _ := c.group.Do(tasksKey, func() (any, error) {
		return c.client.ListTasks(ctx)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.fetchErr = err
		return nil, err
	}
	c.tasks = v.([]models.Task)
	c.valid = true
	c.fetchErr = nil
	return c.tasks, nil
}

// Snapshot reports the current cache state without touching the network:
// the last fetched collection, whether a fetch is in flight, and the last
// fetch error. A UI renders a loading indicator off the flag and an error
// banner off the error, independently of mutation failures.
func (c *Cache) Snapshot() (tasks []models.Task, loading bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tasks, c.loading, c.fetchErr
}

// Invalidate marks the entry stale so the next read refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}

// Create submits a new task. On success the entry is invalidated; the
// created task is returned for immediate feedback but is not spliced into
// the snapshot.
func (c *Cache) Create(ctx context.Context, draft NewTask) (models.Task, error) {
	task, err := c.client.CreateTask(ctx, draft)
	if err != nil {
		return models.Task{}, err
	}
	c.Invalidate()
	return task, nil
}

// Update applies a partial update and invalidates on success.
func (c *Cache) Update(ctx context.Context, id string, patch TaskPatch) (models.Task, error) {
	task, err := c.client.UpdateTask(ctx, id, patch)
	if err != nil {
		return models.Task{}, err
	}
	c.Invalidate()
	return task, nil
}

// Delete removes a task and invalidates on success.
func (c *Cache) Delete(ctx context.Context, id string) error {
	if err := c.client.DeleteTask(ctx, id); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// ToggleStatus flips a task's completion: done reopens as todo, anything
// else completes. Only the new status travels over the wire.
func (c *Cache) ToggleStatus(ctx context.Context, task models.Task) (models.Task, error) {
	next := task.Status.Toggled()
	return c.Update(ctx, task.ID, TaskPatch{Status: &next})
}
