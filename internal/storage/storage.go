// Package storage defines the backend-neutral task store contract shared
// by the SQLite and PostgreSQL implementations.
package storage

import (
	"context"
	"errors"

	"flowdash/internal/models"
)

// ErrTaskNotFound reports that no task row matched the requested id.
var ErrTaskNotFound = errors.New("task not found")

// Draft carries the fields of a task about to be created. The store assigns
// id and timestamps; defaulting of priority/status happens at the API layer.
type Draft struct {
	Title    string
	Content  string
	Priority models.Priority
	Status   models.Status
}

// TaskUpdate describes a partial update. A nil field means "leave the stored
// value alone"; a non-nil field overwrites it. This keeps "field not sent"
// distinct from "field sent empty".
type TaskUpdate struct {
	Title    *string
	Content  *string
	Priority *models.Priority
	Status   *models.Status
}

// Store is the durable task collection.
//
// UpdateTask applies coalesce semantics and returns ErrTaskNotFound when the
// id matches no row. DeleteTask is idempotent: deleting an id that is
// already gone succeeds.
type Store interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, draft Draft) (models.Task, error)
	GetTask(ctx context.Context, id string) (models.Task, error)
	UpdateTask(ctx context.Context, id string, update TaskUpdate) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	Close() error
}
