// Package postgres implements the task store on a PostgreSQL pool. It is
// selected when a database URL is configured; the SQLite backend remains
// the default.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"flowdash/internal/models"
	"flowdash/internal/storage"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// Open connects to PostgreSQL, verifies the connection and runs migrations.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("empty database url")
	}

	if logger == nil {
		logger = slog.Default()
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool, logger: logger}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS tasks (
        id TEXT PRIMARY KEY,
        title TEXT NOT NULL,
        content TEXT NOT NULL DEFAULT '',
        priority TEXT NOT NULL DEFAULT 'medium',
        status TEXT NOT NULL DEFAULT 'todo',
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// ListTasks returns every task ordered by creation date, newest first.
func (s *Store) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, title, content, priority, status, created_at, updated_at
        FROM tasks ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Content, &t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateTask inserts a new task, assigning its id and timestamps.
func (s *Store) CreateTask(ctx context.Context, draft storage.Draft) (models.Task, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return models.Task{}, fmt.Errorf("task title must not be empty")
	}

	now := time.Now().UTC()
	t := models.Task{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(draft.Title),
		Content:   draft.Content,
		Priority:  draft.Priority,
		Status:    draft.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.pool.Exec(ctx, `INSERT INTO tasks(id, title, content, priority, status, created_at, updated_at)
        VALUES($1, $2, $3, $4, $5, $6, $7)`, t.ID, t.Title, t.Content, t.Priority, t.Status, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	var t models.Task
	err := s.pool.QueryRow(ctx, `SELECT id, title, content, priority, status, created_at, updated_at
        FROM tasks WHERE id = $1`, id).
		Scan(&t.ID, &t.Title, &t.Content, &t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, storage.ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// UpdateTask merges the provided fields over the stored row and bumps
// updated_at. Omitted fields keep their previous value.
func (s *Store) UpdateTask(ctx context.Context, id string, update storage.TaskUpdate) (models.Task, error) {
	current, err := s.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	next := current
	if update.Title != nil {
		next.Title = strings.TrimSpace(*update.Title)
	}
	if update.Content != nil {
		next.Content = *update.Content
	}
	if update.Priority != nil {
		next.Priority = *update.Priority
	}
	if update.Status != nil {
		next.Status = *update.Status
	}
	next.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx, `UPDATE tasks SET title = $1, content = $2, priority = $3, status = $4, updated_at = $5
        WHERE id = $6`, next.Title, next.Content, next.Priority, next.Status, next.UpdatedAt, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Task{}, storage.ErrTaskNotFound
	}
	return next, nil
}

// DeleteTask removes a task by id. Deleting an id that no longer exists is
// not an error.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
