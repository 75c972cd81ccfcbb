package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"flowdash/internal/models"
	"flowdash/internal/storage"
)

// Store wraps access to the SQLite database and exposes high level helpers.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            content TEXT NOT NULL DEFAULT '',
            priority TEXT NOT NULL DEFAULT 'medium',
            status TEXT NOT NULL DEFAULT 'todo',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// ListTasks returns every task ordered by creation date, newest first.
func (s *Store) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, content, priority, status, created_at, updated_at
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
// Timestamps are set in Go rather than via CURRENT_TIMESTAMP so creation
// order survives at sub-second resolution.
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

	_, err := s.db.ExecContext(ctx, `INSERT INTO tasks(id, title, content, priority, status, created_at, updated_at)
        VALUES(?, ?, ?, ?, ?, ?, ?)`, t.ID, t.Title, t.Content, t.Priority, t.Status, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	var t models.Task
	err := s.db.QueryRowContext(ctx, `SELECT id, title, content, priority, status, created_at, updated_at
        FROM tasks WHERE id = ?`, id).
		Scan(&t.ID, &t.Title, &t.Content, &t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
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

	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET title = ?, content = ?, priority = ?, status = ?, updated_at = ?
        WHERE id = ?`, next.Title, next.Content, next.Priority, next.Status, next.UpdatedAt, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, storage.ErrTaskNotFound
	}
	return next, nil
}

// DeleteTask removes a task by id. Deleting an id that no longer exists is
// not an error.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
