package models

import (
	"fmt"
	"time"
)

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Status tracks where a task sits in its lifecycle.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Task represents a single unit of work on the dashboard.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Priority  Priority  `json:"priority"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ParsePriority validates a wire value against the known priorities.
func ParsePriority(raw string) (Priority, error) {
	switch p := Priority(raw); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("unknown priority %q", raw)
}

// ParseStatus validates a wire value against the known statuses.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusTodo, StatusInProgress, StatusDone:
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// Toggled returns the status a completion toggle moves to: done tasks
// reopen as todo, everything else completes.
func (s Status) Toggled() Status {
	if s == StatusDone {
		return StatusTodo
	}
	return StatusDone
}
