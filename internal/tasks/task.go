// Package tasks is a small todo-tracking service used to follow up on
// findings. It exposes a JSON API over gin backed by Postgres or memory.
package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxContentLength is the column width of tasks.content
const MaxContentLength = 200

var (
	// ErrNotFound is returned when no task has the requested id
	ErrNotFound = errors.New("task not found")
	// ErrInvalid wraps every validation failure
	ErrInvalid = errors.New("invalid task")
)

// Task is one tracked item
type Task struct {
	ID        int64      `json:"id"`
	Content   string     `json:"content"`
	Notes     *string    `json:"notes"`
	DueDate   *time.Time `json:"due_date"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewTask is the input to Store.Create
type NewTask struct {
	Content string
	Notes   *string
	DueDate *time.Time
}

// Patch is a partial update. Nil fields are left alone; Notes is applied
// whenever NotesSet is true so it can be cleared.
type Patch struct {
	Content   *string
	Completed *bool
	Notes     *string
	NotesSet  bool
}

// ValidateContent trims and checks task content
func ValidateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: content is required", ErrInvalid)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", fmt.Errorf("%w: content exceeds %d characters", ErrInvalid, MaxContentLength)
	}
	return content, nil
}

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDueDate accepts RFC 3339 or an ISO 8601 local time without zone,
// which is taken as UTC. An empty string means no due date.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: due_date %q is not an ISO 8601 timestamp", ErrInvalid, s)
}
