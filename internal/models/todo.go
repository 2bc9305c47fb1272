package models

import (
	"time"
)

// Todo statuses
const (
	TodoStatusPending    = "pending"
	TodoStatusInProgress = "in_progress"
	TodoStatusCompleted  = "completed"
)

// Todo is a to-do record supplied by the external CRUD layer for indexing
type Todo struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Priority    int        `json:"priority"` // 1 = low, 2 = medium, 3 = high
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PriorityLabel returns a human-readable priority for the searchable text
func (t *Todo) PriorityLabel() string {
	switch t.Priority {
	case 3:
		return "high"
	case 2:
		return "medium"
	case 1:
		return "low"
	default:
		return "unspecified"
	}
}

// StatusLabel returns a human-readable status for the searchable text
func (t *Todo) StatusLabel() string {
	switch t.Status {
	case TodoStatusPending:
		return "pending"
	case TodoStatusInProgress:
		return "in progress"
	case TodoStatusCompleted:
		return "completed"
	default:
		return t.Status
	}
}

// TodoHit is a todos search result flattened for external callers
type TodoHit struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	Status  string  `json:"status"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}
