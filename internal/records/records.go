// Package records persists captured sessions as durable business
// records. Type-specific normalization (date parsing, priority
// mapping, assignee defaulting) is this layer's business policy; the
// capture state machine stores raw values only.
package records

import (
	"time"
)

// Record is a persisted capture result.
type Record struct {
	ID          string            `json:"id"`
	LogicalType string            `json:"logical_type"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Fields      map[string]string `json:"fields,omitempty"`
	DueAt       *time.Time        `json:"due_at,omitempty"`
	Priority    string            `json:"priority,omitempty"`
	Assignee    string            `json:"assignee,omitempty"`
	CreatedBy   string            `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ListFilter narrows List results.
type ListFilter struct {
	LogicalType string
	CreatedBy   string
	Limit       int
}
