package task

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ustawi/core"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"

	StatusCompleted = "completed"
	StatusPending   = "pending"

	defaultEstimatedHours = 1
)

var (
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

	priorityRanks = map[string]int{PriorityLow: 1, PriorityMedium: 2, PriorityHigh: 3, PriorityUrgent: 4}
)

// PriorityRank orders priorities from low (1) to urgent (4).
func PriorityRank(priority string) int {
	return priorityRanks[priority]
}

type Task struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Subject        string     `json:"subject"`
	Priority       string     `json:"priority"`
	DueDate        time.Time  `json:"due_date"` // UTC
	IsCompleted    bool       `json:"is_completed"`
	CompletedAt    *time.Time `json:"completed_at"` // UTC
	EstimatedHours float64    `json:"estimated_hours"`
	ActualHours    float64    `json:"actual_hours"`
	Tags           []string   `json:"tags"`
	CreatedAt      time.Time  `json:"created_at"` // UTC
	UpdatedAt      time.Time  `json:"updated_at"` // UTC
}

// IsOverdue reports whether the task is still open past its due date.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.IsCompleted && t.DueDate.Before(now)
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Title          string     `json:"title" validate:"required,max=200"`
	Description    string     `json:"description" validate:"max=1000"`
	Subject        string     `json:"subject" validate:"required,max=100"`
	Priority       string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate        *time.Time `json:"due_date" validate:"required"`
	EstimatedHours *float64   `json:"estimated_hours" validate:"omitempty,min=0.5,max=50"`
	ActualHours    *float64   `json:"actual_hours" validate:"omitempty,min=0"`
	Tags           []string   `json:"tags" validate:"omitempty,dive,max=50"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	nt.Subject = core.CleanString(nt.Subject)
	nt.Priority = core.CleanString(nt.Priority, true /* lower */)
	nt.Tags = core.CleanStrings(nt.Tags)
	return validate.Struct(nt)
}

// UpdateTask defines what information may be provided to modify an existing Task.
// Zero values leave the stored field untouched.
type UpdateTask struct {
	Title          string     `json:"title" validate:"omitempty,max=200"`
	Description    *string    `json:"description" validate:"omitempty,max=1000"`
	Subject        string     `json:"subject" validate:"omitempty,max=100"`
	Priority       string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate        *time.Time `json:"due_date"`
	IsCompleted    *bool      `json:"is_completed"`
	EstimatedHours *float64   `json:"estimated_hours" validate:"omitempty,min=0.5,max=50"`
	ActualHours    *float64   `json:"actual_hours" validate:"omitempty,min=0"`
	Tags           []string   `json:"tags" validate:"omitempty,dive,max=50"`
}

func (ut *UpdateTask) Validate(validate *validator.Validate) error {
	ut.Title = core.CleanString(ut.Title)
	if ut.Description != nil {
		desc := core.CleanString(*ut.Description)
		ut.Description = &desc
	}
	ut.Subject = core.CleanString(ut.Subject)
	ut.Priority = core.CleanString(ut.Priority, true /* lower */)
	ut.Tags = core.CleanStrings(ut.Tags)
	return validate.Struct(ut)
}

// QueryFilter narrows down a user's tasks.
type QueryFilter struct {
	Status   string // completed | pending
	Subject  string
	Priority string
	Limit    int

	// DueBefore keeps tasks due at or before it, when set.
	DueBefore time.Time
	Ordering  []core.DBOrdering
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Subject = core.CleanString(qf.Subject)
	qf.Priority = core.CleanString(qf.Priority, true /* lower */)
}

// IsCompleted returns the completion state selected by Status, nil for any.
func (qf *QueryFilter) IsCompleted() *bool {
	var done bool
	switch qf.Status {
	case StatusCompleted:
		done = true
	case StatusPending:
		done = false
	default:
		return nil
	}
	return &done
}

// OrderingFields are the fields tasks may be ordered by.
var OrderingFields = map[string]string{
	"due_date":   "due_date",
	"priority":   "priority",
	"title":      "title",
	"subject":    "subject",
	"created_at": "created_at",
}

// DefaultOrdering is applied when no valid ordering is requested.
var DefaultOrdering = []core.DBOrdering{{Field: "due_date", Ascending: true}}

type Stats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	Overdue        int     `json:"overdue"`
	CompletionRate float64 `json:"completion_rate"` // percent, 1 decimal
}
