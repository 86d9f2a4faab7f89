package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ustawi/core"
)

// Statuses
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusSubmitted  = "submitted"
)

const defaultPriority = "medium"

// IsDone reports whether status means the work is finished.
func IsDone(status string) bool {
	return status == StatusCompleted || status == StatusSubmitted
}

// HelpRecord is one question asked to the assistant about an assignment.
type HelpRecord struct {
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"` // UTC
}

type Assignment struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Subject     string       `json:"subject"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     time.Time    `json:"due_date"` // UTC
	Priority    string       `json:"priority"`
	Status      string       `json:"status"`
	AIHelp      []HelpRecord `json:"ai_help"`
	Notes       string       `json:"notes"`
	CompletedAt *time.Time   `json:"completed_at"` // UTC
	CreatedAt   time.Time    `json:"created_at"`   // UTC
	UpdatedAt   time.Time    `json:"updated_at"`   // UTC
}

func (a *Assignment) IsOverdue(now time.Time) bool {
	return !IsDone(a.Status) && a.DueDate.Before(now)
}

func (a *Assignment) IsUpcoming(now time.Time) bool {
	return !IsDone(a.Status) && a.DueDate.After(now)
}

type NewAssignment struct {
	Subject     string     `json:"subject" validate:"required,max=100"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	DueDate     *time.Time `json:"due_date" validate:"required"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status      string     `json:"status" validate:"omitempty,oneof=not_started in_progress completed submitted"`
	Notes       string     `json:"notes" validate:"max=5000"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Subject = core.CleanString(na.Subject)
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Priority = core.CleanString(na.Priority, true /* lower */)
	na.Status = core.CleanString(na.Status, true /* lower */)
	na.Notes = core.CleanString(na.Notes)
	return validate.Struct(na)
}

// UpdateAssignment holds the fields to change; nil and empty fields are left untouched.
type UpdateAssignment struct {
	Subject     string     `json:"subject" validate:"omitempty,max=100"`
	Title       string     `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status      string     `json:"status" validate:"omitempty,oneof=not_started in_progress completed submitted"`
	Notes       *string    `json:"notes" validate:"omitempty,max=5000"`
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate) error {
	ua.Subject = core.CleanString(ua.Subject)
	ua.Title = core.CleanString(ua.Title)
	if ua.Description != nil {
		desc := core.CleanString(*ua.Description)
		ua.Description = &desc
	}
	ua.Priority = core.CleanString(ua.Priority, true /* lower */)
	ua.Status = core.CleanString(ua.Status, true /* lower */)
	if ua.Notes != nil {
		notes := core.CleanString(*ua.Notes)
		ua.Notes = &notes
	}
	return validate.Struct(ua)
}

type StatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=not_started in_progress completed submitted"`
}

type HelpRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type QueryFilter struct {
	Status   string
	Ordering []core.DBOrdering
}

// OrderingFields are the fields assignments may be ordered by.
var OrderingFields = map[string]string{
	"due_date":   "due_date",
	"title":      "title",
	"subject":    "subject",
	"status":     "status",
	"priority":   "priority",
	"created_at": "created_at",
}

var DefaultOrdering = []core.DBOrdering{{Field: "due_date", Ascending: true}}

type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"` // completed or submitted
	InProgress int `json:"in_progress"`
	NotStarted int `json:"not_started"`
	Overdue    int `json:"overdue"`
	Upcoming   int `json:"upcoming"`
}
