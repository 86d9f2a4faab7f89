package study

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ustawi/core"
)

const (
	TypePomodoro = "pomodoro"
	TypeCustom   = "custom"
	TypePlanned  = "planned"

	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"

	defaultPlannedDuration = 25
	defaultBreakDuration   = 5
)

// TaskRef is the related task as shown with a session.
type TaskRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Session is a block of study time; durations are in minutes.
type Session struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Subject         string     `json:"subject"`
	Duration        int        `json:"duration"`
	PlannedDuration int        `json:"planned_duration"`
	Type            string     `json:"type"`
	Date            time.Time  `json:"date"`       // UTC
	StartTime       time.Time  `json:"start_time"` // UTC
	EndTime         *time.Time `json:"end_time"`   // UTC
	IsCompleted     bool       `json:"is_completed"`
	Productivity    *int       `json:"productivity"`
	Notes           string     `json:"notes"`
	RelatedTaskID   string     `json:"-"`
	RelatedTask     *TaskRef   `json:"related_task"`
	BreakDuration   int        `json:"break_duration"`
	CreatedAt       time.Time  `json:"created_at"` // UTC
	UpdatedAt       time.Time  `json:"updated_at"` // UTC
}

type NewSession struct {
	Subject         string     `json:"subject" validate:"required,max=100"`
	Duration        int        `json:"duration" validate:"required,min=1"`
	PlannedDuration *int       `json:"planned_duration" validate:"omitempty,min=1"`
	Type            string     `json:"type" validate:"omitempty,oneof=pomodoro custom planned"`
	Date            *time.Time `json:"date"`
	StartTime       *time.Time `json:"start_time" validate:"required"`
	EndTime         *time.Time `json:"end_time"`
	IsCompleted     bool       `json:"is_completed"`
	Productivity    *int       `json:"productivity" validate:"omitempty,min=1,max=5"`
	Notes           string     `json:"notes" validate:"max=300"`
	RelatedTaskID   string     `json:"related_task_id" validate:"omitempty,uuid"`
	BreakDuration   *int       `json:"break_duration" validate:"omitempty,min=0"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Subject = core.CleanString(ns.Subject)
	ns.Type = core.CleanString(ns.Type, true /* lower */)
	ns.Notes = core.CleanString(ns.Notes)
	ns.RelatedTaskID = core.CleanString(ns.RelatedTaskID)
	return validate.Struct(ns)
}

// UpdateSession holds the fields to change; nil and empty fields are left untouched.
type UpdateSession struct {
	Subject         string     `json:"subject" validate:"omitempty,max=100"`
	Duration        *int       `json:"duration" validate:"omitempty,min=1"`
	PlannedDuration *int       `json:"planned_duration" validate:"omitempty,min=1"`
	Type            string     `json:"type" validate:"omitempty,oneof=pomodoro custom planned"`
	EndTime         *time.Time `json:"end_time"`
	IsCompleted     *bool      `json:"is_completed"`
	Productivity    *int       `json:"productivity" validate:"omitempty,min=1,max=5"`
	Notes           *string    `json:"notes" validate:"omitempty,max=300"`
	RelatedTaskID   *string    `json:"related_task_id" validate:"omitempty"`
	BreakDuration   *int       `json:"break_duration" validate:"omitempty,min=0"`
}

func (us *UpdateSession) Validate(validate *validator.Validate) error {
	us.Subject = core.CleanString(us.Subject)
	us.Type = core.CleanString(us.Type, true /* lower */)
	if us.Notes != nil {
		notes := core.CleanString(*us.Notes)
		us.Notes = &notes
	}
	if us.RelatedTaskID != nil {
		id := core.CleanString(*us.RelatedTaskID)
		us.RelatedTaskID = &id
	}
	return validate.Struct(us)
}

type QueryFilter struct {
	Since   time.Time // zero for no lower bound
	Subject string
	Type    string
}

type SubjectHours struct {
	Subject string  `json:"subject"`
	Hours   float64 `json:"hours"`
}

type Stats struct {
	TotalSessions       int            `json:"total_sessions"`
	TotalHours          float64        `json:"total_hours"`
	AverageSession      float64        `json:"average_session"` // hours
	SubjectBreakdown    []SubjectHours `json:"subject_breakdown"`
	AverageProductivity float64        `json:"average_productivity"`
	CompletedSessions   int            `json:"completed_sessions"`
}
