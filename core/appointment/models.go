package appointment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/user"
)

// Statuses
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

const (
	LocationInPerson = "in-person"

	defaultDuration = 60
)

var (
	Types    = []string{"academic", "personal", "crisis", "career"}
	Statuses = []string{StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled, StatusNoShow}
)

// IsFinal reports whether an appointment in status may no longer change.
func IsFinal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// Party is a participant as shown with an appointment.
type Party struct {
	ID              string   `json:"id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email"`
	Year            *int     `json:"year,omitempty"`
	Major           string   `json:"major,omitempty"`
	Specializations []string `json:"specializations,omitempty"`
}

func newParty(usr user.User) *Party {
	return &Party{
		ID:              usr.ID,
		FirstName:       usr.FirstName,
		LastName:        usr.LastName,
		Email:           usr.Email,
		Year:            usr.Year,
		Major:           usr.Major,
		Specializations: usr.Specializations,
	}
}

// Counselor is a counselor students may book.
type Counselor struct {
	ID              string   `json:"id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Specializations []string `json:"specializations"`
}

type Appointment struct {
	ID               string     `json:"id"`
	StudentID        string     `json:"student_id"`
	CounselorID      string     `json:"counselor_id"`
	Type             string     `json:"type"`
	PreferredDate    time.Time  `json:"preferred_date"` // UTC
	ScheduledDate    *time.Time `json:"scheduled_date"` // UTC
	Duration         int        `json:"duration"`       // minutes
	Status           string     `json:"status"`
	Description      string     `json:"description"`
	CounselorNotes   string     `json:"counselor_notes"`
	IsUrgent         bool       `json:"is_urgent"`
	Location         string     `json:"location"`
	MeetingLink      string     `json:"meeting_link"`
	FollowUpRequired bool       `json:"follow_up_required"`
	CreatedAt        time.Time  `json:"created_at"` // UTC
	UpdatedAt        time.Time  `json:"updated_at"` // UTC

	Student   *Party `json:"student,omitempty"`
	Counselor *Party `json:"counselor,omitempty"`
}

// NewAppointment is a student's booking request.
type NewAppointment struct {
	CounselorID   string     `json:"counselor_id" validate:"required"`
	Type          string     `json:"type" validate:"required,oneof=academic personal crisis career"`
	PreferredDate *time.Time `json:"preferred_date" validate:"required"`
	Description   string     `json:"description" validate:"max=500"`
	IsUrgent      bool       `json:"is_urgent"`
	Duration      int        `json:"duration" validate:"omitempty,oneof=30 60 90"`
	Location      string     `json:"location" validate:"omitempty,oneof=in-person virtual phone"`
}

func (na *NewAppointment) Validate(validate *validator.Validate) error {
	na.CounselorID = core.CleanString(na.CounselorID)
	na.Type = core.CleanString(na.Type, true /* lower */)
	na.Description = core.CleanString(na.Description)
	na.Location = core.CleanString(na.Location, true /* lower */)
	return validate.Struct(na)
}

// StatusUpdate is a counselor's decision on an appointment.
type StatusUpdate struct {
	Status           string     `json:"status" validate:"required,oneof=pending approved rejected completed cancelled no-show"`
	ScheduledDate    *time.Time `json:"scheduled_date"`
	CounselorNotes   string     `json:"counselor_notes" validate:"max=1000"`
	MeetingLink      string     `json:"meeting_link" validate:"omitempty,url,max=500"`
	FollowUpRequired *bool      `json:"follow_up_required"`
}

func (su *StatusUpdate) Validate(validate *validator.Validate) error {
	su.Status = core.CleanString(su.Status, true /* lower */)
	su.CounselorNotes = core.CleanString(su.CounselorNotes)
	su.MeetingLink = core.CleanString(su.MeetingLink)
	return validate.Struct(su)
}

type QueryFilter struct {
	// ParticipantID keeps the appointments where it is the student or the counselor.
	ParticipantID string
	CounselorID   string
	Status        string
	// ScheduledFrom keeps the appointments scheduled at or after it, when set.
	ScheduledFrom time.Time
	Limit         int
}

type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Urgent    int `json:"urgent"`
}
