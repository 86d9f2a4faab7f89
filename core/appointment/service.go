// Package appointment books counseling sessions between students and counselors.
package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/user"
)

const DefaultLimit = 20

var (
	ErrNotFound          = core.NewNotFoundError("appointment not found")
	ErrCounselorNotFound = core.NewNotFoundError("counselor not found")

	errPastPreferredDate = core.NewValidationError(nil, core.FieldError{Field: "preferred_date", Error: "preferred_date must not be in the past"})
	errCancelCompleted   = core.NewValidationError(errors.New("Cannot cancel completed appointment"))
)

var statusChangesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "ustawi",
		Subsystem: "appointment",
		Name:      "status_changes_total",
		Help:      "Appointment status changes, by new status.",
	},
	[]string{"status"},
)

// RegisterMetrics registers the appointment collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(statusChangesTotal)
}

type (
	Repository interface {
		// Query returns the matching appointments: scheduled first by date (unscheduled first), then newest first.
		Query(ctx context.Context, filter QueryFilter) ([]Appointment, error)
		GetByID(ctx context.Context, id string) (Appointment, error)
		Create(ctx context.Context, appt Appointment) (Appointment, error)
		Update(ctx context.Context, appt Appointment) (Appointment, error)
	}

	// Directory looks up the people appointments are booked between.
	Directory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
		Query(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error)
	}

	ServiceInterface interface {
		Query(ctx context.Context, viewerID, status string, upcoming bool, limit int) ([]Appointment, error)
		Counselors(ctx context.Context, specialization string) ([]Counselor, error)
		Request(ctx context.Context, studentID string, na NewAppointment) (Appointment, error)
		SetStatus(ctx context.Context, id, counselorID string, su StatusUpdate) (Appointment, error)
		Cancel(ctx context.Context, id, viewerID string) (Appointment, error)
		Stats(ctx context.Context, counselorID string) (Stats, error)
	}

	Service struct {
		repo     Repository
		users    Directory
		validate *validator.Validate
		clock    clockwork.Clock
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, users Directory, validate *validator.Validate, clock clockwork.Clock) *Service {
	return &Service{repo: repo, users: users, validate: validate, clock: clock}
}

func (svc *Service) now() time.Time {
	return svc.clock.Now().UTC()
}

// Query returns the appointments the viewer takes part in, as student or as counselor.
// With upcoming, only the appointments scheduled from now on are kept.
func (svc *Service) Query(ctx context.Context, viewerID, status string, upcoming bool, limit int) ([]Appointment, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	filter := QueryFilter{
		ParticipantID: viewerID,
		Status:        core.CleanString(status, true /* lower */),
		Limit:         limit,
	}
	if upcoming {
		filter.ScheduledFrom = svc.now()
	}

	appts, err := svc.repo.Query(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying appointments")
	}
	for i := range appts {
		svc.populate(ctx, &appts[i])
	}
	return appts, nil
}

// Counselors lists the active counselors by first name, optionally keeping those with specialization.
func (svc *Service) Counselors(ctx context.Context, specialization string) ([]Counselor, error) {
	isActive := true
	users, err := svc.users.Query(
		ctx,
		&user.QueryFilter{Roles: user.CounselorRoles, IsActive: &isActive},
		[]core.DBOrdering{{Field: "first_name", Ascending: true}},
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying counselors")
	}

	specialization = core.CleanString(specialization, true /* lower */)
	counselors := make([]Counselor, 0, len(users))
	for _, usr := range users {
		if specialization != "" && !hasSpecialization(usr, specialization) {
			continue
		}
		specs := usr.Specializations
		if specs == nil {
			specs = []string{}
		}
		counselors = append(counselors, Counselor{
			ID:              usr.ID,
			FirstName:       usr.FirstName,
			LastName:        usr.LastName,
			Specializations: specs,
		})
	}
	return counselors, nil
}

// Request books a pending appointment with an active counselor.
func (svc *Service) Request(ctx context.Context, studentID string, na NewAppointment) (Appointment, error) {
	if err := na.Validate(svc.validate); err != nil {
		return Appointment{}, err
	}

	now := svc.now()
	if na.PreferredDate.Before(now) {
		return Appointment{}, errPastPreferredDate
	}
	counselor, err := svc.users.GetByID(ctx, na.CounselorID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Appointment{}, ErrCounselorNotFound
		}
		return Appointment{}, errors.Wrap(err, "getting counselor")
	}
	if !counselor.IsActive || !counselor.IsCounselor() {
		return Appointment{}, ErrCounselorNotFound
	}

	appt := Appointment{
		ID:            uuid.New().String(),
		StudentID:     studentID,
		CounselorID:   counselor.ID,
		Type:          na.Type,
		PreferredDate: na.PreferredDate.UTC(),
		Duration:      na.Duration,
		Status:        StatusPending,
		Description:   na.Description,
		IsUrgent:      na.IsUrgent,
		Location:      na.Location,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if appt.Duration == 0 {
		appt.Duration = defaultDuration
	}
	if appt.Location == "" {
		appt.Location = LocationInPerson
	}

	if appt, err = svc.repo.Create(ctx, appt); err != nil {
		return Appointment{}, errors.Wrap(err, "creating appointment")
	}
	statusChangesTotal.WithLabelValues(appt.Status).Inc()
	appt.Counselor = newParty(counselor)
	return appt, nil
}

// SetStatus applies the counselor's decision. Approving without a scheduled date schedules the preferred date.
// Completed and cancelled appointments are final.
func (svc *Service) SetStatus(ctx context.Context, id, counselorID string, su StatusUpdate) (Appointment, error) {
	if err := su.Validate(svc.validate); err != nil {
		return Appointment{}, err
	}

	appt, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if appt.CounselorID != counselorID {
		return Appointment{}, ErrNotFound
	}
	if IsFinal(appt.Status) {
		return Appointment{}, core.NewValidationError(errors.Errorf("appointment is already %s", appt.Status))
	}

	appt.Status = su.Status
	if su.ScheduledDate != nil {
		scheduled := su.ScheduledDate.UTC()
		appt.ScheduledDate = &scheduled
	} else if appt.Status == StatusApproved && appt.ScheduledDate == nil {
		scheduled := appt.PreferredDate
		appt.ScheduledDate = &scheduled
	}
	if su.CounselorNotes != "" {
		appt.CounselorNotes = su.CounselorNotes
	}
	if su.MeetingLink != "" {
		appt.MeetingLink = su.MeetingLink
	}
	if su.FollowUpRequired != nil {
		appt.FollowUpRequired = *su.FollowUpRequired
	}
	appt.UpdatedAt = svc.now()

	if appt, err = svc.repo.Update(ctx, appt); err != nil {
		return Appointment{}, errors.Wrap(err, "updating appointment")
	}
	statusChangesTotal.WithLabelValues(appt.Status).Inc()
	svc.populate(ctx, &appt)
	return appt, nil
}

// Cancel cancels an appointment the viewer takes part in.
func (svc *Service) Cancel(ctx context.Context, id, viewerID string) (Appointment, error) {
	appt, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if appt.StudentID != viewerID && appt.CounselorID != viewerID {
		return Appointment{}, ErrNotFound
	}
	if appt.Status == StatusCompleted {
		return Appointment{}, errCancelCompleted
	}

	if appt.Status != StatusCancelled {
		appt.Status = StatusCancelled
		appt.UpdatedAt = svc.now()
		if appt, err = svc.repo.Update(ctx, appt); err != nil {
			return Appointment{}, errors.Wrap(err, "cancelling appointment")
		}
		statusChangesTotal.WithLabelValues(appt.Status).Inc()
	}
	svc.populate(ctx, &appt)
	return appt, nil
}

func (svc *Service) Stats(ctx context.Context, counselorID string) (Stats, error) {
	appts, err := svc.repo.Query(ctx, QueryFilter{CounselorID: counselorID})
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying appointments")
	}

	stats := Stats{Total: len(appts)}
	for _, appt := range appts {
		switch appt.Status {
		case StatusPending:
			stats.Pending++
		case StatusApproved:
			stats.Approved++
		case StatusCompleted:
			stats.Completed++
		case StatusCancelled:
			stats.Cancelled++
		}
		if appt.IsUrgent {
			stats.Urgent++
		}
	}
	return stats, nil
}

// populate fills the participants; deleted accounts are left out.
func (svc *Service) populate(ctx context.Context, appt *Appointment) {
	if usr, err := svc.users.GetByID(ctx, appt.StudentID); err == nil {
		appt.Student = newParty(usr)
	}
	if usr, err := svc.users.GetByID(ctx, appt.CounselorID); err == nil {
		appt.Counselor = newParty(usr)
	}
}

func hasSpecialization(usr user.User, specialization string) bool {
	for _, sp := range usr.Specializations {
		if strings.ToLower(sp) == specialization {
			return true
		}
	}
	return false
}
