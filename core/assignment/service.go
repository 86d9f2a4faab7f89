// Package assignment tracks students' assignments and the help the assistant gave on them.
package assignment

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core"
)

const upcomingLimit = 10

var ErrNotFound = core.NewNotFoundError("assignment not found")

type (
	Repository interface {
		// Query returns the user's assignments, ordered by filter.Ordering then by id.
		Query(ctx context.Context, userID string, filter QueryFilter) ([]Assignment, error)
		GetByID(ctx context.Context, id, userID string) (Assignment, error)
		Create(ctx context.Context, a Assignment) (Assignment, error)
		// Update saves every field but AIHelp.
		Update(ctx context.Context, a Assignment) (Assignment, error)
		AppendHelp(ctx context.Context, id, userID string, rec HelpRecord) error
		Delete(ctx context.Context, id, userID string) error
	}

	// Helper answers questions about an assignment.
	Helper interface {
		AssignmentHelp(ctx context.Context, title, subject, description, question string) string
	}

	ServiceInterface interface {
		Query(ctx context.Context, userID string, filter QueryFilter) ([]Assignment, error)
		Upcoming(ctx context.Context, userID string) ([]Assignment, error)
		Overdue(ctx context.Context, userID string) ([]Assignment, error)
		Get(ctx context.Context, id, userID string) (Assignment, error)
		Create(ctx context.Context, userID string, na NewAssignment) (Assignment, error)
		Update(ctx context.Context, id, userID string, ua UpdateAssignment) (Assignment, error)
		SetStatus(ctx context.Context, id, userID string, su StatusUpdate) (Assignment, error)
		Delete(ctx context.Context, id, userID string) error
		Stats(ctx context.Context, userID string) (Stats, error)
		AskForHelp(ctx context.Context, id, userID string, hr HelpRequest) (HelpRecord, error)
		HelpHistory(ctx context.Context, id, userID string) ([]HelpRecord, error)
	}

	Service struct {
		repo     Repository
		helper   Helper
		validate *validator.Validate
		clock    clockwork.Clock
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, helper Helper, validate *validator.Validate, clock clockwork.Clock) *Service {
	return &Service{repo: repo, helper: helper, validate: validate, clock: clock}
}

func (svc *Service) now() time.Time {
	return svc.clock.Now().UTC()
}

func (svc *Service) Query(ctx context.Context, userID string, filter QueryFilter) ([]Assignment, error) {
	filter.Status = core.CleanString(filter.Status, true /* lower */)
	if len(filter.Ordering) == 0 {
		filter.Ordering = DefaultOrdering
	}
	return svc.repo.Query(ctx, userID, filter)
}

// Upcoming returns the unfinished assignments due later, soonest first.
func (svc *Service) Upcoming(ctx context.Context, userID string) ([]Assignment, error) {
	all, err := svc.repo.Query(ctx, userID, QueryFilter{Ordering: DefaultOrdering})
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	now := svc.now()
	upcoming := make([]Assignment, 0)
	for i := 0; i < len(all) && len(upcoming) < upcomingLimit; i++ {
		if all[i].IsUpcoming(now) {
			upcoming = append(upcoming, all[i])
		}
	}
	return upcoming, nil
}

// Overdue returns the unfinished assignments past their due date, most recently due first.
func (svc *Service) Overdue(ctx context.Context, userID string) ([]Assignment, error) {
	all, err := svc.repo.Query(ctx, userID, QueryFilter{Ordering: DefaultOrdering})
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	now := svc.now()
	overdue := make([]Assignment, 0)
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].IsOverdue(now) {
			overdue = append(overdue, all[i])
		}
	}
	return overdue, nil
}

func (svc *Service) Get(ctx context.Context, id, userID string) (Assignment, error) {
	return svc.repo.GetByID(ctx, id, userID)
}

func (svc *Service) Create(ctx context.Context, userID string, na NewAssignment) (Assignment, error) {
	if err := na.Validate(svc.validate); err != nil {
		return Assignment{}, err
	}

	now := svc.now()
	a := Assignment{
		ID:          uuid.New().String(),
		UserID:      userID,
		Subject:     na.Subject,
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate.UTC(),
		Priority:    na.Priority,
		Status:      na.Status,
		AIHelp:      []HelpRecord{},
		Notes:       na.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if a.Priority == "" {
		a.Priority = defaultPriority
	}
	if a.Status == "" {
		a.Status = StatusNotStarted
	}
	setStatus(&a, a.Status, now)
	return svc.repo.Create(ctx, a)
}

func (svc *Service) Update(ctx context.Context, id, userID string, ua UpdateAssignment) (Assignment, error) {
	if err := ua.Validate(svc.validate); err != nil {
		return Assignment{}, err
	}

	a, err := svc.repo.GetByID(ctx, id, userID)
	if err != nil {
		return Assignment{}, err
	}

	now := svc.now()
	if ua.Subject != "" {
		a.Subject = ua.Subject
	}
	if ua.Title != "" {
		a.Title = ua.Title
	}
	if ua.Description != nil {
		a.Description = *ua.Description
	}
	if ua.DueDate != nil {
		a.DueDate = ua.DueDate.UTC()
	}
	if ua.Priority != "" {
		a.Priority = ua.Priority
	}
	if ua.Notes != nil {
		a.Notes = *ua.Notes
	}
	if ua.Status != "" {
		setStatus(&a, ua.Status, now)
	}
	a.UpdatedAt = now

	return svc.repo.Update(ctx, a)
}

func (svc *Service) SetStatus(ctx context.Context, id, userID string, su StatusUpdate) (Assignment, error) {
	su.Status = core.CleanString(su.Status, true /* lower */)
	if err := svc.validate.Struct(su); err != nil {
		return Assignment{}, err
	}

	a, err := svc.repo.GetByID(ctx, id, userID)
	if err != nil {
		return Assignment{}, err
	}
	now := svc.now()
	setStatus(&a, su.Status, now)
	a.UpdatedAt = now
	return svc.repo.Update(ctx, a)
}

// setStatus stamps CompletedAt when the work gets done and clears it when it is reopened.
func setStatus(a *Assignment, status string, now time.Time) {
	switch {
	case IsDone(status) && a.CompletedAt == nil:
		a.CompletedAt = &now
	case !IsDone(status):
		a.CompletedAt = nil
	}
	a.Status = status
}

func (svc *Service) Delete(ctx context.Context, id, userID string) error {
	return svc.repo.Delete(ctx, id, userID)
}

func (svc *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	all, err := svc.repo.Query(ctx, userID, QueryFilter{Ordering: DefaultOrdering})
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying assignments")
	}

	now := svc.now()
	stats := Stats{Total: len(all)}
	for i := range all {
		switch all[i].Status {
		case StatusCompleted, StatusSubmitted:
			stats.Completed++
		case StatusInProgress:
			stats.InProgress++
		case StatusNotStarted:
			stats.NotStarted++
		}
		if all[i].IsOverdue(now) {
			stats.Overdue++
		}
		if all[i].IsUpcoming(now) {
			stats.Upcoming++
		}
	}
	return stats, nil
}

// AskForHelp asks the assistant about the assignment and keeps the answer in its help history.
func (svc *Service) AskForHelp(ctx context.Context, id, userID string, hr HelpRequest) (HelpRecord, error) {
	hr.Question = core.CleanString(hr.Question)
	if err := svc.validate.Struct(hr); err != nil {
		return HelpRecord{}, err
	}

	a, err := svc.repo.GetByID(ctx, id, userID)
	if err != nil {
		return HelpRecord{}, err
	}

	rec := HelpRecord{
		Question:  hr.Question,
		Response:  svc.helper.AssignmentHelp(ctx, a.Title, a.Subject, a.Description, hr.Question),
		Timestamp: svc.now(),
	}
	if err := svc.repo.AppendHelp(ctx, a.ID, userID, rec); err != nil {
		return HelpRecord{}, errors.Wrap(err, "saving help record")
	}
	return rec, nil
}

func (svc *Service) HelpHistory(ctx context.Context, id, userID string) ([]HelpRecord, error) {
	a, err := svc.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return a.AIHelp, nil
}
