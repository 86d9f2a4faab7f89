// Package task keeps the students' to-do lists.
package task

import (
	"context"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core"
)

const (
	DefaultLimit  = 50
	upcomingLimit = 10
	upcomingDays  = 7
)

var ErrNotFound = core.NewNotFoundError("task not found")

type (
	Repository interface {
		// Query returns the user's tasks matching filter, ordered by filter.Ordering then by id.
		Query(ctx context.Context, userID string, filter QueryFilter) ([]Task, error)
		GetByID(ctx context.Context, id, userID string) (Task, error)
		Create(ctx context.Context, t Task) (Task, error)
		Update(ctx context.Context, t Task) (Task, error)
		Delete(ctx context.Context, id, userID string) error
	}

	ServiceInterface interface {
		Query(ctx context.Context, userID string, filter QueryFilter) ([]Task, error)
		Upcoming(ctx context.Context, userID string) ([]Task, error)
		Get(ctx context.Context, id, userID string) (Task, error)
		Create(ctx context.Context, userID string, nt NewTask) (Task, error)
		Update(ctx context.Context, id, userID string, ut UpdateTask) (Task, error)
		Delete(ctx context.Context, id, userID string) error
		Stats(ctx context.Context, userID string) (Stats, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		clock    clockwork.Clock
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, validate *validator.Validate, clock clockwork.Clock) *Service {
	return &Service{repo: repo, validate: validate, clock: clock}
}

func (svc *Service) now() time.Time {
	return svc.clock.Now().UTC()
}

func (svc *Service) Query(ctx context.Context, userID string, filter QueryFilter) ([]Task, error) {
	filter.Clean()
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	if len(filter.Ordering) == 0 {
		filter.Ordering = DefaultOrdering
	}
	return svc.repo.Query(ctx, userID, filter)
}

// Upcoming returns the open tasks due within the next week, soonest first.
// Overdue tasks are included.
func (svc *Service) Upcoming(ctx context.Context, userID string) ([]Task, error) {
	return svc.repo.Query(ctx, userID, QueryFilter{
		Status:    StatusPending,
		DueBefore: svc.now().AddDate(0, 0, upcomingDays),
		Limit:     upcomingLimit,
		Ordering:  DefaultOrdering,
	})
}

func (svc *Service) Get(ctx context.Context, id, userID string) (Task, error) {
	return svc.repo.GetByID(ctx, id, userID)
}

func (svc *Service) Create(ctx context.Context, userID string, nt NewTask) (Task, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return Task{}, err
	}

	now := svc.now()
	t := Task{
		ID:             uuid.New().String(),
		UserID:         userID,
		Title:          nt.Title,
		Description:    nt.Description,
		Subject:        nt.Subject,
		Priority:       nt.Priority,
		DueDate:        nt.DueDate.UTC(),
		EstimatedHours: defaultEstimatedHours,
		Tags:           nt.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if nt.EstimatedHours != nil {
		t.EstimatedHours = *nt.EstimatedHours
	}
	if nt.ActualHours != nil {
		t.ActualHours = *nt.ActualHours
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return svc.repo.Create(ctx, t)
}

// Update applies the provided fields. Completing a task stamps CompletedAt; reopening it clears the stamp.
func (svc *Service) Update(ctx context.Context, id, userID string, ut UpdateTask) (Task, error) {
	if err := ut.Validate(svc.validate); err != nil {
		return Task{}, err
	}

	t, err := svc.repo.GetByID(ctx, id, userID)
	if err != nil {
		return Task{}, err
	}

	now := svc.now()
	if ut.Title != "" {
		t.Title = ut.Title
	}
	if ut.Description != nil {
		t.Description = *ut.Description
	}
	if ut.Subject != "" {
		t.Subject = ut.Subject
	}
	if ut.Priority != "" {
		t.Priority = ut.Priority
	}
	if ut.DueDate != nil {
		t.DueDate = ut.DueDate.UTC()
	}
	if ut.EstimatedHours != nil {
		t.EstimatedHours = *ut.EstimatedHours
	}
	if ut.ActualHours != nil {
		t.ActualHours = *ut.ActualHours
	}
	if ut.Tags != nil {
		t.Tags = ut.Tags
	}
	if ut.IsCompleted != nil && *ut.IsCompleted != t.IsCompleted {
		t.IsCompleted = *ut.IsCompleted
		if t.IsCompleted {
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
	}
	t.UpdatedAt = now

	return svc.repo.Update(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, id, userID string) error {
	return svc.repo.Delete(ctx, id, userID)
}

func (svc *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	tasks, err := svc.repo.Query(ctx, userID, QueryFilter{Ordering: DefaultOrdering})
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying tasks")
	}

	now := svc.now()
	stats := Stats{Total: len(tasks)}
	for i := range tasks {
		switch {
		case tasks[i].IsCompleted:
			stats.Completed++
		case tasks[i].IsOverdue(now):
			stats.Overdue++
			stats.Pending++
		default:
			stats.Pending++
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = math.Round(float64(stats.Completed)/float64(stats.Total)*1000) / 10
	}
	return stats, nil
}
