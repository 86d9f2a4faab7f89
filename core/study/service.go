// Package study logs students' study sessions and summarizes their study time.
package study

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/task"
)

const DefaultDays = 7

var (
	ErrNotFound = core.NewNotFoundError("study session not found")

	errUnknownTask = core.NewValidationError(nil, core.FieldError{Field: "related_task_id", Error: "task not found"})
)

type (
	Repository interface {
		// Query returns the user's sessions dated at or after filter.Since, latest start first.
		Query(ctx context.Context, userID string, filter QueryFilter) ([]Session, error)
		GetByID(ctx context.Context, id, userID string) (Session, error)
		Create(ctx context.Context, s Session) (Session, error)
		Update(ctx context.Context, s Session) (Session, error)
		Delete(ctx context.Context, id, userID string) error
	}

	// TaskFinder looks up the user's tasks that sessions refer to.
	TaskFinder interface {
		Get(ctx context.Context, id, userID string) (task.Task, error)
	}

	ServiceInterface interface {
		Query(ctx context.Context, userID string, days int, subject, typ string) ([]Session, error)
		Create(ctx context.Context, userID string, ns NewSession) (Session, error)
		Update(ctx context.Context, id, userID string, us UpdateSession) (Session, error)
		Delete(ctx context.Context, id, userID string) error
		Stats(ctx context.Context, userID, period string) (Stats, error)
	}

	Service struct {
		repo     Repository
		tasks    TaskFinder
		validate *validator.Validate
		clock    clockwork.Clock
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, tasks TaskFinder, validate *validator.Validate, clock clockwork.Clock) *Service {
	return &Service{repo: repo, tasks: tasks, validate: validate, clock: clock}
}

func (svc *Service) now() time.Time {
	return svc.clock.Now().UTC()
}

// Query returns the sessions of the last days days (DefaultDays if days <= 0), latest start first.
func (svc *Service) Query(ctx context.Context, userID string, days int, subject, typ string) ([]Session, error) {
	if days <= 0 {
		days = DefaultDays
	}
	sessions, err := svc.repo.Query(ctx, userID, QueryFilter{
		Since:   svc.now().AddDate(0, 0, -days),
		Subject: core.CleanString(subject),
		Type:    core.CleanString(typ, true /* lower */),
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying study sessions")
	}
	for i := range sessions {
		svc.populateTask(ctx, &sessions[i])
	}
	return sessions, nil
}

func (svc *Service) Create(ctx context.Context, userID string, ns NewSession) (Session, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Session{}, err
	}
	if err := svc.checkTask(ctx, ns.RelatedTaskID, userID); err != nil {
		return Session{}, err
	}

	now := svc.now()
	s := Session{
		ID:              uuid.New().String(),
		UserID:          userID,
		Subject:         ns.Subject,
		Duration:        ns.Duration,
		PlannedDuration: defaultPlannedDuration,
		Type:            ns.Type,
		Date:            now,
		StartTime:       ns.StartTime.UTC(),
		IsCompleted:     ns.IsCompleted,
		Productivity:    ns.Productivity,
		Notes:           ns.Notes,
		RelatedTaskID:   ns.RelatedTaskID,
		BreakDuration:   defaultBreakDuration,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if ns.PlannedDuration != nil {
		s.PlannedDuration = *ns.PlannedDuration
	}
	if s.Type == "" {
		s.Type = TypeCustom
	}
	if ns.Date != nil {
		s.Date = ns.Date.UTC()
	}
	if ns.EndTime != nil {
		end := ns.EndTime.UTC()
		s.EndTime = &end
	}
	if ns.BreakDuration != nil {
		s.BreakDuration = *ns.BreakDuration
	}

	s, err := svc.repo.Create(ctx, s)
	if err != nil {
		return Session{}, err
	}
	svc.populateTask(ctx, &s)
	return s, nil
}

func (svc *Service) Update(ctx context.Context, id, userID string, us UpdateSession) (Session, error) {
	if err := us.Validate(svc.validate); err != nil {
		return Session{}, err
	}

	s, err := svc.repo.GetByID(ctx, id, userID)
	if err != nil {
		return Session{}, err
	}

	if us.Subject != "" {
		s.Subject = us.Subject
	}
	if us.Duration != nil {
		s.Duration = *us.Duration
	}
	if us.PlannedDuration != nil {
		s.PlannedDuration = *us.PlannedDuration
	}
	if us.Type != "" {
		s.Type = us.Type
	}
	if us.EndTime != nil {
		end := us.EndTime.UTC()
		s.EndTime = &end
	}
	if us.IsCompleted != nil {
		s.IsCompleted = *us.IsCompleted
	}
	if us.Productivity != nil {
		s.Productivity = us.Productivity
	}
	if us.Notes != nil {
		s.Notes = *us.Notes
	}
	if us.RelatedTaskID != nil {
		if err := svc.checkTask(ctx, *us.RelatedTaskID, userID); err != nil {
			return Session{}, err
		}
		s.RelatedTaskID = *us.RelatedTaskID
	}
	if us.BreakDuration != nil {
		s.BreakDuration = *us.BreakDuration
	}
	s.UpdatedAt = svc.now()

	if s, err = svc.repo.Update(ctx, s); err != nil {
		return Session{}, err
	}
	svc.populateTask(ctx, &s)
	return s, nil
}

func (svc *Service) Delete(ctx context.Context, id, userID string) error {
	return svc.repo.Delete(ctx, id, userID)
}

// Stats summarizes the sessions of the period: "week" and "month" cover the last 7 and 30 days, "all" everything.
// Unknown periods mean "all".
func (svc *Service) Stats(ctx context.Context, userID, period string) (Stats, error) {
	var filter QueryFilter
	switch core.CleanString(period, true /* lower */) {
	case PeriodWeek, "":
		filter.Since = svc.now().AddDate(0, 0, -7)
	case PeriodMonth:
		filter.Since = svc.now().AddDate(0, 0, -30)
	}

	sessions, err := svc.repo.Query(ctx, userID, filter)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying study sessions")
	}
	return summarize(sessions), nil
}

func summarize(sessions []Session) Stats {
	stats := Stats{TotalSessions: len(sessions), SubjectBreakdown: []SubjectHours{}}
	if len(sessions) == 0 {
		return stats
	}

	var hours, productivitySum float64
	var rated int
	bySubject := make(map[string]float64)
	for _, s := range sessions {
		h := float64(s.Duration) / 60
		hours += h
		bySubject[s.Subject] += h
		if s.Productivity != nil {
			productivitySum += float64(*s.Productivity)
			rated++
		}
		if s.IsCompleted {
			stats.CompletedSessions++
		}
	}

	stats.TotalHours = core.Round2(hours)
	stats.AverageSession = core.Round2(hours / float64(len(sessions)))
	if rated > 0 {
		stats.AverageProductivity = core.Round2(productivitySum / float64(rated))
	}
	for subject, h := range bySubject {
		stats.SubjectBreakdown = append(stats.SubjectBreakdown, SubjectHours{Subject: subject, Hours: core.Round2(h)})
	}
	sort.Slice(stats.SubjectBreakdown, func(i, j int) bool {
		a, b := stats.SubjectBreakdown[i], stats.SubjectBreakdown[j]
		if a.Hours != b.Hours {
			return a.Hours > b.Hours
		}
		return a.Subject < b.Subject
	})
	return stats
}

func (svc *Service) checkTask(ctx context.Context, taskID, userID string) error {
	if taskID == "" {
		return nil
	}
	if _, err := svc.tasks.Get(ctx, taskID, userID); err != nil {
		if errors.Cause(err) == task.ErrNotFound {
			return errUnknownTask
		}
		return errors.Wrap(err, "getting related task")
	}
	return nil
}

// populateTask fills RelatedTask; a task deleted since is shown as no task.
func (svc *Service) populateTask(ctx context.Context, s *Session) {
	s.RelatedTask = nil
	if s.RelatedTaskID == "" {
		return
	}
	if t, err := svc.tasks.Get(ctx, s.RelatedTaskID, s.UserID); err == nil {
		s.RelatedTask = &TaskRef{ID: t.ID, Title: t.Title}
	}
}
