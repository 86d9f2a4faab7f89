// Package mood keeps a daily mood log per student.
package mood

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core"
)

const (
	DefaultHistoryDays = 7
	statsDays          = 30
	loggedMessage      = "Mood logged successfully"
)

var ErrNotFound = core.NewNotFoundError("mood entry not found")

type (
	Repository interface {
		// GetByDay returns the user's entry dated within [day, day+24h).
		GetByDay(ctx context.Context, userID string, day time.Time) (Entry, error)
		// QuerySince returns the user's entries dated at or after since, newest first.
		QuerySince(ctx context.Context, userID string, since time.Time) ([]Entry, error)
		Create(ctx context.Context, entry Entry) (Entry, error)
		Update(ctx context.Context, entry Entry) (Entry, error)
	}

	ServiceInterface interface {
		Log(ctx context.Context, userID string, ne NewEntry) (Logged, error)
		History(ctx context.Context, userID string, days int) ([]Entry, error)
		Today(ctx context.Context, userID string) (*Entry, error)
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

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Log records the user's mood for today, replacing any entry already logged today.
func (svc *Service) Log(ctx context.Context, userID string, ne NewEntry) (Logged, error) {
	if err := ne.Validate(svc.validate); err != nil {
		return Logged{}, err
	}

	now := svc.now()
	var isNew bool
	entry, err := svc.repo.GetByDay(ctx, userID, startOfDay(now))
	switch {
	case err == nil:
	case errors.Cause(err) == ErrNotFound:
		isNew = true
		entry = Entry{ID: uuid.New().String(), UserID: userID, CreatedAt: now}
	default:
		return Logged{}, errors.Wrap(err, "getting today's mood")
	}

	entry.Mood = ne.Mood
	entry.MoodValue = Value(ne.Mood)
	entry.Note = ne.Note
	entry.StressLevel = ne.StressLevel
	entry.SleepHours = ne.SleepHours
	entry.Activities = ne.Activities
	if entry.Activities == nil {
		entry.Activities = []string{}
	}
	entry.Date = now
	entry.UpdatedAt = now

	if isNew {
		entry, err = svc.repo.Create(ctx, entry)
	} else {
		entry, err = svc.repo.Update(ctx, entry)
	}
	if err != nil {
		return Logged{}, errors.Wrap(err, "saving mood")
	}

	return Logged{
		Mood:                entry,
		Message:             loggedMessage,
		MotivationalMessage: MotivationalMessage(entry.Mood),
	}, nil
}

// History returns the entries of the last days days (DefaultHistoryDays if days <= 0), newest first.
func (svc *Service) History(ctx context.Context, userID string, days int) ([]Entry, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	return svc.repo.QuerySince(ctx, userID, svc.now().AddDate(0, 0, -days))
}

// Today returns today's entry, or nil if none was logged yet.
func (svc *Service) Today(ctx context.Context, userID string) (*Entry, error) {
	entry, err := svc.repo.GetByDay(ctx, userID, startOfDay(svc.now()))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "getting today's mood")
	}
	return &entry, nil
}

// Stats summarizes the last 30 days. Averages ignore entries without the averaged value.
func (svc *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	entries, err := svc.repo.QuerySince(ctx, userID, svc.now().AddDate(0, 0, -statsDays))
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying moods")
	}

	stats := Stats{TotalEntries: len(entries), Distribution: make(map[string]int)}
	var moodSum, stressSum, sleepSum float64
	var stressCount, sleepCount int
	for _, e := range entries {
		moodSum += float64(e.MoodValue)
		stats.Distribution[e.Mood]++
		if e.StressLevel != nil {
			stressSum += float64(*e.StressLevel)
			stressCount++
		}
		if e.SleepHours != nil {
			sleepSum += *e.SleepHours
			sleepCount++
		}
	}
	if len(entries) > 0 {
		stats.AverageMood = core.Round2(moodSum / float64(len(entries)))
	}
	if stressCount > 0 {
		stats.AverageStress = core.Round2(stressSum / float64(stressCount))
	}
	if sleepCount > 0 {
		stats.AverageSleep = core.Round2(sleepSum / float64(sleepCount))
	}
	return stats, nil
}
