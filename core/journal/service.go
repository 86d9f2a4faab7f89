// Package journal manages students' journal entries and the sentiment statistics derived from them.
package journal

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/sentiment"
)

var ErrNotFound = core.NewNotFoundError("journal entry not found")

type (
	Repository interface {
		// QueryByUser returns the user's entries, pinned first then newest first.
		QueryByUser(ctx context.Context, userID string) ([]Entry, error)
		// QueryRecentByUser returns at most limit of the user's entries, newest first.
		QueryRecentByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
		GetByID(ctx context.Context, id, userID string) (Entry, error)
		Create(ctx context.Context, entry Entry) (Entry, error)
		Update(ctx context.Context, entry Entry) (Entry, error)
		Delete(ctx context.Context, id, userID string) error
	}

	ServiceInterface interface {
		Query(ctx context.Context, userID string, refresh bool) ([]Entry, error)
		Get(ctx context.Context, id, userID string) (Entry, error)
		Create(ctx context.Context, userID string, ne NewEntry) (Entry, error)
		Update(ctx context.Context, id, userID string, ue UpdateEntry) (Entry, error)
		Delete(ctx context.Context, id, userID string) error
		Stats(ctx context.Context, userID string) (Stats, error)
	}

	Service struct {
		repo     Repository
		analyzer sentiment.Analyzer
		validate *validator.Validate
		clock    clockwork.Clock
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, analyzer sentiment.Analyzer, validate *validator.Validate, clock clockwork.Clock) *Service {
	return &Service{
		repo:     repo,
		analyzer: analyzer,
		validate: validate,
		clock:    clock,
	}
}

func (svc *Service) now() time.Time {
	return svc.clock.Now().UTC()
}

// Query returns the user's entries. With refresh, every entry is re-analyzed and saved, one after the other.
func (svc *Service) Query(ctx context.Context, userID string, refresh bool) ([]Entry, error) {
	entries, err := svc.repo.QueryByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying entries")
	}
	if !refresh {
		return entries, nil
	}

	for i, e := range entries {
		e.Sentiment = svc.analyzer.Analyze(ctx, e.Content)
		e.UpdatedAt = svc.now()
		if entries[i], err = svc.repo.Update(ctx, e); err != nil {
			return nil, errors.Wrap(err, "saving refreshed entry")
		}
	}
	return entries, nil
}

func (svc *Service) Get(ctx context.Context, id, userID string) (Entry, error) {
	return svc.repo.GetByID(ctx, id, userID)
}

func (svc *Service) Create(ctx context.Context, userID string, ne NewEntry) (Entry, error) {
	if err := ne.Validate(svc.validate); err != nil {
		return Entry{}, err
	}

	isPrivate := true
	if ne.IsPrivate != nil {
		isPrivate = *ne.IsPrivate
	}
	tags := ne.Tags
	if tags == nil {
		tags = []string{}
	}

	now := svc.now()
	entry := Entry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     ne.Title,
		Content:   ne.Content,
		Sentiment: svc.analyzer.Analyze(ctx, ne.Content),
		Tags:      tags,
		Mood:      ne.Mood,
		IsPrivate: isPrivate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.Create(ctx, entry)
}

// Update applies the provided fields. A changed content is re-analyzed before the entry is saved.
func (svc *Service) Update(ctx context.Context, id, userID string, ue UpdateEntry) (Entry, error) {
	if err := ue.Validate(svc.validate); err != nil {
		return Entry{}, err
	}

	entry, err := svc.repo.GetByID(ctx, id, userID)
	if err != nil {
		return Entry{}, err
	}

	if ue.Title != "" {
		entry.Title = ue.Title
	}
	if ue.Content != "" && ue.Content != entry.Content {
		entry.Content = ue.Content
		entry.Sentiment = svc.analyzer.Analyze(ctx, ue.Content)
	}
	if ue.Tags != nil {
		entry.Tags = ue.Tags
	}
	if ue.Mood != "" {
		entry.Mood = ue.Mood
	}
	if ue.IsPrivate != nil {
		entry.IsPrivate = *ue.IsPrivate
	}
	if ue.IsPinned != nil {
		entry.IsPinned = *ue.IsPinned
	}
	entry.UpdatedAt = svc.now()

	return svc.repo.Update(ctx, entry)
}

func (svc *Service) Delete(ctx context.Context, id, userID string) error {
	return svc.repo.Delete(ctx, id, userID)
}

// Stats aggregates the sentiment of the user's StatsWindow most recent entries.
func (svc *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	recent, err := svc.repo.QueryRecentByUser(ctx, userID, StatsWindow)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying recent entries")
	}

	// oldest first
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}

	stats := Aggregate(recent)
	if stats.AlertTriggered {
		streakAlertsTotal.Inc()
	}
	return stats, nil
}
