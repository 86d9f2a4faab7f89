package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/ustawi/core/mood"
)

type moodRepository struct {
	db *moodTable
}

var _ mood.Repository = (*moodRepository)(nil)

func NewMoodRepository(db *DB) mood.Repository {
	return &moodRepository{db: db.mood}
}

func (repo *moodRepository) GetByDay(_ context.Context, userID string, day time.Time) (mood.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	end := day.Add(24 * time.Hour)
	for _, e := range repo.db.table {
		if e.UserID == userID && !e.Date.Before(day) && e.Date.Before(end) {
			return copyMood(*e), nil
		}
	}
	return mood.Entry{}, mood.ErrNotFound
}

func (repo *moodRepository) QuerySince(_ context.Context, userID string, since time.Time) ([]mood.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]mood.Entry, 0)
	for _, e := range repo.db.table {
		if e.UserID == userID && !e.Date.Before(since) {
			entries = append(entries, copyMood(*e))
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].ID > entries[j].ID
	})
	return entries, nil
}

func (repo *moodRepository) Create(_ context.Context, entry mood.Entry) (mood.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e := copyMood(entry)
	repo.db.table[e.ID] = &e
	return copyMood(e), nil
}

func (repo *moodRepository) Update(_ context.Context, entry mood.Entry) (mood.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[entry.ID]
	if !ok || orig.UserID != entry.UserID {
		return mood.Entry{}, mood.ErrNotFound
	}
	e := copyMood(entry)
	e.CreatedAt = orig.CreatedAt
	repo.db.table[e.ID] = &e
	return copyMood(e), nil
}

func copyMood(e mood.Entry) mood.Entry {
	e.Activities = append([]string{}, e.Activities...)
	if e.StressLevel != nil {
		v := *e.StressLevel
		e.StressLevel = &v
	}
	if e.SleepHours != nil {
		v := *e.SleepHours
		e.SleepHours = &v
	}
	return e
}
