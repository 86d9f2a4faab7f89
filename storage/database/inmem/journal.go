package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/ustawi/core/journal"
)

type journalRepository struct {
	db *journalTable
}

var _ journal.Repository = (*journalRepository)(nil)

func NewJournalRepository(db *DB) journal.Repository {
	return &journalRepository{db: db.journal}
}

func (repo *journalRepository) userEntries(userID string) []journal.Entry {
	entries := make([]journal.Entry, 0)
	for _, e := range repo.db.table {
		if e.UserID == userID {
			entries = append(entries, copyEntry(*e))
		}
	}
	return entries
}

func (repo *journalRepository) QueryByUser(_ context.Context, userID string) ([]journal.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := repo.userEntries(userID)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsPinned != entries[j].IsPinned {
			return entries[i].IsPinned
		}
		return newerFirst(entries[i], entries[j])
	})
	return entries, nil
}

func (repo *journalRepository) QueryRecentByUser(_ context.Context, userID string, limit int) ([]journal.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := repo.userEntries(userID)
	sort.SliceStable(entries, func(i, j int) bool { return newerFirst(entries[i], entries[j]) })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (repo *journalRepository) GetByID(_ context.Context, id, userID string) (journal.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.table[id]; ok && e.UserID == userID {
		return copyEntry(*e), nil
	}
	return journal.Entry{}, journal.ErrNotFound
}

func (repo *journalRepository) Create(_ context.Context, entry journal.Entry) (journal.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e := copyEntry(entry)
	repo.db.table[e.ID] = &e
	return copyEntry(e), nil
}

func (repo *journalRepository) Update(_ context.Context, entry journal.Entry) (journal.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[entry.ID]
	if !ok || orig.UserID != entry.UserID {
		return journal.Entry{}, journal.ErrNotFound
	}
	e := copyEntry(entry)
	e.CreatedAt = orig.CreatedAt
	repo.db.table[e.ID] = &e
	return copyEntry(e), nil
}

func (repo *journalRepository) Delete(_ context.Context, id, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if e, ok := repo.db.table[id]; ok && e.UserID == userID {
		delete(repo.db.table, id)
		return nil
	}
	return journal.ErrNotFound
}

// newerFirst orders by creation time, newest first, then by id descending.
func newerFirst(a, b journal.Entry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// copyEntry detaches the slices of e from the stored row.
func copyEntry(e journal.Entry) journal.Entry {
	e.Tags = append([]string{}, e.Tags...)
	e.Sentiment.Emotions = append([]string{}, e.Sentiment.Emotions...)
	return e
}
