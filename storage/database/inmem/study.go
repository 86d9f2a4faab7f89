package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/ustawi/core/study"
)

type studyRepository struct {
	db *studyTable
}

var _ study.Repository = (*studyRepository)(nil)

func NewStudyRepository(db *DB) study.Repository {
	return &studyRepository{db: db.study}
}

func (repo *studyRepository) Query(_ context.Context, userID string, filter study.QueryFilter) ([]study.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]study.Session, 0)
	for _, s := range repo.db.table {
		if s.UserID != userID {
			continue
		}
		if !filter.Since.IsZero() && s.Date.Before(filter.Since) {
			continue
		}
		if filter.Subject != "" && s.Subject != filter.Subject {
			continue
		}
		if filter.Type != "" && s.Type != filter.Type {
			continue
		}
		sessions = append(sessions, copySession(*s))
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].StartTime.Equal(sessions[j].StartTime) {
			return sessions[i].StartTime.After(sessions[j].StartTime)
		}
		return sessions[i].ID > sessions[j].ID
	})
	return sessions, nil
}

func (repo *studyRepository) GetByID(_ context.Context, id, userID string) (study.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok && s.UserID == userID {
		return copySession(*s), nil
	}
	return study.Session{}, study.ErrNotFound
}

func (repo *studyRepository) Create(_ context.Context, s study.Session) (study.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s = copySession(s)
	repo.db.table[s.ID] = &s
	return copySession(s), nil
}

func (repo *studyRepository) Update(_ context.Context, s study.Session) (study.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[s.ID]
	if !ok || orig.UserID != s.UserID {
		return study.Session{}, study.ErrNotFound
	}
	s = copySession(s)
	s.CreatedAt = orig.CreatedAt
	repo.db.table[s.ID] = &s
	return copySession(s), nil
}

func (repo *studyRepository) Delete(_ context.Context, id, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if s, ok := repo.db.table[id]; ok && s.UserID == userID {
		delete(repo.db.table, id)
		return nil
	}
	return study.ErrNotFound
}

func copySession(s study.Session) study.Session {
	if s.EndTime != nil {
		end := *s.EndTime
		s.EndTime = &end
	}
	if s.Productivity != nil {
		p := *s.Productivity
		s.Productivity = &p
	}
	s.RelatedTask = nil
	return s
}
