package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/task"
)

type taskRepository struct {
	db *taskTable
}

var _ task.Repository = (*taskRepository)(nil)

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) Query(_ context.Context, userID string, filter task.QueryFilter) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	done := filter.IsCompleted()
	tasks := make([]task.Task, 0)
	for _, t := range repo.db.table {
		if t.UserID != userID {
			continue
		}
		if done != nil && t.IsCompleted != *done {
			continue
		}
		if filter.Subject != "" && t.Subject != filter.Subject {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		if !filter.DueBefore.IsZero() && t.DueDate.After(filter.DueBefore) {
			continue
		}
		tasks = append(tasks, copyTask(*t))
	}
	sortTasks(tasks, filter.Ordering)
	if filter.Limit > 0 && len(tasks) > filter.Limit {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

func (repo *taskRepository) GetByID(_ context.Context, id, userID string) (task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok && t.UserID == userID {
		return copyTask(*t), nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) Create(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t = copyTask(t)
	repo.db.table[t.ID] = &t
	return copyTask(t), nil
}

func (repo *taskRepository) Update(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[t.ID]
	if !ok || orig.UserID != t.UserID {
		return task.Task{}, task.ErrNotFound
	}
	t = copyTask(t)
	t.CreatedAt = orig.CreatedAt
	repo.db.table[t.ID] = &t
	return copyTask(t), nil
}

func (repo *taskRepository) Delete(_ context.Context, id, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if t, ok := repo.db.table[id]; ok && t.UserID == userID {
		delete(repo.db.table, id)
		return nil
	}
	return task.ErrNotFound
}

func sortTasks(tasks []task.Task, ordering []core.DBOrdering) {
	valid := make([]core.DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		if _, ok := task.OrderingFields[ord.Field]; ok {
			valid = append(valid, ord)
		}
	}
	if len(valid) == 0 {
		valid = task.DefaultOrdering
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		for _, ord := range valid {
			c := compareTasks(tasks[i], tasks[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return tasks[i].ID < tasks[j].ID
	})
}

func compareTasks(a, b task.Task, field string) int {
	switch field {
	case "priority":
		return task.PriorityRank(a.Priority) - task.PriorityRank(b.Priority)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "subject":
		return strings.Compare(a.Subject, b.Subject)
	case "created_at":
		return compareTimes(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	default:
		return compareTimes(a.DueDate.UnixNano(), b.DueDate.UnixNano())
	}
}

func copyTask(t task.Task) task.Task {
	t.Tags = append([]string{}, t.Tags...)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}
