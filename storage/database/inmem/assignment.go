package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/assignment"
	"github.com/trezcool/ustawi/core/task"
)

type assignmentRepository struct {
	db *assignmentTable
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) Query(_ context.Context, userID string, filter assignment.QueryFilter) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assignments := make([]assignment.Assignment, 0)
	for _, a := range repo.db.table {
		if a.UserID == userID && (filter.Status == "" || a.Status == filter.Status) {
			assignments = append(assignments, copyAssignment(*a))
		}
	}
	sortAssignments(assignments, filter.Ordering)
	return assignments, nil
}

func (repo *assignmentRepository) GetByID(_ context.Context, id, userID string) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok && a.UserID == userID {
		return copyAssignment(*a), nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) Create(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a = copyAssignment(a)
	repo.db.table[a.ID] = &a
	return copyAssignment(a), nil
}

func (repo *assignmentRepository) Update(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[a.ID]
	if !ok || orig.UserID != a.UserID {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	a = copyAssignment(a)
	a.AIHelp = append([]assignment.HelpRecord{}, orig.AIHelp...)
	a.CreatedAt = orig.CreatedAt
	repo.db.table[a.ID] = &a
	return copyAssignment(a), nil
}

func (repo *assignmentRepository) AppendHelp(_ context.Context, id, userID string, rec assignment.HelpRecord) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.table[id]
	if !ok || a.UserID != userID {
		return assignment.ErrNotFound
	}
	a.AIHelp = append(a.AIHelp, rec)
	return nil
}

func (repo *assignmentRepository) Delete(_ context.Context, id, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if a, ok := repo.db.table[id]; ok && a.UserID == userID {
		delete(repo.db.table, id)
		return nil
	}
	return assignment.ErrNotFound
}

func sortAssignments(assignments []assignment.Assignment, ordering []core.DBOrdering) {
	valid := make([]core.DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		if _, ok := assignment.OrderingFields[ord.Field]; ok {
			valid = append(valid, ord)
		}
	}
	if len(valid) == 0 {
		valid = assignment.DefaultOrdering
	}

	sort.SliceStable(assignments, func(i, j int) bool {
		for _, ord := range valid {
			c := compareAssignments(assignments[i], assignments[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return assignments[i].ID < assignments[j].ID
	})
}

func compareAssignments(a, b assignment.Assignment, field string) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "subject":
		return strings.Compare(a.Subject, b.Subject)
	case "status":
		return strings.Compare(a.Status, b.Status)
	case "priority":
		return task.PriorityRank(a.Priority) - task.PriorityRank(b.Priority)
	case "created_at":
		return compareTimes(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	default:
		return compareTimes(a.DueDate.UnixNano(), b.DueDate.UnixNano())
	}
}

func copyAssignment(a assignment.Assignment) assignment.Assignment {
	a.AIHelp = append([]assignment.HelpRecord{}, a.AIHelp...)
	if a.CompletedAt != nil {
		at := *a.CompletedAt
		a.CompletedAt = &at
	}
	return a
}
