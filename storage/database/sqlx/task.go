package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/task"
)

const taskColumns = `id, user_id, title, description, subject, priority, due_date, is_completed, completed_at,
	estimated_hours, actual_hours, tags, created_at, updated_at`

// taskOrderColumns sorts priorities by rank instead of alphabetically.
var taskOrderColumns = map[string]string{
	"due_date":   "due_date",
	"priority":   "CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 WHEN 'urgent' THEN 4 ELSE 0 END",
	"title":      "title",
	"subject":    "subject",
	"created_at": "created_at",
}

type taskRow struct {
	ID             string         `db:"id"`
	UserID         string         `db:"user_id"`
	Title          string         `db:"title"`
	Description    string         `db:"description"`
	Subject        string         `db:"subject"`
	Priority       string         `db:"priority"`
	DueDate        time.Time      `db:"due_date"`
	IsCompleted    bool           `db:"is_completed"`
	CompletedAt    sql.NullTime   `db:"completed_at"`
	EstimatedHours float64        `db:"estimated_hours"`
	ActualHours    float64        `db:"actual_hours"`
	Tags           pq.StringArray `db:"tags"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func toTaskRow(t task.Task) taskRow {
	return taskRow{
		ID:             t.ID,
		UserID:         t.UserID,
		Title:          t.Title,
		Description:    t.Description,
		Subject:        t.Subject,
		Priority:       t.Priority,
		DueDate:        t.DueDate,
		IsCompleted:    t.IsCompleted,
		CompletedAt:    nullTime(t.CompletedAt),
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		Tags:           pq.StringArray(nonNil(t.Tags)),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func (row taskRow) toTask() task.Task {
	return task.Task{
		ID:             row.ID,
		UserID:         row.UserID,
		Title:          row.Title,
		Description:    row.Description,
		Subject:        row.Subject,
		Priority:       row.Priority,
		DueDate:        row.DueDate.UTC(),
		IsCompleted:    row.IsCompleted,
		CompletedAt:    timePtr(row.CompletedAt),
		EstimatedHours: row.EstimatedHours,
		ActualHours:    row.ActualHours,
		Tags:           nonNil(row.Tags),
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil)

func NewTaskRepository(db *sqlx.DB) task.Repository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) Query(ctx context.Context, userID string, filter task.QueryFilter) ([]task.Task, error) {
	if !isUUID(userID) {
		return []task.Task{}, nil
	}

	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	where := []string{"user_id = " + arg(userID)}
	if done := filter.IsCompleted(); done != nil {
		where = append(where, "is_completed = "+arg(*done))
	}
	if filter.Subject != "" {
		where = append(where, "subject = "+arg(filter.Subject))
	}
	if filter.Priority != "" {
		where = append(where, "priority = "+arg(filter.Priority))
	}
	if !filter.DueBefore.IsZero() {
		where = append(where, "due_date <= "+arg(filter.DueBefore))
	}

	q := `SELECT ` + taskColumns + ` FROM task WHERE ` + strings.Join(where, " AND ") +
		core.OrderingClause(filter.Ordering, taskOrderColumns, "due_date ASC") + ", id ASC"
	if filter.Limit > 0 {
		q += " LIMIT " + arg(filter.Limit)
	}

	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting tasks")
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toTask())
	}
	return tasks, nil
}

func (repo *taskRepository) GetByID(ctx context.Context, id, userID string) (task.Task, error) {
	if !isUUID(id) || !isUUID(userID) {
		return task.Task{}, task.ErrNotFound
	}
	var row taskRow
	q := `SELECT ` + taskColumns + ` FROM task WHERE id = $1 AND user_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(err, "selecting task")
	}
	return row.toTask(), nil
}

func (repo *taskRepository) Create(ctx context.Context, t task.Task) (task.Task, error) {
	q := `INSERT INTO task (` + taskColumns + `) VALUES (
		:id, :user_id, :title, :description, :subject, :priority, :due_date, :is_completed, :completed_at,
		:estimated_hours, :actual_hours, :tags, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toTaskRow(t)); err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	return t, nil
}

func (repo *taskRepository) Update(ctx context.Context, t task.Task) (task.Task, error) {
	q := `UPDATE task SET
		title = :title, description = :description, subject = :subject, priority = :priority,
		due_date = :due_date, is_completed = :is_completed, completed_at = :completed_at,
		estimated_hours = :estimated_hours, actual_hours = :actual_hours, tags = :tags, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`
	res, err := repo.db.NamedExecContext(ctx, q, toTaskRow(t))
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return repo.GetByID(ctx, t.ID, t.UserID)
}

func (repo *taskRepository) Delete(ctx context.Context, id, userID string) error {
	if !isUUID(id) || !isUUID(userID) {
		return task.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM task WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting task")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return task.ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
