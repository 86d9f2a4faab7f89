package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/assignment"
)

const assignmentColumns = `id, user_id, subject, title, description, due_date, priority, status, ai_help, notes,
	completed_at, created_at, updated_at`

var assignmentOrderColumns = map[string]string{
	"due_date":   "due_date",
	"title":      "title",
	"subject":    "subject",
	"status":     "status",
	"priority":   "CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 WHEN 'urgent' THEN 4 ELSE 0 END",
	"created_at": "created_at",
}

// helpJSON stores the help history in a JSONB array.
type helpJSON []assignment.HelpRecord

func (h helpJSON) Value() (driver.Value, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]assignment.HelpRecord(h))
}

func (h *helpJSON) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*h = helpJSON{}
		return nil
	default:
		return errors.Errorf("unsupported ai_help type %T", src)
	}
	return json.Unmarshal(data, (*[]assignment.HelpRecord)(h))
}

type assignmentRow struct {
	ID          string       `db:"id"`
	UserID      string       `db:"user_id"`
	Subject     string       `db:"subject"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	DueDate     time.Time    `db:"due_date"`
	Priority    string       `db:"priority"`
	Status      string       `db:"status"`
	AIHelp      helpJSON     `db:"ai_help"`
	Notes       string       `db:"notes"`
	CompletedAt sql.NullTime `db:"completed_at"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

func toAssignmentRow(a assignment.Assignment) assignmentRow {
	return assignmentRow{
		ID:          a.ID,
		UserID:      a.UserID,
		Subject:     a.Subject,
		Title:       a.Title,
		Description: a.Description,
		DueDate:     a.DueDate,
		Priority:    a.Priority,
		Status:      a.Status,
		AIHelp:      helpJSON(a.AIHelp),
		Notes:       a.Notes,
		CompletedAt: nullTime(a.CompletedAt),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (row assignmentRow) toAssignment() assignment.Assignment {
	a := assignment.Assignment{
		ID:          row.ID,
		UserID:      row.UserID,
		Subject:     row.Subject,
		Title:       row.Title,
		Description: row.Description,
		DueDate:     row.DueDate.UTC(),
		Priority:    row.Priority,
		Status:      row.Status,
		AIHelp:      []assignment.HelpRecord(row.AIHelp),
		Notes:       row.Notes,
		CompletedAt: timePtr(row.CompletedAt),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if a.AIHelp == nil {
		a.AIHelp = []assignment.HelpRecord{}
	}
	for i := range a.AIHelp {
		a.AIHelp[i].Timestamp = a.AIHelp[i].Timestamp.UTC()
	}
	return a
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) Query(ctx context.Context, userID string, filter assignment.QueryFilter) ([]assignment.Assignment, error) {
	if !isUUID(userID) {
		return []assignment.Assignment{}, nil
	}

	args := []interface{}{userID}
	q := `SELECT ` + assignmentColumns + ` FROM assignment WHERE user_id = $1`
	if filter.Status != "" {
		args = append(args, filter.Status)
		q += ` AND status = $2`
	}
	q += core.OrderingClause(filter.Ordering, assignmentOrderColumns, "due_date ASC") + ", id ASC"

	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting assignments")
	}
	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, row.toAssignment())
	}
	return assignments, nil
}

func (repo *assignmentRepository) GetByID(ctx context.Context, id, userID string) (assignment.Assignment, error) {
	if !isUUID(id) || !isUUID(userID) {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	var row assignmentRow
	q := `SELECT ` + assignmentColumns + ` FROM assignment WHERE id = $1 AND user_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "selecting assignment")
	}
	return row.toAssignment(), nil
}

func (repo *assignmentRepository) Create(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := `INSERT INTO assignment (` + assignmentColumns + `) VALUES (
		:id, :user_id, :subject, :title, :description, :due_date, :priority, :status, :ai_help, :notes,
		:completed_at, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toAssignmentRow(a)); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) Update(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := `UPDATE assignment SET
		subject = :subject, title = :title, description = :description, due_date = :due_date,
		priority = :priority, status = :status, notes = :notes, completed_at = :completed_at, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`
	res, err := repo.db.NamedExecContext(ctx, q, toAssignmentRow(a))
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return repo.GetByID(ctx, a.ID, a.UserID)
}

// AppendHelp appends in place so that concurrent questions do not overwrite each other.
func (repo *assignmentRepository) AppendHelp(ctx context.Context, id, userID string, rec assignment.HelpRecord) error {
	if !isUUID(id) || !isUUID(userID) {
		return assignment.ErrNotFound
	}
	q := `UPDATE assignment SET ai_help = ai_help || $1::jsonb WHERE id = $2 AND user_id = $3`
	res, err := repo.db.ExecContext(ctx, q, helpJSON{rec}, id, userID)
	if err != nil {
		return errors.Wrap(err, "appending help record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (repo *assignmentRepository) Delete(ctx context.Context, id, userID string) error {
	if !isUUID(id) || !isUUID(userID) {
		return assignment.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM assignment WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}
