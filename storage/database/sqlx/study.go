package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/study"
)

const studyColumns = `id, user_id, subject, duration, planned_duration, type, date, start_time, end_time,
	is_completed, productivity, notes, related_task_id, break_duration, created_at, updated_at`

type studyRow struct {
	ID              string         `db:"id"`
	UserID          string         `db:"user_id"`
	Subject         string         `db:"subject"`
	Duration        int            `db:"duration"`
	PlannedDuration int            `db:"planned_duration"`
	Type            string         `db:"type"`
	Date            time.Time      `db:"date"`
	StartTime       time.Time      `db:"start_time"`
	EndTime         sql.NullTime   `db:"end_time"`
	IsCompleted     bool           `db:"is_completed"`
	Productivity    sql.NullInt32  `db:"productivity"`
	Notes           string         `db:"notes"`
	RelatedTaskID   sql.NullString `db:"related_task_id"`
	BreakDuration   int            `db:"break_duration"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func toStudyRow(s study.Session) studyRow {
	row := studyRow{
		ID:              s.ID,
		UserID:          s.UserID,
		Subject:         s.Subject,
		Duration:        s.Duration,
		PlannedDuration: s.PlannedDuration,
		Type:            s.Type,
		Date:            s.Date,
		StartTime:       s.StartTime,
		EndTime:         nullTime(s.EndTime),
		IsCompleted:     s.IsCompleted,
		Notes:           s.Notes,
		RelatedTaskID:   sql.NullString{String: s.RelatedTaskID, Valid: s.RelatedTaskID != ""},
		BreakDuration:   s.BreakDuration,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if s.Productivity != nil {
		row.Productivity = sql.NullInt32{Int32: int32(*s.Productivity), Valid: true}
	}
	return row
}

func (row studyRow) toSession() study.Session {
	s := study.Session{
		ID:              row.ID,
		UserID:          row.UserID,
		Subject:         row.Subject,
		Duration:        row.Duration,
		PlannedDuration: row.PlannedDuration,
		Type:            row.Type,
		Date:            row.Date.UTC(),
		StartTime:       row.StartTime.UTC(),
		EndTime:         timePtr(row.EndTime),
		IsCompleted:     row.IsCompleted,
		Notes:           row.Notes,
		RelatedTaskID:   row.RelatedTaskID.String,
		BreakDuration:   row.BreakDuration,
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
	if row.Productivity.Valid {
		p := int(row.Productivity.Int32)
		s.Productivity = &p
	}
	return s
}

type studyRepository struct {
	db *sqlx.DB
}

var _ study.Repository = (*studyRepository)(nil)

func NewStudyRepository(db *sqlx.DB) study.Repository {
	return &studyRepository{db: db}
}

func (repo *studyRepository) Query(ctx context.Context, userID string, filter study.QueryFilter) ([]study.Session, error) {
	if !isUUID(userID) {
		return []study.Session{}, nil
	}

	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	where := []string{"user_id = " + arg(userID)}
	if !filter.Since.IsZero() {
		where = append(where, "date >= "+arg(filter.Since))
	}
	if filter.Subject != "" {
		where = append(where, "subject = "+arg(filter.Subject))
	}
	if filter.Type != "" {
		where = append(where, "type = "+arg(filter.Type))
	}
	q := `SELECT ` + studyColumns + ` FROM study_session WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY start_time DESC, id DESC`

	var rows []studyRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting study sessions")
	}
	sessions := make([]study.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toSession())
	}
	return sessions, nil
}

func (repo *studyRepository) GetByID(ctx context.Context, id, userID string) (study.Session, error) {
	if !isUUID(id) || !isUUID(userID) {
		return study.Session{}, study.ErrNotFound
	}
	var row studyRow
	q := `SELECT ` + studyColumns + ` FROM study_session WHERE id = $1 AND user_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return study.Session{}, study.ErrNotFound
		}
		return study.Session{}, errors.Wrap(err, "selecting study session")
	}
	return row.toSession(), nil
}

func (repo *studyRepository) Create(ctx context.Context, s study.Session) (study.Session, error) {
	q := `INSERT INTO study_session (` + studyColumns + `) VALUES (
		:id, :user_id, :subject, :duration, :planned_duration, :type, :date, :start_time, :end_time,
		:is_completed, :productivity, :notes, :related_task_id, :break_duration, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toStudyRow(s)); err != nil {
		return study.Session{}, errors.Wrap(err, "inserting study session")
	}
	return s, nil
}

func (repo *studyRepository) Update(ctx context.Context, s study.Session) (study.Session, error) {
	q := `UPDATE study_session SET
		subject = :subject, duration = :duration, planned_duration = :planned_duration, type = :type,
		end_time = :end_time, is_completed = :is_completed, productivity = :productivity, notes = :notes,
		related_task_id = :related_task_id, break_duration = :break_duration, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`
	res, err := repo.db.NamedExecContext(ctx, q, toStudyRow(s))
	if err != nil {
		return study.Session{}, errors.Wrap(err, "updating study session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return study.Session{}, study.ErrNotFound
	}
	return repo.GetByID(ctx, s.ID, s.UserID)
}

func (repo *studyRepository) Delete(ctx context.Context, id, userID string) error {
	if !isUUID(id) || !isUUID(userID) {
		return study.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM study_session WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting study session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return study.ErrNotFound
	}
	return nil
}
