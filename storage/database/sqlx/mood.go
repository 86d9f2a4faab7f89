package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/mood"
)

const moodColumns = `id, user_id, mood, mood_value, note, stress_level, sleep_hours, activities, date, created_at, updated_at`

type moodRow struct {
	ID          string          `db:"id"`
	UserID      string          `db:"user_id"`
	Mood        string          `db:"mood"`
	MoodValue   int             `db:"mood_value"`
	Note        string          `db:"note"`
	StressLevel sql.NullInt32   `db:"stress_level"`
	SleepHours  sql.NullFloat64 `db:"sleep_hours"`
	Activities  pq.StringArray  `db:"activities"`
	Date        time.Time       `db:"date"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func toMoodRow(e mood.Entry) moodRow {
	row := moodRow{
		ID:         e.ID,
		UserID:     e.UserID,
		Mood:       e.Mood,
		MoodValue:  e.MoodValue,
		Note:       e.Note,
		Activities: pq.StringArray(nonNil(e.Activities)),
		Date:       e.Date,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	if e.StressLevel != nil {
		row.StressLevel = sql.NullInt32{Int32: int32(*e.StressLevel), Valid: true}
	}
	if e.SleepHours != nil {
		row.SleepHours = sql.NullFloat64{Float64: *e.SleepHours, Valid: true}
	}
	return row
}

func (row moodRow) toEntry() mood.Entry {
	e := mood.Entry{
		ID:         row.ID,
		UserID:     row.UserID,
		Mood:       row.Mood,
		MoodValue:  row.MoodValue,
		Note:       row.Note,
		Activities: nonNil(row.Activities),
		Date:       row.Date.UTC(),
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
	if row.StressLevel.Valid {
		v := int(row.StressLevel.Int32)
		e.StressLevel = &v
	}
	if row.SleepHours.Valid {
		v := row.SleepHours.Float64
		e.SleepHours = &v
	}
	return e
}

type moodRepository struct {
	db *sqlx.DB
}

var _ mood.Repository = (*moodRepository)(nil)

func NewMoodRepository(db *sqlx.DB) mood.Repository {
	return &moodRepository{db: db}
}

func (repo *moodRepository) GetByDay(ctx context.Context, userID string, day time.Time) (mood.Entry, error) {
	if !isUUID(userID) {
		return mood.Entry{}, mood.ErrNotFound
	}
	var row moodRow
	q := `SELECT ` + moodColumns + ` FROM mood_entry WHERE user_id = $1 AND date >= $2 AND date < $3 LIMIT 1`
	if err := repo.db.GetContext(ctx, &row, q, userID, day, day.Add(24*time.Hour)); err != nil {
		if err == sql.ErrNoRows {
			return mood.Entry{}, mood.ErrNotFound
		}
		return mood.Entry{}, errors.Wrap(err, "selecting mood entry")
	}
	return row.toEntry(), nil
}

func (repo *moodRepository) QuerySince(ctx context.Context, userID string, since time.Time) ([]mood.Entry, error) {
	if !isUUID(userID) {
		return []mood.Entry{}, nil
	}
	var rows []moodRow
	q := `SELECT ` + moodColumns + ` FROM mood_entry WHERE user_id = $1 AND date >= $2 ORDER BY date DESC, id DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, userID, since); err != nil {
		return nil, errors.Wrap(err, "selecting mood entries")
	}
	entries := make([]mood.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toEntry())
	}
	return entries, nil
}

func (repo *moodRepository) Create(ctx context.Context, entry mood.Entry) (mood.Entry, error) {
	q := `INSERT INTO mood_entry (` + moodColumns + `) VALUES (
		:id, :user_id, :mood, :mood_value, :note, :stress_level, :sleep_hours, :activities, :date, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toMoodRow(entry)); err != nil {
		return mood.Entry{}, errors.Wrap(err, "inserting mood entry")
	}
	return entry, nil
}

func (repo *moodRepository) Update(ctx context.Context, entry mood.Entry) (mood.Entry, error) {
	q := `UPDATE mood_entry SET
		mood = :mood, mood_value = :mood_value, note = :note, stress_level = :stress_level,
		sleep_hours = :sleep_hours, activities = :activities, date = :date, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`
	res, err := repo.db.NamedExecContext(ctx, q, toMoodRow(entry))
	if err != nil {
		return mood.Entry{}, errors.Wrap(err, "updating mood entry")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return mood.Entry{}, mood.ErrNotFound
	}
	return entry, nil
}
