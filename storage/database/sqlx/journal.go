package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/journal"
	"github.com/trezcool/ustawi/core/sentiment"
)

const journalColumns = `id, user_id, title, content, sentiment, tags, mood, is_private, is_pinned, created_at, updated_at`

// sentimentJSON stores a sentiment.Result in a JSONB column.
type sentimentJSON sentiment.Result

func (s sentimentJSON) Value() (driver.Value, error) {
	return json.Marshal(sentiment.Result(s))
}

func (s *sentimentJSON) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("unsupported sentiment type %T", src)
	}
	return json.Unmarshal(data, (*sentiment.Result)(s))
}

type journalRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Title     string         `db:"title"`
	Content   string         `db:"content"`
	Sentiment sentimentJSON  `db:"sentiment"`
	Tags      pq.StringArray `db:"tags"`
	Mood      string         `db:"mood"`
	IsPrivate bool           `db:"is_private"`
	IsPinned  bool           `db:"is_pinned"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func toJournalRow(e journal.Entry) journalRow {
	return journalRow{
		ID:        e.ID,
		UserID:    e.UserID,
		Title:     e.Title,
		Content:   e.Content,
		Sentiment: sentimentJSON(e.Sentiment),
		Tags:      pq.StringArray(nonNil(e.Tags)),
		Mood:      e.Mood,
		IsPrivate: e.IsPrivate,
		IsPinned:  e.IsPinned,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (row journalRow) toEntry() journal.Entry {
	e := journal.Entry{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title,
		Content:   row.Content,
		Sentiment: sentiment.Result(row.Sentiment),
		Tags:      nonNil(row.Tags),
		Mood:      row.Mood,
		IsPrivate: row.IsPrivate,
		IsPinned:  row.IsPinned,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if e.Sentiment.Emotions == nil {
		e.Sentiment.Emotions = []string{}
	}
	return e
}

type journalRepository struct {
	db *sqlx.DB
}

var _ journal.Repository = (*journalRepository)(nil)

func NewJournalRepository(db *sqlx.DB) journal.Repository {
	return &journalRepository{db: db}
}

func (repo *journalRepository) selectEntries(ctx context.Context, q string, args ...interface{}) ([]journal.Entry, error) {
	var rows []journalRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting journal entries")
	}
	entries := make([]journal.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toEntry())
	}
	return entries, nil
}

func (repo *journalRepository) QueryByUser(ctx context.Context, userID string) ([]journal.Entry, error) {
	if !isUUID(userID) {
		return []journal.Entry{}, nil
	}
	q := `SELECT ` + journalColumns + ` FROM journal_entry WHERE user_id = $1 ORDER BY is_pinned DESC, created_at DESC, id DESC`
	return repo.selectEntries(ctx, q, userID)
}

func (repo *journalRepository) QueryRecentByUser(ctx context.Context, userID string, limit int) ([]journal.Entry, error) {
	if !isUUID(userID) {
		return []journal.Entry{}, nil
	}
	q := `SELECT ` + journalColumns + ` FROM journal_entry WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	return repo.selectEntries(ctx, q, userID, limit)
}

func (repo *journalRepository) GetByID(ctx context.Context, id, userID string) (journal.Entry, error) {
	if !isUUID(id) || !isUUID(userID) {
		return journal.Entry{}, journal.ErrNotFound
	}
	var row journalRow
	q := `SELECT ` + journalColumns + ` FROM journal_entry WHERE id = $1 AND user_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return journal.Entry{}, journal.ErrNotFound
		}
		return journal.Entry{}, errors.Wrap(err, "selecting journal entry")
	}
	return row.toEntry(), nil
}

func (repo *journalRepository) Create(ctx context.Context, entry journal.Entry) (journal.Entry, error) {
	q := `INSERT INTO journal_entry (` + journalColumns + `) VALUES (
		:id, :user_id, :title, :content, :sentiment, :tags, :mood, :is_private, :is_pinned, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toJournalRow(entry)); err != nil {
		return journal.Entry{}, errors.Wrap(err, "inserting journal entry")
	}
	return entry, nil
}

func (repo *journalRepository) Update(ctx context.Context, entry journal.Entry) (journal.Entry, error) {
	q := `UPDATE journal_entry SET
		title = :title, content = :content, sentiment = :sentiment, tags = :tags, mood = :mood,
		is_private = :is_private, is_pinned = :is_pinned, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`
	res, err := repo.db.NamedExecContext(ctx, q, toJournalRow(entry))
	if err != nil {
		return journal.Entry{}, errors.Wrap(err, "updating journal entry")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return journal.Entry{}, journal.ErrNotFound
	}
	return repo.GetByID(ctx, entry.ID, entry.UserID)
}

func (repo *journalRepository) Delete(ctx context.Context, id, userID string) error {
	if !isUUID(id) || !isUUID(userID) {
		return journal.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM journal_entry WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting journal entry")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return journal.ErrNotFound
	}
	return nil
}

// isUUID reports whether s can be compared with a UUID column without a cast error.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
