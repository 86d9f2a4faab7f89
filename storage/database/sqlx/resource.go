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

	"github.com/trezcool/ustawi/core/resource"
)

const resourceColumns = `id, user_id, title, type, content, subject, folder, tags, is_public, description, created_at, updated_at`

// distinctColumns whitelists the columns Distinct may read.
var distinctColumns = map[string]bool{"folder": true, "subject": true}

type resourceRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Title       string         `db:"title"`
	Type        string         `db:"type"`
	Content     string         `db:"content"`
	Subject     string         `db:"subject"`
	Folder      string         `db:"folder"`
	Tags        pq.StringArray `db:"tags"`
	IsPublic    bool           `db:"is_public"`
	Description string         `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func toResourceRow(r resource.Resource) resourceRow {
	return resourceRow{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Type:        r.Type,
		Content:     r.Content,
		Subject:     r.Subject,
		Folder:      r.Folder,
		Tags:        pq.StringArray(nonNil(r.Tags)),
		IsPublic:    r.IsPublic,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (row resourceRow) toResource() resource.Resource {
	return resource.Resource{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Type:        row.Type,
		Content:     row.Content,
		Subject:     row.Subject,
		Folder:      row.Folder,
		Tags:        nonNil(row.Tags),
		IsPublic:    row.IsPublic,
		Description: row.Description,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

type resourceRepository struct {
	db *sqlx.DB
}

var _ resource.Repository = (*resourceRepository)(nil)

func NewResourceRepository(db *sqlx.DB) resource.Repository {
	return &resourceRepository{db: db}
}

func (repo *resourceRepository) Query(ctx context.Context, userID string, filter resource.QueryFilter) ([]resource.Resource, error) {
	if !isUUID(userID) {
		return []resource.Resource{}, nil
	}

	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	where := []string{"user_id = " + arg(userID)}
	if filter.Subject != "" {
		where = append(where, "subject = "+arg(filter.Subject))
	}
	if filter.Folder != "" {
		where = append(where, "folder = "+arg(filter.Folder))
	}
	if filter.Type != "" {
		where = append(where, "type = "+arg(filter.Type))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}
	q := `SELECT ` + resourceColumns + ` FROM resource WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		q += " LIMIT " + arg(filter.Limit)
	}

	var rows []resourceRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting resources")
	}
	resources := make([]resource.Resource, 0, len(rows))
	for _, row := range rows {
		resources = append(resources, row.toResource())
	}
	return resources, nil
}

func (repo *resourceRepository) GetByID(ctx context.Context, id, userID string) (resource.Resource, error) {
	if !isUUID(id) || !isUUID(userID) {
		return resource.Resource{}, resource.ErrNotFound
	}
	var row resourceRow
	q := `SELECT ` + resourceColumns + ` FROM resource WHERE id = $1 AND user_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return resource.Resource{}, resource.ErrNotFound
		}
		return resource.Resource{}, errors.Wrap(err, "selecting resource")
	}
	return row.toResource(), nil
}

func (repo *resourceRepository) Create(ctx context.Context, r resource.Resource) (resource.Resource, error) {
	q := `INSERT INTO resource (` + resourceColumns + `) VALUES (
		:id, :user_id, :title, :type, :content, :subject, :folder, :tags, :is_public, :description, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toResourceRow(r)); err != nil {
		return resource.Resource{}, errors.Wrap(err, "inserting resource")
	}
	return r, nil
}

func (repo *resourceRepository) Update(ctx context.Context, r resource.Resource) (resource.Resource, error) {
	q := `UPDATE resource SET
		title = :title, type = :type, content = :content, subject = :subject, folder = :folder,
		tags = :tags, is_public = :is_public, description = :description, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`
	res, err := repo.db.NamedExecContext(ctx, q, toResourceRow(r))
	if err != nil {
		return resource.Resource{}, errors.Wrap(err, "updating resource")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return resource.Resource{}, resource.ErrNotFound
	}
	return repo.GetByID(ctx, r.ID, r.UserID)
}

func (repo *resourceRepository) Delete(ctx context.Context, id, userID string) error {
	if !isUUID(id) || !isUUID(userID) {
		return resource.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM resource WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting resource")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return resource.ErrNotFound
	}
	return nil
}

func (repo *resourceRepository) Distinct(ctx context.Context, userID, column string) ([]string, error) {
	if !distinctColumns[column] {
		return nil, errors.Errorf("cannot list distinct %q", column)
	}
	values := make([]string, 0)
	if !isUUID(userID) {
		return values, nil
	}
	q := `SELECT DISTINCT ` + column + ` FROM resource WHERE user_id = $1 ORDER BY ` + column
	if err := repo.db.SelectContext(ctx, &values, q, userID); err != nil {
		return nil, errors.Wrapf(err, "selecting distinct %s", column)
	}
	return values, nil
}
