package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/ustawi/core/resource"
)

type resourceRepository struct {
	db *resourceTable
}

var _ resource.Repository = (*resourceRepository)(nil)

func NewResourceRepository(db *DB) resource.Repository {
	return &resourceRepository{db: db.resource}
}

func (repo *resourceRepository) Query(_ context.Context, userID string, filter resource.QueryFilter) ([]resource.Resource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	search := strings.ToLower(filter.Search)
	resources := make([]resource.Resource, 0)
	for _, r := range repo.db.table {
		if r.UserID != userID {
			continue
		}
		if (filter.Subject != "" && r.Subject != filter.Subject) ||
			(filter.Folder != "" && r.Folder != filter.Folder) ||
			(filter.Type != "" && r.Type != filter.Type) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Title), search) &&
			!strings.Contains(strings.ToLower(r.Description), search) {
			continue
		}
		resources = append(resources, copyResource(*r))
	}
	sort.Slice(resources, func(i, j int) bool {
		if !resources[i].CreatedAt.Equal(resources[j].CreatedAt) {
			return resources[i].CreatedAt.After(resources[j].CreatedAt)
		}
		return resources[i].ID > resources[j].ID
	})
	if filter.Limit > 0 && len(resources) > filter.Limit {
		resources = resources[:filter.Limit]
	}
	return resources, nil
}

func (repo *resourceRepository) GetByID(_ context.Context, id, userID string) (resource.Resource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.table[id]; ok && r.UserID == userID {
		return copyResource(*r), nil
	}
	return resource.Resource{}, resource.ErrNotFound
}

func (repo *resourceRepository) Create(_ context.Context, r resource.Resource) (resource.Resource, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r = copyResource(r)
	repo.db.table[r.ID] = &r
	return copyResource(r), nil
}

func (repo *resourceRepository) Update(_ context.Context, r resource.Resource) (resource.Resource, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[r.ID]
	if !ok || orig.UserID != r.UserID {
		return resource.Resource{}, resource.ErrNotFound
	}
	r = copyResource(r)
	r.CreatedAt = orig.CreatedAt
	repo.db.table[r.ID] = &r
	return copyResource(r), nil
}

func (repo *resourceRepository) Delete(_ context.Context, id, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if r, ok := repo.db.table[id]; ok && r.UserID == userID {
		delete(repo.db.table, id)
		return nil
	}
	return resource.ErrNotFound
}

func (repo *resourceRepository) Distinct(_ context.Context, userID, column string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, r := range repo.db.table {
		if r.UserID != userID {
			continue
		}
		v := r.Subject
		if column == "folder" {
			v = r.Folder
		}
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values, nil
}

func copyResource(r resource.Resource) resource.Resource {
	r.Tags = append([]string{}, r.Tags...)
	return r
}
