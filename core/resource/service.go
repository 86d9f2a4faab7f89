// Package resource keeps the students' study material organized by subject and folder.
package resource

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/trezcool/ustawi/core"
)

const DefaultLimit = 50

var ErrNotFound = core.NewNotFoundError("resource not found")

type (
	Repository interface {
		// Query returns the user's matching resources, newest first.
		Query(ctx context.Context, userID string, filter QueryFilter) ([]Resource, error)
		GetByID(ctx context.Context, id, userID string) (Resource, error)
		Create(ctx context.Context, r Resource) (Resource, error)
		Update(ctx context.Context, r Resource) (Resource, error)
		Delete(ctx context.Context, id, userID string) error
		// Distinct returns the sorted distinct values of column ("folder" or "subject") among the user's resources.
		Distinct(ctx context.Context, userID, column string) ([]string, error)
	}

	ServiceInterface interface {
		Query(ctx context.Context, userID string, filter QueryFilter) ([]Resource, error)
		Create(ctx context.Context, userID string, nr NewResource) (Resource, error)
		Update(ctx context.Context, id, userID string, ur UpdateResource) (Resource, error)
		Delete(ctx context.Context, id, userID string) error
		Folders(ctx context.Context, userID string) ([]string, error)
		Subjects(ctx context.Context, userID string) ([]string, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		clock    clockwork.Clock
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, validate *validator.Validate, clock clockwork.Clock) *Service {
	return &Service{repo: repo, validate: validate, clock: clock}
}

func (svc *Service) now() time.Time {
	return svc.clock.Now().UTC()
}

func (svc *Service) Query(ctx context.Context, userID string, filter QueryFilter) ([]Resource, error) {
	filter.Clean()
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	return svc.repo.Query(ctx, userID, filter)
}

func (svc *Service) Create(ctx context.Context, userID string, nr NewResource) (Resource, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Resource{}, err
	}

	now := svc.now()
	r := Resource{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       nr.Title,
		Type:        nr.Type,
		Content:     nr.Content,
		Subject:     nr.Subject,
		Folder:      nr.Folder,
		Tags:        nr.Tags,
		IsPublic:    nr.IsPublic,
		Description: nr.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if r.Folder == "" {
		r.Folder = defaultFolder
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return svc.repo.Create(ctx, r)
}

func (svc *Service) Update(ctx context.Context, id, userID string, ur UpdateResource) (Resource, error) {
	if err := ur.Validate(svc.validate); err != nil {
		return Resource{}, err
	}

	r, err := svc.repo.GetByID(ctx, id, userID)
	if err != nil {
		return Resource{}, err
	}

	if ur.Title != "" {
		r.Title = ur.Title
	}
	if ur.Type != "" {
		r.Type = ur.Type
	}
	if ur.Content != nil {
		r.Content = *ur.Content
	}
	if ur.Subject != "" {
		r.Subject = ur.Subject
	}
	if ur.Folder != "" {
		r.Folder = ur.Folder
	}
	if ur.Tags != nil {
		r.Tags = ur.Tags
	}
	if ur.IsPublic != nil {
		r.IsPublic = *ur.IsPublic
	}
	if ur.Description != nil {
		r.Description = *ur.Description
	}
	r.UpdatedAt = svc.now()

	return svc.repo.Update(ctx, r)
}

func (svc *Service) Delete(ctx context.Context, id, userID string) error {
	return svc.repo.Delete(ctx, id, userID)
}

func (svc *Service) Folders(ctx context.Context, userID string) ([]string, error) {
	return svc.repo.Distinct(ctx, userID, "folder")
}

func (svc *Service) Subjects(ctx context.Context, userID string) ([]string, error) {
	return svc.repo.Distinct(ctx, userID, "subject")
}
