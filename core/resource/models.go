package resource

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ustawi/core"
)

const defaultFolder = "General"

var Types = []string{"document", "link", "note", "video", "audio"}

// Resource is a piece of study material: a note, a link or the reference to a document or a recording.
type Resource struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Content     string    `json:"content"`
	Subject     string    `json:"subject"`
	Folder      string    `json:"folder"`
	Tags        []string  `json:"tags"`
	IsPublic    bool      `json:"is_public"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type NewResource struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Type        string   `json:"type" validate:"required,oneof=document link note video audio"`
	Content     string   `json:"content" validate:"max=100000"`
	Subject     string   `json:"subject" validate:"required,max=100"`
	Folder      string   `json:"folder" validate:"max=100"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=50"`
	IsPublic    bool     `json:"is_public"`
	Description string   `json:"description" validate:"max=500"`
}

func (nr *NewResource) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	nr.Type = core.CleanString(nr.Type, true /* lower */)
	nr.Subject = core.CleanString(nr.Subject)
	nr.Folder = core.CleanString(nr.Folder)
	nr.Tags = core.CleanStrings(nr.Tags)
	nr.Description = core.CleanString(nr.Description)
	return validate.Struct(nr)
}

// UpdateResource holds the fields to change; nil and empty fields are left untouched.
type UpdateResource struct {
	Title       string   `json:"title" validate:"omitempty,max=200"`
	Type        string   `json:"type" validate:"omitempty,oneof=document link note video audio"`
	Content     *string  `json:"content" validate:"omitempty,max=100000"`
	Subject     string   `json:"subject" validate:"omitempty,max=100"`
	Folder      string   `json:"folder" validate:"omitempty,max=100"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=50"`
	IsPublic    *bool    `json:"is_public"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
}

func (ur *UpdateResource) Validate(validate *validator.Validate) error {
	ur.Title = core.CleanString(ur.Title)
	ur.Type = core.CleanString(ur.Type, true /* lower */)
	ur.Subject = core.CleanString(ur.Subject)
	ur.Folder = core.CleanString(ur.Folder)
	ur.Tags = core.CleanStrings(ur.Tags)
	if ur.Description != nil {
		desc := core.CleanString(*ur.Description)
		ur.Description = &desc
	}
	return validate.Struct(ur)
}

type QueryFilter struct {
	Subject string
	Folder  string
	Type    string
	// Search matches the title or the description, case-insensitively.
	Search string
	Limit  int
}

func (qf *QueryFilter) Clean() {
	qf.Subject = core.CleanString(qf.Subject)
	qf.Folder = core.CleanString(qf.Folder)
	qf.Type = core.CleanString(qf.Type, true /* lower */)
	qf.Search = core.CleanString(qf.Search)
}
