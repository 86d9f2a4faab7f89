package journal

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/sentiment"
)

// Moods a journal entry may be tagged with.
const (
	MoodVerySad   = "very-sad"
	MoodSad       = "sad"
	MoodNeutral   = "neutral"
	MoodHappy     = "happy"
	MoodVeryHappy = "very-happy"
)

var Moods = []string{MoodVerySad, MoodSad, MoodNeutral, MoodHappy, MoodVeryHappy}

type Entry struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Sentiment sentiment.Result `json:"sentiment"`
	Tags      []string         `json:"tags"`
	Mood      string           `json:"mood,omitempty"`
	IsPrivate bool             `json:"is_private"`
	IsPinned  bool             `json:"is_pinned"`
	CreatedAt time.Time        `json:"created_at"` // UTC
	UpdatedAt time.Time        `json:"updated_at"` // UTC
}

// NewEntry contains information needed to create a new Entry.
type NewEntry struct {
	Title     string   `json:"title" validate:"required,max=200"`
	Content   string   `json:"content" validate:"required,max=5000"`
	Tags      []string `json:"tags" validate:"omitempty,dive,max=50"`
	Mood      string   `json:"mood" validate:"omitempty,oneof=very-sad sad neutral happy very-happy"`
	IsPrivate *bool    `json:"is_private"`
}

func (ne *NewEntry) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Content = core.CleanString(ne.Content)
	ne.Tags = core.CleanStrings(ne.Tags)
	ne.Mood = core.CleanString(ne.Mood, true /* lower */)
	return validate.Struct(ne)
}

// UpdateEntry defines what information may be provided to modify an existing Entry.
// Zero values leave the stored field untouched.
type UpdateEntry struct {
	Title     string   `json:"title" validate:"omitempty,max=200"`
	Content   string   `json:"content" validate:"omitempty,max=5000"`
	Tags      []string `json:"tags" validate:"omitempty,dive,max=50"`
	Mood      string   `json:"mood" validate:"omitempty,oneof=very-sad sad neutral happy very-happy"`
	IsPrivate *bool    `json:"is_private"`
	IsPinned  *bool    `json:"is_pinned"`
}

func (ue *UpdateEntry) Validate(validate *validator.Validate) error {
	ue.Title = core.CleanString(ue.Title)
	ue.Content = core.CleanString(ue.Content)
	ue.Tags = core.CleanStrings(ue.Tags)
	ue.Mood = core.CleanString(ue.Mood, true /* lower */)
	return validate.Struct(ue)
}
