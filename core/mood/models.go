package mood

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ustawi/core"
)

const (
	VerySad   = "very-sad"
	Sad       = "sad"
	Neutral   = "neutral"
	Happy     = "happy"
	VeryHappy = "very-happy"
)

var (
	Moods = []string{VerySad, Sad, Neutral, Happy, VeryHappy}

	Activities = []string{"exercise", "socializing", "studying", "work", "relaxation", "hobbies"}

	values = map[string]int{VerySad: 1, Sad: 2, Neutral: 3, Happy: 4, VeryHappy: 5}

	motivationalMessages = map[string]string{
		VerySad:   "It's okay to have tough days. Remember, you're not alone and tomorrow is a new opportunity.",
		Sad:       "Challenging times help us grow stronger. Take care of yourself today.",
		Neutral:   "Every day is a fresh start. What's one small thing that could make today better?",
		Happy:     "Great to see you're doing well! Keep up the positive momentum.",
		VeryHappy: "Your positive energy is wonderful! Share that joy with others around you.",
	}
)

// Value maps a mood to 1 (very-sad) .. 5 (very-happy); unknown moods map to 0.
func Value(mood string) int {
	return values[mood]
}

// MotivationalMessage returns the message shown after logging mood.
func MotivationalMessage(mood string) string {
	return motivationalMessages[mood]
}

// Entry is a user's mood for one UTC day.
type Entry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Mood        string    `json:"mood"`
	MoodValue   int       `json:"mood_value"`
	Note        string    `json:"note"`
	StressLevel *int      `json:"stress_level"`
	SleepHours  *float64  `json:"sleep_hours"`
	Activities  []string  `json:"activities"`
	Date        time.Time `json:"date"`       // UTC
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type NewEntry struct {
	Mood        string   `json:"mood" validate:"required,oneof=very-sad sad neutral happy very-happy"`
	Note        string   `json:"note" validate:"max=200"`
	StressLevel *int     `json:"stress_level" validate:"omitempty,min=1,max=10"`
	SleepHours  *float64 `json:"sleep_hours" validate:"omitempty,min=0,max=24"`
	Activities  []string `json:"activities" validate:"omitempty,dive,oneof=exercise socializing studying work relaxation hobbies"`
}

func (ne *NewEntry) Validate(validate *validator.Validate) error {
	ne.Mood = core.CleanString(ne.Mood, true /* lower */)
	ne.Note = core.CleanString(ne.Note)
	ne.Activities = core.CleanStrings(ne.Activities, true /* lower */)
	return validate.Struct(ne)
}

// Logged is returned after a mood has been logged.
type Logged struct {
	Mood                Entry  `json:"mood"`
	Message             string `json:"message"`
	MotivationalMessage string `json:"motivational_message"`
}

type Stats struct {
	AverageMood   float64        `json:"average_mood"`
	TotalEntries  int            `json:"total_entries"`
	AverageStress float64        `json:"average_stress"`
	AverageSleep  float64        `json:"average_sleep"`
	Distribution  map[string]int `json:"mood_distribution"`
}
