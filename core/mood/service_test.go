package mood_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ustawi/core/mood"
	inmemdb "github.com/trezcool/ustawi/storage/database/inmem"
	"github.com/trezcool/ustawi/testutil"
)

func setup(now time.Time) (*mood.Service, clockwork.FakeClock) {
	db := inmemdb.Open()
	clock := clockwork.NewFakeClockAt(now)
	validate, _ := testutil.NewValidator()
	return mood.NewService(inmemdb.NewMoodRepository(db), validate, clock), clock
}

func intPtr(i int) *int { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestValue(t *testing.T) {
	tests := []struct {
		mood string
		want int
	}{
		{mood.VerySad, 1},
		{mood.Sad, 2},
		{mood.Neutral, 3},
		{mood.Happy, 4},
		{mood.VeryHappy, 5},
		{"meh", 0},
	}
	for _, tt := range tests {
		t.Run(tt.mood, func(t *testing.T) {
			if got := mood.Value(tt.mood); got != tt.want {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestService_Log(t *testing.T) {
	ctx := context.Background()
	svc, clock := setup(time.Date(2021, time.March, 10, 8, 0, 0, 0, time.UTC))

	first, err := svc.Log(ctx, "u1", mood.NewEntry{Mood: "Sad", StressLevel: intPtr(8), Activities: []string{"studying"}})
	require.NoError(t, err)
	assert.Equal(t, "Mood logged successfully", first.Message)
	assert.Equal(t, mood.MotivationalMessage(mood.Sad), first.MotivationalMessage)
	assert.Equal(t, mood.Sad, first.Mood.Mood)
	assert.Equal(t, 2, first.Mood.MoodValue)

	// same day: replaced
	clock.Advance(10 * time.Hour)
	second, err := svc.Log(ctx, "u1", mood.NewEntry{Mood: mood.VeryHappy})
	require.NoError(t, err)
	assert.Equal(t, first.Mood.ID, second.Mood.ID)
	assert.Equal(t, 5, second.Mood.MoodValue)
	assert.Nil(t, second.Mood.StressLevel)
	assert.Equal(t, []string{}, second.Mood.Activities)
	assert.Equal(t, first.Mood.CreatedAt, second.Mood.CreatedAt)

	// next day: new entry
	clock.Advance(8 * time.Hour)
	third, err := svc.Log(ctx, "u1", mood.NewEntry{Mood: mood.Neutral})
	require.NoError(t, err)
	assert.NotEqual(t, first.Mood.ID, third.Mood.ID)

	history, err := svc.History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, third.Mood.ID, history[0].ID, "newest first")

	tests := []struct {
		name      string
		ne        mood.NewEntry
		wantField string
	}{
		{name: "missing mood", ne: mood.NewEntry{}, wantField: "mood"},
		{name: "unknown mood", ne: mood.NewEntry{Mood: "meh"}, wantField: "mood"},
		{name: "stress too high", ne: mood.NewEntry{Mood: mood.Happy, StressLevel: intPtr(11)}, wantField: "stress_level"},
		{name: "negative sleep", ne: mood.NewEntry{Mood: mood.Happy, SleepHours: floatPtr(-1)}, wantField: "sleep_hours"},
		{name: "unknown activity", ne: mood.NewEntry{Mood: mood.Happy, Activities: []string{"gaming"}}, wantField: "activities[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Log(ctx, "u1", tt.ne)
			verrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "want validator.ValidationErrors, got %v", err)
			assert.Equal(t, tt.wantField, verrs[0].Field())
		})
	}
}

func TestService_Today(t *testing.T) {
	ctx := context.Background()
	svc, clock := setup(time.Date(2021, time.March, 10, 23, 0, 0, 0, time.UTC))

	today, err := svc.Today(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, today)

	logged, err := svc.Log(ctx, "u1", mood.NewEntry{Mood: mood.Happy})
	require.NoError(t, err)

	today, err = svc.Today(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, logged.Mood.ID, today.ID)

	clock.Advance(2 * time.Hour)
	today, err = svc.Today(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, today)
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2021, time.March, 1, 9, 0, 0, 0, time.UTC)
	svc, clock := setup(start)

	logs := []mood.NewEntry{
		{Mood: mood.Sad, StressLevel: intPtr(8), SleepHours: floatPtr(5)},
		{Mood: mood.Happy, StressLevel: intPtr(3)},
		{Mood: mood.Happy, SleepHours: floatPtr(8.5)},
	}
	for _, ne := range logs {
		_, err := svc.Log(ctx, "u1", ne)
		require.NoError(t, err)
		clock.Advance(24 * time.Hour)
	}

	stats, err := svc.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 3.33, stats.AverageMood)
	assert.Equal(t, 5.5, stats.AverageStress)
	assert.Equal(t, 6.75, stats.AverageSleep)
	assert.Equal(t, map[string]int{mood.Sad: 1, mood.Happy: 2}, stats.Distribution)

	// entries older than 30 days are ignored
	clock.Advance(40 * 24 * time.Hour)
	stats, err = svc.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)
	assert.Equal(t, 0.0, stats.AverageMood)
	assert.Equal(t, map[string]int{}, stats.Distribution)
}
