package journal_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ustawi/core/journal"
	"github.com/trezcool/ustawi/core/sentiment"
	inmemdb "github.com/trezcool/ustawi/storage/database/inmem"
	"github.com/trezcool/ustawi/testutil"
)

var t0 = time.Date(2021, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *journal.Service
	repo     journal.Repository
	analyzer *testutil.StubAnalyzer
	clock    clockwork.FakeClock
}

func setup() fixture {
	db := inmemdb.Open()
	repo := inmemdb.NewJournalRepository(db)
	analyzer := &testutil.StubAnalyzer{
		Result: sentiment.Result{Score: 7.5, Label: sentiment.Positive, Confidence: 80, Emotions: []string{"joy"}},
	}
	clock := clockwork.NewFakeClockAt(t0)
	validate, _ := testutil.NewValidator()
	return fixture{
		svc:      journal.NewService(repo, analyzer, validate, clock),
		repo:     repo,
		analyzer: analyzer,
		clock:    clock,
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	f := setup()

	t.Run("defaults", func(t *testing.T) {
		entry, err := f.svc.Create(ctx, "u1", journal.NewEntry{Title: "  Day one ", Content: "I am happy"})
		require.NoError(t, err)

		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, "u1", entry.UserID)
		assert.Equal(t, "Day one", entry.Title)
		assert.True(t, entry.IsPrivate)
		assert.False(t, entry.IsPinned)
		assert.Equal(t, []string{}, entry.Tags)
		assert.Equal(t, f.analyzer.Result, entry.Sentiment)
		assert.Equal(t, t0, entry.CreatedAt)
		assert.Equal(t, t0, entry.UpdatedAt)

		stored, err := f.repo.GetByID(ctx, entry.ID, "u1")
		require.NoError(t, err)
		assert.Equal(t, entry, stored)
	})

	t.Run("public", func(t *testing.T) {
		public := false
		entry, err := f.svc.Create(ctx, "u1", journal.NewEntry{Title: "t", Content: "c", IsPrivate: &public, Mood: "Happy"})
		require.NoError(t, err)
		assert.False(t, entry.IsPrivate)
		assert.Equal(t, journal.MoodHappy, entry.Mood)
	})

	tests := []struct {
		name      string
		ne        journal.NewEntry
		wantField string
	}{
		{name: "missing title", ne: journal.NewEntry{Content: "c"}, wantField: "title"},
		{name: "blank content", ne: journal.NewEntry{Title: "t", Content: "   "}, wantField: "content"},
		{name: "invalid mood", ne: journal.NewEntry{Title: "t", Content: "c", Mood: "meh"}, wantField: "mood"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := f.analyzer.Calls
			_, err := f.svc.Create(ctx, "u1", tt.ne)
			verrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "want validator.ValidationErrors, got %v", err)
			assert.Equal(t, tt.wantField, verrs[0].Field())
			assert.Equal(t, calls, f.analyzer.Calls, "no analysis before validation")
		})
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	f := setup()
	orig := testutil.CreateEntry(t, f.repo, "u1", "Exams", "I am happy", t0.Add(-time.Hour))
	f.clock.Advance(time.Minute)

	t.Run("same content is not re-analyzed", func(t *testing.T) {
		pinned := true
		got, err := f.svc.Update(ctx, orig.ID, "u1", journal.UpdateEntry{Content: orig.Content, IsPinned: &pinned, Tags: []string{"exams"}})
		require.NoError(t, err)
		assert.Equal(t, 0, f.analyzer.Calls)
		assert.Equal(t, orig.Sentiment, got.Sentiment)
		assert.Equal(t, orig.Title, got.Title)
		assert.True(t, got.IsPinned)
		assert.Equal(t, []string{"exams"}, got.Tags)
		assert.Equal(t, orig.CreatedAt, got.CreatedAt)
		assert.Equal(t, f.clock.Now(), got.UpdatedAt)
	})

	t.Run("new content is re-analyzed", func(t *testing.T) {
		got, err := f.svc.Update(ctx, orig.ID, "u1", journal.UpdateEntry{Content: "Something else entirely"})
		require.NoError(t, err)
		assert.Equal(t, 1, f.analyzer.Calls)
		assert.Equal(t, f.analyzer.Result, got.Sentiment)
		assert.Equal(t, []string{"exams"}, got.Tags)
	})

	t.Run("other user", func(t *testing.T) {
		_, err := f.svc.Update(ctx, orig.ID, "u2", journal.UpdateEntry{Title: "mine now"})
		assert.Equal(t, journal.ErrNotFound, err)
	})
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	f := setup()
	older := testutil.CreateEntry(t, f.repo, "u1", "older", "I am sad", t0.Add(-2*time.Hour), true)
	newer := testutil.CreateEntry(t, f.repo, "u1", "newer", "I am happy", t0.Add(-time.Hour))
	testutil.CreateEntry(t, f.repo, "u2", "not mine", "whatever", t0)

	entries, err := f.svc.Query(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, older.ID, entries[0].ID, "pinned first")
	assert.Equal(t, newer.ID, entries[1].ID)
	assert.Equal(t, 0, f.analyzer.Calls)

	entries, err = f.svc.Query(ctx, "u1", true)
	require.NoError(t, err)
	assert.Equal(t, 2, f.analyzer.Calls)
	for _, e := range entries {
		assert.Equal(t, f.analyzer.Result, e.Sentiment)
		stored, err := f.repo.GetByID(ctx, e.ID, "u1")
		require.NoError(t, err)
		assert.Equal(t, f.analyzer.Result, stored.Sentiment, "refreshed sentiment persisted")
	}
}

func TestService_GetDelete(t *testing.T) {
	ctx := context.Background()
	f := setup()
	entry := testutil.CreateEntry(t, f.repo, "u1", "t", "c", t0)

	_, err := f.svc.Get(ctx, entry.ID, "u2")
	assert.Equal(t, journal.ErrNotFound, err)
	assert.Equal(t, journal.ErrNotFound, f.svc.Delete(ctx, entry.ID, "u2"))

	got, err := f.svc.Get(ctx, entry.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	require.NoError(t, f.svc.Delete(ctx, entry.ID, "u1"))
	_, err = f.svc.Get(ctx, entry.ID, "u1")
	assert.Equal(t, journal.ErrNotFound, err)
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	f := setup()

	// 35 entries: 5 negative ones among the 30 most recent, oldest first
	for i := 0; i < 35; i++ {
		content := "I am happy"
		if i >= 20 && i < 25 {
			content = "I am sad and stressed, everything is awful"
		}
		testutil.CreateEntry(t, f.repo, "u1", "t", content, t0.Add(time.Duration(i)*time.Hour))
	}

	stats, err := f.svc.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, journal.StatsWindow, stats.TotalEntries)
	require.Len(t, stats.Trend, journal.StatsWindow)
	assert.Equal(t, t0.Add(5*time.Hour), stats.Trend[0].Date, "oldest of the window first")
	assert.True(t, stats.AlertTriggered)
	require.NotNil(t, stats.Alert)
	assert.NotEmpty(t, stats.Recommendations)

	var sum int
	for _, n := range stats.Distribution {
		sum += n
	}
	assert.Equal(t, stats.TotalEntries, sum)

	empty, err := f.svc.Stats(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalEntries)
	assert.Equal(t, sentiment.Neutral, empty.AvgLabel)
	assert.False(t, empty.AlertTriggered)
	assert.Nil(t, empty.Alert)
}

func TestService_StatsSameTimestamp(t *testing.T) {
	ctx := context.Background()
	neg := sentiment.Result{Score: 2, Label: sentiment.Negative, Confidence: 60, Emotions: []string{}}
	pos := sentiment.Result{Score: 8, Label: sentiment.Positive, Confidence: 60, Emotions: []string{}}

	tests := []struct {
		name      string
		labels    []sentiment.Result // by ascending id
		wantAlert bool
	}{
		{name: "streak broken", labels: []sentiment.Result{neg, neg, pos, neg, neg, neg}, wantAlert: false},
		{name: "streak", labels: []sentiment.Result{neg, neg, neg, neg, neg, pos}, wantAlert: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup()
			for i, res := range tt.labels {
				_, err := f.repo.Create(ctx, journal.Entry{
					ID: fmt.Sprintf("e%d", i+1), UserID: "u1", Title: "t", Content: "c",
					Sentiment: res, Tags: []string{}, CreatedAt: t0, UpdatedAt: t0,
				})
				require.NoError(t, err)
			}

			for i := 0; i < 50; i++ {
				stats, err := f.svc.Stats(ctx, "u1")
				require.NoError(t, err)
				require.Len(t, stats.Trend, len(tt.labels))
				for j, res := range tt.labels {
					assert.Equal(t, res.Label, stats.Trend[j].Label, "trend follows id order on equal timestamps")
				}
				assert.Equal(t, tt.wantAlert, stats.AlertTriggered)
			}
		})
	}
}
