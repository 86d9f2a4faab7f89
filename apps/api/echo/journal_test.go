package echoapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ustawi/core/journal"
	"github.com/trezcool/ustawi/core/sentiment"
	"github.com/trezcool/ustawi/core/user"
	"github.com/trezcool/ustawi/testutil"
)

func Test_journalApi_create(t *testing.T) {
	db.Reset()
	amani := testutil.CreateUser(t, usrRepo, "Amani", "amani@test.com", "", user.StudentRoles, true)
	token := getToken(t, amani)

	tests := []httpTest{
		{name: "Auth required", body: marchallObj(t, journal.NewEntry{Title: "t", Content: "c"}), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "missing title", token: token, body: marchallObj(t, journal.NewEntry{Content: "c"}), wantCode: http.StatusBadRequest},
		{name: "unknown mood", token: token, body: marchallObj(t, journal.NewEntry{Title: "t", Content: "c", Mood: "ecstatic"}), wantCode: http.StatusBadRequest},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/journal"
	}
	runHTTPTests(t, tests)

	content := "I am so happy and grateful, today was a wonderful day"
	req, rec := newAuthRequest(http.MethodPost, "/v1/journal", token, marchallObj(t, journal.NewEntry{
		Title:   "  Good day ",
		Content: content,
		Tags:    []string{"campus", " "},
		Mood:    "Happy",
	}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got journal.Entry
	decode(t, rec, &got)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, amani.ID, got.UserID)
	assert.Equal(t, "Good day", got.Title)
	assert.Equal(t, []string{"campus"}, got.Tags)
	assert.Equal(t, journal.MoodHappy, got.Mood)
	assert.True(t, got.IsPrivate, "entries are private by default")
	assert.False(t, got.IsPinned)
	assert.Equal(t, sentiment.RuleBased(content), got.Sentiment)
	assert.True(t, got.CreatedAt.Equal(clock.Now()))
}

func Test_journalApi_query(t *testing.T) {
	db.Reset()
	amani := testutil.CreateUser(t, usrRepo, "Amani", "amani@test.com", "", user.StudentRoles, true)
	baraka := testutil.CreateUser(t, usrRepo, "Baraka", "baraka@test.com", "", user.StudentRoles, true)

	now := clock.Now()
	older := testutil.CreateEntry(t, journalRepo, amani.ID, "older", "a calm day", now.Add(-3*time.Hour))
	pinned := testutil.CreateEntry(t, journalRepo, amani.ID, "pinned", "my goals", now.Add(-5*time.Hour), true)
	newer := testutil.CreateEntry(t, journalRepo, amani.ID, "newer", "a long day", now.Add(-1*time.Hour))
	testutil.CreateEntry(t, journalRepo, baraka.ID, "not yours", "secret", now)

	runHTTPTests(t, []httpTest{
		{name: "Auth required", method: http.MethodGet, path: "/v1/journal", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "pinned first, then newest", method: http.MethodGet, path: "/v1/journal", token: getToken(t, amani), wantData: marchallList(t, pinned, newer, older)},
		{name: "no entries", method: http.MethodGet, path: "/v1/journal", token: getToken(t, testutil.CreateUser(t, usrRepo, "Cyrus", "cyrus@test.com", "", user.StudentRoles, true)), wantData: marchallList(t)},
	})

	t.Run("refresh", func(t *testing.T) {
		stale := newer
		stale.Sentiment = sentiment.Result{Score: 1, Label: sentiment.VeryNegative, Confidence: 99, Emotions: []string{}}
		_, err := journalRepo.Update(context.Background(), stale)
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodGet, "/v1/journal?refresh=true", getToken(t, amani))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got []journal.Entry
		decode(t, rec, &got)
		require.Len(t, got, 3)
		assert.Equal(t, sentiment.RuleBased(newer.Content), got[1].Sentiment)

		saved, err := journalRepo.GetByID(context.Background(), newer.ID, amani.ID)
		require.NoError(t, err)
		assert.Equal(t, sentiment.RuleBased(newer.Content), saved.Sentiment)
	})
}

func Test_journalApi_detail(t *testing.T) {
	db.Reset()
	amani := testutil.CreateUser(t, usrRepo, "Amani", "amani@test.com", "", user.StudentRoles, true)
	baraka := testutil.CreateUser(t, usrRepo, "Baraka", "baraka@test.com", "", user.StudentRoles, true)
	entry := testutil.CreateEntry(t, journalRepo, amani.ID, "exam", "the exam was fine", clock.Now().Add(-time.Hour))

	amaniToken := getToken(t, amani)
	path := "/v1/journal/" + entry.ID
	notFound := marchallObj(t, httpErr{Error: journal.ErrNotFound.Error()})

	runHTTPTests(t, []httpTest{
		{name: "owner", method: http.MethodGet, path: path, token: amaniToken, wantData: marchallObj(t, entry)},
		{name: "someone else", method: http.MethodGet, path: path, token: getToken(t, baraka), wantCode: http.StatusNotFound, wantData: notFound},
		{name: "unknown id", method: http.MethodGet, path: "/v1/journal/unknown", token: amaniToken, wantCode: http.StatusNotFound, wantData: notFound},
		{
			name: "someone else cannot update", method: http.MethodPut, path: path, token: getToken(t, baraka),
			body: marchallObj(t, journal.UpdateEntry{Title: "mine now"}), wantCode: http.StatusNotFound, wantData: notFound,
		},
		{name: "someone else cannot delete", method: http.MethodDelete, path: path, token: getToken(t, baraka), wantCode: http.StatusNotFound, wantData: notFound},
	})

	t.Run("update re-analyzes a changed content", func(t *testing.T) {
		pin := true
		content := "I feel sad, stressed and exhausted"
		req, rec := newAuthRequest(http.MethodPut, path, amaniToken, marchallObj(t, journal.UpdateEntry{Content: content, IsPinned: &pin}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got journal.Entry
		decode(t, rec, &got)
		assert.Equal(t, "exam", got.Title)
		assert.Equal(t, content, got.Content)
		assert.True(t, got.IsPinned)
		assert.Equal(t, sentiment.RuleBased(content), got.Sentiment)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path, amaniToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, path, amaniToken)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_journalApi_stats(t *testing.T) {
	db.Reset()
	amani := testutil.CreateUser(t, usrRepo, "Amani", "amani@test.com", "", user.StudentRoles, true)
	cyrus := testutil.CreateUser(t, usrRepo, "Cyrus", "cyrus@test.com", "", user.StudentRoles, true)

	start := clock.Now().Add(-24 * time.Hour)
	testutil.CreateEntry(t, journalRepo, amani.ID, "fine", "a wonderful and happy day", start)
	for i := 1; i <= 5; i++ {
		testutil.CreateEntry(t, journalRepo, amani.ID, "rough", "I feel sad, stressed and exhausted", start.Add(time.Duration(i)*time.Hour))
	}

	t.Run("streak alert", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/journal/stats/sentiment", getToken(t, amani))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got journal.Stats
		decode(t, rec, &got)
		assert.Equal(t, 6, got.TotalEntries)
		assert.Len(t, got.Trend, 6)
		assert.True(t, got.AlertTriggered)
		require.NotNil(t, got.Alert)
		assert.Equal(t, "5 consecutive negative sentiments detected.", *got.Alert)
		assert.NotEmpty(t, got.Recommendations)
		assert.Equal(t, 5, got.Distribution[sentiment.VeryNegative])
	})

	t.Run("no entries", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/journal/stats/sentiment", getToken(t, cyrus))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got journal.Stats
		decode(t, rec, &got)
		assert.Zero(t, got.TotalEntries)
		assert.Equal(t, sentiment.Neutral, got.AvgLabel)
		assert.False(t, got.AlertTriggered)
		assert.Nil(t, got.Alert)
		assert.Empty(t, got.Recommendations)
	})
}
