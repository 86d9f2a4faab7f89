package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ustawi/core/assignment"
	"github.com/trezcool/ustawi/core/user"
	"github.com/trezcool/ustawi/testutil"
)

func createAssignment(t *testing.T, token string, na assignment.NewAssignment) assignment.Assignment {
	t.Helper()
	req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", token, marchallObj(t, na))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var a assignment.Assignment
	decode(t, rec, &a)
	return a
}

func Test_assignmentApi_crud(t *testing.T) {
	db.Reset()
	amani := testutil.CreateUser(t, usrRepo, "Amani", "amani@test.com", "", user.StudentRoles, true)
	baraka := testutil.CreateUser(t, usrRepo, "Baraka", "baraka@test.com", "", user.StudentRoles, true)
	token := getToken(t, amani)
	due := clock.Now().Add(72 * time.Hour)

	runHTTPTests(t, []httpTest{
		{name: "Auth required", method: http.MethodGet, path: "/v1/assignments", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "title, subject and due date required", method: http.MethodPost, path: "/v1/assignments", token: token,
			body: marchallObj(t, assignment.NewAssignment{}), wantCode: http.StatusBadRequest,
		},
	})

	essay := createAssignment(t, token, assignment.NewAssignment{Subject: "History", Title: "Essay", DueDate: &due})
	assert.Equal(t, assignment.StatusNotStarted, essay.Status)
	assert.Equal(t, "medium", essay.Priority)
	assert.Equal(t, []assignment.HelpRecord{}, essay.AIHelp)

	runHTTPTests(t, []httpTest{
		{name: "retrieve", method: http.MethodGet, path: "/v1/assignments/" + essay.ID, token: token, wantData: marchallObj(t, essay)},
		{
			name: "other students cannot see it", method: http.MethodGet, path: "/v1/assignments/" + essay.ID, token: getToken(t, baraka),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "assignment not found"}),
		},
	})

	notes := "outline done"
	req, rec := newAuthRequest(http.MethodPut, "/v1/assignments/"+essay.ID, token, marchallObj(t, assignment.UpdateAssignment{
		Priority: "HIGH", Notes: &notes,
	}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated assignment.Assignment
	decode(t, rec, &updated)
	assert.Equal(t, "high", updated.Priority)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, "Essay", updated.Title)

	req, rec = newAuthRequest(http.MethodPatch, "/v1/assignments/"+essay.ID+"/status", token, marchallObj(t, assignment.StatusUpdate{Status: assignment.StatusSubmitted}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &updated)
	assert.Equal(t, assignment.StatusSubmitted, updated.Status)
	require.NotNil(t, updated.CompletedAt)

	req, rec = newAuthRequest(http.MethodPatch, "/v1/assignments/"+essay.ID+"/status", token, marchallObj(t, assignment.StatusUpdate{Status: assignment.StatusInProgress}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &updated)
	assert.Nil(t, updated.CompletedAt, "reopened")

	runHTTPTests(t, []httpTest{
		{
			name: "unknown status", method: http.MethodPatch, path: "/v1/assignments/" + essay.ID + "/status", token: token,
			body: marchallObj(t, assignment.StatusUpdate{Status: "abandoned"}), wantCode: http.StatusBadRequest,
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/assignments/" + essay.ID, token: token, wantCode: http.StatusNoContent},
		{name: "deleted", method: http.MethodGet, path: "/v1/assignments/" + essay.ID, token: token, wantCode: http.StatusNotFound},
	})
}

func Test_assignmentApi_listsAndStats(t *testing.T) {
	db.Reset()
	amani := testutil.CreateUser(t, usrRepo, "Amani", "amani@test.com", "", user.StudentRoles, true)
	token := getToken(t, amani)
	now := clock.Now()
	yesterday, lastWeek := now.Add(-24*time.Hour), now.Add(-7*24*time.Hour)
	tomorrow, nextWeek := now.Add(24*time.Hour), now.Add(7*24*time.Hour)

	late := createAssignment(t, token, assignment.NewAssignment{Subject: "Maths", Title: "Late", DueDate: &yesterday})
	later := createAssignment(t, token, assignment.NewAssignment{Subject: "Maths", Title: "Later", DueDate: &lastWeek})
	createAssignment(t, token, assignment.NewAssignment{Subject: "Maths", Title: "Handed in", DueDate: &lastWeek, Status: assignment.StatusSubmitted})
	soon := createAssignment(t, token, assignment.NewAssignment{Subject: "History", Title: "Soon", DueDate: &tomorrow, Status: assignment.StatusInProgress})
	next := createAssignment(t, token, assignment.NewAssignment{Subject: "History", Title: "Next", DueDate: &nextWeek})

	list := func(path string) []string {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, path, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got []assignment.Assignment
		decode(t, rec, &got)
		ids := make([]string, 0, len(got))
		for _, a := range got {
			ids = append(ids, a.ID)
		}
		return ids
	}

	assert.Len(t, list("/v1/assignments"), 5)
	assert.Equal(t, []string{soon.ID}, list("/v1/assignments?status=in_progress"))
	assert.Equal(t, []string{soon.ID, next.ID}, list("/v1/assignments/upcoming"))
	assert.Equal(t, []string{late.ID, later.ID}, list("/v1/assignments/overdue"), "most recently due first")

	req, rec := newAuthRequest(http.MethodGet, "/v1/assignments/stats/overview", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stats assignment.Stats
	decode(t, rec, &stats)
	assert.Equal(t, assignment.Stats{Total: 5, Completed: 1, InProgress: 1, NotStarted: 3, Overdue: 2, Upcoming: 2}, stats)
}

func Test_assignmentApi_aiHelp(t *testing.T) {
	db.Reset()
	amani := testutil.CreateUser(t, usrRepo, "Amani", "amani@test.com", "", user.StudentRoles, true)
	token := getToken(t, amani)
	due := clock.Now().Add(72 * time.Hour)
	essay := createAssignment(t, token, assignment.NewAssignment{Subject: "History", Title: "Essay", DueDate: &due})
	helpPath := "/v1/assignments/" + essay.ID + "/ai-help"

	runHTTPTests(t, []httpTest{
		{name: "question required", method: http.MethodPost, path: helpPath, token: token, body: marchallObj(t, assignment.HelpRequest{}), wantCode: http.StatusBadRequest},
		{name: "no help yet", method: http.MethodGet, path: helpPath, token: token, wantData: marchallList(t)},
		{
			name: "unknown assignment", method: http.MethodPost, path: "/v1/assignments/nope/ai-help", token: token,
			body: marchallObj(t, assignment.HelpRequest{Question: "How do I start?"}), wantCode: http.StatusNotFound,
		},
	})

	req, rec := newAuthRequest(http.MethodPost, helpPath, token, marchallObj(t, assignment.HelpRequest{Question: "How do I start?"}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reply struct {
		Response  string    `json:"response"`
		Timestamp time.Time `json:"timestamp"`
	}
	decode(t, rec, &reply)
	assert.Contains(t, reply.Response, "structured way to get started")
	assert.True(t, reply.Timestamp.Equal(clock.Now()))

	req, rec = newAuthRequest(http.MethodGet, helpPath, token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var history []assignment.HelpRecord
	decode(t, rec, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "How do I start?", history[0].Question)
	assert.Equal(t, reply.Response, history[0].Response)
}
