package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ustawi/core/resource"
	"github.com/trezcool/ustawi/core/user"
	"github.com/trezcool/ustawi/testutil"
)

func Test_resourceApi(t *testing.T) {
	db.Reset()
	amani := testutil.CreateUser(t, usrRepo, "Amani", "amani@test.com", "", user.StudentRoles, true)
	coach := testutil.CreateUser(t, usrRepo, "Coach", "coach@test.com", "", user.CounselorRoles, true)
	token := getToken(t, amani)

	runHTTPTests(t, []httpTest{
		{
			name: "students only", method: http.MethodGet, path: "/v1/resources", token: getToken(t, coach),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "unknown type", method: http.MethodPost, path: "/v1/resources", token: token,
			body: marchallObj(t, resource.NewResource{Title: "Notes", Type: "hologram", Subject: "Maths"}), wantCode: http.StatusBadRequest,
		},
		{name: "no folders yet", method: http.MethodGet, path: "/v1/resources/folders", token: token, wantData: marchallList(t)},
	})

	create := func(nr resource.NewResource) resource.Resource {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, "/v1/resources", token, marchallObj(t, nr))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var r resource.Resource
		decode(t, rec, &r)
		clock.Advance(time.Minute)
		return r
	}

	notes := create(resource.NewResource{Title: "Algebra notes", Type: "note", Subject: "Maths", Description: "Quadratic equations"})
	assert.Equal(t, "General", notes.Folder)
	assert.Equal(t, []string{}, notes.Tags)
	video := create(resource.NewResource{Title: "Lecture 3", Type: "VIDEO", Subject: "Maths", Folder: "Lectures"})
	assert.Equal(t, "video", video.Type)
	link := create(resource.NewResource{Title: "Timeline", Type: "link", Subject: "History", Content: "https://example.com/timeline"})

	list := func(query string) []string {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/v1/resources"+query, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got []resource.Resource
		decode(t, rec, &got)
		ids := make([]string, 0, len(got))
		for _, r := range got {
			ids = append(ids, r.ID)
		}
		return ids
	}

	assert.Equal(t, []string{link.ID, video.ID, notes.ID}, list(""), "newest first")
	assert.Equal(t, []string{video.ID, notes.ID}, list("?subject=Maths"))
	assert.Equal(t, []string{video.ID}, list("?folder=Lectures"))
	assert.Equal(t, []string{link.ID}, list("?type=link"))
	assert.Equal(t, []string{notes.ID}, list("?search=QUADRATIC"))
	assert.Equal(t, []string{link.ID}, list("?limit=1"))

	runHTTPTests(t, []httpTest{
		{name: "folders", method: http.MethodGet, path: "/v1/resources/folders", token: token, wantData: marchallList(t, "General", "Lectures")},
		{name: "subjects", method: http.MethodGet, path: "/v1/resources/subjects", token: token, wantData: marchallList(t, "History", "Maths")},
	})

	req, rec := newAuthRequest(http.MethodPut, "/v1/resources/"+notes.ID, token, marchallObj(t, resource.UpdateResource{Folder: "Exams", Tags: []string{"algebra"}}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated resource.Resource
	decode(t, rec, &updated)
	assert.Equal(t, "Exams", updated.Folder)
	assert.Equal(t, []string{"algebra"}, updated.Tags)
	assert.Equal(t, "Algebra notes", updated.Title)

	runHTTPTests(t, []httpTest{
		{name: "delete", method: http.MethodDelete, path: "/v1/resources/" + link.ID, token: token, wantCode: http.StatusNoContent},
		{
			name: "deleted", method: http.MethodPut, path: "/v1/resources/" + link.ID, token: token,
			body: marchallObj(t, resource.UpdateResource{Title: "x"}), wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "resource not found"}),
		},
		{name: "subjects after delete", method: http.MethodGet, path: "/v1/resources/subjects", token: token, wantData: marchallList(t, "Maths")},
	})
}
