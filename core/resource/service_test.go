package resource_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ustawi/core/resource"
	inmemdb "github.com/trezcool/ustawi/storage/database/inmem"
	"github.com/trezcool/ustawi/testutil"
)

func setup(now time.Time) (*resource.Service, clockwork.FakeClock) {
	db := inmemdb.Open()
	clock := clockwork.NewFakeClockAt(now)
	validate, _ := testutil.NewValidator()
	return resource.NewService(inmemdb.NewResourceRepository(db), validate, clock), clock
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(time.Date(2021, time.March, 10, 8, 0, 0, 0, time.UTC))

	tests := []struct {
		name    string
		nr      resource.NewResource
		wantErr bool
	}{
		{"title required", resource.NewResource{Type: "note", Subject: "Maths"}, true},
		{"subject required", resource.NewResource{Title: "Notes", Type: "note"}, true},
		{"unknown type", resource.NewResource{Title: "Notes", Type: "slides", Subject: "Maths"}, true},
		{"valid", resource.NewResource{Title: " Notes ", Type: "Note", Subject: "Maths", Tags: []string{"", "algebra"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := svc.Create(ctx, "u1", tt.nr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Notes", r.Title)
			assert.Equal(t, "note", r.Type)
			assert.Equal(t, "General", r.Folder)
			assert.Equal(t, []string{"algebra"}, r.Tags)
		})
	}
}

func TestService_FoldersAndSubjects(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(time.Date(2021, time.March, 10, 8, 0, 0, 0, time.UTC))

	for _, nr := range []resource.NewResource{
		{Title: "a", Type: "note", Subject: "Maths", Folder: "Exams"},
		{Title: "b", Type: "note", Subject: "Maths"},
		{Title: "c", Type: "link", Subject: "Biology", Folder: "Exams"},
	} {
		_, err := svc.Create(ctx, "u1", nr)
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, "u2", resource.NewResource{Title: "d", Type: "note", Subject: "Art", Folder: "Sketches"})
	require.NoError(t, err)

	folders, err := svc.Folders(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Exams", "General"}, folders)

	subjects, err := svc.Subjects(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Biology", "Maths"}, subjects)

	none, err := svc.Folders(ctx, "u3")
	require.NoError(t, err)
	assert.Equal(t, []string{}, none)
}

func TestService_QueryDefaultLimit(t *testing.T) {
	ctx := context.Background()
	svc, clock := setup(time.Date(2021, time.March, 10, 8, 0, 0, 0, time.UTC))

	for i := 0; i < resource.DefaultLimit+5; i++ {
		_, err := svc.Create(ctx, "u1", resource.NewResource{Title: "note", Type: "note", Subject: "Maths"})
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	got, err := svc.Query(ctx, "u1", resource.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, got, resource.DefaultLimit)
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt), "newest first")
}
