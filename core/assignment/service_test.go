package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ustawi/core/assignment"
	inmemdb "github.com/trezcool/ustawi/storage/database/inmem"
	"github.com/trezcool/ustawi/testutil"
)

type helperMock struct {
	asked []string
}

func (h *helperMock) AssignmentHelp(_ context.Context, title, subject, description, question string) string {
	h.asked = append(h.asked, title+"|"+subject+"|"+description+"|"+question)
	return "Start with an outline."
}

func setup(now time.Time) (*assignment.Service, *helperMock, clockwork.FakeClock) {
	db := inmemdb.Open()
	clock := clockwork.NewFakeClockAt(now)
	validate, _ := testutil.NewValidator()
	helper := new(helperMock)
	return assignment.NewService(inmemdb.NewAssignmentRepository(db), helper, validate, clock), helper, clock
}

func TestAssignment_IsOverdueAndUpcoming(t *testing.T) {
	now := time.Date(2021, time.March, 10, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name         string
		a            assignment.Assignment
		overdue, due bool
	}{
		{"past due", assignment.Assignment{DueDate: now.Add(-time.Hour), Status: assignment.StatusInProgress}, true, false},
		{"due later", assignment.Assignment{DueDate: now.Add(time.Hour), Status: assignment.StatusNotStarted}, false, true},
		{"submitted", assignment.Assignment{DueDate: now.Add(-time.Hour), Status: assignment.StatusSubmitted}, false, false},
		{"completed early", assignment.Assignment{DueDate: now.Add(time.Hour), Status: assignment.StatusCompleted}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overdue, tt.a.IsOverdue(now))
			assert.Equal(t, tt.due, tt.a.IsUpcoming(now))
		})
	}
}

func TestService_CreateDone(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := setup(time.Date(2021, time.March, 10, 8, 0, 0, 0, time.UTC))
	due := clock.Now().Add(-time.Hour)

	a, err := svc.Create(ctx, "u1", assignment.NewAssignment{Subject: "Maths", Title: "Homework", DueDate: &due, Status: "Completed"})
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusCompleted, a.Status)
	require.NotNil(t, a.CompletedAt, "created done")
	assert.True(t, a.CompletedAt.Equal(clock.Now()))

	// completed -> submitted keeps the first stamp
	clock.Advance(time.Hour)
	submitted, err := svc.SetStatus(ctx, a.ID, "u1", assignment.StatusUpdate{Status: assignment.StatusSubmitted})
	require.NoError(t, err)
	assert.True(t, submitted.CompletedAt.Equal(*a.CompletedAt))
}

func TestService_AskForHelp(t *testing.T) {
	ctx := context.Background()
	svc, helper, clock := setup(time.Date(2021, time.March, 10, 8, 0, 0, 0, time.UTC))
	due := clock.Now().Add(24 * time.Hour)

	a, err := svc.Create(ctx, "u1", assignment.NewAssignment{Subject: "History", Title: "Essay", Description: "WW1 causes", DueDate: &due})
	require.NoError(t, err)

	_, err = svc.AskForHelp(ctx, a.ID, "u2", assignment.HelpRequest{Question: "Where to start?"})
	assert.Equal(t, assignment.ErrNotFound, err)
	assert.Empty(t, helper.asked, "nothing asked for strangers")

	rec, err := svc.AskForHelp(ctx, a.ID, "u1", assignment.HelpRequest{Question: "  Where to start? "})
	require.NoError(t, err)
	assert.Equal(t, []string{"Essay|History|WW1 causes|Where to start?"}, helper.asked)
	assert.Equal(t, assignment.HelpRecord{Question: "Where to start?", Response: "Start with an outline.", Timestamp: clock.Now().UTC()}, rec)

	// updates leave the help history alone
	title := "Essay (final)"
	_, err = svc.Update(ctx, a.ID, "u1", assignment.UpdateAssignment{Title: title})
	require.NoError(t, err)

	history, err := svc.HelpHistory(ctx, a.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, []assignment.HelpRecord{rec}, history)
}
