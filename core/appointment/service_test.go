package appointment_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ustawi/core/appointment"
	"github.com/trezcool/ustawi/core/user"
	inmemdb "github.com/trezcool/ustawi/storage/database/inmem"
	"github.com/trezcool/ustawi/testutil"
)

func setup(t *testing.T, now time.Time) (*appointment.Service, user.Repository, clockwork.FakeClock) {
	t.Helper()
	db := inmemdb.Open()
	users := inmemdb.NewUserRepository(db)
	clock := clockwork.NewFakeClockAt(now)
	validate, _ := testutil.NewValidator()
	return appointment.NewService(inmemdb.NewAppointmentRepository(db), users, validate, clock), users, clock
}

func createCounselor(t *testing.T, repo user.Repository, name string, specs ...string) user.User {
	t.Helper()
	usr := testutil.CreateUser(t, repo, name, name+"@test.com", "", user.CounselorRoles, true)
	usr.Specializations = specs
	usr, err := repo.Update(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func TestService_Counselors(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := setup(t, time.Date(2021, time.March, 10, 8, 0, 0, 0, time.UTC))

	zawadi := createCounselor(t, users, "zawadi", "academic", "career")
	baraka := createCounselor(t, users, "baraka", "Personal")
	testutil.CreateUser(t, users, "retired", "retired@test.com", "", user.CounselorRoles, false)
	testutil.CreateUser(t, users, "amani", "amani@test.com", "", user.StudentRoles, true)

	all, err := svc.Counselors(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, baraka.ID, all[0].ID, "by first name")
	assert.Equal(t, zawadi.ID, all[1].ID)

	personal, err := svc.Counselors(ctx, " PERSONAL ")
	require.NoError(t, err)
	require.Len(t, personal, 1)
	assert.Equal(t, baraka.ID, personal[0].ID)

	none, err := svc.Counselors(ctx, "astrology")
	require.NoError(t, err)
	assert.Equal(t, []appointment.Counselor{}, none)
}

func TestService_Request(t *testing.T) {
	ctx := context.Background()
	svc, users, clock := setup(t, time.Date(2021, time.March, 10, 8, 0, 0, 0, time.UTC))
	coach := createCounselor(t, users, "coach")
	preferred := clock.Now().Add(time.Hour)

	_, err := svc.Request(ctx, "s1", appointment.NewAppointment{CounselorID: uuid.NewString(), Type: "academic", PreferredDate: &preferred})
	assert.Equal(t, appointment.ErrCounselorNotFound, err)

	_, err = svc.Request(ctx, "s1", appointment.NewAppointment{CounselorID: coach.ID, Type: "academic", PreferredDate: &preferred, Duration: 45})
	assert.Error(t, err, "30, 60 or 90 minutes")

	appt, err := svc.Request(ctx, "s1", appointment.NewAppointment{
		CounselorID: coach.ID, Type: "CAREER", PreferredDate: &preferred, Duration: 30, Location: "virtual",
	})
	require.NoError(t, err)
	assert.Equal(t, "career", appt.Type)
	assert.Equal(t, 30, appt.Duration)
	assert.Equal(t, "virtual", appt.Location)
	assert.Equal(t, appointment.StatusPending, appt.Status)
}

func TestService_SetStatus(t *testing.T) {
	ctx := context.Background()
	svc, users, clock := setup(t, time.Date(2021, time.March, 10, 8, 0, 0, 0, time.UTC))
	coach := createCounselor(t, users, "coach")
	preferred := clock.Now().Add(24 * time.Hour)
	scheduled := clock.Now().Add(48 * time.Hour)

	appt, err := svc.Request(ctx, "s1", appointment.NewAppointment{CounselorID: coach.ID, Type: "academic", PreferredDate: &preferred})
	require.NoError(t, err)

	followUp := true
	approved, err := svc.SetStatus(ctx, appt.ID, coach.ID, appointment.StatusUpdate{
		Status: appointment.StatusApproved, ScheduledDate: &scheduled, CounselorNotes: "bring notes", FollowUpRequired: &followUp,
	})
	require.NoError(t, err)
	require.NotNil(t, approved.ScheduledDate)
	assert.True(t, approved.ScheduledDate.Equal(scheduled), "an explicit schedule wins over the preferred date")
	assert.Equal(t, "bring notes", approved.CounselorNotes)
	assert.True(t, approved.FollowUpRequired)

	// notes are kept when not resent
	noShow, err := svc.SetStatus(ctx, appt.ID, coach.ID, appointment.StatusUpdate{Status: appointment.StatusNoShow})
	require.NoError(t, err)
	assert.Equal(t, "bring notes", noShow.CounselorNotes)
	assert.True(t, noShow.ScheduledDate.Equal(scheduled))

	_, err = svc.SetStatus(ctx, "unknown", coach.ID, appointment.StatusUpdate{Status: appointment.StatusApproved})
	assert.Equal(t, appointment.ErrNotFound, err)
}

func TestService_CancelAndStats(t *testing.T) {
	ctx := context.Background()
	svc, users, clock := setup(t, time.Date(2021, time.March, 10, 8, 0, 0, 0, time.UTC))
	coach := createCounselor(t, users, "coach")
	preferred := clock.Now().Add(24 * time.Hour)

	urgent, err := svc.Request(ctx, "s1", appointment.NewAppointment{CounselorID: coach.ID, Type: "crisis", PreferredDate: &preferred, IsUrgent: true})
	require.NoError(t, err)
	_, err = svc.Request(ctx, "s2", appointment.NewAppointment{CounselorID: coach.ID, Type: "academic", PreferredDate: &preferred})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, urgent.ID, "s2")
	assert.Equal(t, appointment.ErrNotFound, err, "only participants cancel")

	cancelled, err := svc.Cancel(ctx, urgent.ID, "s1")
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCancelled, cancelled.Status)

	_, err = svc.SetStatus(ctx, urgent.ID, coach.ID, appointment.StatusUpdate{Status: appointment.StatusApproved})
	require.Error(t, err)
	assert.Equal(t, "appointment is already cancelled", err.Error())

	stats, err := svc.Stats(ctx, coach.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.Stats{Total: 2, Pending: 1, Cancelled: 1, Urgent: 1}, stats)

	mine, err := svc.Query(ctx, "s2", "", false, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Nil(t, mine[0].Student, "unknown students are left out")
	require.NotNil(t, mine[0].Counselor)
	assert.Equal(t, coach.ID, mine[0].Counselor.ID)
}
