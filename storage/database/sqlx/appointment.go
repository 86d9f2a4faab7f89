package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/appointment"
)

const appointmentColumns = `id, student_id, counselor_id, type, preferred_date, scheduled_date, duration, status,
	description, counselor_notes, is_urgent, location, meeting_link, follow_up_required, created_at, updated_at`

type appointmentRow struct {
	ID               string       `db:"id"`
	StudentID        string       `db:"student_id"`
	CounselorID      string       `db:"counselor_id"`
	Type             string       `db:"type"`
	PreferredDate    time.Time    `db:"preferred_date"`
	ScheduledDate    sql.NullTime `db:"scheduled_date"`
	Duration         int          `db:"duration"`
	Status           string       `db:"status"`
	Description      string       `db:"description"`
	CounselorNotes   string       `db:"counselor_notes"`
	IsUrgent         bool         `db:"is_urgent"`
	Location         string       `db:"location"`
	MeetingLink      string       `db:"meeting_link"`
	FollowUpRequired bool         `db:"follow_up_required"`
	CreatedAt        time.Time    `db:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at"`
}

func toAppointmentRow(a appointment.Appointment) appointmentRow {
	return appointmentRow{
		ID:               a.ID,
		StudentID:        a.StudentID,
		CounselorID:      a.CounselorID,
		Type:             a.Type,
		PreferredDate:    a.PreferredDate,
		ScheduledDate:    nullTime(a.ScheduledDate),
		Duration:         a.Duration,
		Status:           a.Status,
		Description:      a.Description,
		CounselorNotes:   a.CounselorNotes,
		IsUrgent:         a.IsUrgent,
		Location:         a.Location,
		MeetingLink:      a.MeetingLink,
		FollowUpRequired: a.FollowUpRequired,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func (row appointmentRow) toAppointment() appointment.Appointment {
	return appointment.Appointment{
		ID:               row.ID,
		StudentID:        row.StudentID,
		CounselorID:      row.CounselorID,
		Type:             row.Type,
		PreferredDate:    row.PreferredDate.UTC(),
		ScheduledDate:    timePtr(row.ScheduledDate),
		Duration:         row.Duration,
		Status:           row.Status,
		Description:      row.Description,
		CounselorNotes:   row.CounselorNotes,
		IsUrgent:         row.IsUrgent,
		Location:         row.Location,
		MeetingLink:      row.MeetingLink,
		FollowUpRequired: row.FollowUpRequired,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

type appointmentRepository struct {
	db *sqlx.DB
}

var _ appointment.Repository = (*appointmentRepository)(nil)

func NewAppointmentRepository(db *sqlx.DB) appointment.Repository {
	return &appointmentRepository{db: db}
}

func (repo *appointmentRepository) Query(ctx context.Context, filter appointment.QueryFilter) ([]appointment.Appointment, error) {
	if (filter.ParticipantID != "" && !isUUID(filter.ParticipantID)) || (filter.CounselorID != "" && !isUUID(filter.CounselorID)) {
		return []appointment.Appointment{}, nil
	}

	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	where := []string{"TRUE"}
	if filter.ParticipantID != "" {
		p := arg(filter.ParticipantID)
		where = append(where, "(student_id = "+p+" OR counselor_id = "+p+")")
	}
	if filter.CounselorID != "" {
		where = append(where, "counselor_id = "+arg(filter.CounselorID))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}
	if !filter.ScheduledFrom.IsZero() {
		where = append(where, "scheduled_date >= "+arg(filter.ScheduledFrom))
	}
	q := `SELECT ` + appointmentColumns + ` FROM appointment WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY scheduled_date ASC NULLS FIRST, created_at DESC, id DESC`
	if filter.Limit > 0 {
		q += " LIMIT " + arg(filter.Limit)
	}

	var rows []appointmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting appointments")
	}
	appts := make([]appointment.Appointment, 0, len(rows))
	for _, row := range rows {
		appts = append(appts, row.toAppointment())
	}
	return appts, nil
}

func (repo *appointmentRepository) GetByID(ctx context.Context, id string) (appointment.Appointment, error) {
	if !isUUID(id) {
		return appointment.Appointment{}, appointment.ErrNotFound
	}
	var row appointmentRow
	q := `SELECT ` + appointmentColumns + ` FROM appointment WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return appointment.Appointment{}, appointment.ErrNotFound
		}
		return appointment.Appointment{}, errors.Wrap(err, "selecting appointment")
	}
	return row.toAppointment(), nil
}

func (repo *appointmentRepository) Create(ctx context.Context, appt appointment.Appointment) (appointment.Appointment, error) {
	q := `INSERT INTO appointment (` + appointmentColumns + `) VALUES (
		:id, :student_id, :counselor_id, :type, :preferred_date, :scheduled_date, :duration, :status,
		:description, :counselor_notes, :is_urgent, :location, :meeting_link, :follow_up_required, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toAppointmentRow(appt)); err != nil {
		return appointment.Appointment{}, errors.Wrap(err, "inserting appointment")
	}
	return appt, nil
}

func (repo *appointmentRepository) Update(ctx context.Context, appt appointment.Appointment) (appointment.Appointment, error) {
	q := `UPDATE appointment SET
		scheduled_date = :scheduled_date, status = :status, counselor_notes = :counselor_notes,
		meeting_link = :meeting_link, follow_up_required = :follow_up_required, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, toAppointmentRow(appt))
	if err != nil {
		return appointment.Appointment{}, errors.Wrap(err, "updating appointment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appointment.Appointment{}, appointment.ErrNotFound
	}
	return repo.GetByID(ctx, appt.ID)
}
