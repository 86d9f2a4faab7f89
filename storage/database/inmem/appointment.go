package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/ustawi/core/appointment"
)

type appointmentRepository struct {
	db *appointmentTable
}

var _ appointment.Repository = (*appointmentRepository)(nil)

func NewAppointmentRepository(db *DB) appointment.Repository {
	return &appointmentRepository{db: db.appointment}
}

func (repo *appointmentRepository) Query(_ context.Context, filter appointment.QueryFilter) ([]appointment.Appointment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	appts := make([]appointment.Appointment, 0)
	for _, a := range repo.db.table {
		if filter.ParticipantID != "" && a.StudentID != filter.ParticipantID && a.CounselorID != filter.ParticipantID {
			continue
		}
		if filter.CounselorID != "" && a.CounselorID != filter.CounselorID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if !filter.ScheduledFrom.IsZero() && (a.ScheduledDate == nil || a.ScheduledDate.Before(filter.ScheduledFrom)) {
			continue
		}
		appts = append(appts, copyAppointment(*a))
	}

	sort.Slice(appts, func(i, j int) bool {
		a, b := appts[i], appts[j]
		switch {
		case a.ScheduledDate == nil && b.ScheduledDate != nil:
			return true
		case a.ScheduledDate != nil && b.ScheduledDate == nil:
			return false
		case a.ScheduledDate != nil && !a.ScheduledDate.Equal(*b.ScheduledDate):
			return a.ScheduledDate.Before(*b.ScheduledDate)
		case !a.CreatedAt.Equal(b.CreatedAt):
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	if filter.Limit > 0 && len(appts) > filter.Limit {
		appts = appts[:filter.Limit]
	}
	return appts, nil
}

func (repo *appointmentRepository) GetByID(_ context.Context, id string) (appointment.Appointment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return copyAppointment(*a), nil
	}
	return appointment.Appointment{}, appointment.ErrNotFound
}

func (repo *appointmentRepository) Create(_ context.Context, appt appointment.Appointment) (appointment.Appointment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a := copyAppointment(appt)
	repo.db.table[a.ID] = &a
	return copyAppointment(a), nil
}

func (repo *appointmentRepository) Update(_ context.Context, appt appointment.Appointment) (appointment.Appointment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[appt.ID]
	if !ok {
		return appointment.Appointment{}, appointment.ErrNotFound
	}
	a := copyAppointment(appt)
	a.StudentID = orig.StudentID
	a.CounselorID = orig.CounselorID
	a.CreatedAt = orig.CreatedAt
	repo.db.table[a.ID] = &a
	return copyAppointment(a), nil
}

func copyAppointment(a appointment.Appointment) appointment.Appointment {
	if a.ScheduledDate != nil {
		d := *a.ScheduledDate
		a.ScheduledDate = &d
	}
	a.Student = nil
	a.Counselor = nil
	return a
}
