// Package inmemdb holds map-backed repositories, used by tests and when database.engine is "memory".
package inmemdb

import (
	"sync"

	"github.com/trezcool/ustawi/core/appointment"
	"github.com/trezcool/ustawi/core/assignment"
	"github.com/trezcool/ustawi/core/journal"
	"github.com/trezcool/ustawi/core/mood"
	"github.com/trezcool/ustawi/core/resource"
	"github.com/trezcool/ustawi/core/study"
	"github.com/trezcool/ustawi/core/task"
	"github.com/trezcool/ustawi/core/user"
)

type (
	DB struct {
		user        *userTable
		journal     *journalTable
		mood        *moodTable
		task        *taskTable
		study       *studyTable
		assignment  *assignmentTable
		resource    *resourceTable
		appointment *appointmentTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	journalTable struct {
		sync.RWMutex
		table map[string]*journal.Entry
	}

	moodTable struct {
		sync.RWMutex
		table map[string]*mood.Entry
	}

	taskTable struct {
		sync.RWMutex
		table map[string]*task.Task
	}

	studyTable struct {
		sync.RWMutex
		table map[string]*study.Session
	}

	assignmentTable struct {
		sync.RWMutex
		table map[string]*assignment.Assignment
	}

	resourceTable struct {
		sync.RWMutex
		table map[string]*resource.Resource
	}

	appointmentTable struct {
		sync.RWMutex
		table map[string]*appointment.Appointment
	}
)

func Open() *DB {
	db := &DB{
		user:        &userTable{},
		journal:     &journalTable{},
		mood:        &moodTable{},
		task:        &taskTable{},
		study:       &studyTable{},
		assignment:  &assignmentTable{},
		resource:    &resourceTable{},
		appointment: &appointmentTable{},
	}
	db.Reset()
	return db
}

// Reset drops every row of every table.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()

	db.journal.Lock()
	db.journal.table = make(map[string]*journal.Entry)
	db.journal.Unlock()

	db.mood.Lock()
	db.mood.table = make(map[string]*mood.Entry)
	db.mood.Unlock()

	db.task.Lock()
	db.task.table = make(map[string]*task.Task)
	db.task.Unlock()

	db.study.Lock()
	db.study.table = make(map[string]*study.Session)
	db.study.Unlock()

	db.assignment.Lock()
	db.assignment.table = make(map[string]*assignment.Assignment)
	db.assignment.Unlock()

	db.resource.Lock()
	db.resource.table = make(map[string]*resource.Resource)
	db.resource.Unlock()

	db.appointment.Lock()
	db.appointment.table = make(map[string]*appointment.Appointment)
	db.appointment.Unlock()
}
