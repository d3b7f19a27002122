// Package inmemdb provides in-memory repository implementations used by
// tests and local experiments. Not safe for production use.
package inmemdb

import (
	"sync"

	"github.com/tutorpost/backend/core/admin"
	"github.com/tutorpost/backend/core/note"
	"github.com/tutorpost/backend/core/student"
	"github.com/tutorpost/backend/core/tutor"
)

type (
	DB struct {
		admin   *adminTable
		tutor   *tutorTable
		student *studentTable
		note    *noteTable
	}

	adminTable struct {
		sync.RWMutex
		table map[string]*admin.Admin
	}

	tutorTable struct {
		sync.RWMutex
		table map[string]*tutor.Tutor
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	noteTable struct {
		sync.RWMutex
		table map[string]*note.Note
	}
)

func Open() (*DB, error) {
	db := &DB{
		admin:   &adminTable{table: make(map[string]*admin.Admin)},
		tutor:   &tutorTable{table: make(map[string]*tutor.Tutor)},
		student: &studentTable{table: make(map[string]*student.Student)},
		note:    &noteTable{table: make(map[string]*note.Note)},
	}
	return db, nil
}

// Reset empties all tables.
func (db *DB) Reset() {
	db.admin.Lock()
	db.admin.table = make(map[string]*admin.Admin)
	db.admin.Unlock()

	db.tutor.Lock()
	db.tutor.table = make(map[string]*tutor.Tutor)
	db.tutor.Unlock()

	db.student.Lock()
	db.student.table = make(map[string]*student.Student)
	db.student.Unlock()

	db.note.Lock()
	db.note.table = make(map[string]*note.Note)
	db.note.Unlock()
}

func copyStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, len(ss))
	copy(out, ss)
	return out
}
