package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/tutorpost/backend/core/note"
)

type noteRepository struct {
	db *noteTable
}

var _ note.Repository = (*noteRepository)(nil)

func NewNoteRepository(db *DB) note.Repository {
	return &noteRepository{db: db.note}
}

func (repo *noteRepository) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	n.ID = uuid.New().String()
	n.Cc = copyStrings(n.Cc)
	repo.db.table[n.ID] = &n
	return n, nil
}

func (repo *noteRepository) QueryAllNotes(ctx context.Context) ([]note.Note, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notes := make([]note.Note, 0, len(repo.db.table))
	for _, n := range repo.db.table {
		cp := *n
		cp.Cc = copyStrings(n.Cc)
		notes = append(notes, cp)
	}
	return notes, nil
}
