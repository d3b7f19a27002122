package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/tutorpost/backend/core/tutor"
)

type tutorRepository struct {
	db *tutorTable
}

var _ tutor.Repository = (*tutorRepository)(nil)

func NewTutorRepository(db *DB) tutor.Repository {
	return &tutorRepository{db: db.tutor}
}

func (repo *tutorRepository) query() []tutor.Tutor {
	tutors := make([]tutor.Tutor, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		cp := *t
		cp.CoursePermissions = copyStrings(t.CoursePermissions)
		tutors = append(tutors, cp)
	}
	return tutors
}

func (repo *tutorRepository) CreateTutor(ctx context.Context, t tutor.Tutor) (tutor.Tutor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, other := range repo.db.table {
		if other.Email == t.Email {
			return tutor.Tutor{}, tutor.ErrEmailExists
		}
	}
	t.ID = uuid.New().String()
	t.CoursePermissions = copyStrings(t.CoursePermissions)
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *tutorRepository) QueryAllTutors(ctx context.Context) ([]tutor.Tutor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *tutorRepository) GetTutorByID(ctx context.Context, id string) (tutor.Tutor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		cp := *t
		cp.CoursePermissions = copyStrings(t.CoursePermissions)
		return cp, nil
	}
	return tutor.Tutor{}, tutor.ErrNotFound
}

func (repo *tutorRepository) GetTutorByEmail(ctx context.Context, email string) (tutor.Tutor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, t := range repo.query() {
		if t.Email == email {
			return t, nil
		}
	}
	return tutor.Tutor{}, tutor.ErrNotFound
}

func (repo *tutorRepository) UpdateTutor(ctx context.Context, t tutor.Tutor) (tutor.Tutor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[t.ID]; !ok {
		return tutor.Tutor{}, tutor.ErrNotFound
	}
	t.CoursePermissions = copyStrings(t.CoursePermissions)
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *tutorRepository) DeleteTutorByID(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return tutor.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
