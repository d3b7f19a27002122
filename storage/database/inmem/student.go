package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/tutorpost/backend/core/student"
)

// studentRepository also reads the tutor table to expand tutor refs and to
// resync assigned-user counters.
type studentRepository struct {
	db     *studentTable
	tutors *tutorTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student, tutors: db.tutor}
}

func copyStudent(s *student.Student) student.Student {
	cp := *s
	cp.Tutors = copyStrings(s.Tutors)
	cp.Courses = copyStrings(s.Courses)
	return cp
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, copyStudent(s))
	}
	return students
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, other := range repo.db.table {
		if other.Email == s.Email {
			return student.Student{}, student.ErrEmailExists
		}
	}
	s.ID = uuid.New().String()
	s.Tutors = copyStrings(s.Tutors)
	s.Courses = copyStrings(s.Courses)
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) QueryStudentsByTutor(ctx context.Context, tutorID string) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0)
	for _, s := range repo.db.table {
		if containsString(s.Tutors, tutorID) {
			students = append(students, copyStudent(s))
		}
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return copyStudent(s), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByEmail(ctx context.Context, email string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.table {
		if s.Email == email {
			return copyStudent(s), nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.table {
		if s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[s.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	s.Tutors = copyStrings(s.Tutors)
	s.Courses = copyStrings(s.Courses)
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) DeleteStudentByID(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *studentRepository) RemoveTutorRefs(ctx context.Context, tutorID string) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var touched int64
	for _, s := range repo.db.table {
		if !containsString(s.Tutors, tutorID) {
			continue
		}
		kept := make([]string, 0, len(s.Tutors)-1)
		for _, id := range s.Tutors {
			if id != tutorID {
				kept = append(kept, id)
			}
		}
		s.Tutors = kept
		touched++
	}
	return touched, nil
}

func (repo *studentRepository) QueryAssignedTutors(ctx context.Context, studentID string) ([]student.TutorInfo, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	s, ok := repo.db.table[studentID]
	if !ok {
		return nil, student.ErrNotFound
	}

	repo.tutors.RLock()
	defer repo.tutors.RUnlock()

	infos := make([]student.TutorInfo, 0, len(s.Tutors))
	for _, id := range s.Tutors {
		t, ok := repo.tutors.table[id]
		if !ok {
			continue // dangling ref, skipped like an unmatched join
		}
		infos = append(infos, student.TutorInfo{ID: t.ID, Name: t.Name, Email: t.Email})
	}
	return infos, nil
}

func (repo *studentRepository) SyncTutorCounts(ctx context.Context, tutorIDs ...string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	repo.tutors.Lock()
	defer repo.tutors.Unlock()

	for _, tutorID := range tutorIDs {
		t, ok := repo.tutors.table[tutorID]
		if !ok {
			continue
		}
		var count int
		for _, s := range repo.db.table {
			if containsString(s.Tutors, tutorID) {
				count++
			}
		}
		t.AssignedUsers = count
	}
	return nil
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
