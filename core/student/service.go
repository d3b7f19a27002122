package student

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tutorpost/backend/core"
	"github.com/tutorpost/backend/core/tutor"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		// QueryStudentsByTutor returns all students whose tutor set contains tutorID.
		QueryStudentsByTutor(ctx context.Context, tutorID string) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentByEmail(ctx context.Context, email string) (Student, error)
		// EmailTaken reports whether any student already holds this email.
		EmailTaken(ctx context.Context, email string) (bool, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudentByID(ctx context.Context, id string) error
		// RemoveTutorRefs pulls tutorID out of every student's tutor set and
		// returns the number of students touched. Matching no one is not an error.
		RemoveTutorRefs(ctx context.Context, tutorID string) (int64, error)
		// QueryAssignedTutors expands a student's tutor references.
		QueryAssignedTutors(ctx context.Context, studentID string) ([]TutorInfo, error)
		// SyncTutorCounts recomputes the assigned-user counters of the given tutors.
		SyncTutorCounts(ctx context.Context, tutorIDs ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	s := Student{
		Account: core.Account{
			Base:       core.Base{CreatedAt: now, UpdatedAt: now},
			Name:       ns.Name,
			Email:      ns.Email,
			Role:       Role,
			FirstLogin: true,
		},
		Age:     ns.Age,
		State:   ns.State,
		Courses: core.SanitizeSet(ns.Courses),
	}
	if err := s.SetPassword(ns.Password); err != nil {
		return Student{}, err
	}
	return svc.repo.CreateStudent(ctx, s)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) QueryByTutor(ctx context.Context, tutorID string) ([]Student, error) {
	return svc.repo.QueryStudentsByTutor(ctx, tutorID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Student, error) {
	return svc.repo.GetStudentByEmail(ctx, core.CleanString(email, true /* lower */))
}

// GetWithTutors loads a student along with the expanded form of their
// assigned tutors.
func (svc *Service) GetWithTutors(ctx context.Context, id string) (Student, []TutorInfo, error) {
	s, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, nil, err
	}
	infos, err := svc.repo.QueryAssignedTutors(ctx, id)
	if err != nil {
		return Student{}, nil, errors.Wrap(err, "expanding tutor refs")
	}
	return s, infos, nil
}

// Update overlays the fields provided in `uu` onto `orig` and persists.
func (svc *Service) Update(ctx context.Context, orig Student, uu UpdateStudent) (Student, error) {
	orig.Name = uu.Name
	orig.Email = uu.Email
	if uu.Age != nil {
		orig.Age = *uu.Age
	}
	if uu.State != "" {
		orig.State = uu.State
	}
	if uu.Courses != nil {
		orig.Courses = core.SanitizeSet(uu.Courses)
	}
	if uu.FirstLogin != nil {
		orig.FirstLogin = *uu.FirstLogin
	}
	if uu.DarkMode != nil {
		orig.DarkMode = *uu.DarkMode
	}
	if uu.Password != "" {
		if err := orig.SetPassword(uu.Password); err != nil {
			return Student{}, err
		}
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, orig)
}

// SetTutors replaces the student's tutor set wholesale with the sanitized
// input: syntactically invalid IDs are dropped and duplicates removed.
// Omitted IDs are unassigned, and the affected tutors' counters resynced.
func (svc *Service) SetTutors(ctx context.Context, id string, tutorIDs []string) (Student, error) {
	orig, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}

	affected := orig.Tutors
	orig.Tutors = SanitizeTutorIDs(tutorIDs)
	orig.UpdatedAt = time.Now().UTC()
	s, err := svc.repo.UpdateStudent(ctx, orig)
	if err != nil {
		return Student{}, err
	}

	affected = append(affected, s.Tutors...)
	if err = svc.repo.SyncTutorCounts(ctx, core.SanitizeSet(affected)...); err != nil {
		return Student{}, errors.Wrap(err, "syncing tutor counts")
	}
	return s, nil
}

// RemoveTutorRefs drops every reference to tutorID and resyncs that tutor's
// assigned-user counter. It is idempotent.
func (svc *Service) RemoveTutorRefs(ctx context.Context, tutorID string) (int64, error) {
	n, err := svc.repo.RemoveTutorRefs(ctx, tutorID)
	if err != nil {
		return n, err
	}
	if n > 0 {
		if err = svc.repo.SyncTutorCounts(ctx, tutorID); err != nil {
			return n, errors.Wrap(err, "syncing tutor counts")
		}
	}
	return n, nil
}

// EnrollDemotedTutor converts a Tutor into a Student, carrying over the
// already-hashed password. The caller remains responsible for deleting the
// source tutor document. Fails with a ConflictError if a student already
// holds the tutor's email.
func (svc *Service) EnrollDemotedTutor(ctx context.Context, t tutor.Tutor) (Student, error) {
	taken, err := svc.repo.EmailTaken(ctx, t.Email)
	if err != nil {
		return Student{}, errors.Wrap(err, "checking email availability")
	}
	if taken {
		return Student{}, core.NewConflictError(ErrEmailExists.Error())
	}

	now := time.Now().UTC()
	s := Student{
		Account: core.Account{
			Base:       core.Base{CreatedAt: now, UpdatedAt: now},
			Name:       t.Name,
			Email:      t.Email,
			Role:       Role,
			FirstLogin: t.FirstLogin,
			DarkMode:   t.DarkMode,
		},
		Age:   t.Age,
		State: t.State,
	}
	s.SetPasswordHash(t.PasswordHash)
	return svc.repo.CreateStudent(ctx, s)
}

// Delete removes the student and resyncs the counters of the tutors the
// student was assigned to.
func (svc *Service) Delete(ctx context.Context, id string) error {
	s, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteStudentByID(ctx, id); err != nil {
		return err
	}
	if len(s.Tutors) > 0 {
		return errors.Wrap(svc.repo.SyncTutorCounts(ctx, s.Tutors...), "syncing tutor counts")
	}
	return nil
}

// Authenticate checks the student's credentials; see tutor.Service.Authenticate.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Student, error) {
	s, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return Student{}, err
	}
	if err = s.CheckPassword(pwd); err != nil {
		return Student{}, ErrNotFound
	}
	return s, nil
}

// SanitizeTutorIDs keeps only well-formed tutor IDs, deduplicated with
// first-occurrence order.
func SanitizeTutorIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = core.CleanString(id)
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
