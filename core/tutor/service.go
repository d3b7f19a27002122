package tutor

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tutorpost/backend/core"
)

var (
	// errors
	ErrNotFound    = errors.New("tutor not found")
	ErrEmailExists = errors.New("a tutor with this email already exists")
)

type (
	Repository interface {
		CreateTutor(ctx context.Context, t Tutor) (Tutor, error)
		QueryAllTutors(ctx context.Context) ([]Tutor, error)
		GetTutorByID(ctx context.Context, id string) (Tutor, error)
		GetTutorByEmail(ctx context.Context, email string) (Tutor, error)
		UpdateTutor(ctx context.Context, t Tutor) (Tutor, error)
		DeleteTutorByID(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create signs up a new Tutor. Email uniqueness is enforced by the
// repository; its error is surfaced verbatim to the caller.
func (svc *Service) Create(ctx context.Context, nt NewTutor) (Tutor, error) {
	now := time.Now().UTC()
	t := Tutor{
		Account: core.Account{
			Base:       core.Base{CreatedAt: now, UpdatedAt: now},
			Name:       nt.Name,
			Email:      nt.Email,
			Role:       Role,
			FirstLogin: true,
		},
		Age:   nt.Age,
		State: nt.State,
	}
	if err := t.SetPassword(nt.Password); err != nil {
		return Tutor{}, err
	}
	return svc.repo.CreateTutor(ctx, t)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Tutor, error) {
	return svc.repo.QueryAllTutors(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Tutor, error) {
	return svc.repo.GetTutorByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Tutor, error) {
	return svc.repo.GetTutorByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Update overlays the fields provided in `uu` onto `orig` and persists.
func (svc *Service) Update(ctx context.Context, orig Tutor, uu UpdateTutor) (Tutor, error) {
	orig.Name = uu.Name
	orig.Email = uu.Email
	if uu.Age != nil {
		orig.Age = *uu.Age
	}
	if uu.State != "" {
		orig.State = uu.State
	}
	if uu.FirstLogin != nil {
		orig.FirstLogin = *uu.FirstLogin
	}
	if uu.DarkMode != nil {
		orig.DarkMode = *uu.DarkMode
	}
	if uu.Password != "" {
		if err := orig.SetPassword(uu.Password); err != nil {
			return Tutor{}, err
		}
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTutor(ctx, orig)
}

// SetCoursePermissions replaces the tutor's course-permission set with the
// sanitized input: entries are trimmed, blanks dropped and duplicates removed
// (first occurrence wins).
func (svc *Service) SetCoursePermissions(ctx context.Context, id string, courseIDs []string) ([]string, error) {
	orig, err := svc.repo.GetTutorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sanitized := core.SanitizeSet(courseIDs)
	orig.CoursePermissions = sanitized
	orig.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateTutor(ctx, orig); err != nil {
		return nil, err
	}
	return sanitized, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteTutorByID(ctx, id)
}

// Authenticate checks the tutor's credentials. It returns ErrNotFound for an
// unknown email and for a password mismatch alike, so callers cannot tell the
// two cases apart.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Tutor, error) {
	t, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return Tutor{}, err
	}
	if err = t.CheckPassword(pwd); err != nil {
		return Tutor{}, ErrNotFound
	}
	return t, nil
}
