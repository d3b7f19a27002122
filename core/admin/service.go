package admin

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tutorpost/backend/core"
)

var (
	// errors
	ErrNotFound    = errors.New("admin not found")
	ErrEmailExists = errors.New("an admin with this email already exists")
)

type (
	Repository interface {
		CreateAdmin(ctx context.Context, a Admin) (Admin, error)
		QueryAllAdmins(ctx context.Context) ([]Admin, error)
		GetAdminByID(ctx context.Context, id string) (Admin, error)
		GetAdminByEmail(ctx context.Context, email string) (Admin, error)
		UpdateAdmin(ctx context.Context, a Admin) (Admin, error)
		DeleteAdminByID(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, na NewAdmin) (Admin, error) {
	now := time.Now().UTC()
	a := Admin{
		Account: core.Account{
			Base:  core.Base{CreatedAt: now, UpdatedAt: now},
			Name:  na.Name,
			Email: na.Email,
			Role:  Role,
		},
	}
	if err := a.SetPassword(na.Password); err != nil {
		return Admin{}, err
	}
	return svc.repo.CreateAdmin(ctx, a)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Admin, error) {
	return svc.repo.QueryAllAdmins(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Admin, error) {
	return svc.repo.GetAdminByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Admin, error) {
	return svc.repo.GetAdminByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, orig Admin, uu UpdateAdmin) (Admin, error) {
	orig.Name = uu.Name
	orig.Email = uu.Email
	if uu.DarkMode != nil {
		orig.DarkMode = *uu.DarkMode
	}
	if uu.Password != "" {
		if err := orig.SetPassword(uu.Password); err != nil {
			return Admin{}, err
		}
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAdmin(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteAdminByID(ctx, id)
}

// Authenticate checks the admin's credentials; see tutor.Service.Authenticate.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Admin, error) {
	a, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return Admin{}, err
	}
	if err = a.CheckPassword(pwd); err != nil {
		return Admin{}, ErrNotFound
	}
	return a, nil
}
