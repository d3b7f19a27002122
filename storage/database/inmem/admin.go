package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/tutorpost/backend/core/admin"
)

type adminRepository struct {
	db *adminTable
}

var _ admin.Repository = (*adminRepository)(nil)

func NewAdminRepository(db *DB) admin.Repository {
	return &adminRepository{db: db.admin}
}

func (repo *adminRepository) query() []admin.Admin {
	admins := make([]admin.Admin, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		admins = append(admins, *a)
	}
	return admins
}

func (repo *adminRepository) CreateAdmin(ctx context.Context, a admin.Admin) (admin.Admin, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, other := range repo.db.table {
		if other.Email == a.Email {
			return admin.Admin{}, admin.ErrEmailExists
		}
	}
	a.ID = uuid.New().String()
	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *adminRepository) QueryAllAdmins(ctx context.Context) ([]admin.Admin, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *adminRepository) GetAdminByID(ctx context.Context, id string) (admin.Admin, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return *a, nil
	}
	return admin.Admin{}, admin.ErrNotFound
}

func (repo *adminRepository) GetAdminByEmail(ctx context.Context, email string) (admin.Admin, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, a := range repo.query() {
		if a.Email == email {
			return a, nil
		}
	}
	return admin.Admin{}, admin.ErrNotFound
}

func (repo *adminRepository) UpdateAdmin(ctx context.Context, a admin.Admin) (admin.Admin, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[a.ID]; !ok {
		return admin.Admin{}, admin.ErrNotFound
	}
	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *adminRepository) DeleteAdminByID(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return admin.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
