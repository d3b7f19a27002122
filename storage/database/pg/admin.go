package pgrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tutorpost/backend/core"
	"github.com/tutorpost/backend/core/admin"
)

type adminRow struct {
	ID           string      `db:"id"`
	Name         null.String `db:"name"`
	Email        null.String `db:"email"`
	Role         null.String `db:"role"`
	PasswordHash null.Bytes  `db:"password_hash"`
	FirstLogin   null.Bool   `db:"first_login"`
	DarkMode     null.Bool   `db:"dark_mode"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
}

type adminRepository struct {
	db *sqlx.DB
}

var _ admin.Repository = (*adminRepository)(nil) // interface compliance check

func NewAdminRepository(db *sqlx.DB) *adminRepository {
	return &adminRepository{db: db}
}

func (repo adminRepository) row(a admin.Admin) adminRow {
	return adminRow{
		ID:           a.ID,
		Name:         null.NewString(a.Name, a.Name != ""),
		Email:        null.NewString(a.Email, a.Email != ""),
		Role:         null.StringFrom(a.Role),
		PasswordHash: null.BytesFrom(a.PasswordHash),
		FirstLogin:   null.BoolFrom(a.FirstLogin),
		DarkMode:     null.BoolFrom(a.DarkMode),
		CreatedAt:    null.NewTime(a.CreatedAt.UTC(), !a.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(a.UpdatedAt.UTC(), !a.UpdatedAt.IsZero()),
	}
}

func (repo adminRepository) unrow(r adminRow) admin.Admin {
	return admin.Admin{
		Account: core.Account{
			Base: core.Base{
				ID:        r.ID,
				CreatedAt: r.CreatedAt.Time,
				UpdatedAt: r.UpdatedAt.Time,
			},
			Name:         r.Name.String,
			Email:        r.Email.String,
			Role:         r.Role.String,
			PasswordHash: r.PasswordHash.Bytes,
			FirstLogin:   r.FirstLogin.Bool,
			DarkMode:     r.DarkMode.Bool,
		},
	}
}

const adminCols = `id, name, email, role, password_hash, first_login, dark_mode, created_at, updated_at`

func (repo adminRepository) CreateAdmin(ctx context.Context, a admin.Admin) (admin.Admin, error) {
	a.ID = uuid.New().String()
	r := repo.row(a)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO admin (`+adminCols+`)
		VALUES (:id, :name, :email, :role, :password_hash, :first_login, :dark_mode, :created_at, :updated_at)`, r)
	if err != nil {
		if isUniqueViolation(err) {
			return admin.Admin{}, admin.ErrEmailExists
		}
		return admin.Admin{}, errors.Wrap(err, "inserting admin")
	}
	return repo.unrow(r), nil
}

func (repo adminRepository) QueryAllAdmins(ctx context.Context) ([]admin.Admin, error) {
	var rows []adminRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+adminCols+` FROM admin`); err != nil {
		return nil, errors.Wrap(err, "querying admins")
	}
	admins := make([]admin.Admin, 0, len(rows))
	for _, r := range rows {
		admins = append(admins, repo.unrow(r))
	}
	return admins, nil
}

func (repo adminRepository) GetAdminByID(ctx context.Context, id string) (admin.Admin, error) {
	var r adminRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+adminCols+` FROM admin WHERE id = $1`, id); err != nil {
		return admin.Admin{}, repo.trapNoRowsErr(err, "finding admin by ID")
	}
	return repo.unrow(r), nil
}

func (repo adminRepository) GetAdminByEmail(ctx context.Context, email string) (admin.Admin, error) {
	var r adminRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+adminCols+` FROM admin WHERE email = $1`, email); err != nil {
		return admin.Admin{}, repo.trapNoRowsErr(err, "finding admin by email")
	}
	return repo.unrow(r), nil
}

func (repo adminRepository) UpdateAdmin(ctx context.Context, a admin.Admin) (admin.Admin, error) {
	r := repo.row(a)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE admin SET name = :name, email = :email, password_hash = :password_hash,
			first_login = :first_login, dark_mode = :dark_mode, updated_at = :updated_at
		WHERE id = :id`, r)
	if err != nil {
		if isUniqueViolation(err) {
			return admin.Admin{}, admin.ErrEmailExists
		}
		return admin.Admin{}, errors.Wrap(err, "updating admin")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return admin.Admin{}, admin.ErrNotFound
	}
	return repo.unrow(r), nil
}

func (repo adminRepository) DeleteAdminByID(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM admin WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting admin")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return admin.ErrNotFound
	}
	return nil
}

// trapNoRowsErr maps psql "no rows" err to admin.ErrNotFound
func (repo adminRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return admin.ErrNotFound
	}
	return errors.Wrap(err, msg)
}
