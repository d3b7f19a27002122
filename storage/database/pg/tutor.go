package pgrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tutorpost/backend/core"
	"github.com/tutorpost/backend/core/tutor"
)

type tutorRow struct {
	ID                string         `db:"id"`
	Name              null.String    `db:"name"`
	Email             null.String    `db:"email"`
	Role              null.String    `db:"role"`
	PasswordHash      null.Bytes     `db:"password_hash"`
	FirstLogin        null.Bool      `db:"first_login"`
	DarkMode          null.Bool      `db:"dark_mode"`
	Age               null.Int       `db:"age"`
	State             null.String    `db:"state"`
	AssignedUsers     null.Int       `db:"assigned_users"`
	CoursePermissions pq.StringArray `db:"course_permissions"`
	CreatedAt         null.Time      `db:"created_at"`
	UpdatedAt         null.Time      `db:"updated_at"`
}

type tutorRepository struct {
	db *sqlx.DB
}

var _ tutor.Repository = (*tutorRepository)(nil) // interface compliance check

func NewTutorRepository(db *sqlx.DB) *tutorRepository {
	return &tutorRepository{db: db}
}

func (repo tutorRepository) row(t tutor.Tutor) tutorRow {
	return tutorRow{
		ID:                t.ID,
		Name:              null.NewString(t.Name, t.Name != ""),
		Email:             null.NewString(t.Email, t.Email != ""),
		Role:              null.StringFrom(t.Role),
		PasswordHash:      null.BytesFrom(t.PasswordHash),
		FirstLogin:        null.BoolFrom(t.FirstLogin),
		DarkMode:          null.BoolFrom(t.DarkMode),
		Age:               null.IntFrom(t.Age),
		State:             null.NewString(t.State, t.State != ""),
		AssignedUsers:     null.IntFrom(t.AssignedUsers),
		CoursePermissions: emptyIfNil(t.CoursePermissions),
		CreatedAt:         null.NewTime(t.CreatedAt.UTC(), !t.CreatedAt.IsZero()),
		UpdatedAt:         null.NewTime(t.UpdatedAt.UTC(), !t.UpdatedAt.IsZero()),
	}
}

func (repo tutorRepository) unrow(r tutorRow) tutor.Tutor {
	return tutor.Tutor{
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
		Age:               r.Age.Int,
		State:             r.State.String,
		AssignedUsers:     r.AssignedUsers.Int,
		CoursePermissions: r.CoursePermissions,
	}
}

const tutorCols = `id, name, email, role, password_hash, first_login, dark_mode,
	age, state, assigned_users, course_permissions, created_at, updated_at`

func (repo tutorRepository) CreateTutor(ctx context.Context, t tutor.Tutor) (tutor.Tutor, error) {
	t.ID = uuid.New().String()
	r := repo.row(t)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO tutor (`+tutorCols+`)
		VALUES (:id, :name, :email, :role, :password_hash, :first_login, :dark_mode,
			:age, :state, :assigned_users, :course_permissions, :created_at, :updated_at)`, r)
	if err != nil {
		if isUniqueViolation(err) {
			return tutor.Tutor{}, tutor.ErrEmailExists
		}
		return tutor.Tutor{}, errors.Wrap(err, "inserting tutor")
	}
	return repo.unrow(r), nil
}

func (repo tutorRepository) QueryAllTutors(ctx context.Context) ([]tutor.Tutor, error) {
	var rows []tutorRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+tutorCols+` FROM tutor`); err != nil {
		return nil, errors.Wrap(err, "querying tutors")
	}
	tutors := make([]tutor.Tutor, 0, len(rows))
	for _, r := range rows {
		tutors = append(tutors, repo.unrow(r))
	}
	return tutors, nil
}

func (repo tutorRepository) GetTutorByID(ctx context.Context, id string) (tutor.Tutor, error) {
	var r tutorRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+tutorCols+` FROM tutor WHERE id = $1`, id); err != nil {
		return tutor.Tutor{}, repo.trapNoRowsErr(err, "finding tutor by ID")
	}
	return repo.unrow(r), nil
}

func (repo tutorRepository) GetTutorByEmail(ctx context.Context, email string) (tutor.Tutor, error) {
	var r tutorRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+tutorCols+` FROM tutor WHERE email = $1`, email); err != nil {
		return tutor.Tutor{}, repo.trapNoRowsErr(err, "finding tutor by email")
	}
	return repo.unrow(r), nil
}

func (repo tutorRepository) UpdateTutor(ctx context.Context, t tutor.Tutor) (tutor.Tutor, error) {
	r := repo.row(t)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE tutor SET name = :name, email = :email, password_hash = :password_hash,
			first_login = :first_login, dark_mode = :dark_mode, age = :age, state = :state,
			assigned_users = :assigned_users, course_permissions = :course_permissions,
			updated_at = :updated_at
		WHERE id = :id`, r)
	if err != nil {
		if isUniqueViolation(err) {
			return tutor.Tutor{}, tutor.ErrEmailExists
		}
		return tutor.Tutor{}, errors.Wrap(err, "updating tutor")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tutor.Tutor{}, tutor.ErrNotFound
	}
	return repo.unrow(r), nil
}

func (repo tutorRepository) DeleteTutorByID(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM tutor WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting tutor")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tutor.ErrNotFound
	}
	return nil
}

// trapNoRowsErr maps psql "no rows" err to tutor.ErrNotFound
func (repo tutorRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return tutor.ErrNotFound
	}
	return errors.Wrap(err, msg)
}
