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
	"github.com/tutorpost/backend/core/student"
)

type studentRow struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Email        null.String    `db:"email"`
	Role         null.String    `db:"role"`
	PasswordHash null.Bytes     `db:"password_hash"`
	FirstLogin   null.Bool      `db:"first_login"`
	DarkMode     null.Bool      `db:"dark_mode"`
	Age          null.Int       `db:"age"`
	State        null.String    `db:"state"`
	Tutors       pq.StringArray `db:"tutors"`
	Courses      pq.StringArray `db:"courses"`
	CreatedAt    null.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) row(s student.Student) studentRow {
	return studentRow{
		ID:           s.ID,
		Name:         null.NewString(s.Name, s.Name != ""),
		Email:        null.NewString(s.Email, s.Email != ""),
		Role:         null.StringFrom(s.Role),
		PasswordHash: null.BytesFrom(s.PasswordHash),
		FirstLogin:   null.BoolFrom(s.FirstLogin),
		DarkMode:     null.BoolFrom(s.DarkMode),
		Age:          null.IntFrom(s.Age),
		State:        null.NewString(s.State, s.State != ""),
		Tutors:       emptyIfNil(s.Tutors),
		Courses:      emptyIfNil(s.Courses),
		CreatedAt:    null.NewTime(s.CreatedAt.UTC(), !s.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(s.UpdatedAt.UTC(), !s.UpdatedAt.IsZero()),
	}
}

func (repo studentRepository) unrow(r studentRow) student.Student {
	return student.Student{
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
		Age:     r.Age.Int,
		State:   r.State.String,
		Tutors:  r.Tutors,
		Courses: r.Courses,
	}
}

func (repo studentRepository) unrowSlice(rows []studentRow) []student.Student {
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, repo.unrow(r))
	}
	return students
}

const studentCols = `id, name, email, role, password_hash, first_login, dark_mode,
	age, state, tutors, courses, created_at, updated_at`

func (repo studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	s.ID = uuid.New().String()
	r := repo.row(s)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO student (`+studentCols+`)
		VALUES (:id, :name, :email, :role, :password_hash, :first_login, :dark_mode,
			:age, :state, :tutors, :courses, :created_at, :updated_at)`, r)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrEmailExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return repo.unrow(r), nil
}

func (repo studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+studentCols+` FROM student`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return repo.unrowSlice(rows), nil
}

func (repo studentRepository) QueryStudentsByTutor(ctx context.Context, tutorID string) ([]student.Student, error) {
	var rows []studentRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT `+studentCols+` FROM student WHERE $1 = ANY(tutors)`, tutorID)
	if err != nil {
		return nil, errors.Wrap(err, "querying students by tutor")
	}
	return repo.unrowSlice(rows), nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var r studentRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+studentCols+` FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "finding student by ID")
	}
	return repo.unrow(r), nil
}

func (repo studentRepository) GetStudentByEmail(ctx context.Context, email string) (student.Student, error) {
	var r studentRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+studentCols+` FROM student WHERE email = $1`, email); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "finding student by email")
	}
	return repo.unrow(r), nil
}

func (repo studentRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	err := repo.db.GetContext(ctx, &taken, `SELECT EXISTS (SELECT 1 FROM student WHERE email = $1)`, email)
	if err != nil {
		return false, errors.Wrap(err, "checking student email")
	}
	return taken, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	r := repo.row(s)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE student SET name = :name, email = :email, password_hash = :password_hash,
			first_login = :first_login, dark_mode = :dark_mode, age = :age, state = :state,
			tutors = :tutors, courses = :courses, updated_at = :updated_at
		WHERE id = :id`, r)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrEmailExists
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.unrow(r), nil
}

func (repo studentRepository) DeleteStudentByID(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo studentRepository) RemoveTutorRefs(ctx context.Context, tutorID string) (int64, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE student SET tutors = array_remove(tutors, $1), updated_at = now()
		WHERE $1 = ANY(tutors)`, tutorID)
	if err != nil {
		return 0, errors.Wrap(err, "removing tutor refs")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (repo studentRepository) QueryAssignedTutors(ctx context.Context, studentID string) ([]student.TutorInfo, error) {
	var infos []student.TutorInfo
	err := repo.db.SelectContext(ctx, &infos, `
		SELECT t.id, COALESCE(t.name, '') AS name, t.email FROM tutor t
		JOIN student s ON t.id = ANY(s.tutors)
		WHERE s.id = $1`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assigned tutors")
	}
	return infos, nil
}

func (repo studentRepository) SyncTutorCounts(ctx context.Context, tutorIDs ...string) error {
	if len(tutorIDs) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `
		UPDATE tutor SET assigned_users =
			(SELECT count(*) FROM student s WHERE tutor.id = ANY(s.tutors))
		WHERE tutor.id = ANY($1)`, pq.Array(tutorIDs))
	return errors.Wrap(err, "syncing tutor counts")
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}
