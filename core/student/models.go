package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tutorpost/backend/core"
)

// Role is the tag persisted on every student document.
const Role = "user"

type Student struct {
	core.Account
	Age   int    `json:"age" db:"age"`
	State string `json:"state" db:"state"`

	// Tutors is semantically a set of tutor IDs; duplicates never persist.
	Tutors []string `json:"tutors" db:"tutors"`

	// Courses lists the course IDs the student may access.
	Courses []string `json:"courses" db:"courses"`
}

// TutorInfo is the expanded form of a tutor reference on read responses.
type TutorInfo struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

// NewStudent contains information needed to sign up a new Student.
type NewStudent struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Age             int      `json:"age" validate:"omitempty,gte=0"`
	State           string   `json:"state"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Courses         []string `json:"courses"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.State = core.CleanString(ns.State)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an
// existing Student. The tutor set is deliberately absent: it only changes
// through the dedicated assignment endpoint.
type UpdateStudent struct {
	Name            string   `json:"name"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Age             *int     `json:"age" validate:"omitempty,gte=0"`
	State           string   `json:"state"`
	Courses         []string `json:"courses"`
	Password        string   `json:"password"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
	FirstLogin      *bool    `json:"first_login"`
	DarkMode        *bool    `json:"dark_mode"`
}

func (uu *UpdateStudent) Validate(validate *validator.Validate, orig Student) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = orig.Name
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = orig.Email
	}

	uu.State = core.CleanString(uu.State)
	return validate.Struct(uu)
}

// InitValidators registers student-specific validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(studentStructValidation, NewStudent{}, UpdateStudent{})
}

func studentStructValidation(sl validator.StructLevel) {
	switch s := sl.Current().Interface().(type) {
	case NewStudent:
		core.ValidatePassword(sl, s.Password, s.Name, s.Email)
	case UpdateStudent:
		if s.Password != "" {
			core.ValidatePassword(sl, s.Password, s.Name, s.Email)
		}
	}
}
