package tutor

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tutorpost/backend/core"
)

// Role is the tag persisted on every tutor document.
const Role = "tutor"

type Tutor struct {
	core.Account
	Age   int    `json:"age" db:"age"`
	State string `json:"state" db:"state"`

	// AssignedUsers counts the students currently referencing this tutor.
	AssignedUsers int `json:"assigned_users" db:"assigned_users"`

	// CoursePermissions is set-like; duplicates and blanks never persist.
	CoursePermissions []string `json:"course_permissions" db:"course_permissions"`
}

// NewTutor contains information needed to sign up a new Tutor.
type NewTutor struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Age             int    `json:"age" validate:"omitempty,gte=0"`
	State           string `json:"state"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nt *NewTutor) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.State = core.CleanString(nt.State)
	return validate.Struct(nt)
}

// UpdateTutor defines what information may be provided to modify an existing
// Tutor. Fields absent from this struct cannot be altered over the wire.
type UpdateTutor struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Age             *int   `json:"age" validate:"omitempty,gte=0"`
	State           string `json:"state"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
	FirstLogin      *bool  `json:"first_login"`
	DarkMode        *bool  `json:"dark_mode"`
}

func (uu *UpdateTutor) Validate(validate *validator.Validate, orig Tutor) error {
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

// InitValidators registers tutor-specific validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(tutorStructValidation, NewTutor{}, UpdateTutor{})
}

func tutorStructValidation(sl validator.StructLevel) {
	switch t := sl.Current().Interface().(type) {
	case NewTutor:
		core.ValidatePassword(sl, t.Password, t.Name, t.Email)
	case UpdateTutor:
		if t.Password != "" {
			core.ValidatePassword(sl, t.Password, t.Name, t.Email)
		}
	}
}
