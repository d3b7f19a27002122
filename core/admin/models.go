package admin

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tutorpost/backend/core"
)

// Role is the tag persisted on every admin document.
const Role = "admin"

type Admin struct {
	core.Account
}

// NewAdmin contains information needed to create a new Admin.
type NewAdmin struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (na *NewAdmin) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)
	return validate.Struct(na)
}

// UpdateAdmin defines what information may be provided to modify an existing Admin.
type UpdateAdmin struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
	DarkMode        *bool  `json:"dark_mode"`
}

func (uu *UpdateAdmin) Validate(validate *validator.Validate, orig Admin) error {
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
	return validate.Struct(uu)
}

// InitValidators registers admin-specific validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(adminStructValidation, NewAdmin{}, UpdateAdmin{})
}

func adminStructValidation(sl validator.StructLevel) {
	switch a := sl.Current().Interface().(type) {
	case NewAdmin:
		core.ValidatePassword(sl, a.Password, a.Name, a.Email)
	case UpdateAdmin:
		if a.Password != "" {
			core.ValidatePassword(sl, a.Password, a.Name, a.Email)
		}
	}
}
