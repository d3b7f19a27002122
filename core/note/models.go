package note

import (
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tutorpost/backend/core"
)

// DateLayout is the wire format of session dates.
const DateLayout = "2006-01-02"

// Note is the persisted record of a session note that was emailed out.
// Notes are create-only; no endpoint mutates them afterwards.
type Note struct {
	ID          string    `json:"id" db:"id"`
	StudentName string    `json:"student_name" db:"student_name"`
	To          string    `json:"to" db:"recipient"`
	Cc          []string  `json:"cc" db:"cc"`
	Subject     string    `json:"subject" db:"subject"`
	SessionDate time.Time `json:"session_date" db:"session_date"`
	Markdown    string    `json:"md" db:"markdown"`
	HTML        string    `json:"html" db:"html"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

// NewNote is a request to render and email a session note.
type NewNote struct {
	StudentName string   `json:"student_name" validate:"required"`
	To          string   `json:"to" validate:"required,email"`
	Cc          []string `json:"cc" validate:"omitempty,dive,email"`
	Subject     string   `json:"subject" validate:"required"`
	SessionDate string   `json:"session_date" validate:"omitempty,datetime=2006-01-02"`
	Markdown    string   `json:"md" validate:"required"`
}

// Validate cleans the payload and checks every recipient against the
// configured allow-list.
func (nn *NewNote) Validate(validate *validator.Validate, allowed []string) error {
	nn.StudentName = core.CleanString(nn.StudentName)
	nn.To = core.CleanString(nn.To, true /* lower */)
	nn.Subject = core.CleanString(nn.Subject)
	nn.Cc = core.SanitizeSet(nn.Cc)
	for i, cc := range nn.Cc {
		nn.Cc[i] = strings.ToLower(cc)
	}

	if err := validate.Struct(nn); err != nil {
		return err
	}

	if !RecipientAllowed(nn.To, allowed) {
		return core.NewValidationError(nil, core.FieldError{Field: "to", Error: "recipient not allowed"})
	}
	for _, cc := range nn.Cc {
		if !RecipientAllowed(cc, allowed) {
			return core.NewValidationError(nil, core.FieldError{Field: "cc", Error: "recipient not allowed: " + cc})
		}
	}
	return nil
}

// RecipientAllowed reports whether addr matches the allow-list: an exact
// address or a "@domain" suffix entry. An empty list allows everyone.
func RecipientAllowed(addr string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	addr = core.CleanString(addr, true /* lower */)
	for _, entry := range allowed {
		entry = core.CleanString(entry, true /* lower */)
		if entry == "" {
			continue
		}
		if strings.HasPrefix(entry, "@") {
			if strings.HasSuffix(addr, entry) {
				return true
			}
			continue
		}
		if addr == entry {
			return true
		}
	}
	return false
}

// InitValidators registers note-specific validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterCustomTranslation(validate, translator, "datetime", "invalid date; expected YYYY-MM-DD")
}
