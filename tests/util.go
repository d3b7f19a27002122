package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tutorpost/backend/core"
	"github.com/tutorpost/backend/core/admin"
	"github.com/tutorpost/backend/core/note"
	"github.com/tutorpost/backend/core/student"
	"github.com/tutorpost/backend/core/tutor"
)

// NewConfig returns a self-contained test configuration; nothing is read
// from the environment.
func NewConfig() *core.Config {
	return &core.Config{
		Env:              "TEST",
		Debug:            false,
		TestMode:         true,
		AppName:          "Tutorpost",
		Build:            "test",
		SecretKey:        "secret",
		DefaultFromEmail: mail.Address{Name: "Tutorpost", Address: "noreply@test.tutorpost.cd"},
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: time.Hour,
		},
	}
}

// NewValidator returns a validator with all entity validators registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)
	tutor.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	note.InitValidators(validate, translator)
	return validate, translator
}

// NopLogger discards everything. Fatal does not exit.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

func CreateAdmin(t *testing.T, repo admin.Repository, name, email, pwd string) admin.Admin {
	t.Helper()
	now := time.Now().UTC()
	a := admin.Admin{
		Account: core.Account{
			Base:  core.Base{CreatedAt: now, UpdatedAt: now},
			Name:  name,
			Email: email,
			Role:  admin.Role,
		},
	}
	if pwd != "" {
		if err := a.SetPassword(pwd); err != nil {
			t.Fatalf("CreateAdmin(): %v", err)
		}
	}
	a, err := repo.CreateAdmin(context.Background(), a)
	if err != nil {
		t.Fatalf("CreateAdmin(): %v", err)
	}
	return a
}

func CreateTutor(t *testing.T, repo tutor.Repository, name, email, pwd string, courses ...string) tutor.Tutor {
	t.Helper()
	now := time.Now().UTC()
	tut := tutor.Tutor{
		Account: core.Account{
			Base:       core.Base{CreatedAt: now, UpdatedAt: now},
			Name:       name,
			Email:      email,
			Role:       tutor.Role,
			FirstLogin: true,
		},
		CoursePermissions: courses,
	}
	if pwd != "" {
		if err := tut.SetPassword(pwd); err != nil {
			t.Fatalf("CreateTutor(): %v", err)
		}
	}
	tut, err := repo.CreateTutor(context.Background(), tut)
	if err != nil {
		t.Fatalf("CreateTutor(): %v", err)
	}
	return tut
}

func CreateStudent(t *testing.T, repo student.Repository, name, email, pwd string, tutors ...string) student.Student {
	t.Helper()
	now := time.Now().UTC()
	s := student.Student{
		Account: core.Account{
			Base:       core.Base{CreatedAt: now, UpdatedAt: now},
			Name:       name,
			Email:      email,
			Role:       student.Role,
			FirstLogin: true,
		},
		Tutors: tutors,
	}
	if pwd != "" {
		if err := s.SetPassword(pwd); err != nil {
			t.Fatalf("CreateStudent(): %v", err)
		}
	}
	s, err := repo.CreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return s
}
