package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tutorpost/backend/core/admin"
	"github.com/tutorpost/backend/core/student"
	"github.com/tutorpost/backend/core/tutor"
)

func (cli *commandLine) resetPassword(kind, email, pwd string) error {
	ctx := context.Background()

	switch kind {
	case "admin":
		a, err := cli.adminSvc.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		_, err = cli.adminSvc.Update(ctx, a, admin.UpdateAdmin{
			Name: a.Name, Email: a.Email, Password: pwd, PasswordConfirm: pwd,
		})
		return err

	case "tutor":
		t, err := cli.tutorSvc.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		_, err = cli.tutorSvc.Update(ctx, t, tutor.UpdateTutor{
			Name: t.Name, Email: t.Email, Password: pwd, PasswordConfirm: pwd,
		})
		return err

	case "user":
		s, err := cli.studentSvc.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		_, err = cli.studentSvc.Update(ctx, s, student.UpdateStudent{
			Name: s.Name, Email: s.Email, Password: pwd, PasswordConfirm: pwd,
		})
		return err

	default:
		return errors.Errorf("unknown account kind %q", kind)
	}
}
