package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tutorpost/backend/core"
	"github.com/tutorpost/backend/core/admin"
)

func (cli *commandLine) addAdmin(name, email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	if _, err := cli.adminSvc.GetByEmail(ctx, email); err == nil {
		return errors.Errorf("an admin with email %q already exists", email)
	} else if errors.Cause(err) != admin.ErrNotFound {
		return err
	}

	_, err := cli.adminSvc.Create(ctx, admin.NewAdmin{
		Name:            core.CleanString(name),
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	return err
}
