package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/user"
)

// addUser updates or creates an active user.User with the given role.
func (cli *commandLine) addUser(name, uname, email, pwd, role string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	if name == "" {
		name = uname
	}

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, email)
	if err != nil && errors.Cause(err) != user.ErrNotFound {
		return err
	}
	exists := err == nil

	now := time.Now().UTC()
	if !exists {
		usr = user.User{ID: uuid.NewString(), CreatedAt: now}
	}
	usr.Name = name
	usr.Username = uname
	usr.Email = email
	usr.Roles = []string{role}
	usr.IsActive = true
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	return err
}
