package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/user"
)

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(email, firstName, lastName, pwd string, isAdmin bool) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	usr, err := cli.usrRepo.GetByEmail(ctx, email)
	isNew := err == user.ErrNotFound
	if err != nil && !isNew {
		return err
	}
	if isNew {
		usr = user.User{
			ID:        uuid.NewString(),
			FirstName: core.CleanString(firstName),
			LastName:  core.CleanString(lastName),
			Email:     email,
			Roles:     user.StudentRoles,
			CreatedAt: now,
		}
	}
	if isAdmin {
		usr.Roles = user.AllRoles
	}
	usr.IsActive = true
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if isNew {
		_, err = cli.usrRepo.Create(ctx, usr)
	} else {
		_, err = cli.usrRepo.Update(ctx, usr)
	}
	return err
}
