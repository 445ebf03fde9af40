package main

import (
	"fmt"

	"ebikerent/internal/models"
)

type LoginCmd struct {
	Email    string `required:"" help:"Account email."`
	Password string `required:"" env:"EBIKE_PASSWORD" help:"Account password."`
}

func (c *LoginCmd) Run(app *App) error {
	if err := app.svc.Auth.Login(app.ctx, models.LoginCredentials{Email: c.Email, Password: c.Password}); err != nil {
		return err
	}
	user, err := app.svc.Auth.CurrentUser(app.ctx)
	if err != nil {
		fmt.Fprintln(app.out, "Logged in.")
		return nil
	}
	fmt.Fprintf(app.out, "Logged in as %s.\n", user.FullName())
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(app *App) error {
	if err := app.svc.Auth.Logout(app.ctx); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Logged out.")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(app *App) error {
	user, err := app.svc.Auth.CurrentUser(app.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "%s <%s>\n", user.FullName(), user.Email)
	return nil
}
