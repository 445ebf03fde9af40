package main

import (
	"fmt"
	"time"

	"ebikerent/internal/export"
	"ebikerent/internal/models"
	"ebikerent/internal/worker"
)

type BookingsCmd struct {
	List     BookingsListCmd     `cmd:"" help:"List bookings visible to you."`
	Mine     BookingsMineCmd     `cmd:"" help:"List bookings you made."`
	Host     BookingsHostCmd     `cmd:"" help:"List bookings on your bikes."`
	Show     BookingsShowCmd     `cmd:"" help:"Show a booking."`
	Approve  BookingsApproveCmd  `cmd:"" help:"Approve a booking request on your bike."`
	Cancel   BookingsCancelCmd   `cmd:"" help:"Cancel a booking."`
	Start    BookingsStartCmd    `cmd:"" help:"Start an approved rental."`
	Complete BookingsCompleteCmd `cmd:"" help:"Complete an active rental."`
	Sweep    BookingsSweepCmd    `cmd:"" help:"Start and complete rentals whose time has come."`
	Export   BookingsExportCmd   `cmd:"" help:"Export bookings on your bikes to an Excel file."`
}

type BookingsListCmd struct {
	Status string `help:"Only bookings in this status (requested, approved, active, completed, cancelled)."`
	Role   string `help:"Your role in the booking (renter, owner)."`
	Bike   int64  `help:"Only bookings of this bike."`
}

func (c *BookingsListCmd) Run(app *App) error {
	if c.Status != "" && !models.BookingStatus(c.Status).Valid() {
		return fmt.Errorf("unknown booking status %q", c.Status)
	}
	if role := models.BookingRole(c.Role); role != "" && role != models.RoleRenter && role != models.RoleOwner {
		return fmt.Errorf("unknown role %q", c.Role)
	}
	page, err := app.svc.Bookings.List(app.ctx, models.BookingFilters{
		Status: models.BookingStatus(c.Status),
		Role:   models.BookingRole(c.Role),
		BikeID: c.Bike,
	})
	if err != nil {
		return err
	}
	return printBookings(app.out, page.Results)
}

type BookingsMineCmd struct{}

func (c *BookingsMineCmd) Run(app *App) error {
	page, err := app.svc.Bookings.Mine(app.ctx)
	if err != nil {
		return err
	}
	return printBookings(app.out, page.Results)
}

type BookingsHostCmd struct{}

func (c *BookingsHostCmd) Run(app *App) error {
	page, err := app.svc.Bookings.ForMyBikes(app.ctx)
	if err != nil {
		return err
	}
	return printBookings(app.out, page.Results)
}

type BookingsShowCmd struct {
	ID int64 `arg:""`
}

func (c *BookingsShowCmd) Run(app *App) error {
	b, err := app.svc.Bookings.Get(app.ctx, c.ID)
	if err != nil {
		return err
	}
	return printBookings(app.out, []models.Booking{b})
}

type BookingsApproveCmd struct {
	ID int64 `arg:""`
}

func (c *BookingsApproveCmd) Run(app *App) error {
	_, err := app.svc.Bookings.UpdateStatus(app.ctx, c.ID, models.BookingApproved)
	return err
}

type BookingsCancelCmd struct {
	ID int64 `arg:""`
}

func (c *BookingsCancelCmd) Run(app *App) error {
	_, err := app.svc.Bookings.Cancel(app.ctx, c.ID)
	return err
}

type BookingsStartCmd struct {
	ID int64 `arg:""`
}

func (c *BookingsStartCmd) Run(app *App) error {
	_, err := app.svc.Bookings.StartRental(app.ctx, c.ID)
	return err
}

type BookingsCompleteCmd struct {
	ID int64 `arg:""`
}

func (c *BookingsCompleteCmd) Run(app *App) error {
	_, err := app.svc.Bookings.CompleteRental(app.ctx, c.ID)
	return err
}

type BookingsSweepCmd struct {
	Watch    bool          `help:"Keep sweeping until interrupted."`
	Interval time.Duration `default:"5m" help:"Time between sweeps in watch mode."`
}

func (c *BookingsSweepCmd) Run(app *App) error {
	if c.Watch {
		s := worker.NewSweeper(app.svc.Bookings, c.Interval, app.logger)
		s.OnSweep = func(res models.ExpiredCheckResult) {
			fmt.Fprintf(app.out, "%s started=%d completed=%d\n", time.Now().Format(time.RFC3339), res.StartedCount, res.CompletedCount)
		}
		s.Run(app.ctx)
		return nil
	}

	res, err := app.svc.Bookings.CheckExpired(app.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "started=%d completed=%d\n", res.StartedCount, res.CompletedCount)
	return nil
}

type BookingsExportCmd struct {
	Dir string `help:"Output directory. Defaults to exports.path from the config."`
}

func (c *BookingsExportCmd) Run(app *App) error {
	dir := c.Dir
	if dir == "" {
		dir = app.cfg.Exports.Path
	}
	path, err := export.NewExporter(dir, app.svc.Bookings, app.logger).HostBookings(app.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.out, path)
	return nil
}
