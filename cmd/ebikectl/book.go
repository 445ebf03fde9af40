package main

import (
	"errors"
	"fmt"

	"ebikerent/internal/wizard"
)

type BookCmd struct {
	Bike       int64  `arg:"" help:"Bike id."`
	StartDate  string `required:"" help:"Start date (YYYY-MM-DD)."`
	EndDate    string `required:"" help:"End date (YYYY-MM-DD)."`
	Pickup     string `default:"09:00" help:"Pickup time (HH:MM)."`
	Return     string `default:"18:00" help:"Return time (HH:MM)."`
	NameOnCard string `required:"" help:"Name on the card."`
	CardNumber string `required:"" env:"EBIKE_CARD_NUMBER" help:"Card number. Only checked for presence, never sent."`
	Expiry     string `help:"Card expiry (MM/YY)."`
	CVV        string `name:"cvv" help:"Card security code."`
}

func (c *BookCmd) Run(app *App) error {
	if !app.session.HasToken() {
		return errNotLoggedIn
	}
	bike, err := app.svc.Bikes.Get(app.ctx, c.Bike)
	if err != nil {
		return err
	}

	w := wizard.New(bike, app.svc.Bookings, app.logger)
	w.Update(func(d *wizard.Draft) {
		d.StartDate, d.EndDate = c.StartDate, c.EndDate
		d.PickupTime, d.ReturnTime = c.Pickup, c.Return
		d.NameOnCard, d.CardNumber = c.NameOnCard, c.CardNumber
		d.ExpiryDate, d.CVV = c.Expiry, c.CVV
	})

	for w.State() != wizard.Confirmed {
		if w.State() == wizard.Review {
			if q, ok := w.Quote(); ok {
				printQuote(app, q)
			}
		}
		res := w.Continue(app.ctx)
		if !res.Advanced() {
			return errors.New(res.Message())
		}
	}

	booking, _ := w.Booking()
	fmt.Fprintf(app.out, "Booking #%d for %s is %s.\n", booking.ID, bike.Title, booking.Status)
	return nil
}

func printQuote(app *App, q wizard.Quote) {
	unit := "hour"
	if q.Billing == wizard.BillingDaily {
		unit = "day"
	}
	fmt.Fprintf(app.out, "Duration:    %.1f h\n", q.DisplayHours())
	fmt.Fprintf(app.out, "Rental:      %d %s(s) x %.2f = %.2f\n", q.Units, unit, q.Rate, q.Subtotal)
	fmt.Fprintf(app.out, "Service fee: %.2f\n", q.ServiceFee)
	fmt.Fprintf(app.out, "Total:       %.2f\n", q.Total)
}
