package main

import (
	"errors"
	"fmt"
	"time"

	"ebikerent/internal/models"
	"ebikerent/internal/session"
	"ebikerent/internal/wizard"
)

var errNotLoggedIn = session.ErrNoSession

type FavoritesCmd struct {
	List   FavoritesListCmd   `cmd:"" default:"1" help:"List your favorite bikes."`
	Toggle FavoritesToggleCmd `cmd:"" help:"Add or remove a bike from your favorites."`
}

type FavoritesListCmd struct{}

func (c *FavoritesListCmd) Run(app *App) error {
	list, err := app.svc.Favorites.List(app.ctx)
	if err != nil {
		return err
	}
	bikes := make([]models.Bike, 0, len(list.Results))
	for _, f := range list.Results {
		bikes = append(bikes, f.Bike)
	}
	return printBikes(app.out, bikes)
}

type FavoritesToggleCmd struct {
	Bike int64 `arg:""`
}

func (c *FavoritesToggleCmd) Run(app *App) error {
	fav, err := app.svc.Favorites.Toggle(app.ctx, c.Bike)
	if err != nil {
		return err
	}
	if fav {
		fmt.Fprintln(app.out, "Added to favorites.")
	} else {
		fmt.Fprintln(app.out, "Removed from favorites.")
	}
	return nil
}

type RatingsCmd struct {
	List     RatingsListCmd     `cmd:"" help:"List ratings."`
	Mine     RatingsMineCmd     `cmd:"" help:"List your ratings."`
	Rateable RatingsRateableCmd `cmd:"" help:"List completed bookings you can still rate."`
	Create   RatingsCreateCmd   `cmd:"" help:"Rate a completed booking."`
	Stats    RatingsStatsCmd    `cmd:"" help:"Show rating statistics of a bike."`
}

type RatingsListCmd struct {
	Bike      int64 `help:"Only ratings of this bike."`
	MinRating int   `help:"Lowest rating to show."`
}

func (c *RatingsListCmd) Run(app *App) error {
	page, err := app.svc.Ratings.List(app.ctx, models.RatingFilters{Bike: c.Bike, MinRating: c.MinRating})
	if err != nil {
		return err
	}
	return printRatings(app.out, page.Results)
}

type RatingsMineCmd struct{}

func (c *RatingsMineCmd) Run(app *App) error {
	page, err := app.svc.Ratings.Mine(app.ctx)
	if err != nil {
		return err
	}
	return printRatings(app.out, page.Results)
}

type RatingsRateableCmd struct{}

func (c *RatingsRateableCmd) Run(app *App) error {
	page, err := app.svc.Ratings.Rateable(app.ctx)
	if err != nil {
		return err
	}
	return printBookings(app.out, page.Results)
}

type RatingsCreateCmd struct {
	Booking int64  `required:"" help:"Completed booking to rate."`
	Rating  int    `required:"" help:"Score from 1 to 5."`
	Comment string `help:"Optional comment, at most 500 characters."`
}

func (c *RatingsCreateCmd) Run(app *App) error {
	_, err := app.svc.Ratings.Create(app.ctx, models.CreateRatingInput{Booking: c.Booking, Rating: c.Rating, Comment: c.Comment})
	return err
}

type RatingsStatsCmd struct {
	Bike int64 `arg:""`
}

func (c *RatingsStatsCmd) Run(app *App) error {
	stats, err := app.svc.Ratings.BikeStats(app.ctx, c.Bike)
	if err != nil {
		return err
	}
	s := stats.Statistics
	fmt.Fprintf(app.out, "%s: %.1f average over %d ratings\n", stats.BikeTitle, s.AverageRating, s.TotalRatings)
	for score := models.MaxRating; score >= models.MinRating; score-- {
		fmt.Fprintf(app.out, "  %s %d\n", stars(score), s.RatingDistribution[fmt.Sprint(score)])
	}
	return nil
}

// QuoteCmd prices a rental either for a listed bike or for explicit rates.
type QuoteCmd struct {
	Bike   int64         `help:"Price with the rates of this bike."`
	Daily  float64       `help:"Daily rate, when no bike is given."`
	Hourly float64       `help:"Hourly rate, when no bike is given."`
	Hours  time.Duration `required:"" help:"Rental length, e.g. 5h or 50h."`
}

func (c *QuoteCmd) Run(app *App) error {
	var bike models.Bike
	switch {
	case c.Bike != 0:
		var err error
		if bike, err = app.svc.Bikes.Get(app.ctx, c.Bike); err != nil {
			return err
		}
	case c.Daily > 0:
		bike.DailyRate = models.Money(c.Daily)
		if c.Hourly > 0 {
			h := models.Money(c.Hourly)
			bike.HourlyRate = &h
		}
	default:
		return errors.New("either --bike or --daily is required")
	}

	start := time.Now().Truncate(time.Minute)
	printQuote(app, wizard.NewQuote(start, start.Add(c.Hours), bike))
	return nil
}
