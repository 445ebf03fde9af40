package main

import (
	"fmt"

	"ebikerent/internal/browse"
	"ebikerent/internal/models"
)

type BikesCmd struct {
	List   BikesListCmd   `cmd:"" default:"withargs" help:"Search bikes."`
	Show   BikesShowCmd   `cmd:"" help:"Show a bike."`
	Mine   BikesMineCmd   `cmd:"" help:"List your own bikes."`
	Toggle BikesToggleCmd `cmd:"" help:"Switch one of your bikes between available and unavailable."`
	Delete BikesDeleteCmd `cmd:"" help:"Delete one of your bikes."`
}

type BikesListCmd struct {
	Search    string   `help:"Free text search."`
	Location  string   `help:"Location to search in."`
	StartDate string   `help:"Desired start date (YYYY-MM-DD)."`
	EndDate   string   `help:"Desired end date (YYYY-MM-DD)."`
	Types     []string `name:"type" help:"Bike types to show (city, mountain, road, cargo, folding, hybrid)."`
	MinPrice  float64  `default:"10" help:"Lowest daily rate."`
	MaxPrice  float64  `default:"200" help:"Highest daily rate."`
	Available bool     `help:"Only bikes available for rent."`
	Page      int      `default:"1"`
	PageSize  int      `default:"10"`
}

func (c *BikesListCmd) Run(app *App) error {
	search := browse.NewSearchStore()
	search.Update(browse.SearchUpdate{Location: &c.Location, StartDate: &c.StartDate, EndDate: &c.EndDate})

	filter := browse.NewFilterStore()
	types := make([]models.BikeType, 0, len(c.Types))
	for _, t := range c.Types {
		bt := models.BikeType(t)
		if !bt.Valid() {
			return fmt.Errorf("unknown bike type %q", t)
		}
		types = append(types, bt)
	}
	priceRange := [2]float64{c.MinPrice, c.MaxPrice}
	filter.Update(browse.FilterUpdate{SelectedTypes: types, PriceRange: &priceRange})

	pages := browse.NewPagination(c.PageSize)
	pages.Page = c.Page

	filters := pages.Apply(search.State().Apply(models.BikeFilters{
		Search:        c.Search,
		AvailableOnly: c.Available,
	}))
	page, err := app.svc.Bikes.List(app.ctx, filters)
	if err != nil {
		return err
	}
	pages.Total = page.Count

	visible := filter.Apply(page.Results)
	if err := printBikes(app.out, visible); err != nil {
		return err
	}
	if pages.TotalPages() > 1 {
		fmt.Fprintf(app.out, "\nPage %d of %d\n", pages.Page, pages.TotalPages())
	}
	return nil
}

type BikesShowCmd struct {
	ID int64 `arg:"" help:"Bike id."`
}

func (c *BikesShowCmd) Run(app *App) error {
	bike, err := app.svc.Bikes.Get(app.ctx, c.ID)
	if err != nil {
		return err
	}
	printBike(app.out, bike)

	if stats, err := app.svc.Ratings.BikeStats(app.ctx, c.ID); err == nil && stats.Statistics.TotalRatings > 0 {
		fmt.Fprintf(app.out, "\nRating: %.1f (%d reviews)\n", stats.Statistics.AverageRating, stats.Statistics.TotalRatings)
	}
	if app.session.HasToken() {
		if fav, err := app.svc.Favorites.IsFavorite(app.ctx, c.ID); err == nil && fav {
			fmt.Fprintln(app.out, "In your favorites.")
		}
	}
	return nil
}

type BikesMineCmd struct{}

func (c *BikesMineCmd) Run(app *App) error {
	page, err := app.svc.Bikes.Mine(app.ctx)
	if err != nil {
		return err
	}
	return printBikes(app.out, page.Results)
}

type BikesToggleCmd struct {
	ID int64 `arg:"" help:"Bike id."`
}

func (c *BikesToggleCmd) Run(app *App) error {
	bike, err := app.svc.Bikes.ToggleStatus(app.ctx, c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "%s is now %s.\n", bike.Title, bike.Status.Label())
	return nil
}

type BikesDeleteCmd struct {
	ID int64 `arg:"" help:"Bike id."`
}

func (c *BikesDeleteCmd) Run(app *App) error {
	return app.svc.Bikes.Delete(app.ctx, c.ID)
}
