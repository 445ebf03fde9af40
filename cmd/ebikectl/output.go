package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"ebikerent/internal/models"
)

func newTable(w io.Writer, columns ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	return tw
}

func printBikes(w io.Writer, bikes []models.Bike) error {
	tw := newTable(w, "ID", "TITLE", "TYPE", "LOCATION", "DAILY", "HOURLY", "STATUS")
	for _, b := range bikes {
		hourly := "-"
		if b.HourlyRate != nil {
			hourly = b.HourlyRate.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Title, b.BikeType.Label(), b.Location, b.DailyRate, hourly, b.Status.Label())
	}
	return tw.Flush()
}

func printBike(w io.Writer, b models.Bike) {
	fmt.Fprintf(w, "#%d %s (%s)\n", b.ID, b.Title, b.BikeType.Label())
	fmt.Fprintf(w, "Owner:    %s\n", b.Owner.FullName())
	fmt.Fprintf(w, "Location: %s\n", b.Location)
	fmt.Fprintf(w, "Status:   %s\n", b.Status.Label())
	fmt.Fprintf(w, "Daily:    %s\n", b.DailyRate)
	if b.HourlyRate != nil {
		fmt.Fprintf(w, "Hourly:   %s\n", b.HourlyRate)
	}
	if b.BatteryRange > 0 || b.MaxSpeed > 0 {
		fmt.Fprintf(w, "Range:    %d km, max %d km/h\n", b.BatteryRange, b.MaxSpeed)
	}
	if len(b.Features) > 0 {
		fmt.Fprintf(w, "Features: %s\n", strings.Join(b.Features, ", "))
	}
	if img, ok := b.PrimaryImage(); ok {
		url := img.ImageURL
		if url == "" {
			url = img.Image
		}
		fmt.Fprintf(w, "Image:    %s\n", url)
	}
	if b.Description != "" {
		fmt.Fprintf(w, "\n%s\n", b.Description)
	}
}

func printBookings(w io.Writer, bookings []models.Booking) error {
	tw := newTable(w, "ID", "BIKE", "RENTER", "START", "END", "STATUS", "TOTAL")
	for _, b := range bookings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Bike.Title, b.Renter.FullName(),
			b.StartTime.Local().Format("2006-01-02 15:04"), b.EndTime.Local().Format("2006-01-02 15:04"),
			b.Status, b.TotalPrice)
	}
	return tw.Flush()
}

func printRatings(w io.Writer, ratings []models.Rating) error {
	tw := newTable(w, "ID", "BIKE", "USER", "RATING", "COMMENT")
	for _, r := range ratings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.Bike.Title, r.User.FullName(), stars(r.Rating), r.Comment)
	}
	return tw.Flush()
}

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > models.MaxRating {
		n = models.MaxRating
	}
	return strings.Repeat("*", n) + strings.Repeat(".", models.MaxRating-n)
}
