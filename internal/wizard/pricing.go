package wizard

import (
	"math"
	"time"

	"ebikerent/internal/models"
)

type Billing string

const (
	BillingHourly Billing = "hourly"
	BillingDaily  Billing = "daily"
)

// Quote is the price breakdown shown before a booking is submitted.
type Quote struct {
	Hours      float64
	Billing    Billing
	Units      int
	Rate       float64
	Subtotal   float64
	ServiceFee float64
	Total      float64
}

// DisplayHours is the rental length shown to the user, never below one hour.
func (q Quote) DisplayHours() float64 {
	return math.Max(q.Hours, 1)
}

// Price bills whole days from 24 hours on and whole hours below that. Without
// an hourly rate the hour costs a 24th of the daily rate.
func Price(d time.Duration, daily float64, hourly *float64) float64 {
	hours := d.Hours()
	if hours >= 24 {
		return math.Ceil(hours/24) * daily
	}
	return math.Ceil(hours) * hourlyRate(daily, hourly)
}

func hourlyRate(daily float64, hourly *float64) float64 {
	if hourly != nil {
		return *hourly
	}
	return daily / 24
}

// NewQuote prices the window [start, end) for bike.
func NewQuote(start, end time.Time, bike models.Bike) Quote {
	var hourly *float64
	if bike.HourlyRate != nil {
		h := bike.HourlyRate.Float()
		hourly = &h
	}
	daily := bike.DailyRate.Float()
	d := end.Sub(start)

	q := Quote{
		Hours:      d.Hours(),
		ServiceFee: models.ServiceFee,
	}
	if q.Hours >= 24 {
		q.Billing = BillingDaily
		q.Units = int(math.Ceil(q.Hours / 24))
		q.Rate = daily
	} else {
		q.Billing = BillingHourly
		q.Units = int(math.Ceil(q.Hours))
		q.Rate = hourlyRate(daily, hourly)
	}
	q.Subtotal = Price(d, daily, hourly)
	q.Total = q.Subtotal + q.ServiceFee
	return q
}
