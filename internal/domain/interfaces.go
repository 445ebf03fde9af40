package domain

import (
	"context"

	"ebikerent/internal/apiclient"
	"ebikerent/internal/models"
)

// BookingCreator submits a booking request to the backend.
type BookingCreator interface {
	Create(ctx context.Context, in models.CreateBookingInput) (models.Booking, error)
}

// HostBookingLister lists the bookings made on the caller's own bikes.
type HostBookingLister interface {
	ForMyBikes(ctx context.Context) (apiclient.Page[models.Booking], error)
}

// ExpiredChecker triggers the backend sweep over bookings whose rental window
// started or ended.
type ExpiredChecker interface {
	CheckExpired(ctx context.Context) (models.ExpiredCheckResult, error)
}
