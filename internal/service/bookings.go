package service

import (
	"context"
	"fmt"
	"net/http"

	"ebikerent/internal/apiclient"
	"ebikerent/internal/events"
	"ebikerent/internal/models"
)

type BookingService struct {
	base
}

func NewBookingService(d Deps) *BookingService {
	return &BookingService{base: newBase(d, "bookings")}
}

func (s *BookingService) List(ctx context.Context, filters models.BookingFilters) (apiclient.Page[models.Booking], error) {
	return fetch[apiclient.Page[models.Booking]](ctx, &s.base, BookingListKey(filters),
		apiclient.WithQuery("/bookings/", filters), read(models.BookingStaleTime))
}

func (s *BookingService) Get(ctx context.Context, bookingID int64) (models.Booking, error) {
	return fetch[models.Booking](ctx, &s.base, BookingDetailKey(bookingID),
		fmt.Sprintf("/bookings/%d/", bookingID), read(models.BookingStaleTime))
}

// Mine lists the bookings made by the logged-in user as renter.
func (s *BookingService) Mine(ctx context.Context) (apiclient.Page[models.Booking], error) {
	if err := s.requireSession(); err != nil {
		return apiclient.Page[models.Booking]{}, err
	}
	return fetch[apiclient.Page[models.Booking]](ctx, &s.base, KeyMyBookings, "/bookings/my-bookings/", read(models.BookingStaleTime))
}

// ForMyBikes lists the bookings on bikes owned by the logged-in user.
func (s *BookingService) ForMyBikes(ctx context.Context) (apiclient.Page[models.Booking], error) {
	if err := s.requireSession(); err != nil {
		return apiclient.Page[models.Booking]{}, err
	}
	return fetch[apiclient.Page[models.Booking]](ctx, &s.base, KeyBikeBookings, "/bookings/bike-bookings/", read(models.BookingStaleTime))
}

func (s *BookingService) Create(ctx context.Context, in models.CreateBookingInput) (models.Booking, error) {
	switch {
	case in.BikeID == 0:
		err := &ValidationError{Field: "bike_id", Message: "A bike must be selected."}
		s.failure("Error", err, err.Error())
		return models.Booking{}, err
	case in.StartTime.IsZero() || in.EndTime.IsZero():
		err := &ValidationError{Field: "start_time", Message: "Start and end time are required."}
		s.failure("Error", err, err.Error())
		return models.Booking{}, err
	}

	res, err := apiclient.Call[models.Booking](ctx, s.api, http.MethodPost, "/bookings/create/", in)
	if err != nil {
		s.failure("Error", err, "Failed to create booking. Please try again.")
		return models.Booking{}, err
	}

	s.invalidate(ctx, KeyBookingLists, KeyMyBookings)
	if res.Data.ID != 0 {
		setData(ctx, &s.base, BookingDetailKey(res.Data.ID), res.Data)
	}
	s.publish(events.EventBookingCreated, bookingPayload(res.Data, in.BikeID))
	s.success("Booking Requested", res.Message, "Your booking request has been submitted.")
	return res.Data, nil
}

func bookingPayload(b models.Booking, bikeID int64) events.BookingEventPayload {
	if b.Bike.ID != 0 {
		bikeID = b.Bike.ID
	}
	return events.BookingEventPayload{BookingID: b.ID, BikeID: bikeID, Status: string(b.Status)}
}

// UpdateStatus asks the backend for a status transition, e.g. an owner
// approving a request.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID int64, status models.BookingStatus) (models.Booking, error) {
	if !status.Valid() {
		err := &ValidationError{Field: "status", Message: fmt.Sprintf("Unknown booking status %q.", status)}
		s.failure("Error", err, err.Error())
		return models.Booking{}, err
	}
	return s.transition(ctx, bookingID, http.MethodPatch, "update-status", models.UpdateBookingStatusInput{Status: status},
		"Booking status has been updated successfully.", "Failed to update booking status. Please try again.")
}

func (s *BookingService) Cancel(ctx context.Context, bookingID int64) (models.Booking, error) {
	return s.transition(ctx, bookingID, http.MethodPost, "cancel", nil,
		"Your booking has been cancelled successfully.", "Failed to cancel booking. Please try again.")
}

// StartRental moves an approved booking to active.
func (s *BookingService) StartRental(ctx context.Context, bookingID int64) (models.Booking, error) {
	return s.transition(ctx, bookingID, http.MethodPost, "start", nil,
		"The rental has been started successfully.", "Failed to start rental. Please try again.")
}

// CompleteRental moves an active booking to completed.
func (s *BookingService) CompleteRental(ctx context.Context, bookingID int64) (models.Booking, error) {
	return s.transition(ctx, bookingID, http.MethodPost, "complete", nil,
		"The rental has been completed successfully.", "Failed to complete rental. Please try again.")
}

func (s *BookingService) transition(ctx context.Context, bookingID int64, method, action string, body any, okMsg, failMsg string) (models.Booking, error) {
	res, err := apiclient.Call[models.Booking](ctx, s.api, method, fmt.Sprintf("/bookings/%d/%s/", bookingID, action), body)
	if err != nil {
		s.failure("Error", err, failMsg)
		return models.Booking{}, err
	}

	s.invalidate(ctx, KeyBookingLists, KeyMyBookings, KeyBikeBookings)
	if res.Data.ID != 0 {
		setData(ctx, &s.base, BookingDetailKey(bookingID), res.Data)
	}
	s.publish(events.EventBookingChanged, bookingPayload(res.Data, 0))
	s.success("Success", res.Message, okMsg)
	return res.Data, nil
}

// CheckExpired triggers the backend sweep that starts and completes rentals
// whose time window has been reached.
func (s *BookingService) CheckExpired(ctx context.Context) (models.ExpiredCheckResult, error) {
	res, err := apiclient.Call[models.ExpiredCheckResult](ctx, s.api, http.MethodGet, "/bookings/check-expired/", nil)
	if err != nil {
		s.failure("Error", err, "Failed to check expired bookings.")
		return models.ExpiredCheckResult{}, err
	}

	s.invalidate(ctx, KeyBookingLists, KeyMyBookings, KeyBikeBookings)
	if res.Data.StartedCount > 0 || res.Data.CompletedCount > 0 {
		s.success("Bookings Updated", fmt.Sprintf("Started %d rentals and completed %d rentals.",
			res.Data.StartedCount, res.Data.CompletedCount), "")
	}
	return res.Data, nil
}
