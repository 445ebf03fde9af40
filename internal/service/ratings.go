package service

import (
	"context"
	"fmt"
	"net/http"
	"unicode/utf8"

	"ebikerent/internal/apiclient"
	"ebikerent/internal/models"
)

type RatingService struct {
	base
}

func NewRatingService(d Deps) *RatingService {
	return &RatingService{base: newBase(d, "ratings")}
}

// ValidateRating checks the score and comment before submission: the score
// is required and must lie in 1..5, the comment is at most 500 characters.
func ValidateRating(score int, comment string) error {
	if score == 0 {
		return &ValidationError{Field: "rating", Message: "Please select a rating before submitting your review."}
	}
	if score < models.MinRating || score > models.MaxRating {
		return &ValidationError{Field: "rating", Message: fmt.Sprintf("Rating must be between %d and %d.", models.MinRating, models.MaxRating)}
	}
	if utf8.RuneCountInString(comment) > models.MaxCommentLength {
		return &ValidationError{Field: "comment", Message: fmt.Sprintf("Comment must be at most %d characters.", models.MaxCommentLength)}
	}
	return nil
}

func (s *RatingService) List(ctx context.Context, filters models.RatingFilters) (apiclient.Page[models.Rating], error) {
	return fetch[apiclient.Page[models.Rating]](ctx, &s.base, RatingListKey(filters),
		apiclient.WithQuery("/ratings/", filters), read(models.RatingListStaleTime))
}

func (s *RatingService) Get(ctx context.Context, ratingID int64) (models.Rating, error) {
	return fetch[models.Rating](ctx, &s.base, RatingDetailKey(ratingID),
		fmt.Sprintf("/ratings/%d/", ratingID), read(models.RatingDetailStaleTime))
}

func (s *RatingService) Mine(ctx context.Context) (apiclient.Page[models.Rating], error) {
	if err := s.requireSession(); err != nil {
		return apiclient.Page[models.Rating]{}, err
	}
	return fetch[apiclient.Page[models.Rating]](ctx, &s.base, KeyMyRatings, "/ratings/my-ratings/", read(models.RatingListStaleTime))
}

func (s *RatingService) ForBike(ctx context.Context, bikeID int64) (models.BikeRatings, error) {
	return fetch[models.BikeRatings](ctx, &s.base, BikeRatingsKey(bikeID),
		fmt.Sprintf("/ratings/bikes/%d/", bikeID), read(models.RatingListStaleTime))
}

func (s *RatingService) BikeStats(ctx context.Context, bikeID int64) (models.BikeRatingStats, error) {
	return fetch[models.BikeRatingStats](ctx, &s.base, BikeRatingStatsKey(bikeID),
		fmt.Sprintf("/ratings/bikes/%d/stats/", bikeID), read(models.RatingDetailStaleTime))
}

// Rateable lists completed bookings of the logged-in user not yet rated.
func (s *RatingService) Rateable(ctx context.Context) (apiclient.Page[models.Booking], error) {
	if err := s.requireSession(); err != nil {
		return apiclient.Page[models.Booking]{}, err
	}
	return fetch[apiclient.Page[models.Booking]](ctx, &s.base, KeyRateable, "/ratings/rateable-bookings/", read(models.RateableBookingStaleTime))
}

func (s *RatingService) Create(ctx context.Context, in models.CreateRatingInput) (models.Rating, error) {
	if err := ValidateRating(in.Rating, in.Comment); err != nil {
		s.failure("Rating Required", err, err.Error())
		return models.Rating{}, err
	}
	if in.Booking == 0 {
		err := &ValidationError{Field: "booking", Message: "Select the booking you are rating."}
		s.failure("Error", err, err.Error())
		return models.Rating{}, err
	}

	res, err := apiclient.Call[models.Rating](ctx, s.api, http.MethodPost, "/ratings/create/", in)
	if err != nil {
		s.failure("Error", err, "Failed to submit rating. Please try again.")
		return models.Rating{}, err
	}

	s.invalidate(ctx, KeyRatingLists, KeyMyRatings, KeyRateable)
	if res.Data.Bike.ID != 0 {
		s.invalidate(ctx, BikeRatingsKey(res.Data.Bike.ID), BikeRatingStatsKey(res.Data.Bike.ID))
	}
	if res.Data.ID != 0 {
		setData(ctx, &s.base, RatingDetailKey(res.Data.ID), res.Data)
	}
	s.success("Review Submitted!", res.Message, "Rating submitted successfully!")
	return res.Data, nil
}

func (s *RatingService) Update(ctx context.Context, ratingID int64, in models.UpdateRatingInput) (models.Rating, error) {
	score, comment := models.MinRating, ""
	if in.Rating != nil {
		score = *in.Rating
	}
	if in.Comment != nil {
		comment = *in.Comment
	}
	if err := ValidateRating(score, comment); err != nil {
		s.failure("Error", err, err.Error())
		return models.Rating{}, err
	}

	res, err := apiclient.Call[models.Rating](ctx, s.api, http.MethodPatch, fmt.Sprintf("/ratings/%d/", ratingID), in)
	if err != nil {
		s.failure("Error", err, "Failed to update rating. Please try again.")
		return models.Rating{}, err
	}

	s.invalidate(ctx, KeyRatingLists, KeyMyRatings, RatingDetailKey(ratingID))
	if res.Data.Bike.ID != 0 {
		s.invalidate(ctx, BikeRatingsKey(res.Data.Bike.ID), BikeRatingStatsKey(res.Data.Bike.ID))
	}
	s.success("Success", res.Message, "Rating updated successfully!")
	return res.Data, nil
}

// Delete removes a rating. bikeID, when known, refreshes that bike's ratings.
func (s *RatingService) Delete(ctx context.Context, ratingID, bikeID int64) error {
	if _, err := apiclient.Call[any](ctx, s.api, http.MethodDelete, fmt.Sprintf("/ratings/%d/", ratingID), nil); err != nil {
		s.failure("Error", err, "Failed to delete rating. Please try again.")
		return err
	}

	s.invalidate(ctx, KeyRatingLists, KeyMyRatings, KeyRateable)
	s.remove(ctx, RatingDetailKey(ratingID))
	if bikeID != 0 {
		s.invalidate(ctx, BikeRatingsKey(bikeID), BikeRatingStatsKey(bikeID))
	}
	s.success("Success", "", "Rating deleted successfully!")
	return nil
}
