package service

import (
	"strconv"
	"strings"

	"ebikerent/internal/apiclient"
)

// Cache keys. Lists are keyed by their encoded filter so that invalidating
// the list prefix reaches every filtered variant.
const (
	KeyBikes          = "bikes"
	KeyBikeLists      = "bikes:list"
	KeyMyBikes        = "bikes:my-bikes"
	KeyBookings       = "bookings"
	KeyBookingLists   = "bookings:list"
	KeyMyBookings     = "bookings:my-bookings"
	KeyBikeBookings   = "bookings:bike-bookings"
	KeyRatings        = "ratings"
	KeyRatingLists    = "ratings:list"
	KeyMyRatings      = "ratings:my-ratings"
	KeyRateable       = "ratings:rateable-bookings"
	KeyFavorites      = "favorites"
	KeyFavoriteStatus = "favorite-status"
	KeyUser           = "user"
	KeyHome           = "home-page-data"
)

func key(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ":")
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func BikeListKey(filter any) string     { return key(KeyBikeLists, apiclient.BuildQuery(filter)) }
func BikeDetailKey(bikeID int64) string { return key(KeyBikes, "detail", id(bikeID)) }
func BikeImagesKey(bikeID int64) string { return key(KeyBikes, "images", id(bikeID)) }

func BookingListKey(filter any) string        { return key(KeyBookingLists, apiclient.BuildQuery(filter)) }
func BookingDetailKey(bookingID int64) string { return key(KeyBookings, "detail", id(bookingID)) }

func RatingListKey(filter any) string        { return key(KeyRatingLists, apiclient.BuildQuery(filter)) }
func RatingDetailKey(ratingID int64) string  { return key(KeyRatings, "detail", id(ratingID)) }
func BikeRatingsKey(bikeID int64) string     { return key(KeyRatings, "bike-ratings", id(bikeID)) }
func BikeRatingStatsKey(bikeID int64) string { return key(KeyRatings, "bike-stats", id(bikeID)) }

func FavoriteStatusKey(bikeID int64) string { return key(KeyFavoriteStatus, id(bikeID)) }
