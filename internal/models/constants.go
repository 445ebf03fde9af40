package models

import "time"

type BookingStatus string

const (
	BookingRequested BookingStatus = "requested"
	BookingApproved  BookingStatus = "approved"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type BikeStatus string

const (
	BikeAvailable   BikeStatus = "available"
	BikeUnavailable BikeStatus = "unavailable"
	BikeMaintenance BikeStatus = "maintenance"
)

type BikeType string

const (
	BikeCity     BikeType = "city"
	BikeMountain BikeType = "mountain"
	BikeRoad     BikeType = "road"
	BikeCargo    BikeType = "cargo"
	BikeFolding  BikeType = "folding"
	BikeHybrid   BikeType = "hybrid"
)

const (
	// ServiceFee is added once to every booking total shown before submission.
	ServiceFee = 15.0

	// MaxCommentLength bounds rating comments client side.
	MaxCommentLength = 500

	MinRating = 1
	MaxRating = 5

	// DefaultPageSize matches the listing pages of the web client.
	DefaultPageSize = 10
)

// Stale times per query family.
const (
	BikeListStaleTime        = 5 * time.Minute
	BikeDetailStaleTime      = 10 * time.Minute
	MyBikesStaleTime         = 2 * time.Minute
	BikeImagesStaleTime      = 10 * time.Minute
	BookingStaleTime         = 5 * time.Minute
	RatingListStaleTime      = 5 * time.Minute
	RatingDetailStaleTime    = 10 * time.Minute
	RateableBookingStaleTime = 2 * time.Minute
	FavoriteStaleTime        = 5 * time.Minute
)

type Option[T ~string] struct {
	Value T
	Label string
}

var BikeTypes = []Option[BikeType]{
	{BikeCity, "City"},
	{BikeMountain, "Mountain"},
	{BikeRoad, "Road"},
	{BikeCargo, "Cargo"},
	{BikeFolding, "Folding"},
	{BikeHybrid, "Hybrid"},
}

var BikeStatuses = []Option[BikeStatus]{
	{BikeAvailable, "Available"},
	{BikeUnavailable, "Unavailable"},
	{BikeMaintenance, "Under Maintenance"},
}

// CommonBikeFeatures are suggested when listing a new bike.
var CommonBikeFeatures = []string{
	"GPS Tracking",
	"USB Charging Port",
	"LED Lights",
	"Phone Holder",
	"Basket",
	"Helmet Included",
	"Lock Included",
	"Insurance",
	"Maintenance Kit",
	"Spare Battery",
	"Puncture-proof Tires",
	"Anti-theft System",
	"Weather Protection",
	"Child Seat Compatible",
	"Cargo Rack",
}

func label[T ~string](opts []Option[T], v T) string {
	for _, o := range opts {
		if o.Value == v {
			return o.Label
		}
	}
	return string(v)
}

func (t BikeType) Label() string   { return label(BikeTypes, t) }
func (s BikeStatus) Label() string { return label(BikeStatuses, s) }

func (t BikeType) Valid() bool {
	for _, o := range BikeTypes {
		if o.Value == t {
			return true
		}
	}
	return false
}

// Toggled is the status a toggle request is expected to produce.
func (s BikeStatus) Toggled() BikeStatus {
	if s == BikeAvailable {
		return BikeUnavailable
	}
	return BikeAvailable
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingRequested, BookingApproved, BookingActive, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}
