package models

import "time"

type Booking struct {
	ID         int64         `json:"id"`
	Renter     User          `json:"renter"`
	Bike       Bike          `json:"bike"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Status     BookingStatus `json:"status"`
	TotalPrice Money         `json:"total_price"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (b Booking) Duration() time.Duration { return b.EndTime.Sub(b.StartTime) }

type CreateBookingInput struct {
	BikeID    int64     `json:"bike_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type UpdateBookingStatusInput struct {
	Status BookingStatus `json:"status"`
}

type BookingRole string

const (
	RoleRenter BookingRole = "renter"
	RoleOwner  BookingRole = "owner"
)

type BookingFilters struct {
	Role      BookingRole   `url:"role"`
	Status    BookingStatus `url:"status"`
	BikeID    int64         `url:"bike__id"`
	StartDate string        `url:"start_date"`
	EndDate   string        `url:"end_date"`
	Ordering  string        `url:"ordering"`
	Search    string        `url:"search"`
}

// ExpiredCheckResult reports rentals the backend started or completed on a
// check-expired sweep.
type ExpiredCheckResult struct {
	StartedCount   int `json:"started_count"`
	CompletedCount int `json:"completed_count"`
}
