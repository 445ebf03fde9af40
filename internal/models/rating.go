package models

import (
	"bytes"
	"time"

	"github.com/goccy/go-json"
)

type Rating struct {
	ID        int64     `json:"id"`
	Bike      Bike      `json:"bike"`
	User      User      `json:"user"`
	Booking   *Booking  `json:"booking,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateRatingInput struct {
	Booking int64  `json:"booking"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

type UpdateRatingInput struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

type RatingFilters struct {
	Rating    int    `url:"rating"`
	Bike      int64  `url:"bike"`
	User      int64  `url:"user"`
	MinRating int    `url:"min_rating"`
	Page      int    `url:"page"`
	PageSize  int    `url:"page_size"`
	Ordering  string `url:"ordering"`
}

type RatingStatistics struct {
	AverageRating      float64        `json:"average_rating"`
	TotalRatings       int            `json:"total_ratings"`
	RatingDistribution map[string]int `json:"rating_distribution,omitempty"`
}

type BikeRatingStats struct {
	BikeID     int64            `json:"bike_id"`
	BikeTitle  string           `json:"bike_title"`
	Statistics RatingStatistics `json:"statistics"`
}

type BikeRatings struct {
	Ratings    []Rating         `json:"ratings"`
	Statistics RatingStatistics `json:"statistics"`
}

// UnmarshalJSON accepts the ratings either as a plain array or as a page,
// depending on whether the backend paginated the bike ratings view.
func (r *BikeRatings) UnmarshalJSON(data []byte) error {
	var raw struct {
		Ratings    json.RawMessage  `json:"ratings"`
		Statistics RatingStatistics `json:"statistics"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Statistics = raw.Statistics
	r.Ratings = nil

	trimmed := bytes.TrimSpace(raw.Ratings)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &r.Ratings)
	}
	var page struct {
		Results []Rating `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return err
	}
	r.Ratings = page.Results
	return nil
}
