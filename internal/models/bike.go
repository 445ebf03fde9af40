package models

import "time"

type Bike struct {
	ID           int64       `json:"id"`
	Owner        User        `json:"owner"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Location     string      `json:"location"`
	HourlyRate   *Money      `json:"hourly_rate,omitempty"`
	DailyRate    Money       `json:"daily_rate"`
	BikeType     BikeType    `json:"bike_type"`
	BatteryRange int         `json:"battery_range"`
	MaxSpeed     int         `json:"max_speed"`
	Weight       float64     `json:"weight"`
	Features     []string    `json:"features"`
	Images       []BikeImage `json:"images"`
	Status       BikeStatus  `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	IsFavorited  *bool       `json:"is_favorited,omitempty"`
}

// PrimaryImage returns the image flagged primary, else the first by order.
func (b Bike) PrimaryImage() (BikeImage, bool) {
	if len(b.Images) == 0 {
		return BikeImage{}, false
	}
	best := b.Images[0]
	for _, img := range b.Images {
		if img.IsPrimary {
			return img, true
		}
		if img.Order < best.Order {
			best = img
		}
	}
	return best, true
}

type BikeImage struct {
	ID        int64     `json:"id,omitempty"`
	Image     string    `json:"image,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	AltText   string    `json:"alt_text,omitempty"`
	Caption   string    `json:"caption,omitempty"`
	IsPrimary bool      `json:"is_primary,omitempty"`
	Order     int       `json:"order,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// BikeFilters are the query parameters accepted by the bike list endpoint.
type BikeFilters struct {
	Owner         string     `url:"owner"`
	AvailableOnly bool       `url:"available_only"`
	MinPrice      float64    `url:"min_price"`
	MaxPrice      float64    `url:"max_price"`
	Search        string     `url:"search"`
	Location      string     `url:"location"`
	Status        BikeStatus `url:"status"`
	Ordering      string     `url:"ordering"`
	Page          int        `url:"page"`
	PageSize      int        `url:"page_size"`
	BikeType      BikeType   `url:"bike_type"`
}

// ImageFile is an image attached to a multipart bike request.
type ImageFile struct {
	Filename string
	Content  []byte
}

type CreateBikeInput struct {
	Title        string
	Description  string
	Location     string
	HourlyRate   *float64
	DailyRate    float64
	BikeType     BikeType
	BatteryRange int
	MaxSpeed     int
	Weight       float64
	Features     []string
	Images       []ImageFile
}

type UpdateBikeInput struct {
	Title          *string
	Description    *string
	Location       *string
	HourlyRate     *float64
	DailyRate      *float64
	BikeType       *BikeType
	BatteryRange   *int
	MaxSpeed       *int
	Weight         *float64
	Features       []string
	Status         *BikeStatus
	DeleteImageIDs []int64
	PrimaryImageID *int64
	Images         []ImageFile
}

type UpdateBikeImageInput struct {
	AltText   *string `json:"alt_text,omitempty"`
	Caption   *string `json:"caption,omitempty"`
	IsPrimary *bool   `json:"is_primary,omitempty"`
	Order     *int    `json:"order,omitempty"`
}

type HomePageData struct {
	Bikes []Bike `json:"bikes"`
}
