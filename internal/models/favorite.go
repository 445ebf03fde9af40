package models

import "time"

type Favorite struct {
	ID        int64     `json:"id"`
	Bike      Bike      `json:"bike"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateFavoriteInput struct {
	Bike int64 `json:"bike"`
}

type FavoriteStatus struct {
	IsFavorite bool `json:"is_favorite"`
}

type FavoriteList struct {
	Count   int        `json:"count"`
	Results []Favorite `json:"results"`
}
