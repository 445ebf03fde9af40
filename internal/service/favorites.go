package service

import (
	"context"
	"fmt"
	"net/http"

	"ebikerent/internal/apiclient"
	"ebikerent/internal/models"
	"ebikerent/internal/query"
)

type FavoriteService struct {
	base
}

func NewFavoriteService(d Deps) *FavoriteService {
	return &FavoriteService{base: newBase(d, "favorites")}
}

func (s *FavoriteService) List(ctx context.Context) (models.FavoriteList, error) {
	if err := s.requireSession(); err != nil {
		return models.FavoriteList{}, err
	}
	return fetch[models.FavoriteList](ctx, &s.base, KeyFavorites, "/favorites/", read(models.FavoriteStaleTime))
}

func (s *FavoriteService) IsFavorite(ctx context.Context, bikeID int64) (bool, error) {
	if err := s.requireSession(); err != nil {
		return false, err
	}
	st, err := fetch[models.FavoriteStatus](ctx, &s.base, FavoriteStatusKey(bikeID),
		fmt.Sprintf("/favorites/%d/check/", bikeID), read(models.FavoriteStaleTime))
	return st.IsFavorite, err
}

func (s *FavoriteService) Add(ctx context.Context, bikeID int64) (models.Favorite, error) {
	res, err := apiclient.Call[models.Favorite](ctx, s.api, http.MethodPost, "/favorites/create/", models.CreateFavoriteInput{Bike: bikeID})
	if err != nil {
		s.failure("Error", err, "Failed to add to favorites")
		return models.Favorite{}, err
	}

	s.invalidate(ctx, KeyFavorites)
	setData(ctx, &s.base, FavoriteStatusKey(bikeID), models.FavoriteStatus{IsFavorite: true})
	s.success("Favorites", res.Message, "Added to favorites")
	return res.Data, nil
}

func (s *FavoriteService) Remove(ctx context.Context, bikeID int64) error {
	res, err := apiclient.Call[any](ctx, s.api, http.MethodDelete, fmt.Sprintf("/favorites/%d/delete/", bikeID), nil)
	if err != nil {
		s.failure("Error", err, "Failed to remove from favorites")
		return err
	}

	s.invalidate(ctx, KeyFavorites)
	setData(ctx, &s.base, FavoriteStatusKey(bikeID), models.FavoriteStatus{IsFavorite: false})
	s.success("Favorites", res.Message, "Removed from favorites")
	return nil
}

// Toggle flips the favorite membership of a bike. The cached status shows
// the inverse of its last value until the backend answers, then the
// backend's value; a failed request restores the previous status.
func (s *FavoriteService) Toggle(ctx context.Context, bikeID int64) (bool, error) {
	statusKey := FavoriteStatusKey(bikeID)
	tx, err := s.query.Begin(ctx, "favorites", statusKey)
	if err != nil {
		return false, err
	}
	err = query.Update(ctx, tx, statusKey, func(st models.FavoriteStatus, ok bool) (models.FavoriteStatus, bool) {
		return models.FavoriteStatus{IsFavorite: !st.IsFavorite}, ok
	})
	if err != nil {
		_ = tx.Rollback(ctx)
		return false, err
	}

	res, err := apiclient.Call[models.FavoriteStatus](ctx, s.api, http.MethodPost, fmt.Sprintf("/favorites/%d/toggle/", bikeID), nil)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Int64("bike_id", bikeID).Msg("rollback failed")
		}
		s.failure("Error", err, "Failed to update favorites")
		return false, err
	}
	tx.Commit()

	now := res.Data.IsFavorite
	s.invalidate(ctx, KeyFavorites)
	setData(ctx, &s.base, statusKey, models.FavoriteStatus{IsFavorite: now})
	fallback := "Removed from favorites"
	if now {
		fallback = "Added to favorites"
	}
	s.success("Favorites", res.Message, fallback)
	return now, nil
}
