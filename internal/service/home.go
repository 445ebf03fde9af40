package service

import (
	"context"

	"ebikerent/internal/models"
)

type HomeService struct {
	base
}

func NewHomeService(d Deps) *HomeService {
	return &HomeService{base: newBase(d, "home")}
}

// Data returns the featured bikes of the landing page.
func (s *HomeService) Data(ctx context.Context) (models.HomePageData, error) {
	return fetch[models.HomePageData](ctx, &s.base, KeyHome, "/home/", read(models.BikeListStaleTime))
}
