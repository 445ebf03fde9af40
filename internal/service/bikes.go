package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"ebikerent/internal/apiclient"
	"ebikerent/internal/models"
	"ebikerent/internal/query"
)

type BikeService struct {
	base
}

func NewBikeService(d Deps) *BikeService {
	return &BikeService{base: newBase(d, "bikes")}
}

func (s *BikeService) List(ctx context.Context, filters models.BikeFilters) (apiclient.Page[models.Bike], error) {
	return fetch[apiclient.Page[models.Bike]](ctx, &s.base, BikeListKey(filters),
		apiclient.WithQuery("/bikes/", filters), read(models.BikeListStaleTime))
}

func (s *BikeService) Get(ctx context.Context, bikeID int64) (models.Bike, error) {
	return fetch[models.Bike](ctx, &s.base, BikeDetailKey(bikeID),
		fmt.Sprintf("/bikes/%d/", bikeID), read(models.BikeDetailStaleTime))
}

// Mine lists the bikes owned by the logged-in user.
func (s *BikeService) Mine(ctx context.Context) (apiclient.Page[models.Bike], error) {
	if err := s.requireSession(); err != nil {
		return apiclient.Page[models.Bike]{}, err
	}
	return fetch[apiclient.Page[models.Bike]](ctx, &s.base, KeyMyBikes, "/bikes/my-bikes/", read(models.MyBikesStaleTime))
}

func validateCreateBike(in models.CreateBikeInput) error {
	switch {
	case in.Title == "":
		return &ValidationError{Field: "title", Message: "Title is required."}
	case in.Location == "":
		return &ValidationError{Field: "location", Message: "Location is required."}
	case in.DailyRate <= 0:
		return &ValidationError{Field: "daily_rate", Message: "Daily rate is required."}
	case !in.BikeType.Valid():
		return &ValidationError{Field: "bike_type", Message: "Select a bike type."}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (s *BikeService) Create(ctx context.Context, in models.CreateBikeInput) (models.Bike, error) {
	if err := validateCreateBike(in); err != nil {
		s.failure("Error", err, err.Error())
		return models.Bike{}, err
	}

	form := &apiclient.Form{}
	form.Add("title", in.Title)
	form.Add("description", in.Description)
	form.Add("location", in.Location)
	form.Add("daily_rate", formatFloat(in.DailyRate))
	if in.HourlyRate != nil {
		form.Add("hourly_rate", formatFloat(*in.HourlyRate))
	}
	form.Add("bike_type", string(in.BikeType))
	form.Add("battery_range", strconv.Itoa(in.BatteryRange))
	form.Add("max_speed", strconv.Itoa(in.MaxSpeed))
	form.Add("weight", formatFloat(in.Weight))
	if err := form.AddJSON("features", nonNil(in.Features)); err != nil {
		return models.Bike{}, err
	}
	for _, img := range in.Images {
		form.AddFile("image_files", img.Filename, img.Content)
	}

	res, err := apiclient.Upload[models.Bike](ctx, s.api, http.MethodPost, "/bikes/create/", form)
	if err != nil {
		s.failure("Error", err, "Failed to list bike. Please try again.")
		return models.Bike{}, err
	}

	s.invalidate(ctx, KeyBikeLists, KeyMyBikes)
	setData(ctx, &s.base, BikeDetailKey(res.Data.ID), res.Data)
	s.success("Bike Listed Successfully!", "", "Your e-bike has been added to our platform and is now available for rent.")
	return res.Data, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// updateFields is the JSON body of a text-only bike update.
func updateFields(in models.UpdateBikeInput) map[string]any {
	body := map[string]any{}
	if in.Title != nil {
		body["title"] = *in.Title
	}
	if in.Description != nil {
		body["description"] = *in.Description
	}
	if in.Location != nil {
		body["location"] = *in.Location
	}
	if in.HourlyRate != nil {
		body["hourly_rate"] = *in.HourlyRate
	}
	if in.DailyRate != nil {
		body["daily_rate"] = *in.DailyRate
	}
	if in.BikeType != nil {
		body["bike_type"] = *in.BikeType
	}
	if in.BatteryRange != nil {
		body["battery_range"] = *in.BatteryRange
	}
	if in.MaxSpeed != nil {
		body["max_speed"] = *in.MaxSpeed
	}
	if in.Weight != nil {
		body["weight"] = *in.Weight
	}
	if in.Features != nil {
		body["features"] = in.Features
	}
	if in.Status != nil {
		body["status"] = *in.Status
	}
	if len(in.DeleteImageIDs) > 0 {
		body["delete_image_ids"] = in.DeleteImageIDs
	}
	if in.PrimaryImageID != nil {
		body["primary_image_id"] = *in.PrimaryImageID
	}
	return body
}

// Update patches a bike. New image files switch the request to multipart.
func (s *BikeService) Update(ctx context.Context, bikeID int64, in models.UpdateBikeInput) (models.Bike, error) {
	if in.BikeType != nil && !in.BikeType.Valid() {
		err := &ValidationError{Field: "bike_type", Message: "Select a bike type."}
		s.failure("Error", err, err.Error())
		return models.Bike{}, err
	}

	path := fmt.Sprintf("/bikes/%d/", bikeID)
	var (
		res apiclient.Result[models.Bike]
		err error
	)
	if len(in.Images) > 0 {
		form := &apiclient.Form{}
		for name, v := range updateFields(in) {
			switch val := v.(type) {
			case string:
				form.Add(name, val)
			case []string:
				if err := form.AddJSON(name, val); err != nil {
					return models.Bike{}, err
				}
			case []int64:
				for _, imageID := range val {
					form.Add(name, strconv.FormatInt(imageID, 10))
				}
			default:
				form.Add(name, fmt.Sprint(val))
			}
		}
		for _, img := range in.Images {
			form.AddFile("image_files", img.Filename, img.Content)
		}
		res, err = apiclient.Upload[models.Bike](ctx, s.api, http.MethodPatch, path, form)
	} else {
		res, err = apiclient.Call[models.Bike](ctx, s.api, http.MethodPatch, path, updateFields(in))
	}
	if err != nil {
		s.failure("Error", err, "Failed to update bike. Please try again.")
		return models.Bike{}, err
	}

	setData(ctx, &s.base, BikeDetailKey(bikeID), res.Data)
	s.invalidate(ctx, KeyBikeLists, KeyMyBikes, BikeImagesKey(bikeID))
	s.success("Bike Updated", "", "Your bike has been updated successfully.")
	return res.Data, nil
}

func (s *BikeService) Delete(ctx context.Context, bikeID int64) error {
	if _, err := apiclient.Call[any](ctx, s.api, http.MethodDelete, fmt.Sprintf("/bikes/%d/", bikeID), nil); err != nil {
		s.failure("Error", err, "Failed to delete bike. Please try again.")
		return err
	}

	s.remove(ctx, BikeDetailKey(bikeID))
	s.invalidate(ctx, KeyBikeLists, KeyMyBikes)
	s.success("Bike Deleted", "", "Your bike has been successfully deleted.")
	return nil
}

// ToggleStatus flips a bike between available and unavailable. The detail
// and my-bikes entries show the flipped status until the backend answers;
// on failure both are restored to their previous values.
func (s *BikeService) ToggleStatus(ctx context.Context, bikeID int64) (models.Bike, error) {
	detailKey := BikeDetailKey(bikeID)
	tx, err := s.query.Begin(ctx, "bikes", detailKey, KeyMyBikes)
	if err != nil {
		return models.Bike{}, err
	}
	defer s.invalidate(ctx, detailKey, KeyMyBikes)

	err = query.Update(ctx, tx, detailKey, func(b models.Bike, ok bool) (models.Bike, bool) {
		b.Status = b.Status.Toggled()
		return b, ok
	})
	if err == nil {
		err = query.Update(ctx, tx, KeyMyBikes, func(page apiclient.Page[models.Bike], ok bool) (apiclient.Page[models.Bike], bool) {
			if !ok {
				return page, false
			}
			for i := range page.Results {
				if page.Results[i].ID == bikeID {
					page.Results[i].Status = page.Results[i].Status.Toggled()
				}
			}
			return page, true
		})
	}
	if err != nil {
		_ = tx.Rollback(ctx)
		return models.Bike{}, err
	}

	res, err := apiclient.Call[models.Bike](ctx, s.api, http.MethodPost, fmt.Sprintf("/bikes/%d/toggle-status/", bikeID), nil)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Int64("bike_id", bikeID).Msg("rollback failed")
		}
		s.failure("Error", err, "Failed to update bike status. Please try again.")
		return models.Bike{}, err
	}
	tx.Commit()

	if res.Data.ID != 0 {
		setData(ctx, &s.base, BikeDetailKey(res.Data.ID), res.Data)
	}
	s.success("Status Updated", fmt.Sprintf("Bike is now %s", res.Data.Status), "")
	return res.Data, nil
}

func (s *BikeService) Images(ctx context.Context, bikeID int64) ([]models.BikeImage, error) {
	return fetch[[]models.BikeImage](ctx, &s.base, BikeImagesKey(bikeID),
		fmt.Sprintf("/bikes/%d/images/", bikeID), read(models.BikeImagesStaleTime))
}

func (s *BikeService) UploadImages(ctx context.Context, bikeID int64, files []models.ImageFile) ([]models.BikeImage, error) {
	if len(files) == 0 {
		err := &ValidationError{Field: "image", Message: "Select at least one image."}
		s.failure("Error", err, err.Error())
		return nil, err
	}
	form := &apiclient.Form{}
	for _, f := range files {
		form.AddFile("image", f.Filename, f.Content)
	}

	res, err := apiclient.Upload[[]models.BikeImage](ctx, s.api, http.MethodPost, fmt.Sprintf("/bikes/%d/images/", bikeID), form)
	if err != nil {
		s.failure("Error", err, "Failed to upload images. Please try again.")
		return nil, err
	}

	s.invalidate(ctx, BikeImagesKey(bikeID), BikeDetailKey(bikeID))
	s.success("Images Uploaded", fmt.Sprintf("%d image(s) uploaded successfully.", len(res.Data)), "")
	return res.Data, nil
}

func (s *BikeService) DeleteImage(ctx context.Context, bikeID, imageID int64) error {
	_, err := apiclient.Call[any](ctx, s.api, http.MethodDelete, fmt.Sprintf("/bikes/%d/images/%d/", bikeID, imageID), nil)
	if err != nil {
		s.failure("Error", err, "Failed to delete image. Please try again.")
		return err
	}

	s.invalidate(ctx, BikeImagesKey(bikeID), BikeDetailKey(bikeID))
	s.success("Image Deleted", "", "Image has been deleted successfully.")
	return nil
}

func (s *BikeService) SetPrimaryImage(ctx context.Context, bikeID, imageID int64) (models.BikeImage, error) {
	res, err := apiclient.Call[models.BikeImage](ctx, s.api, http.MethodPost, fmt.Sprintf("/bikes/%d/images/%d/set-primary/", bikeID, imageID), nil)
	if err != nil {
		s.failure("Error", err, "Failed to set primary image. Please try again.")
		return models.BikeImage{}, err
	}

	s.invalidate(ctx, BikeImagesKey(bikeID), BikeDetailKey(bikeID))
	s.success("Primary Image Set", "", "Image has been set as primary successfully.")
	return res.Data, nil
}

func (s *BikeService) UpdateImage(ctx context.Context, bikeID, imageID int64, in models.UpdateBikeImageInput) (models.BikeImage, error) {
	res, err := apiclient.Call[models.BikeImage](ctx, s.api, http.MethodPatch, fmt.Sprintf("/bikes/%d/images/%d/", bikeID, imageID), in)
	if err != nil {
		s.failure("Error", err, "Failed to update image. Please try again.")
		return models.BikeImage{}, err
	}

	s.invalidate(ctx, BikeImagesKey(bikeID), BikeDetailKey(bikeID))
	s.success("Image Updated", "", "Image details have been updated.")
	return res.Data, nil
}
