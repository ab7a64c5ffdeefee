package services

import (
	"errors"
	"fmt"

	"ramen-dashboard/models"
)

// ErrMissingField is returned when a business lacks a field the dashboard needs.
var ErrMissingField = errors.New("missing field")

// DeriveColumns maps raw Yelp businesses to listings, preserving order.
// The first business missing name, rating, review_count, coordinates or
// location.address1 aborts the whole batch.
func DeriveColumns(raw []*models.RawBusiness) ([]*models.Listing, error) {
	listings := make([]*models.Listing, 0, len(raw))
	for i, b := range raw {
		l, err := deriveListing(i, b)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func deriveListing(pos int, b *models.RawBusiness) (*models.Listing, error) {
	missing := func(field string) error {
		return fmt.Errorf("listing %d: %w: %s", pos, ErrMissingField, field)
	}

	if b == nil {
		return nil, missing("business")
	}
	switch {
	case b.Name == nil:
		return nil, missing("name")
	case b.Rating == nil:
		return nil, missing("rating")
	case b.ReviewCount == nil:
		return nil, missing("review_count")
	case b.Coordinates == nil:
		return nil, missing("coordinates")
	case b.Coordinates.Latitude == nil:
		return nil, missing("coordinates.latitude")
	case b.Coordinates.Longitude == nil:
		return nil, missing("coordinates.longitude")
	case b.Location == nil:
		return nil, missing("location")
	case b.Location.Address1 == nil:
		return nil, missing("location.address1")
	}

	return &models.Listing{
		Position:    pos,
		YelpID:      b.ID,
		Name:        *b.Name,
		Address:     *b.Location.Address1,
		Rating:      *b.Rating,
		ReviewCount: *b.ReviewCount,
		Latitude:    *b.Coordinates.Latitude,
		Longitude:   *b.Coordinates.Longitude,
	}, nil
}
