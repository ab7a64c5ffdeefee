package services

import (
	"errors"
	"fmt"

	"ramen-dashboard/models"
)

// ErrPriceOutOfRange is returned when there are more listings than prices.
var ErrPriceOutOfRange = errors.New("price index out of range")

// RamenPrices is the hand-collected bowl price for each search result, in
// the order Yelp returns them for the fixed ramen query. The list has no key
// other than position: if Yelp reorders its results, prices follow the rows.
var RamenPrices = []float64{
	19.5, 16.5, 14.95, 22.65, 19, 19, 14.95, 18.49, 14, 18.8,
	20.55, 14.45, 14.95, 20.5, 18.98, 13.38, 16.99, 19.75, 16.5, 18.9,
	19, 15.5, 18, 16, 16.5, 15.62, 13.99, 13, 18.5, 17.5,
	17.83, 16, 15.99, 19, 15, 19, 15.5, 18, 18.8, 19.95,
	21.05, 15.5, 21, 15.5, 19.99, 17.6, 16.75, 14.95, 18, 26,
}

// AttachPrices sets listings[i].Price = prices[i]. It fails without touching
// any listing when prices is shorter than listings; extra prices are ignored.
func AttachPrices(listings []*models.Listing, prices []float64) error {
	if len(prices) < len(listings) {
		return fmt.Errorf("%w: listing %d has no price (price list has %d entries)",
			ErrPriceOutOfRange, len(prices), len(prices))
	}
	for i, l := range listings {
		l.Price = prices[i]
	}
	return nil
}
