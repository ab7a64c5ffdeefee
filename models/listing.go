package models

import (
	"time"

	"github.com/google/uuid"
)

// RawBusiness is one entry of the Yelp search response, decoded as-is.
// Pointer fields distinguish an absent key from a zero value.
type RawBusiness struct {
	ID          string          `json:"id"`
	Alias       string          `json:"alias"`
	Name        *string         `json:"name"`
	URL         string          `json:"url"`
	Phone       string          `json:"phone"`
	PriceLevel  string          `json:"price"`
	Rating      *float64        `json:"rating"`
	ReviewCount *int            `json:"review_count"`
	Coordinates *RawCoordinates `json:"coordinates"`
	Location    *RawLocation    `json:"location"`
}

type RawCoordinates struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type RawLocation struct {
	Address1 *string `json:"address1"`
	City     string  `json:"city"`
	ZipCode  string  `json:"zip_code"`
	State    string  `json:"state"`
}

// Listing is one enriched restaurant row. JSON names follow the column
// names shown in the dashboard.
type Listing struct {
	Position    int     `json:"position"`
	YelpID      string  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"Address"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Price       float64 `json:"prices"`
	Popularity  float64 `json:"Popularity"`
}

// Run is the result of one program run: the enriched listings in fetch order.
type Run struct {
	ID        uuid.UUID  `json:"run_id"`
	FetchedAt time.Time  `json:"fetched_at"`
	Listings  []*Listing `json:"listings"`
}

// NewRun stamps listings with a fresh run id.
func NewRun(listings []*Listing, fetchedAt time.Time) *Run {
	return &Run{
		ID:        uuid.New(),
		FetchedAt: fetchedAt,
		Listings:  listings,
	}
}

// InsightReport holds the computed analytics over the enriched dataset.
type InsightReport struct {
	TotalListings  int
	AveragePrice   float64
	MinPrice       float64
	MaxPrice       float64
	MostExpensive  *Listing
	MostPopular    *Listing
	TopPopular     []*Listing
	MeanLatitude   float64
	MeanLongitude  float64
	NegativeScores int
}
