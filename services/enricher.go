package services

import (
	"ramen-dashboard/models"
	"ramen-dashboard/utils"
)

// Enricher turns raw search results into priced, scored listings.
type Enricher struct {
	logger *utils.Logger
	prices []float64
	weight float64
}

// NewEnricher creates an Enricher using the given positional price list and
// the default popularity weight.
func NewEnricher(logger *utils.Logger, prices []float64) *Enricher {
	return &Enricher{logger: logger, prices: prices, weight: DefaultPopularityWeight}
}

// Enrich derives typed columns, attaches prices by position and scores each
// listing. Any error aborts the batch.
func (e *Enricher) Enrich(raw []*models.RawBusiness) ([]*models.Listing, error) {
	listings, err := DeriveColumns(raw)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("[enricher] Derived columns for %d listings", len(listings))

	if err := AttachPrices(listings, e.prices); err != nil {
		return nil, err
	}
	e.logger.Debug("[enricher] Attached %d of %d prices", len(listings), len(e.prices))

	ScorePopularity(listings, e.weight)

	e.logger.Info("[enricher] Enriched %d listings", len(listings))
	return listings, nil
}

// ScorePopularity sets Popularity on every listing.
func ScorePopularity(listings []*models.Listing, weight float64) {
	for _, l := range listings {
		l.Popularity = Popularity(l.Rating, l.ReviewCount, weight)
	}
}
