package dashboard

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ramen-dashboard/models"
)

// newRegistry exposes a few gauges describing the run being served.
func newRegistry(run *models.Run, ingestDuration time.Duration) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	listings := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ramen_listings",
		Help: "Number of listings in the served run.",
	})
	meanPopularity := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ramen_popularity_mean",
		Help: "Mean popularity score of the served run.",
	})
	meanPrice := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ramen_price_mean",
		Help: "Mean bowl price of the served run.",
	})
	ingest := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ramen_ingest_duration_seconds",
		Help: "Wall time of the Yelp search request.",
	})
	reg.MustRegister(listings, meanPopularity, meanPrice, ingest)

	listings.Set(float64(len(run.Listings)))
	ingest.Set(ingestDuration.Seconds())
	if n := len(run.Listings); n > 0 {
		var pop, price float64
		for _, l := range run.Listings {
			pop += l.Popularity
			price += l.Price
		}
		meanPopularity.Set(pop / float64(n))
		meanPrice.Set(price / float64(n))
	}
	return reg
}
