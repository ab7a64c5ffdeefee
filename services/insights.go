package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"ramen-dashboard/models"
	"ramen-dashboard/utils"
)

type InsightService struct {
	logger *utils.Logger
	out    io.Writer
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger, out: os.Stdout}
}

func (s *InsightService) Generate(listings []*models.Listing) *models.InsightReport {
	report := &models.InsightReport{}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)
	report.MinPrice = listings[0].Price
	report.MaxPrice = listings[0].Price
	report.MostExpensive = listings[0]
	report.MostPopular = listings[0]

	var total, lat, lon float64
	for _, l := range listings {
		total += l.Price
		lat += l.Latitude
		lon += l.Longitude
		if l.Price < report.MinPrice {
			report.MinPrice = l.Price
		}
		if l.Price > report.MaxPrice {
			report.MaxPrice = l.Price
			report.MostExpensive = l
		}
		if l.Popularity > report.MostPopular.Popularity {
			report.MostPopular = l
		}
		if l.Popularity < 0 {
			report.NegativeScores++
		}
	}

	n := float64(len(listings))
	report.AveragePrice = round2(total / n)
	report.MeanLatitude = lat / n
	report.MeanLongitude = lon / n

	// Top 5 by popularity, fetch order breaks ties
	ranked := make([]*models.Listing, len(listings))
	copy(ranked, listings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Popularity > ranked[j].Popularity
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	report.TopPopular = ranked

	s.logger.Debug("[insights] Report covers %d listings", report.TotalListings)
	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	w := s.out
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🍜 RAMEN FOR KATIE\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Listings fetched : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  Map centre       : %.4f, %.4f\n", r.MeanLatitude, r.MeanLongitude)
	if r.NegativeScores > 0 {
		fmt.Fprintf(w, "  Negative scores  : %d\n", r.NegativeScores)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Bowl Prices\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.TotalListings > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m$%.2f\033[0m\n", r.AveragePrice)
		fmt.Fprintf(w, "  Minimum price : \033[1;32m$%.2f\033[0m\n", r.MinPrice)
		fmt.Fprintf(w, "  Maximum price : \033[1;32m$%.2f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Expensive Bowl\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.Name, 50))
		fmt.Fprintf(w, "  Address : %s\n", r.MostExpensive.Address)
		fmt.Fprintf(w, "  Price   : \033[1;31m$%.2f\033[0m\n", r.MostExpensive.Price)
		fmt.Fprintln(w)
	}

	if r.MostPopular != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Popular Spot\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostPopular.Name, 50))
		fmt.Fprintf(w, "  Address    : %s\n", r.MostPopular.Address)
		fmt.Fprintf(w, "  Popularity : \033[1;32m%.2f\033[0m\n", r.MostPopular.Popularity)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Top 5 by Popularity\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopPopular) == 0 {
		fmt.Fprintf(w, "  No listings found\n")
	} else {
		for i, l := range r.TopPopular {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;32m%5.2f\033[0m\n",
				i+1, truncate(l.Name, 38), l.Popularity)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
