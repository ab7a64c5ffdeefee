package services

import (
	"math"
	"strconv"
)

// DefaultPopularityWeight balances rating against review volume.
const DefaultPopularityWeight = 0.5

// popularityOffset shifts the blended score down; results may be negative.
const popularityOffset = 2

// Popularity blends a rating with the log of its review count:
//
//	weight*rating + (1-weight)*ln(reviewCount+1) - 2
//
// rounded to two decimals. weight is expected in [0,1] but not checked.
func Popularity(rating float64, reviewCount int, weight float64) float64 {
	score := weight*rating + (1-weight)*math.Log(float64(reviewCount)+1) - popularityOffset
	return round2(score)
}

// round2 rounds to two decimals from the exact binary value, so halves
// that are not representable round the way a decimal printer would.
func round2(f float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 2, 64), 64)
	if err != nil {
		return f
	}
	return r
}
