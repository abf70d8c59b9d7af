package auction

import (
	model "bookbid/internal/models"
)

// resolveOutcome applies the proxy (second-price English) auction rule to
// the standing maxes: the highest ceiling wins and pays the lowest price
// that still beats the best competitor,
//
//	price = min(highestMax, secondHighestMax + increment)
//
// with the starting price standing in for the second ceiling when only
// one bidder is live. Ties between equal ceilings go to the one recorded
// earliest (lowest sequence number), which makes the outcome independent
// of submission order among bids with the same relative maxima.
//
// maxes must be sorted highest max first, earliest sequence first among
// equals (repository.StandingMaxes order).
func resolveOutcome(maxes []model.StandingMax, startingPrice, increment int64) (model.StandingMax, int64) {
	if len(maxes) == 0 {
		return model.StandingMax{}, startingPrice
	}

	winner := maxes[0]
	second := startingPrice
	if len(maxes) > 1 {
		second = maxes[1].Max
	}

	price := second + increment
	if winner.Max < price {
		price = winner.Max
	}
	return winner, price
}
