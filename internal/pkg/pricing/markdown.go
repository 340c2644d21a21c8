package pricing

import (
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/MiguelSanz/Anunzio/app/repository"
)

// Tracker maintains the price/original-price invariant on discounts.
type Tracker struct {
	listings repository.ListingRepository
}

// NewTracker creates a markdown tracker over the listing store.
func NewTracker(listings repository.ListingRepository) *Tracker {
	return &Tracker{listings: listings}
}

// NextOriginalPrice decides which original price to persist alongside a
// markdown: the prior original when one is already set, else the price being
// replaced. Across repeated markdowns the original therefore always reflects
// the highest price ever shown, never the immediately-prior one.
func NextOriginalPrice(currentPrice int64, priorOriginal *int64) int64 {
	if priorOriginal != nil && *priorOriginal > 0 {
		return *priorOriginal
	}
	return currentPrice
}

// ReduceListingPrice persists a price markdown. The caller is responsible
// for ensuring newPrice < currentPrice; this operation does not re-validate
// it. Returns false when the storage update was rejected; the caller
// surfaces that as a generic "try again" condition.
func (t *Tracker) ReduceListingPrice(id uint, newPrice, currentPrice int64, priorOriginal *int64) bool {
	fields := map[string]interface{}{
		"price":          newPrice,
		"original_price": NextOriginalPrice(currentPrice, priorOriginal),
	}
	if _, err := t.listings.UpdateFields(id, fields); err != nil {
		fiberlog.Errorf("price markdown for listing %d failed: %v", id, err)
		return false
	}
	return true
}
