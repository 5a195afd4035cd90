package ingest

import (
	"github.com/grachmannico95/shopease-be/internal/domain"
)

type SkipReason string

const (
	SkipMissingTitle       SkipReason = "missing_title"
	SkipMissingStore       SkipReason = "missing_store"
	SkipStoreLookupFailed  SkipReason = "store_lookup_failed"
	SkipInvalidStoreID     SkipReason = "invalid_store_id"
	SkipInvalidSaleDate    SkipReason = "invalid_sale_date"
	SkipMissingTotalAmount SkipReason = "missing_total_amount"
)

// SkippedRow records why a row was left out of the batch. Line is the
// spreadsheet row number, header being line 1.
type SkippedRow struct {
	Line   int        `json:"line"`
	Reason SkipReason `json:"reason"`
}

// ValidateOffer passes a resolved candidate with a title and a store.
func ValidateOffer(c OfferCandidate) (domain.Offer, SkipReason, bool) {
	switch {
	case c.Title == "":
		return domain.Offer{}, SkipMissingTitle, false
	case c.StoreErr != nil:
		return domain.Offer{}, SkipStoreLookupFailed, false
	case c.StoreID == "":
		return domain.Offer{}, SkipMissingStore, false
	}

	return domain.Offer{
		StoreID:            c.StoreID,
		SectionID:          c.SectionID,
		CategoryID:         c.CategoryID,
		Title:              c.Title,
		Description:        c.Description,
		OriginalPrice:      c.OriginalPrice,
		OfferPrice:         c.OfferPrice,
		DiscountPercentage: c.DiscountPercentage,
		ImageURL:           c.ImageURL,
		ValidFrom:          c.ValidFrom,
		ValidUntil:         c.ValidUntil,
		IsActive:           c.IsActive,
	}, "", true
}

// ValidateSale passes a candidate whose store resolved to an identifier and
// that has a sale date and a total amount.
func ValidateSale(c SaleCandidate) (domain.Sale, SkipReason, bool) {
	switch {
	case c.StoreErr != nil:
		return domain.Sale{}, SkipStoreLookupFailed, false
	case c.StoreID == "" && c.Store.ID != "":
		return domain.Sale{}, SkipInvalidStoreID, false
	case c.StoreID == "":
		return domain.Sale{}, SkipMissingStore, false
	case !domain.IsIdentifier(c.StoreID):
		return domain.Sale{}, SkipInvalidStoreID, false
	case c.SaleDate == nil:
		return domain.Sale{}, SkipInvalidSaleDate, false
	case c.TotalAmount == nil:
		return domain.Sale{}, SkipMissingTotalAmount, false
	}

	return domain.Sale{
		StoreID:       c.StoreID,
		SaleDate:      *c.SaleDate,
		TotalAmount:   *c.TotalAmount,
		CustomerCount: c.CustomerCount,
		ItemsSold:     c.ItemsSold,
	}, "", true
}
