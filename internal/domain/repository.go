package domain

import "context"

// ReferenceLookup resolves human-readable references to identifiers.
// Matching is case-insensitive, exact match first, then partial. A miss
// returns ErrNotFound.
type ReferenceLookup interface {
	FindStoreIDBySlug(ctx context.Context, slug string) (string, error)
	FindSectionID(ctx context.Context, storeID, name string) (string, error)
	FindCategoryID(ctx context.Context, name string) (string, error)
}

type OfferRepository interface {
	ListOffers(ctx context.Context, filter OfferFilter) ([]Offer, error)
	GetOffer(ctx context.Context, id string) (*Offer, error)
	// InsertOffers persists all offers or none.
	InsertOffers(ctx context.Context, offers []Offer) ([]Offer, error)
	UpdateOffer(ctx context.Context, id string, patch OfferPatch) (*Offer, error)
	DeleteOffer(ctx context.Context, id string) error
	DeactivateExpiredOffers(ctx context.Context, today Date) (int64, error)
}

type SalesRepository interface {
	// InsertSales persists all entries or none.
	InsertSales(ctx context.Context, sales []Sale) (int, error)
	SalesTotals(ctx context.Context, storeID string, r DateRange) (SalesTotals, error)
}

type CatalogRepository interface {
	ListStores(ctx context.Context, search string) ([]Store, error)
	ListSections(ctx context.Context, storeID string) ([]Section, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

type FeedbackRepository interface {
	ListFeedbackQuestions(ctx context.Context, storeID string) ([]FeedbackQuestion, error)
	InsertFeedbackResponses(ctx context.Context, responses []FeedbackResponse) (int, error)
	FeedbackSummary(ctx context.Context, storeID string, r DateRange) ([]FeedbackSummaryItem, error)
}

type ScanRepository interface {
	// RecordScan is idempotent on scan.ID.
	RecordScan(ctx context.Context, scan QRScan) error
	CountScans(ctx context.Context, storeID string, r DateRange) (int, error)
	DailyScans(ctx context.Context, storeID string, r DateRange) ([]DailyScanCount, error)
}

type Repository interface {
	ReferenceLookup
	OfferRepository
	SalesRepository
	CatalogRepository
	FeedbackRepository
	ScanRepository
}
