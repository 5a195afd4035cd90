package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and amounts go out as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// SectionMain is the reserved section name meaning "no specific section".
const SectionMain = "main"

type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type Section struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Offer struct {
	ID                 string           `json:"id"`
	StoreID            string           `json:"store_id"`
	SectionID          *string          `json:"section_id"`
	CategoryID         *string          `json:"category_id"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	OriginalPrice      *decimal.Decimal `json:"original_price"`
	OfferPrice         *decimal.Decimal `json:"offer_price"`
	DiscountPercentage *int             `json:"discount_percentage"`
	ImageURL           string           `json:"image_url"`
	ValidFrom          *Date            `json:"valid_from"`
	ValidUntil         *Date            `json:"valid_until"`
	IsActive           bool             `json:"is_active"`
	CreatedAt          time.Time        `json:"created_at"`
}

// OfferFilter narrows ListOffers. Empty fields are not applied; Limit <= 0
// means no limit.
type OfferFilter struct {
	StoreID    string
	SectionID  string
	CategoryID string
	Limit      int
}

// OfferPatch carries a partial update. Nil fields are left untouched.
type OfferPatch struct {
	Title              *string          `json:"title"`
	Description        *string          `json:"description"`
	SectionID          *string          `json:"section_id"`
	CategoryID         *string          `json:"category_id"`
	OriginalPrice      *decimal.Decimal `json:"original_price"`
	OfferPrice         *decimal.Decimal `json:"offer_price"`
	DiscountPercentage *int             `json:"discount_percentage" validate:"omitempty,min=0,max=100"`
	ImageURL           *string          `json:"image_url"`
	ValidFrom          *Date            `json:"valid_from"`
	ValidUntil         *Date            `json:"valid_until"`
	IsActive           *bool            `json:"is_active"`
}

// IsEmpty reports whether the patch changes nothing.
func (p OfferPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.SectionID == nil &&
		p.CategoryID == nil && p.OriginalPrice == nil && p.OfferPrice == nil &&
		p.DiscountPercentage == nil && p.ImageURL == nil && p.ValidFrom == nil &&
		p.ValidUntil == nil && p.IsActive == nil
}

// Apply copies the set fields of the patch onto o.
func (p OfferPatch) Apply(o *Offer) {
	if p.Title != nil {
		o.Title = *p.Title
	}
	if p.Description != nil {
		o.Description = *p.Description
	}
	if p.SectionID != nil {
		o.SectionID = p.SectionID
	}
	if p.CategoryID != nil {
		o.CategoryID = p.CategoryID
	}
	if p.OriginalPrice != nil {
		o.OriginalPrice = p.OriginalPrice
	}
	if p.OfferPrice != nil {
		o.OfferPrice = p.OfferPrice
	}
	if p.DiscountPercentage != nil {
		o.DiscountPercentage = p.DiscountPercentage
	}
	if p.ImageURL != nil {
		o.ImageURL = *p.ImageURL
	}
	if p.ValidFrom != nil {
		o.ValidFrom = p.ValidFrom
	}
	if p.ValidUntil != nil {
		o.ValidUntil = p.ValidUntil
	}
	if p.IsActive != nil {
		o.IsActive = *p.IsActive
	}
}

type Sale struct {
	ID            string          `json:"id"`
	StoreID       string          `json:"store_id"`
	SaleDate      Date            `json:"sale_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CustomerCount int             `json:"customer_count"`
	ItemsSold     int             `json:"items_sold"`
	CreatedAt     time.Time       `json:"created_at"`
}

type QuestionType string

const (
	QuestionTypeRating QuestionType = "rating"
	QuestionTypeText   QuestionType = "text"
)

type FeedbackQuestion struct {
	ID           string       `json:"id"`
	StoreID      string       `json:"store_id"`
	Question     string       `json:"question"`
	QuestionType QuestionType `json:"question_type"`
	OrderIndex   int          `json:"order_index"`
	IsActive     bool         `json:"is_active"`
}

type FeedbackResponse struct {
	ID           string    `json:"id"`
	StoreID      string    `json:"store_id"`
	UserID       *string   `json:"user_id"`
	QuestionID   string    `json:"question_id"`
	Rating       *int      `json:"rating"`
	ResponseText *string   `json:"response_text"`
	CreatedAt    time.Time `json:"created_at"`
}

const DefaultScanType = "store_entrance"

type QRScan struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store_id"`
	SectionID *string   `json:"section_id"`
	UserID    *string   `json:"user_id"`
	ScanType  string    `json:"scan_type"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	ScannedAt time.Time `json:"scanned_at"`
}

// DateRange is an inclusive calendar range; nil bounds are open.
type DateRange struct {
	From *Date
	To   *Date
}

// Contains reports whether t falls on a UTC day inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := DateOf(t.UTC())
	if r.From != nil && d.Before(r.From.Time) {
		return false
	}
	if r.To != nil && d.After(r.To.Time) {
		return false
	}
	return true
}

type SalesTotals struct {
	Customers   int
	TotalAmount decimal.Decimal
}

type Overview struct {
	TotalScans     int             `json:"totalScans"`
	Conversions    int             `json:"conversions"`
	ConversionRate float64         `json:"conversionRate"`
	AvgSpend       decimal.Decimal `json:"avgSpend"`
}

type DailyScanCount struct {
	Day   Date `json:"scan_date"`
	Scans int  `json:"scan_count"`
}

type FeedbackSummaryItem struct {
	QuestionID    string   `json:"question_id"`
	Question      string   `json:"question"`
	Responses     int      `json:"responses"`
	AverageRating *float64 `json:"average_rating"`
}
