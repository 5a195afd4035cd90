package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/spreadsheet"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Ref is an unresolved reference: a direct identifier, a human-readable
// name, or both.
type Ref struct {
	ID   string
	Name string
}

func (r Ref) IsEmpty() bool { return r.ID == "" && r.Name == "" }

// OfferCandidate is a normalized offer row. The resolver fills StoreID,
// SectionID and CategoryID from the refs.
type OfferCandidate struct {
	Line               int
	Title              string
	Description        string
	Store              Ref
	Section            Ref
	Category           Ref
	OriginalPrice      *decimal.Decimal
	OfferPrice         *decimal.Decimal
	DiscountPercentage *int
	ImageURL           string
	ValidFrom          *domain.Date
	ValidUntil         *domain.Date
	IsActive           bool

	StoreID    string
	SectionID  *string
	CategoryID *string
	StoreErr   error
}

type SaleCandidate struct {
	Line          int
	Store         Ref
	SaleDate      *domain.Date
	TotalAmount   *decimal.Decimal
	CustomerCount int
	ItemsSold     int

	StoreID  string
	StoreErr error
}

// fieldRule lists the accepted column spellings for one field, in
// precedence order. Headers are already lowercased by the parser.
type fieldRule []string

func (f fieldRule) from(row spreadsheet.Row) string {
	return row.First(f...)
}

var (
	offerTitle         = fieldRule{"title"}
	offerDescription   = fieldRule{"description"}
	offerCategoryID    = fieldRule{"category_id", "categoryid"}
	offerCategoryName  = fieldRule{"category_name", "category"}
	offerOriginalPrice = fieldRule{"original_price", "price"}
	offerOfferPrice    = fieldRule{"offer_price", "sale_price"}
	offerDiscount      = fieldRule{"discount_percentage", "discount"}
	offerImageURL      = fieldRule{"image_url", "image"}
	offerStoreID       = fieldRule{"store_id", "storeid"}
	offerStoreSlug     = fieldRule{"store_slug", "store"}
	offerSectionID     = fieldRule{"section_id", "sectionid"}
	offerSectionName   = fieldRule{"section_name", "section"}
	offerValidFrom     = fieldRule{"valid_from", "validfrom"}
	offerValidUntil    = fieldRule{"valid_until", "validuntil"}
	offerIsActive      = fieldRule{"is_active", "isactive", "active"}

	saleStoreID       = fieldRule{"store_id", "storeid"}
	saleStoreSlug     = fieldRule{"store_slug", "store"}
	saleDate          = fieldRule{"sale_date", "saledate", "date"}
	saleTotalAmount   = fieldRule{"total_amount", "totalamount", "amount"}
	saleCustomerCount = fieldRule{"customer_count", "customercount", "customers"}
	saleItemsSold     = fieldRule{"items_sold", "itemssold", "items"}
)

// NormalizeOffer converts a raw row into a typed offer candidate. A bad cell
// becomes null; it never fails the row on its own.
func NormalizeOffer(row spreadsheet.Row) OfferCandidate {
	c := OfferCandidate{
		Line:          row.Line,
		Title:         offerTitle.from(row),
		Description:   offerDescription.from(row),
		Store:         Ref{ID: offerStoreID.from(row), Name: offerStoreSlug.from(row)},
		Section:       Ref{ID: offerSectionID.from(row), Name: offerSectionName.from(row)},
		Category:      Ref{ID: offerCategoryID.from(row), Name: offerCategoryName.from(row)},
		OriginalPrice: nonNegative(parseDecimal(offerOriginalPrice.from(row))),
		OfferPrice:    nonNegative(parseDecimal(offerOfferPrice.from(row))),
		ImageURL:      offerImageURL.from(row),
		ValidFrom:     parseDate(offerValidFrom.from(row)),
		ValidUntil:    parseDate(offerValidUntil.from(row)),
		IsActive:      true,
	}

	if active := parseBool(offerIsActive.from(row)); active != nil {
		c.IsActive = *active
	}

	c.DiscountPercentage = percentage(parseInt(offerDiscount.from(row)))
	if c.DiscountPercentage == nil {
		c.DiscountPercentage = DeriveDiscount(c.OriginalPrice, c.OfferPrice)
	}
	return c
}

func NormalizeSale(row spreadsheet.Row) SaleCandidate {
	c := SaleCandidate{
		Line:          row.Line,
		Store:         Ref{ID: saleStoreID.from(row), Name: saleStoreSlug.from(row)},
		SaleDate:      parseDate(saleDate.from(row)),
		TotalAmount:   parseDecimal(saleTotalAmount.from(row)),
		CustomerCount: 1,
		ItemsSold:     1,
	}

	if n := parseInt(saleCustomerCount.from(row)); n != nil && *n >= 0 {
		c.CustomerCount = *n
	}
	if n := parseInt(saleItemsSold.from(row)); n != nil && *n >= 0 {
		c.ItemsSold = *n
	}
	return c
}

// DeriveDiscount returns round((original - offer) / original * 100) when the
// offer is below a positive original price, nil otherwise.
func DeriveDiscount(original, offer *decimal.Decimal) *int {
	if original == nil || offer == nil || !InRange(*original) || !InRange(*offer) {
		return nil
	}
	if !original.IsPositive() || !offer.LessThan(*original) {
		return nil
	}
	pct := original.Sub(*offer).Div(*original).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	v := int(pct)
	return &v
}

var decimalNoise = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", " ", "")

func parseDecimal(s string) *decimal.Decimal {
	s = decimalNoise.Replace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !InRange(d) {
		return nil
	}
	return &d
}

// Bounds on a parsed number. Exponent notation such as "1e900000000" would
// otherwise be rescaled into a huge integer by the first arithmetic step.
const (
	maxDecimalDigits   = 30
	maxDecimalExponent = 20
)

// InRange reports whether d is small enough in precision and magnitude to
// take part in price and amount arithmetic.
func InRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > maxDecimalExponent || exp < -maxDecimalExponent {
		return false
	}
	return d.NumDigits()+int(max(exp, 0)) <= maxDecimalDigits
}

func nonNegative(d *decimal.Decimal) *decimal.Decimal {
	if d == nil || d.IsNegative() {
		return nil
	}
	return d
}

// Counts land in 32-bit integer columns.
var (
	maxIntCell = decimal.NewFromInt(math.MaxInt32)
	minIntCell = decimal.NewFromInt(math.MinInt32)
)

// parseInt accepts integral decimals such as "8.0", which is how some
// spreadsheet tools export whole numbers.
func parseInt(s string) *int {
	d := parseDecimal(s)
	if d == nil || !d.Equal(d.Truncate(0)) {
		return nil
	}
	if d.GreaterThan(maxIntCell) || d.LessThan(minIntCell) {
		return nil
	}
	v := int(d.IntPart())
	return &v
}

func percentage(v *int) *int {
	if v == nil || *v < 0 || *v > 100 {
		return nil
	}
	return v
}

func parseBool(s string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "t", "1", "on":
		v = true
	case "false", "no", "n", "f", "0", "off":
		v = false
	default:
		return nil
	}
	return &v
}

var dateLayouts = []string{
	domain.DateLayout,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Excel stores dates as day serials; anything past 9999-12-31 is not a date.
const maxExcelSerial = 2958465

func parseDate(s string) *domain.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := domain.DateOf(t)
			return &d
		}
	}

	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial < 1 || serial > maxExcelSerial {
		return nil
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return nil
	}
	d := domain.DateOf(t)
	return &d
}
