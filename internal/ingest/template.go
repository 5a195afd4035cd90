package ingest

import "github.com/grachmannico95/shopease-be/internal/spreadsheet"

const exampleStoreSlug = "demo-store"

// OffersTemplate is the offers upload sheet with two example rows. The
// example rows use storeSlug when given.
func OffersTemplate(storeSlug string) spreadsheet.Sheet {
	if storeSlug == "" {
		storeSlug = exampleStoreSlug
	}
	return spreadsheet.Sheet{
		Name: "offers",
		Headers: []string{
			"title", "description", "original_price", "offer_price", "discount_percentage",
			"image_url", "store_slug", "section_name", "category_name",
			"valid_from", "valid_until", "is_active",
		},
		Rows: [][]any{
			{"Diamond Earrings", "14k gold with diamonds", 299.99, 199.99, 33,
				"https://example.com/img1.jpg", storeSlug, "Jewelry", "Jewelry",
				"2025-08-01", "2025-08-31", true},
			{"Kids Sneakers", "Comfortable sneakers", 69.99, 49.99, 29,
				"https://example.com/img2.jpg", storeSlug, "Kids", "Shoes",
				"2025-08-01", "2025-08-31", true},
		},
	}
}

func SalesTemplate(storeSlug string) spreadsheet.Sheet {
	if storeSlug == "" {
		storeSlug = exampleStoreSlug
	}
	return spreadsheet.Sheet{
		Name:    "sales",
		Headers: []string{"store_slug", "sale_date", "total_amount", "customer_count", "items_sold"},
		Rows: [][]any{
			{storeSlug, "2025-08-01", 1250.5, 8, 15},
			{storeSlug, "2025-08-02", 980.75, 6, 12},
		},
	}
}
