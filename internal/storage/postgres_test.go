package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStoreID = "0b7e7dee-87f5-4c3f-9b6c-6f2c8f0b7a10"

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgresStore(db), mock
}

func TestPostgresStore_FindStoreIDBySlug(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM stores")).
		WithArgs("%demo\\_store%", "demo_store").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testStoreID))

	id, err := store.FindStoreIDBySlug(ctx, " demo_store ")
	require.NoError(t, err)
	assert.Equal(t, testStoreID, id)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM stores")).
		WithArgs("%ghost%", "ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = store.FindStoreIDBySlug(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgresStore_FindSectionID_PassesErrors(t *testing.T) {
	store, mock := newMockStore(t)
	down := errors.New("connection refused")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM store_sections")).
		WithArgs(testStoreID, "%Kids%", "Kids").
		WillReturnError(down)

	_, err := store.FindSectionID(context.Background(), testStoreID, "Kids")
	assert.ErrorIs(t, err, down)
}

func TestPostgresStore_InsertOffers_Commit(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	price := decimal.RequireFromString("50")

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO offers"))
	for range 2 {
		prep.ExpectQuery().
			WithArgs(sqlmock.AnyArg(), testStoreID, nil, nil, sqlmock.AnyArg(), "", nil, sqlmock.AnyArg(), nil, "", nil, nil, true).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	}
	mock.ExpectCommit()

	inserted, err := store.InsertOffers(context.Background(), []domain.Offer{
		{StoreID: testStoreID, Title: "A", OfferPrice: &price, IsActive: true},
		{StoreID: testStoreID, Title: "B", OfferPrice: &price, IsActive: true},
	})

	require.NoError(t, err)
	require.Len(t, inserted, 2)
	assert.True(t, domain.IsIdentifier(inserted[0].ID))
	assert.NotEqual(t, inserted[0].ID, inserted[1].ID)
	assert.Equal(t, created, inserted[1].CreatedAt)
}

func TestPostgresStore_InsertOffers_RollbackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	rejected := errors.New(`ERROR: insert or update on table "offers" violates foreign key constraint "offers_store_id_fkey" (SQLSTATE 23503)`)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO offers"))
	prep.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	prep.ExpectQuery().WillReturnError(rejected)
	mock.ExpectRollback()

	inserted, err := store.InsertOffers(context.Background(), []domain.Offer{
		{StoreID: testStoreID, Title: "A"},
		{StoreID: domain.NewID(), Title: "B"},
	})

	assert.Nil(t, inserted)
	var storageErr *domain.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, rejected.Error(), err.Error())
}

func TestPostgresStore_InsertSales(t *testing.T) {
	store, mock := newMockStore(t)
	date := domain.NewDate(2025, 8, 1)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO sales_data"))
	prep.ExpectExec().
		WithArgs(sqlmock.AnyArg(), testStoreID, sqlmock.AnyArg(), sqlmock.AnyArg(), 8, 15).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := store.InsertSales(context.Background(), []domain.Sale{
		{StoreID: testStoreID, SaleDate: date, TotalAmount: decimal.RequireFromString("1250.5"), CustomerCount: 8, ItemsSold: 15},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPostgresStore_InsertSales_Rollback(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO sales_data"))
	prep.ExpectExec().WillReturnError(errors.New("numeric field overflow"))
	mock.ExpectRollback()

	n, err := store.InsertSales(context.Background(), []domain.Sale{
		{StoreID: testStoreID, SaleDate: domain.NewDate(2025, 8, 1), TotalAmount: decimal.RequireFromString("1e20")},
	})

	assert.Equal(t, 0, n)
	assert.EqualError(t, err, "numeric field overflow")
}

func TestPostgresStore_GetOffer(t *testing.T) {
	store, mock := newMockStore(t)
	offerID := domain.NewID()
	created := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	columns := []string{"id", "store_id", "section_id", "category_id", "title", "description",
		"original_price", "offer_price", "discount_percentage", "image_url",
		"valid_from", "valid_until", "is_active", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM offers WHERE id = $1")).
		WithArgs(offerID).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			offerID, testStoreID, nil, nil, "Diamond Earrings", "",
			"299.99", "199.99", int64(33), "",
			time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), nil, true, created,
		))

	offer, err := store.GetOffer(context.Background(), offerID)
	require.NoError(t, err)
	assert.Equal(t, "Diamond Earrings", offer.Title)
	assert.Nil(t, offer.SectionID)
	assert.True(t, decimal.RequireFromString("299.99").Equal(*offer.OriginalPrice))
	assert.Equal(t, 33, *offer.DiscountPercentage)
	assert.Equal(t, domain.NewDate(2025, 8, 1), *offer.ValidFrom)
	assert.Nil(t, offer.ValidUntil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM offers WHERE id = $1")).
		WithArgs(offerID).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err = store.GetOffer(context.Background(), offerID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgresStore_ListOffers_BuildsFilter(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`FROM offers WHERE store_id = \$1 AND category_id = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs(testStoreID, "cat", 6).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	offers, err := store.ListOffers(context.Background(), domain.OfferFilter{StoreID: testStoreID, CategoryID: "cat", Limit: 6})
	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestPostgresStore_DeleteOffer(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM offers WHERE id = $1")).
		WithArgs("a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM offers WHERE id = $1")).
		WithArgs("b").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.DeleteOffer(context.Background(), "a"))
	assert.ErrorIs(t, store.DeleteOffer(context.Background(), "b"), domain.ErrNotFound)
}

func TestPostgresStore_UpdateOffer(t *testing.T) {
	store, mock := newMockStore(t)
	title := "New title"
	active := false

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE offers SET title = $1, is_active = $2 WHERE id = $3 RETURNING")).
		WithArgs(title, active, "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.UpdateOffer(context.Background(), "missing", domain.OfferPatch{Title: &title, IsActive: &active})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgresStore_DeactivateExpiredOffers(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE offers SET is_active = FALSE")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := store.DeactivateExpiredOffers(context.Background(), domain.NewDate(2025, 8, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestPostgresStore_SalesTotals(t *testing.T) {
	store, mock := newMockStore(t)
	from := domain.NewDate(2025, 8, 1)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sales_data")).
		WithArgs(testStoreID, sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows([]string{"customers", "total"}).AddRow(int64(14), "2231.25"))

	totals, err := store.SalesTotals(context.Background(), testStoreID, domain.DateRange{From: &from})
	require.NoError(t, err)
	assert.Equal(t, 14, totals.Customers)
	assert.True(t, decimal.RequireFromString("2231.25").Equal(totals.TotalAmount))
}

func TestPostgresStore_RecordScan(t *testing.T) {
	store, mock := newMockStore(t)
	scan := domain.QRScan{
		ID:        domain.NewID(),
		StoreID:   testStoreID,
		ScanType:  domain.DefaultScanType,
		IPAddress: "10.0.0.1",
		UserAgent: "test",
		ScannedAt: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO NOTHING")).
		WithArgs(scan.ID, testStoreID, nil, nil, domain.DefaultScanType, "10.0.0.1", "test", scan.ScannedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.RecordScan(context.Background(), scan))
}

func TestPostgresStore_FeedbackSummary(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM feedback_questions q")).
		WithArgs(testStoreID, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "question", "count", "avg"}).
			AddRow("q1", "How was it?", int64(2), 4.5).
			AddRow("q2", "Anything else?", int64(0), nil))

	items, err := store.FeedbackSummary(context.Background(), testStoreID, domain.DateRange{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Responses)
	assert.InDelta(t, 4.5, *items[0].AverageRating, 0.001)
	assert.Nil(t, items[1].AverageRating)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\% off%`, likePattern(" 50% off "))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}
