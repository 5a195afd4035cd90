package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/storage"
	"github.com/grachmannico95/shopease-be/mocks"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSeededOfferService(t *testing.T) (OfferService, *storage.MemoryStore, domain.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	demo := storage.SeedDemo(store)
	return NewOfferService(store, newTestPipeline(store), logger.NewNop()), store, demo
}

func TestOfferService_CreateOffer_ResolvesReferences(t *testing.T) {
	svc, store, demo := newSeededOfferService(t)
	ctx := context.Background()

	offer, err := svc.CreateOffer(ctx, CreateOfferInput{
		StoreSlug:     "demo-store",
		SectionName:   "jewelry",
		CategoryName:  "Shoes",
		Title:         "  Gold Ring  ",
		OriginalPrice: ptr(decimal.RequireFromString("100")),
		OfferPrice:    ptr(decimal.RequireFromString("75")),
	})
	require.NoError(t, err)

	assert.Equal(t, "Gold Ring", offer.Title)
	assert.Equal(t, demo.ID, offer.StoreID)
	require.NotNil(t, offer.SectionID)
	require.NotNil(t, offer.CategoryID)
	require.NotNil(t, offer.DiscountPercentage)
	assert.Equal(t, 25, *offer.DiscountPercentage)
	assert.True(t, offer.IsActive)

	sections, err := store.ListSections(ctx, demo.ID)
	require.NoError(t, err)
	var jewelry string
	for _, s := range sections {
		if s.Name == "Jewelry" {
			jewelry = s.ID
		}
	}
	assert.Equal(t, jewelry, *offer.SectionID)
}

func TestOfferService_CreateOffer_MainSectionIsNull(t *testing.T) {
	svc, _, _ := newSeededOfferService(t)

	offer, err := svc.CreateOffer(context.Background(), CreateOfferInput{
		StoreSlug:   "demo-store",
		SectionName: "Main",
		Title:       "Anything",
		IsActive:    ptr(false),
	})
	require.NoError(t, err)
	assert.Nil(t, offer.SectionID)
	assert.False(t, offer.IsActive)
}

func TestOfferService_CreateOffer_Rejections(t *testing.T) {
	svc, _, _ := newSeededOfferService(t)
	ctx := context.Background()

	_, err := svc.CreateOffer(ctx, CreateOfferInput{Title: "No store"})
	assert.ErrorIs(t, err, domain.ErrStoreRequired)

	_, err = svc.CreateOffer(ctx, CreateOfferInput{Title: "Unknown store", StoreSlug: "nowhere"})
	assert.ErrorIs(t, err, domain.ErrStoreRequired)

	_, err = svc.CreateOffer(ctx, CreateOfferInput{Title: "   ", StoreSlug: "demo-store"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CreateOffer(ctx, CreateOfferInput{
		Title:         "Huge",
		StoreSlug:     "demo-store",
		OriginalPrice: ptr(decimal.RequireFromString("1e900000000")),
		OfferPrice:    ptr(decimal.RequireFromString("5")),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.EqualError(t, err, "invalid input: original_price is out of range")
}

func TestOfferService_CreateOffer_StorageError(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	storeID := domain.NewID()
	repo.On("InsertOffers", mock.Anything, mock.Anything).
		Return(nil, errors.New(`insert or update on table "offers" violates foreign key constraint`)).Once()

	svc := NewOfferService(repo, newTestPipeline(repo), logger.NewNop())
	_, err := svc.CreateOffer(context.Background(), CreateOfferInput{StoreID: storeID, Title: "X"})

	var storageErr *domain.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, `insert or update on table "offers" violates foreign key constraint`, err.Error())
}

func TestOfferService_ListOffers(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := NewOfferService(repo, newTestPipeline(repo), logger.NewNop())
	ctx := context.Background()
	storeID := domain.NewID()

	repo.On("ListOffers", mock.Anything, domain.OfferFilter{StoreID: storeID, Limit: 6}).
		Return([]domain.Offer{{Title: "A"}}, nil).Once()
	offers, err := svc.ListOffers(ctx, OfferQuery{StoreID: storeID, SectionID: "main", Preview: true})
	require.NoError(t, err)
	assert.Len(t, offers, 1)

	repo.On("ListOffers", mock.Anything, domain.OfferFilter{StoreID: storeID}).
		Return([]domain.Offer{}, nil).Once()
	_, err = svc.ListOffers(ctx, OfferQuery{StoreID: storeID, Limit: 3})
	require.NoError(t, err)

	_, err = svc.ListOffers(ctx, OfferQuery{StoreID: "demo-store"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	assert.True(t, strings.Contains(err.Error(), "storeId"))

	_, err = svc.ListOffers(ctx, OfferQuery{CategoryID: "shoes"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.ListOffers(ctx, OfferQuery{SectionID: "kids"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestOfferService_UpdateAndDelete(t *testing.T) {
	svc, _, demo := newSeededOfferService(t)
	ctx := context.Background()

	created, err := svc.CreateOffer(ctx, CreateOfferInput{StoreID: demo.ID, Title: "A"})
	require.NoError(t, err)

	updated, err := svc.UpdateOffer(ctx, created.ID, domain.OfferPatch{Title: ptr("B")})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Title)

	_, err = svc.UpdateOffer(ctx, created.ID, domain.OfferPatch{Title: ptr(" ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateOffer(ctx, created.ID, domain.OfferPatch{OfferPrice: ptr(decimal.RequireFromString("1e-900000000"))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateOffer(ctx, "not-a-uuid", domain.OfferPatch{})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.UpdateOffer(ctx, domain.NewID(), domain.OfferPatch{Title: ptr("C")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.DeleteOffer(ctx, created.ID))
	assert.ErrorIs(t, svc.DeleteOffer(ctx, created.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteOffer(ctx, "1"), domain.ErrInvalidID)
}

func TestOfferService_ImportOffers(t *testing.T) {
	svc, _, _ := newSeededOfferService(t)

	csv := "title,store_slug,section_name,original_price,offer_price\n" +
		"Ring,demo-store,Jewelry,100,80\n" +
		",demo-store,Kids,10,5\n"
	res, err := svc.ImportOffers(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowsFound)
	assert.Equal(t, 1, res.Inserted)
	require.Len(t, res.Offers, 1)
	assert.Equal(t, 20, *res.Offers[0].DiscountPercentage)

	offers, err := svc.ListOffers(context.Background(), OfferQuery{})
	require.NoError(t, err)
	assert.Len(t, offers, 1)
}

func TestOfferService_PreviewOffersInsertsNothing(t *testing.T) {
	svc, _, _ := newSeededOfferService(t)

	res, err := svc.PreviewOffers(context.Background(), strings.NewReader("title,store\nRing,demo-store\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Len(t, res.Offers, 1)

	offers, err := svc.ListOffers(context.Background(), OfferQuery{})
	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestOfferService_Template(t *testing.T) {
	svc, _, _ := newSeededOfferService(t)
	sheet := svc.Template("my-shop")
	assert.Equal(t, "my-shop", sheet.Rows[0][6])
}
