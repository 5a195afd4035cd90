package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/mocks"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	storeUUID    = "0b7e7dee-87f5-4c3f-9b6c-6f2c8f0b7a10"
	sectionUUID  = "6a1f4c2e-3d5b-4e7a-8c9d-0e1f2a3b4c5d"
	categoryUUID = "9e8d7c6b-5a49-4382-b1a0-f9e8d7c6b5a4"
)

func newTestResolver(lookup domain.ReferenceLookup) *Resolver {
	return NewResolver(lookup, ResolverConfig{Concurrency: 4, Retries: 2}, logger.NewNop())
}

func TestResolveOffer_DirectIDsSkipLookups(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	c := OfferCandidate{
		Title:    "A",
		Store:    Ref{ID: storeUUID, Name: "demo-store"},
		Section:  Ref{ID: sectionUUID, Name: "Jewelry"},
		Category: Ref{ID: categoryUUID, Name: "Shoes"},
	}

	err := newTestResolver(repo).NewSession().ResolveOffer(context.Background(), &c)

	require.NoError(t, err)
	assert.Equal(t, storeUUID, c.StoreID)
	assert.Equal(t, sectionUUID, *c.SectionID)
	assert.Equal(t, categoryUUID, *c.CategoryID)
	repo.AssertNotCalled(t, "FindStoreIDBySlug", mock.Anything, mock.Anything)
}

func TestResolveOffer_MalformedIDFallsBackToName(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("FindStoreIDBySlug", mock.Anything, "demo-store").Return("S1", nil).Once()
	repo.On("FindSectionID", mock.Anything, "S1", "Jewelry").Return("SEC1", nil).Once()
	repo.On("FindCategoryID", mock.Anything, "Shoes").Return("", domain.ErrNotFound).Once()

	c := OfferCandidate{
		Store:    Ref{ID: "not-a-uuid", Name: "demo-store"},
		Section:  Ref{ID: "123", Name: "Jewelry"},
		Category: Ref{Name: "Shoes"},
	}

	err := newTestResolver(repo).NewSession().ResolveOffer(context.Background(), &c)

	require.NoError(t, err)
	assert.Equal(t, "S1", c.StoreID)
	assert.Equal(t, "SEC1", *c.SectionID)
	assert.Nil(t, c.CategoryID)
}

func TestResolveOffer_SectionSentinel(t *testing.T) {
	for _, name := range []string{"", "main", "MAIN", "  Main "} {
		t.Run(name, func(t *testing.T) {
			repo := mocks.NewMockRepository(t)
			c := OfferCandidate{
				Store:    Ref{ID: storeUUID},
				Section:  Ref{Name: name},
				Category: Ref{Name: name},
			}

			err := newTestResolver(repo).NewSession().ResolveOffer(context.Background(), &c)

			require.NoError(t, err)
			assert.Nil(t, c.SectionID)
			assert.Nil(t, c.CategoryID)
		})
	}
}

func TestResolveOffer_SectionNeedsStore(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("FindStoreIDBySlug", mock.Anything, "ghost").Return("", domain.ErrNotFound).Once()

	c := OfferCandidate{Store: Ref{Name: "ghost"}, Section: Ref{Name: "Kids"}}

	err := newTestResolver(repo).NewSession().ResolveOffer(context.Background(), &c)

	require.NoError(t, err)
	assert.Empty(t, c.StoreID)
	assert.NoError(t, c.StoreErr)
	assert.Nil(t, c.SectionID)
}

func TestResolveOffers_SameSlugResolvesOnce(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("FindStoreIDBySlug", mock.Anything, mock.Anything).Return("S1", nil).Once()

	candidates := make([]OfferCandidate, 20)
	for i := range candidates {
		slug := "demo-store"
		if i%2 == 0 {
			slug = "Demo-Store"
		}
		candidates[i] = OfferCandidate{Title: "A", Store: Ref{Name: slug}}
	}

	err := newTestResolver(repo).NewSession().ResolveOffers(context.Background(), candidates)

	require.NoError(t, err)
	for _, c := range candidates {
		assert.Equal(t, "S1", c.StoreID)
	}
}

func TestResolveOffer_StoreLookupFailureMarksRow(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	boom := errors.New("connection reset")
	repo.On("FindStoreIDBySlug", mock.Anything, "demo-store").Return("", boom).Times(3)

	c := OfferCandidate{Title: "A", Store: Ref{Name: "demo-store"}, Section: Ref{Name: "Kids"}}

	err := newTestResolver(repo).NewSession().ResolveOffer(context.Background(), &c)

	require.NoError(t, err)
	assert.Empty(t, c.StoreID)
	var lookupErr *domain.ReferenceLookupError
	require.ErrorAs(t, c.StoreErr, &lookupErr)
	assert.Equal(t, "store", lookupErr.Kind)
	assert.ErrorIs(t, c.StoreErr, boom)
}

func TestResolveOffer_OptionalLookupFailureIsNoMatch(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("FindStoreIDBySlug", mock.Anything, "demo-store").Return("S1", nil).Once()
	repo.On("FindSectionID", mock.Anything, "S1", "Kids").Return("", errors.New("timeout")).Times(3)
	repo.On("FindCategoryID", mock.Anything, "Shoes").Return("CAT1", nil).Once()

	c := OfferCandidate{
		Title:    "A",
		Store:    Ref{Name: "demo-store"},
		Section:  Ref{Name: "Kids"},
		Category: Ref{Name: "Shoes"},
	}

	err := newTestResolver(repo).NewSession().ResolveOffer(context.Background(), &c)

	require.NoError(t, err)
	assert.Equal(t, "S1", c.StoreID)
	assert.NoError(t, c.StoreErr)
	assert.Nil(t, c.SectionID)
	assert.Equal(t, "CAT1", *c.CategoryID)
}

func TestResolveOffer_TransientErrorRetried(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("FindStoreIDBySlug", mock.Anything, "demo-store").Return("", errors.New("busy")).Once()
	repo.On("FindStoreIDBySlug", mock.Anything, "demo-store").Return("S1", nil).Once()

	c := OfferCandidate{Store: Ref{Name: "demo-store"}}

	err := newTestResolver(repo).NewSession().ResolveOffer(context.Background(), &c)

	require.NoError(t, err)
	assert.Equal(t, "S1", c.StoreID)
	assert.NoError(t, c.StoreErr)
}

func TestResolveSales(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("FindStoreIDBySlug", mock.Anything, "demo-store").Return(storeUUID, nil).Once()

	candidates := []SaleCandidate{
		{Line: 2, Store: Ref{ID: storeUUID}},
		{Line: 3, Store: Ref{Name: "demo-store"}},
		{Line: 4, Store: Ref{ID: "not-a-uuid"}},
	}

	err := newTestResolver(repo).NewSession().ResolveSales(context.Background(), candidates)

	require.NoError(t, err)
	assert.Equal(t, storeUUID, candidates[0].StoreID)
	assert.Equal(t, storeUUID, candidates[1].StoreID)
	assert.Empty(t, candidates[2].StoreID)
}

func TestResolveOffers_CancelledContext(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("FindStoreIDBySlug", mock.Anything, "demo-store").Return("", context.Canceled).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestResolver(repo).NewSession().ResolveOffers(ctx, []OfferCandidate{{Store: Ref{Name: "demo-store"}}})

	assert.ErrorIs(t, err, context.Canceled)
}
