package service

import (
	"context"
	"testing"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/storage"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService(t *testing.T) {
	store := storage.NewMemoryStore()
	demo := storage.SeedDemo(store)
	store.AddStore("Riverside Market", "riverside")
	svc := NewCatalogService(store, logger.NewNop())
	ctx := context.Background()

	stores, err := svc.ListStores(ctx, "  RIVER ")
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "riverside", stores[0].Slug)

	stores, err = svc.ListStores(ctx, "")
	require.NoError(t, err)
	assert.Len(t, stores, 2)

	sections, err := svc.ListSections(ctx, demo.ID)
	require.NoError(t, err)
	assert.Len(t, sections, 3)

	_, err = svc.ListSections(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.ListSections(ctx, "demo-store")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 4)
}
