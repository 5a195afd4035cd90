package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/grachmannico95/shopease-be/internal/config"
	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/storage"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InMemoryWithDemoSeed(t *testing.T) {
	cfg := &config.Config{Ingest: config.IngestConfig{MaxRows: 10, LookupConcurrency: 2, PipelineTimeout: time.Second}}
	b, err := Open(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &storage.MemoryStore{}, b.Repo)
	assert.Empty(t, b.Checks)

	res, err := b.NewPipeline(cfg.Ingest, logger.NewNop()).ImportSales(context.Background(),
		strings.NewReader("store_slug,sale_date,total_amount\ndemo-store,2025-08-01,10.50\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	totals, err := b.Repo.SalesTotals(context.Background(), res.Sales[0].StoreID, domain.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, "10.5", totals.TotalAmount.String())
}

func TestOpen_UnreachableRedisDisablesCache(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{URL: "redis://127.0.0.1:1/0"}}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	b, err := Open(ctx, cfg, logger.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.Same(t, b.Repo, b.Lookup)
	assert.NotContains(t, b.Checks, "redis")
}
