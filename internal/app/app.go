// Package app assembles the storage backend and ingestion pipeline shared by
// the HTTP server and the command line tool.
package app

import (
	"context"
	"errors"

	"github.com/grachmannico95/shopease-be/internal/config"
	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/ingest"
	"github.com/grachmannico95/shopease-be/internal/storage"
	"github.com/grachmannico95/shopease-be/pkg/logger"
)

type Backend struct {
	Repo domain.Repository
	// Lookup is Repo, behind the Redis cache when one is configured.
	Lookup domain.ReferenceLookup
	// Checks are the dependency pings reported by the health endpoint.
	Checks map[string]func(ctx context.Context) error

	closers []func() error
}

// Open connects the configured storage. Without a database URL the data
// lives in memory, seeded with the demo store. A configured but unreachable
// Redis only disables the lookup cache.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	b := &Backend{Checks: map[string]func(ctx context.Context) error{}}

	if cfg.Database.URL == "" {
		mem := storage.NewMemoryStore()
		demo := storage.SeedDemo(mem)
		log.Info(ctx, "Using in-memory storage", "demo_store", demo.Slug)
		b.Repo = mem
	} else {
		db, err := storage.ConnectDB(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		b.Checks["postgres"] = db.PingContext

		applied, err := storage.RunMigrations(ctx, db)
		if err != nil {
			b.Close()
			return nil, err
		}
		log.Info(ctx, "Postgres storage ready", "migrations_applied", applied)
		b.Repo = storage.NewPostgresStore(db)
	}

	b.Lookup = b.Repo
	if cfg.Redis.URL != "" {
		client, err := storage.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn(ctx, "Redis unavailable, lookup cache disabled", "error", err)
		} else {
			b.closers = append(b.closers, client.Close)
			b.Checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
			b.Lookup = storage.NewCachedLookup(b.Repo, client, cfg.Redis.CacheTTL, log.Named("lookup_cache"))
			log.Info(ctx, "Lookup cache enabled", "ttl", cfg.Redis.CacheTTL.String())
		}
	}

	return b, nil
}

// Close releases connections in reverse order of opening.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// NewPipeline builds the ingestion pipeline over the backend.
func (b *Backend) NewPipeline(cfg config.IngestConfig, log *logger.Logger) *ingest.Pipeline {
	resolver := ingest.NewResolver(b.Lookup, ingest.ResolverConfig{
		Concurrency: cfg.LookupConcurrency,
		RPS:         cfg.LookupRPS,
		Retries:     cfg.LookupRetries,
		RetryDelay:  cfg.LookupRetryDelay,
	}, log.Named("resolver"))

	return ingest.NewPipeline(b.Repo, resolver, ingest.Config{
		MaxRows: cfg.MaxRows,
		Timeout: cfg.PipelineTimeout,
	}, log.Named("ingest"))
}
