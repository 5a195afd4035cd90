package service

import (
	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/ingest"
	"github.com/grachmannico95/shopease-be/pkg/logger"
)

func newTestPipeline(repo domain.Repository) *ingest.Pipeline {
	log := logger.NewNop()
	resolver := ingest.NewResolver(repo, ingest.ResolverConfig{Concurrency: 2}, log)
	return ingest.NewPipeline(repo, resolver, ingest.Config{MaxRows: 100}, log)
}

func ptr[T any](v T) *T { return &v }
