package service

import (
	"context"
	"strings"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/pkg/logger"
)

type CatalogService interface {
	ListStores(ctx context.Context, search string) ([]domain.Store, error)
	ListSections(ctx context.Context, storeID string) ([]domain.Section, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type catalogService struct {
	repo   domain.CatalogRepository
	logger *logger.Logger
}

func NewCatalogService(repo domain.CatalogRepository, log *logger.Logger) CatalogService {
	return &catalogService{
		repo:   repo,
		logger: log,
	}
}

func (s *catalogService) ListStores(ctx context.Context, search string) ([]domain.Store, error) {
	stores, err := s.repo.ListStores(ctx, strings.TrimSpace(search))
	if err != nil {
		s.logger.Error(ctx, "Failed to list stores", "error", err)
		return nil, err
	}
	return stores, nil
}

func (s *catalogService) ListSections(ctx context.Context, storeID string) ([]domain.Section, error) {
	if err := checkRequiredID("storeId", storeID); err != nil {
		return nil, err
	}

	sections, err := s.repo.ListSections(ctx, storeID)
	if err != nil {
		s.logger.Error(ctx, "Failed to list sections", "store_id", storeID, "error", err)
		return nil, err
	}
	return sections, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		s.logger.Error(ctx, "Failed to list categories", "error", err)
		return nil, err
	}
	return categories, nil
}
