package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/ingest"
	"github.com/grachmannico95/shopease-be/internal/spreadsheet"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/shopspring/decimal"
)

const defaultPreviewLimit = 6

type OfferService interface {
	ImportOffers(ctx context.Context, r io.Reader) (*ingest.Result, error)
	PreviewOffers(ctx context.Context, r io.Reader) (*ingest.Result, error)
	ListOffers(ctx context.Context, q OfferQuery) ([]domain.Offer, error)
	CreateOffer(ctx context.Context, in CreateOfferInput) (*domain.Offer, error)
	UpdateOffer(ctx context.Context, id string, patch domain.OfferPatch) (*domain.Offer, error)
	DeleteOffer(ctx context.Context, id string) error
	Template(storeSlug string) spreadsheet.Sheet
}

// OfferQuery filters the offer listing. SectionID "main" means no section
// filter. With Preview set, at most Limit offers come back (6 by default).
type OfferQuery struct {
	StoreID    string
	SectionID  string
	CategoryID string
	Preview    bool
	Limit      int
}

// CreateOfferInput is a single offer. References are resolved the same
// way as for an uploaded row: a direct id wins, otherwise the slug or name
// is looked up.
type CreateOfferInput struct {
	StoreID            string
	StoreSlug          string
	SectionID          string
	SectionName        string
	CategoryID         string
	CategoryName       string
	Title              string
	Description        string
	OriginalPrice      *decimal.Decimal
	OfferPrice         *decimal.Decimal
	DiscountPercentage *int
	ImageURL           string
	ValidFrom          *domain.Date
	ValidUntil         *domain.Date
	IsActive           *bool
}

type offerService struct {
	repo     domain.OfferRepository
	pipeline *ingest.Pipeline
	logger   *logger.Logger
}

func NewOfferService(repo domain.OfferRepository, pipeline *ingest.Pipeline, log *logger.Logger) OfferService {
	return &offerService{
		repo:     repo,
		pipeline: pipeline,
		logger:   log,
	}
}

func (s *offerService) ImportOffers(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	return s.pipeline.ImportOffers(ctx, r)
}

func (s *offerService) PreviewOffers(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	return s.pipeline.PreviewOffers(ctx, r)
}

func (s *offerService) ListOffers(ctx context.Context, q OfferQuery) ([]domain.Offer, error) {
	if err := checkOptionalID("storeId", q.StoreID); err != nil {
		return nil, err
	}
	if err := checkOptionalID("categoryId", q.CategoryID); err != nil {
		return nil, err
	}

	filter := domain.OfferFilter{
		StoreID:    q.StoreID,
		CategoryID: q.CategoryID,
	}
	if !domain.IsUnsetReference(q.SectionID) {
		if err := checkOptionalID("sectionId", q.SectionID); err != nil {
			return nil, err
		}
		filter.SectionID = q.SectionID
	}
	if q.Preview {
		filter.Limit = q.Limit
		if filter.Limit <= 0 {
			filter.Limit = defaultPreviewLimit
		}
	}

	s.logger.Debug(ctx, "Listing offers",
		"store_id", filter.StoreID,
		"section_id", filter.SectionID,
		"category_id", filter.CategoryID,
		"limit", filter.Limit,
	)

	offers, err := s.repo.ListOffers(ctx, filter)
	if err != nil {
		s.logger.Error(ctx, "Failed to list offers", "error", err)
		return nil, err
	}
	return offers, nil
}

func (s *offerService) CreateOffer(ctx context.Context, in CreateOfferInput) (*domain.Offer, error) {
	if err := checkPrices(in.OriginalPrice, in.OfferPrice); err != nil {
		return nil, err
	}

	candidate := ingest.OfferCandidate{
		Title:              strings.TrimSpace(in.Title),
		Description:        strings.TrimSpace(in.Description),
		Store:              ingest.Ref{ID: strings.TrimSpace(in.StoreID), Name: strings.TrimSpace(in.StoreSlug)},
		Section:            ingest.Ref{ID: strings.TrimSpace(in.SectionID), Name: strings.TrimSpace(in.SectionName)},
		Category:           ingest.Ref{ID: strings.TrimSpace(in.CategoryID), Name: strings.TrimSpace(in.CategoryName)},
		OriginalPrice:      in.OriginalPrice,
		OfferPrice:         in.OfferPrice,
		DiscountPercentage: in.DiscountPercentage,
		ImageURL:           strings.TrimSpace(in.ImageURL),
		ValidFrom:          in.ValidFrom,
		ValidUntil:         in.ValidUntil,
		IsActive:           true,
	}
	if in.IsActive != nil {
		candidate.IsActive = *in.IsActive
	}
	if candidate.DiscountPercentage == nil {
		candidate.DiscountPercentage = ingest.DeriveDiscount(candidate.OriginalPrice, candidate.OfferPrice)
	}

	offer, reason, err := s.pipeline.PrepareOffer(ctx, candidate)
	if err != nil {
		return nil, err
	}
	switch reason {
	case "":
	case ingest.SkipMissingTitle:
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	default:
		s.logger.Info(ctx, "Offer rejected", "reason", reason)
		return nil, domain.ErrStoreRequired
	}

	inserted, err := s.repo.InsertOffers(ctx, []domain.Offer{offer})
	if err != nil {
		s.logger.Error(ctx, "Failed to create offer", "error", err)
		return nil, asStorageError("insert offer", err)
	}

	s.logger.Info(ctx, "Offer created", "offer_id", inserted[0].ID, "store_id", offer.StoreID)
	return &inserted[0], nil
}

func (s *offerService) UpdateOffer(ctx context.Context, id string, patch domain.OfferPatch) (*domain.Offer, error) {
	if !domain.IsIdentifier(id) {
		return nil, fmt.Errorf("%w: offer id must be a UUID", domain.ErrInvalidID)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
	}
	if err := checkPrices(patch.OriginalPrice, patch.OfferPrice); err != nil {
		return nil, err
	}

	offer, err := s.repo.UpdateOffer(ctx, id, patch)
	if err != nil {
		if isNotFound(err) {
			return nil, err
		}
		s.logger.Error(ctx, "Failed to update offer", "offer_id", id, "error", err)
		return nil, asStorageError("update offer", err)
	}

	s.logger.Info(ctx, "Offer updated", "offer_id", id)
	return offer, nil
}

func (s *offerService) DeleteOffer(ctx context.Context, id string) error {
	if !domain.IsIdentifier(id) {
		return fmt.Errorf("%w: offer id must be a UUID", domain.ErrInvalidID)
	}

	if err := s.repo.DeleteOffer(ctx, id); err != nil {
		if isNotFound(err) {
			return err
		}
		s.logger.Error(ctx, "Failed to delete offer", "offer_id", id, "error", err)
		return err
	}

	s.logger.Info(ctx, "Offer deleted", "offer_id", id)
	return nil
}

func (s *offerService) Template(storeSlug string) spreadsheet.Sheet {
	return ingest.OffersTemplate(storeSlug)
}
