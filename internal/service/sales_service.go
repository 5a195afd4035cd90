package service

import (
	"context"
	"io"

	"github.com/grachmannico95/shopease-be/internal/ingest"
	"github.com/grachmannico95/shopease-be/internal/spreadsheet"
)

type SalesService interface {
	ImportSales(ctx context.Context, r io.Reader) (*ingest.Result, error)
	PreviewSales(ctx context.Context, r io.Reader) (*ingest.Result, error)
	Template(storeSlug string) spreadsheet.Sheet
}

type salesService struct {
	pipeline *ingest.Pipeline
}

func NewSalesService(pipeline *ingest.Pipeline) SalesService {
	return &salesService{pipeline: pipeline}
}

func (s *salesService) ImportSales(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	return s.pipeline.ImportSales(ctx, r)
}

func (s *salesService) PreviewSales(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	return s.pipeline.PreviewSales(ctx, r)
}

func (s *salesService) Template(storeSlug string) spreadsheet.Sheet {
	return ingest.SalesTemplate(storeSlug)
}
