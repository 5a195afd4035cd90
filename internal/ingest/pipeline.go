package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/spreadsheet"
	"github.com/grachmannico95/shopease-be/pkg/logger"
)

const (
	offersHint = "Ensure each row has a title and a store_slug or store_id matching an existing store."
	salesHint  = "Ensure store_id is a UUID and sale_date is a valid date (YYYY-MM-DD)."
)

// BatchWriter persists a whole batch in one call, all rows or none.
type BatchWriter interface {
	InsertOffers(ctx context.Context, offers []domain.Offer) ([]domain.Offer, error)
	InsertSales(ctx context.Context, sales []domain.Sale) (int, error)
}

type Config struct {
	// MaxRows bounds the data rows accepted from one file; <= 0 is unbounded.
	MaxRows int
	// Timeout bounds a whole run; <= 0 leaves it to the caller's context.
	Timeout time.Duration
}

// Result describes one run. Offers holds the inserted offers, or with
// Preview the offers that would be inserted.
type Result struct {
	ImportID  string
	RowsFound int
	Inserted  int
	Skipped   []SkippedRow
	Offers    []domain.Offer
	Sales     []domain.Sale
}

// Pipeline takes an uploaded spreadsheet through parsing, normalization,
// reference resolution and validation, then submits the valid rows as one
// batch.
type Pipeline struct {
	writer   BatchWriter
	resolver *Resolver
	cfg      Config
	log      *logger.Logger
}

func NewPipeline(writer BatchWriter, resolver *Resolver, cfg Config, log *logger.Logger) *Pipeline {
	return &Pipeline{
		writer:   writer,
		resolver: resolver,
		cfg:      cfg,
		log:      log,
	}
}

func (p *Pipeline) ImportOffers(ctx context.Context, r io.Reader) (*Result, error) {
	return p.run(ctx, "offers", func(ctx context.Context, res *Result) error {
		return p.offers(ctx, r, res, true)
	})
}

// PreviewOffers runs every step except the insert.
func (p *Pipeline) PreviewOffers(ctx context.Context, r io.Reader) (*Result, error) {
	return p.run(ctx, "offers", func(ctx context.Context, res *Result) error {
		return p.offers(ctx, r, res, false)
	})
}

func (p *Pipeline) ImportSales(ctx context.Context, r io.Reader) (*Result, error) {
	return p.run(ctx, "sales", func(ctx context.Context, res *Result) error {
		return p.sales(ctx, r, res, true)
	})
}

func (p *Pipeline) PreviewSales(ctx context.Context, r io.Reader) (*Result, error) {
	return p.run(ctx, "sales", func(ctx context.Context, res *Result) error {
		return p.sales(ctx, r, res, false)
	})
}

// PrepareOffer resolves and validates a single offer outside of a file
// upload. A non-empty reason means the offer is not valid.
func (p *Pipeline) PrepareOffer(ctx context.Context, c OfferCandidate) (domain.Offer, SkipReason, error) {
	if err := p.resolver.NewSession().ResolveOffer(ctx, &c); err != nil {
		return domain.Offer{}, "", err
	}
	offer, reason, ok := ValidateOffer(c)
	if !ok {
		return domain.Offer{}, reason, nil
	}
	return offer, "", nil
}

func (p *Pipeline) run(ctx context.Context, kind string, step func(context.Context, *Result) error) (*Result, error) {
	importID := domain.NewID()
	ctx = logger.WithImportID(ctx, importID)
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	res := &Result{ImportID: importID}

	p.log.Info(ctx, "Import started", "kind", kind)

	err := step(ctx, res)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = domain.ErrPipelineTimeout
	}
	if err != nil {
		p.log.Warn(ctx, "Import failed",
			"kind", kind,
			"rows_found", res.RowsFound,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	p.log.Info(ctx, "Import completed",
		"kind", kind,
		"rows_found", res.RowsFound,
		"inserted", res.Inserted,
		"skipped", len(res.Skipped),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *Pipeline) offers(ctx context.Context, r io.Reader, res *Result, submit bool) error {
	rows, err := p.readRows(ctx, r)
	if err != nil {
		return err
	}
	res.RowsFound = len(rows)
	if len(rows) == 0 {
		return domain.ErrNoRows
	}

	candidates := make([]OfferCandidate, len(rows))
	for i, row := range rows {
		candidates[i] = NormalizeOffer(row)
	}

	if err := p.resolver.NewSession().ResolveOffers(ctx, candidates); err != nil {
		return err
	}

	valid := make([]domain.Offer, 0, len(candidates))
	for _, c := range candidates {
		offer, reason, ok := ValidateOffer(c)
		if !ok {
			res.Skipped = append(res.Skipped, SkippedRow{Line: c.Line, Reason: reason})
			continue
		}
		valid = append(valid, offer)
	}
	if len(valid) == 0 {
		return &domain.NoValidRowsError{RowsFound: res.RowsFound, Hint: offersHint}
	}

	if !submit {
		res.Offers = valid
		return nil
	}

	inserted, err := p.writer.InsertOffers(ctx, valid)
	if err != nil {
		return storageError("insert offers", err)
	}
	res.Offers = inserted
	res.Inserted = len(inserted)
	return nil
}

func (p *Pipeline) sales(ctx context.Context, r io.Reader, res *Result, submit bool) error {
	rows, err := p.readRows(ctx, r)
	if err != nil {
		return err
	}
	res.RowsFound = len(rows)
	if len(rows) == 0 {
		return domain.ErrNoRows
	}

	candidates := make([]SaleCandidate, len(rows))
	for i, row := range rows {
		candidates[i] = NormalizeSale(row)
	}

	if err := p.resolver.NewSession().ResolveSales(ctx, candidates); err != nil {
		return err
	}

	valid := make([]domain.Sale, 0, len(candidates))
	for _, c := range candidates {
		sale, reason, ok := ValidateSale(c)
		if !ok {
			res.Skipped = append(res.Skipped, SkippedRow{Line: c.Line, Reason: reason})
			continue
		}
		valid = append(valid, sale)
	}
	if len(valid) == 0 {
		return &domain.NoValidRowsError{RowsFound: res.RowsFound, Hint: salesHint}
	}

	res.Sales = valid
	if !submit {
		return nil
	}

	inserted, err := p.writer.InsertSales(ctx, valid)
	if err != nil {
		res.Sales = nil
		return storageError("insert sales", err)
	}
	res.Inserted = inserted
	return nil
}

func (p *Pipeline) readRows(ctx context.Context, r io.Reader) ([]spreadsheet.Row, error) {
	rows, err := spreadsheet.Open(r)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []spreadsheet.Row
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.cfg.MaxRows > 0 && len(out) >= p.cfg.MaxRows {
			return nil, fmt.Errorf("%w: limit is %d", domain.ErrTooManyRows, p.cfg.MaxRows)
		}
		out = append(out, rows.Row())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func storageError(op string, err error) error {
	var storageErr *domain.StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}
