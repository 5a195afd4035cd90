package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/grachmannico95/shopease-be/pkg/retry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	kindStore    = "store"
	kindSection  = "section"
	kindCategory = "category"
)

type ResolverConfig struct {
	// Concurrency caps in-flight rows being resolved.
	Concurrency int
	// RPS caps lookups per second against the reference source; <= 0 is
	// unlimited.
	RPS        float64
	Retries    int
	RetryDelay time.Duration
}

// Resolver turns store slugs and section/category names into identifiers.
// It is safe for concurrent use; each upload gets its own Session.
type Resolver struct {
	lookup  domain.ReferenceLookup
	limiter *rate.Limiter
	cfg     ResolverConfig
	log     *logger.Logger
}

func NewResolver(lookup domain.ReferenceLookup, cfg ResolverConfig, log *logger.Logger) *Resolver {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	limit := rate.Inf
	burst := 1
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
		burst = max(1, int(cfg.RPS))
	}

	return &Resolver{
		lookup:  lookup,
		limiter: rate.NewLimiter(limit, burst),
		cfg:     cfg,
		log:     log,
	}
}

// Session memoizes lookups for one upload, so a slug resolves to the same
// identifier on every row of the file.
type Session struct {
	r     *Resolver
	group singleflight.Group
	mu    sync.Mutex
	memo  map[string]lookupResult
}

type lookupResult struct {
	id  string
	err error
}

func (r *Resolver) NewSession() *Session {
	return &Session{r: r, memo: make(map[string]lookupResult)}
}

// ResolveOffers resolves every candidate in place. Only cancellation or
// timeout of ctx is returned; lookup failures are recorded on the row.
func (s *Session) ResolveOffers(ctx context.Context, candidates []OfferCandidate) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.r.cfg.Concurrency)

	for i := range candidates {
		c := &candidates[i]
		g.Go(func() error {
			return s.ResolveOffer(gctx, c)
		})
	}
	return g.Wait()
}

func (s *Session) ResolveSales(ctx context.Context, candidates []SaleCandidate) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.r.cfg.Concurrency)

	for i := range candidates {
		c := &candidates[i]
		g.Go(func() error {
			id, err := s.resolveStore(gctx, c.Store)
			if isFatal(err) {
				return err
			}
			c.StoreID, c.StoreErr = id, err
			return nil
		})
	}
	return g.Wait()
}

// ResolveOffer resolves one candidate. The store resolves first because the
// section lookup is scoped to it.
func (s *Session) ResolveOffer(ctx context.Context, c *OfferCandidate) error {
	storeID, err := s.resolveStore(ctx, c.Store)
	if isFatal(err) {
		return err
	}
	c.StoreID, c.StoreErr = storeID, err

	c.SectionID, err = s.resolveOptional(ctx, kindSection, c.StoreID, c.Section)
	if isFatal(err) {
		return err
	}

	c.CategoryID, err = s.resolveOptional(ctx, kindCategory, "", c.Category)
	if isFatal(err) {
		return err
	}
	return nil
}

func (s *Session) resolveStore(ctx context.Context, ref Ref) (string, error) {
	if domain.IsIdentifier(ref.ID) {
		return ref.ID, nil
	}
	if ref.Name == "" {
		return "", nil
	}
	return s.memoized(ctx, kindStore, "", ref.Name)
}

// resolveOptional resolves a section or category. Misses and failed lookups
// both come back as nil; a failure is logged and dropped.
func (s *Session) resolveOptional(ctx context.Context, kind, scope string, ref Ref) (*string, error) {
	if domain.IsIdentifier(ref.ID) {
		id := ref.ID
		return &id, nil
	}
	if domain.IsUnsetReference(ref.Name) {
		return nil, nil
	}
	if kind == kindSection && scope == "" {
		return nil, nil
	}

	id, err := s.memoized(ctx, kind, scope, ref.Name)
	if isFatal(err) {
		return nil, err
	}
	if err != nil || id == "" {
		return nil, nil
	}
	return &id, nil
}

func (s *Session) memoized(ctx context.Context, kind, scope, name string) (string, error) {
	key := kind + "\x00" + scope + "\x00" + strings.ToLower(name)

	s.mu.Lock()
	res, ok := s.memo[key]
	s.mu.Unlock()
	if ok {
		return res.id, res.err
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// A flight that finished between the read above and this call has
		// already stored its result.
		s.mu.Lock()
		res, ok := s.memo[key]
		s.mu.Unlock()
		if ok {
			return res.id, res.err
		}

		id, err := s.r.fetch(ctx, kind, scope, name)
		if !isFatal(err) {
			s.mu.Lock()
			s.memo[key] = lookupResult{id: id, err: err}
			s.mu.Unlock()
		}
		return id, err
	})
	return v.(string), err
}

// fetch runs one rate-limited lookup with retries. A miss is ("", nil); a
// lookup that keeps failing is a *domain.ReferenceLookupError.
func (r *Resolver) fetch(ctx context.Context, kind, scope, name string) (string, error) {
	var id string
	err := retry.Do(ctx, func() error {
		if err := r.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPipelineTimeout, err)
		}
		var err error
		id, err = r.call(ctx, kind, scope, name)
		return err
	},
		retry.WithMaxAttempts(r.cfg.Retries+1),
		retry.WithBaseDelay(r.cfg.RetryDelay),
		retry.WithMaxDelay(time.Second),
		retry.WithRetryable(func(err error) bool {
			return ctx.Err() == nil &&
				!errors.Is(err, domain.ErrNotFound) &&
				!errors.Is(err, domain.ErrPipelineTimeout)
		}),
	)

	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, domain.ErrNotFound):
		return "", nil
	case ctx.Err() != nil:
		return "", ctx.Err()
	case errors.Is(err, domain.ErrPipelineTimeout):
		return "", err
	}

	lookupErr := &domain.ReferenceLookupError{Kind: kind, Name: name, Err: err}
	r.log.Warn(ctx, "Reference lookup failed",
		"kind", kind,
		"name", name,
		"error", err,
	)
	return "", lookupErr
}

func (r *Resolver) call(ctx context.Context, kind, scope, name string) (string, error) {
	switch kind {
	case kindStore:
		return r.lookup.FindStoreIDBySlug(ctx, name)
	case kindSection:
		return r.lookup.FindSectionID(ctx, scope, name)
	case kindCategory:
		return r.lookup.FindCategoryID(ctx, name)
	default:
		return "", fmt.Errorf("unknown reference kind %q", kind)
	}
}

// isFatal reports whether err from fetch ends the whole run. Anything other
// than a recorded lookup failure means the context is gone.
func isFatal(err error) bool {
	if err == nil {
		return false
	}
	var lookupErr *domain.ReferenceLookupError
	return !errors.As(err, &lookupErr)
}
