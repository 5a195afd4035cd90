package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/shopspring/decimal"
)

// MemoryStore is a domain.Repository held in process memory. It enforces the
// same references a database would, so a batch naming an unknown store is
// rejected as a whole.
type MemoryStore struct {
	stores     []domain.Store
	sections   []domain.Section
	categories []domain.Category
	offers     []domain.Offer
	sales      []domain.Sale
	questions  []domain.FeedbackQuestion
	responses  []domain.FeedbackResponse
	scans      []domain.QRScan
	scanIDs    map[string]bool
	mu         sync.RWMutex
	now        func() time.Time
}

var _ domain.Repository = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scanIDs: make(map[string]bool),
		now:     time.Now,
	}
}

func (s *MemoryStore) AddStore(name, slug string) domain.Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := domain.Store{ID: domain.NewID(), Name: name, Slug: slug, CreatedAt: s.now()}
	s.stores = append(s.stores, store)
	return store
}

func (s *MemoryStore) AddSection(storeID, name string) domain.Section {
	s.mu.Lock()
	defer s.mu.Unlock()

	section := domain.Section{ID: domain.NewID(), StoreID: storeID, Name: name, CreatedAt: s.now()}
	s.sections = append(s.sections, section)
	return section
}

func (s *MemoryStore) AddCategory(name string) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := domain.Category{ID: domain.NewID(), Name: name}
	s.categories = append(s.categories, category)
	return category
}

func (s *MemoryStore) AddFeedbackQuestion(q domain.FeedbackQuestion) domain.FeedbackQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == "" {
		q.ID = domain.NewID()
	}
	s.questions = append(s.questions, q)
	return q
}

// matchName returns the index of the first exact (case-insensitive) match,
// else the first partial match, else -1.
func matchName(n int, name func(i int) string, want string) int {
	want = strings.ToLower(strings.TrimSpace(want))
	if want == "" {
		return -1
	}

	partial := -1
	for i := 0; i < n; i++ {
		got := strings.ToLower(name(i))
		if got == want {
			return i
		}
		if partial < 0 && strings.Contains(got, want) {
			partial = i
		}
	}
	return partial
}

func (s *MemoryStore) FindStoreIDBySlug(ctx context.Context, slug string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := matchName(len(s.stores), func(i int) string { return s.stores[i].Slug }, slug)
	if i < 0 {
		return "", domain.ErrNotFound
	}
	return s.stores[i].ID, nil
}

func (s *MemoryStore) FindSectionID(ctx context.Context, storeID, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var scoped []domain.Section
	for _, sec := range s.sections {
		if sec.StoreID == storeID {
			scoped = append(scoped, sec)
		}
	}

	i := matchName(len(scoped), func(i int) string { return scoped[i].Name }, name)
	if i < 0 {
		return "", domain.ErrNotFound
	}
	return scoped[i].ID, nil
}

func (s *MemoryStore) FindCategoryID(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := matchName(len(s.categories), func(i int) string { return s.categories[i].Name }, name)
	if i < 0 {
		return "", domain.ErrNotFound
	}
	return s.categories[i].ID, nil
}

func (s *MemoryStore) ListOffers(ctx context.Context, filter domain.OfferFilter) ([]domain.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Offer{}
	for i := len(s.offers) - 1; i >= 0; i-- {
		o := s.offers[i]
		if filter.StoreID != "" && o.StoreID != filter.StoreID {
			continue
		}
		if filter.SectionID != "" && (o.SectionID == nil || *o.SectionID != filter.SectionID) {
			continue
		}
		if filter.CategoryID != "" && (o.CategoryID == nil || *o.CategoryID != filter.CategoryID) {
			continue
		}
		result = append(result, o)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

func (s *MemoryStore) GetOffer(ctx context.Context, id string) (*domain.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.offerIndex(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	offer := s.offers[i]
	return &offer, nil
}

func (s *MemoryStore) InsertOffers(ctx context.Context, offers []domain.Offer) ([]domain.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range offers {
		if err := s.checkOfferRefs(o); err != nil {
			return nil, err
		}
	}

	now := s.now()
	inserted := make([]domain.Offer, len(offers))
	for i, o := range offers {
		o.ID = domain.NewID()
		o.CreatedAt = now
		inserted[i] = o
	}
	s.offers = append(s.offers, inserted...)
	return inserted, nil
}

func (s *MemoryStore) UpdateOffer(ctx context.Context, id string, patch domain.OfferPatch) (*domain.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.offerIndex(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}

	updated := s.offers[i]
	patch.Apply(&updated)
	if err := s.checkOfferRefs(updated); err != nil {
		return nil, err
	}
	s.offers[i] = updated
	return &updated, nil
}

func (s *MemoryStore) DeleteOffer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.offerIndex(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	s.offers = append(s.offers[:i], s.offers[i+1:]...)
	return nil
}

func (s *MemoryStore) DeactivateExpiredOffers(ctx context.Context, today domain.Date) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for i := range s.offers {
		o := &s.offers[i]
		if o.IsActive && o.ValidUntil != nil && o.ValidUntil.Before(today.Time) {
			o.IsActive = false
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) InsertSales(ctx context.Context, sales []domain.Sale) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sale := range sales {
		if !s.hasStore(sale.StoreID) {
			return 0, fmt.Errorf("sales: store %s does not exist", sale.StoreID)
		}
	}

	now := s.now()
	for _, sale := range sales {
		sale.ID = domain.NewID()
		sale.CreatedAt = now
		s.sales = append(s.sales, sale)
	}
	return len(sales), nil
}

func (s *MemoryStore) SalesTotals(ctx context.Context, storeID string, r domain.DateRange) (domain.SalesTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := domain.SalesTotals{TotalAmount: decimal.Zero}
	for _, sale := range s.sales {
		if sale.StoreID != storeID || !r.Contains(sale.SaleDate.Time) {
			continue
		}
		totals.Customers += sale.CustomerCount
		totals.TotalAmount = totals.TotalAmount.Add(sale.TotalAmount)
	}
	return totals, nil
}

func (s *MemoryStore) ListStores(ctx context.Context, search string) ([]domain.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search = strings.ToLower(strings.TrimSpace(search))
	result := []domain.Store{}
	for _, store := range s.stores {
		if search == "" ||
			strings.Contains(strings.ToLower(store.Name), search) ||
			strings.Contains(strings.ToLower(store.Slug), search) {
			result = append(result, store)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *MemoryStore) ListSections(ctx context.Context, storeID string) ([]domain.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Section{}
	for _, sec := range s.sections {
		if sec.StoreID == storeID {
			result = append(result, sec)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *MemoryStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := append([]domain.Category{}, s.categories...)
	sort.SliceStable(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *MemoryStore) ListFeedbackQuestions(ctx context.Context, storeID string) ([]domain.FeedbackQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.FeedbackQuestion{}
	for _, q := range s.questions {
		if q.StoreID == storeID && q.IsActive {
			result = append(result, q)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].OrderIndex < result[j].OrderIndex })
	return result, nil
}

func (s *MemoryStore) InsertFeedbackResponses(ctx context.Context, responses []domain.FeedbackResponse) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range responses {
		if !s.hasStore(r.StoreID) {
			return 0, fmt.Errorf("feedback_responses: store %s does not exist", r.StoreID)
		}
		if !s.hasQuestion(r.QuestionID) {
			return 0, fmt.Errorf("feedback_responses: question %s does not exist", r.QuestionID)
		}
	}

	now := s.now()
	for _, r := range responses {
		r.ID = domain.NewID()
		r.CreatedAt = now
		s.responses = append(s.responses, r)
	}
	return len(responses), nil
}

func (s *MemoryStore) FeedbackSummary(ctx context.Context, storeID string, r domain.DateRange) ([]domain.FeedbackSummaryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.FeedbackSummaryItem{}
	for _, q := range s.questions {
		if q.StoreID != storeID {
			continue
		}

		item := domain.FeedbackSummaryItem{QuestionID: q.ID, Question: q.Question}
		var ratingSum, ratings int
		for _, resp := range s.responses {
			if resp.QuestionID != q.ID || !r.Contains(resp.CreatedAt) {
				continue
			}
			item.Responses++
			if resp.Rating != nil {
				ratingSum += *resp.Rating
				ratings++
			}
		}
		if ratings > 0 {
			avg := float64(ratingSum) / float64(ratings)
			item.AverageRating = &avg
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *MemoryStore) RecordScan(ctx context.Context, scan domain.QRScan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanIDs[scan.ID] {
		return nil
	}
	if !s.hasStore(scan.StoreID) {
		return fmt.Errorf("qr_scans: store %s does not exist", scan.StoreID)
	}
	if scan.ScannedAt.IsZero() {
		scan.ScannedAt = s.now()
	}

	s.scans = append(s.scans, scan)
	s.scanIDs[scan.ID] = true
	return nil
}

func (s *MemoryStore) CountScans(ctx context.Context, storeID string, r domain.DateRange) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, scan := range s.scans {
		if scan.StoreID == storeID && r.Contains(scan.ScannedAt) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) DailyScans(ctx context.Context, storeID string, r domain.DateRange) ([]domain.DailyScanCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.Date]int)
	for _, scan := range s.scans {
		if scan.StoreID == storeID && r.Contains(scan.ScannedAt) {
			counts[domain.DateOf(scan.ScannedAt.UTC())]++
		}
	}

	result := make([]domain.DailyScanCount, 0, len(counts))
	for day, n := range counts {
		result = append(result, domain.DailyScanCount{Day: day, Scans: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Day.Before(result[j].Day.Time) })
	return result, nil
}

func (s *MemoryStore) offerIndex(id string) int {
	for i, o := range s.offers {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) checkOfferRefs(o domain.Offer) error {
	if !s.hasStore(o.StoreID) {
		return fmt.Errorf("offers: store %s does not exist", o.StoreID)
	}
	if o.SectionID != nil && !s.hasSection(*o.SectionID) {
		return fmt.Errorf("offers: section %s does not exist", *o.SectionID)
	}
	if o.CategoryID != nil && !s.hasCategory(*o.CategoryID) {
		return fmt.Errorf("offers: category %s does not exist", *o.CategoryID)
	}
	return nil
}

func (s *MemoryStore) hasStore(id string) bool {
	for _, store := range s.stores {
		if store.ID == id {
			return true
		}
	}
	return false
}

func (s *MemoryStore) hasSection(id string) bool {
	for _, sec := range s.sections {
		if sec.ID == id {
			return true
		}
	}
	return false
}

func (s *MemoryStore) hasCategory(id string) bool {
	for _, c := range s.categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (s *MemoryStore) hasQuestion(id string) bool {
	for _, q := range s.questions {
		if q.ID == id {
			return true
		}
	}
	return false
}
