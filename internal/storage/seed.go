package storage

import "github.com/grachmannico95/shopease-be/internal/domain"

// SeedDemo fills an empty store with the demo catalog the upload templates
// refer to, so a fresh in-memory server accepts the template files as-is.
func SeedDemo(s *MemoryStore) domain.Store {
	store := s.AddStore("Demo Store", "demo-store")

	for _, name := range []string{"Jewelry", "Kids", "Electronics"} {
		s.AddSection(store.ID, name)
	}
	for _, name := range []string{"Jewelry", "Shoes", "Electronics", "Groceries"} {
		s.AddCategory(name)
	}

	questions := []struct {
		text string
		kind domain.QuestionType
	}{
		{"How would you rate your visit today?", domain.QuestionTypeRating},
		{"How easy was it to find what you needed?", domain.QuestionTypeRating},
		{"Anything we could do better?", domain.QuestionTypeText},
	}
	for i, q := range questions {
		s.AddFeedbackQuestion(domain.FeedbackQuestion{
			StoreID:      store.ID,
			Question:     q.text,
			QuestionType: q.kind,
			OrderIndex:   i + 1,
			IsActive:     true,
		})
	}
	return store
}
