package store

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"melify/pkg/domain"
)

// MemoryStore keeps everything in-process. It backs tests and the CLI dry-run mode.
type MemoryStore struct {
	mu       sync.RWMutex
	journals map[string]domain.JournalEntry
	quotes   []domain.Quote
	recs     []domain.Recommendation
	catalog  map[string]domain.CatalogItem
	now      func() time.Time
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		journals: make(map[string]domain.JournalEntry),
		catalog:  make(map[string]domain.CatalogItem),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) SaveJournal(_ context.Context, j domain.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journals[j.ID] = cloneJournal(j)
	return nil
}

func (m *MemoryStore) GetJournal(_ context.Context, id, userID string) (domain.JournalEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.journals[id]
	if !ok || j.UserID != userID {
		return domain.JournalEntry{}, false, nil
	}
	return cloneJournal(j), true, nil
}

func (m *MemoryStore) UpdateJournalAnalysis(_ context.Context, id string, patch domain.JournalAnalysisPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.journals[id]
	if !ok {
		return ErrJournalNotFound
	}
	now := patch.UpdatedAt
	if now.IsZero() {
		now = m.now()
	}
	m.journals[id] = cloneJournal(patch.Apply(j, now))
	return nil
}

func (m *MemoryStore) ListUnanalyzedJournals(_ context.Context, olderThan time.Time, limit int) ([]domain.JournalEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.JournalEntry, 0)
	for _, j := range m.journals {
		if !j.IsAIAnalyzed && j.CreatedAt.Before(olderThan) {
			res = append(res, cloneJournal(j))
		}
	}
	sort.Slice(res, func(a, b int) bool { return res[a].CreatedAt.Before(res[b].CreatedAt) })
	if limit >= 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *MemoryStore) InsertQuote(_ context.Context, q domain.Quote) (domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes = append(m.quotes, q)
	return q, nil
}

func (m *MemoryStore) ListQuotesByJournal(_ context.Context, journalID string) ([]domain.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Quote, 0)
	for _, q := range m.quotes {
		if q.JournalID == journalID {
			res = append(res, q)
		}
	}
	return res, nil
}

func (m *MemoryStore) InsertRecommendations(_ context.Context, recs []domain.Recommendation) ([]domain.Recommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Recommendation, 0, len(recs))
	for _, r := range recs {
		r.Tags = slices.Clone(r.Tags)
		r.Context.Keywords = slices.Clone(r.Context.Keywords)
		m.recs = append(m.recs, r)
		out = append(out, r)
	}
	return out, nil
}

func (m *MemoryStore) ListRecommendationsByJournal(_ context.Context, journalID string) ([]domain.Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Recommendation, 0)
	for _, r := range m.recs {
		if r.JournalID == journalID {
			res = append(res, r)
		}
	}
	return res, nil
}

func (m *MemoryStore) FindCatalogItems(_ context.Context, themes []string, limit int) ([]domain.CatalogItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[string]struct{}, len(themes))
	for _, t := range themes {
		wanted[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	res := make([]domain.CatalogItem, 0)
	for _, it := range m.catalog {
		if _, ok := wanted[strings.ToLower(it.Theme)]; ok && it.IsActive {
			res = append(res, it)
		}
	}
	sort.Slice(res, func(a, b int) bool {
		ra, rb := priorityRank(res[a].Priority), priorityRank(res[b].Priority)
		if ra != rb {
			return ra < rb
		}
		return res[a].Title < res[b].Title
	})
	if limit <= 0 {
		return []domain.CatalogItem{}, nil
	}
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *MemoryStore) SaveCatalogItems(_ context.Context, items []domain.CatalogItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		it.Tags = slices.Clone(it.Tags)
		m.catalog[it.ID] = it
	}
	return nil
}

func cloneJournal(j domain.JournalEntry) domain.JournalEntry {
	if j.AIInsights != nil {
		v := *j.AIInsights
		v.Keywords = slices.Clone(v.Keywords)
		v.Recommendations = slices.Clone(v.Recommendations)
		v.RiskFlags = slices.Clone(v.RiskFlags)
		j.AIInsights = &v
	}
	if j.MentalHealthClassification != nil {
		v := *j.MentalHealthClassification
		j.MentalHealthClassification = &v
	}
	if j.RiskScore != nil {
		v := *j.RiskScore
		j.RiskScore = &v
	}
	return j
}
