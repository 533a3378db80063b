package store

import (
	"context"
	"errors"
	"time"

	"melify/pkg/domain"
)

// ErrJournalNotFound is returned by updates that target a missing journal.
var ErrJournalNotFound = errors.New("journal not found")

// JournalStore persists journal entries and their analysis fields.
type JournalStore interface {
	SaveJournal(ctx context.Context, j domain.JournalEntry) error
	GetJournal(ctx context.Context, id, userID string) (domain.JournalEntry, bool, error)
	UpdateJournalAnalysis(ctx context.Context, id string, patch domain.JournalAnalysisPatch) error
	// ListUnanalyzedJournals returns entries created before olderThan, oldest first.
	ListUnanalyzedJournals(ctx context.Context, olderThan time.Time, limit int) ([]domain.JournalEntry, error)
}

// QuoteStore persists quotes shown for journal entries.
type QuoteStore interface {
	InsertQuote(ctx context.Context, q domain.Quote) (domain.Quote, error)
	ListQuotesByJournal(ctx context.Context, journalID string) ([]domain.Quote, error)
}

// RecommendationStore persists recommendations and the curated catalog.
type RecommendationStore interface {
	InsertRecommendations(ctx context.Context, recs []domain.Recommendation) ([]domain.Recommendation, error)
	ListRecommendationsByJournal(ctx context.Context, journalID string) ([]domain.Recommendation, error)
	// FindCatalogItems returns up to limit active items whose theme is in themes,
	// high priority first.
	FindCatalogItems(ctx context.Context, themes []string, limit int) ([]domain.CatalogItem, error)
	SaveCatalogItems(ctx context.Context, items []domain.CatalogItem) error
}

// Store is the full persistence surface of the analysis service.
type Store interface {
	JournalStore
	QuoteStore
	RecommendationStore
}

func priorityRank(p domain.Priority) int {
	switch p {
	case domain.PriorityHigh:
		return 0
	case domain.PriorityMedium:
		return 1
	default:
		return 2
	}
}
