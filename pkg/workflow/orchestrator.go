// Package workflow runs the journal analysis pipeline end to end.
package workflow

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"melify/pkg/domain"
	"melify/pkg/quote"
	"melify/pkg/recommend"
	"melify/pkg/risk"
)

// Analyzer produces an analysis and never fails.
type Analyzer interface {
	Analyze(ctx context.Context, content string, mood domain.Mood, moodRating int) domain.AnalysisResult
}

type JournalStore interface {
	GetJournal(ctx context.Context, id, userID string) (domain.JournalEntry, bool, error)
	UpdateJournalAnalysis(ctx context.Context, id string, patch domain.JournalAnalysisPatch) error
}

type QuoteStore interface {
	InsertQuote(ctx context.Context, q domain.Quote) (domain.Quote, error)
}

type RecommendationStore interface {
	InsertRecommendations(ctx context.Context, recs []domain.Recommendation) ([]domain.Recommendation, error)
}

// Result is everything a run derived. On persistence failure it holds the
// values that were computed, alongside the error.
type Result struct {
	Journal         domain.JournalEntry     `json:"journal"`
	Analysis        domain.AnalysisResult   `json:"analysis"`
	Quote           domain.Quote            `json:"quote"`
	Recommendations []domain.Recommendation `json:"recommendations"`
}

type Options struct {
	Journals        JournalStore
	Quotes          QuoteStore
	Recommendations RecommendationStore
	Analyzer        Analyzer
	QuoteSelector   quote.Selector
	RecSelector     recommend.Selector
	Logger          *slog.Logger
	Now             func() time.Time
	NewID           func() string
}

// Orchestrator wires the analyzer, selectors and stores for one deployment.
type Orchestrator struct {
	journals JournalStore
	quotes   QuoteStore
	recs     RecommendationStore
	analyzer Analyzer
	quoteSel quote.Selector
	recSel   recommend.Selector
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		journals: opts.Journals,
		quotes:   opts.Quotes,
		recs:     opts.Recommendations,
		analyzer: opts.Analyzer,
		quoteSel: opts.QuoteSelector,
		recSel:   opts.RecSelector,
		logger:   opts.Logger,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.now == nil {
		o.now = func() time.Time { return time.Now().UTC() }
	}
	if o.newID == nil {
		o.newID = uuid.NewString
	}
	return o
}

// Run analyzes one journal and persists the journal update, quote and
// recommendations. ErrNotFound is the only early exit.
func (o *Orchestrator) Run(ctx context.Context, journalID, userID string) (*Result, error) {
	journal, ok, err := o.journals.GetJournal(ctx, journalID, userID)
	if err != nil {
		return nil, &PersistenceError{Failures: []StepError{{Step: StepLoadJournal, Err: err}}}
	}
	if !ok {
		return nil, ErrNotFound
	}
	logger := o.logger.With("journal_id", journalID, "user_id", userID)

	analysis := o.analyzer.Analyze(ctx, journal.Content, journal.Mood, journal.MoodRating)
	classification := risk.Classify(analysis.RiskScore)

	var (
		quoteDraft domain.QuoteDraft
		recDrafts  []domain.RecommendationDraft
	)
	// Selectors degrade to fallbacks instead of failing, so the group only
	// joins the two calls and Wait is always nil.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		quoteDraft = o.quoteSel.Select(gctx, journal.Content, analysis, journal.Mood)
		return nil
	})
	g.Go(func() error {
		recDrafts = o.recSel.Select(gctx, journal.Content, analysis, journal.Mood, journal.MoodRating)
		return nil
	})
	_ = g.Wait()

	now := o.now()
	patch := domain.JournalAnalysisPatch{
		AIInsights:                 analysis.Insights(),
		IsAIAnalyzed:               true,
		MentalHealthClassification: classification,
		RiskScore:                  analysis.RiskScore,
		UpdatedAt:                  now,
	}
	result := &Result{
		Journal:         patch.Apply(journal, now),
		Analysis:        analysis,
		Quote:           o.quoteRecord(quoteDraft, journal, now),
		Recommendations: o.recommendationRecords(recDrafts, journal, analysis, now),
	}

	var failures []StepError
	if err := o.journals.UpdateJournalAnalysis(ctx, journal.ID, patch); err != nil {
		failures = append(failures, StepError{Step: StepUpdateJournal, Err: err})
	}
	if saved, err := o.quotes.InsertQuote(ctx, result.Quote); err != nil {
		failures = append(failures, StepError{Step: StepInsertQuote, Err: err})
	} else {
		result.Quote = saved
	}
	if len(result.Recommendations) > 0 {
		if saved, err := o.recs.InsertRecommendations(ctx, result.Recommendations); err != nil {
			failures = append(failures, StepError{Step: StepInsertRecommendations, Err: err})
		} else {
			result.Recommendations = saved
		}
	}

	if len(failures) > 0 {
		perr := &PersistenceError{Failures: failures}
		logger.Error("journal analysis partially persisted", "failed_steps", perr.Steps(), "error", perr)
		return result, perr
	}
	logger.Info("journal analyzed",
		"classification", classification,
		"risk_score", analysis.RiskScore,
		"recommendations", len(result.Recommendations),
		"risk_flags", analysis.RiskFlags,
	)
	return result, nil
}

func (o *Orchestrator) quoteRecord(d domain.QuoteDraft, j domain.JournalEntry, now time.Time) domain.Quote {
	return domain.Quote{
		ID:              o.newID(),
		UserID:          j.UserID,
		JournalID:       j.ID,
		Quote:           d.Quote,
		Explanation:     d.Explanation,
		Author:          d.Author,
		Category:        d.Category,
		IsAIGenerated:   d.IsAIGenerated,
		MoodContext:     d.MoodContext,
		ActivityContext: d.ActivityContext,
		GeneratedAt:     now,
	}
}

func (o *Orchestrator) recommendationRecords(drafts []domain.RecommendationDraft, j domain.JournalEntry, a domain.AnalysisResult, now time.Time) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, domain.Recommendation{
			ID:            o.newID(),
			UserID:        j.UserID,
			JournalID:     j.ID,
			Type:          d.Type,
			Title:         d.Title,
			Description:   d.Description,
			Priority:      d.Priority,
			Category:      d.Category,
			EstimatedTime: d.EstimatedTime,
			Tags:          slices.Clone(d.Tags),
			Actionable:    d.Actionable,
			AIGenerated:   d.AIGenerated,
			Context: domain.RecommendationContext{
				Mood:      j.Mood,
				Sentiment: a.Sentiment,
				Keywords:  slices.Clone(a.Keywords),
				RiskScore: a.RiskScore,
			},
			CreatedAt: now,
		})
	}
	return out
}
