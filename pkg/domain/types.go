package domain

import (
	"strings"
	"time"
)

type Mood string

const (
	MoodHappy     Mood = "happy"
	MoodSad       Mood = "sad"
	MoodAnxious   Mood = "anxious"
	MoodStressed  Mood = "stressed"
	MoodNeutral   Mood = "neutral"
	MoodEnergetic Mood = "energetic"
	MoodTired     Mood = "tired"
	MoodExcited   Mood = "excited"
)

// Valid reports whether m is one of the moods a journal can be tagged with.
func (m Mood) Valid() bool {
	switch m {
	case MoodHappy, MoodSad, MoodAnxious, MoodStressed, MoodNeutral, MoodEnergetic, MoodTired, MoodExcited:
		return true
	}
	return false
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ParseSentiment normalizes a model-provided sentiment label.
func ParseSentiment(raw string) (Sentiment, bool) {
	s := Sentiment(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return s, true
	}
	return "", false
}

type Classification string

const (
	ClassificationSafe           Classification = "safe"
	ClassificationNeedsAttention Classification = "needs_attention"
	ClassificationHighRisk       Classification = "high_risk"
)

// AIInsights is the analysis summary stored on a journal entry.
type AIInsights struct {
	Sentiment       Sentiment `json:"sentiment"`
	Keywords        []string  `json:"keywords"`
	Recommendations []string  `json:"recommendations"`
	Summary         string    `json:"summary"`
	MoodInsights    string    `json:"moodInsights,omitempty"`
	RiskFlags       []string  `json:"riskFlags,omitempty"`
}

type JournalEntry struct {
	ID                         string          `json:"id"`
	UserID                     string          `json:"userId"`
	Content                    string          `json:"content"`
	Mood                       Mood            `json:"mood"`
	MoodRating                 int             `json:"moodRating"`
	AIInsights                 *AIInsights     `json:"aiInsights,omitempty"`
	IsAIAnalyzed               bool            `json:"isAIAnalyzed"`
	MentalHealthClassification *Classification `json:"mentalHealthClassification"`
	RiskScore                  *float64        `json:"riskScore"`
	CreatedAt                  time.Time       `json:"createdAt"`
	UpdatedAt                  time.Time       `json:"updatedAt"`
}

// JournalAnalysisPatch is the set of fields the workflow writes back to a journal.
type JournalAnalysisPatch struct {
	AIInsights                 AIInsights
	IsAIAnalyzed               bool
	MentalHealthClassification Classification
	RiskScore                  float64
	// UpdatedAt is the run's clock; stores use their own when it is zero.
	UpdatedAt                  time.Time
}

// Apply returns a copy of j with the patch applied.
func (p JournalAnalysisPatch) Apply(j JournalEntry, now time.Time) JournalEntry {
	insights := p.AIInsights
	classification := p.MentalHealthClassification
	score := p.RiskScore
	j.AIInsights = &insights
	j.IsAIAnalyzed = p.IsAIAnalyzed
	j.MentalHealthClassification = &classification
	j.RiskScore = &score
	j.UpdatedAt = now
	return j
}

// AnalysisResult is produced once per workflow run and never persisted as is.
type AnalysisResult struct {
	Sentiment       Sentiment `json:"sentiment"`
	Keywords        []string  `json:"keywords"`
	Recommendations []string  `json:"recommendations"`
	Summary         string    `json:"summary"`
	MoodInsights    string    `json:"moodInsights"`
	RiskScore       float64   `json:"riskScore"`
	RiskFlags       []string  `json:"riskFlags,omitempty"`
}

// Insights projects the result onto the journal's stored insight block.
func (r AnalysisResult) Insights() AIInsights {
	return AIInsights{
		Sentiment:       r.Sentiment,
		Keywords:        append([]string(nil), r.Keywords...),
		Recommendations: append([]string(nil), r.Recommendations...),
		Summary:         r.Summary,
		MoodInsights:    r.MoodInsights,
		RiskFlags:       append([]string(nil), r.RiskFlags...),
	}
}

const (
	MaxQuoteLength       = 500
	MaxExplanationLength = 300
)

// QuoteDraft is a selected or generated quote before it gets an owner and ID.
type QuoteDraft struct {
	Quote           string `json:"quote"`
	Explanation     string `json:"explanation"`
	Author          string `json:"author"`
	Category        string `json:"category"`
	IsAIGenerated   bool   `json:"isAiGenerated"`
	MoodContext     string `json:"moodContext"`
	ActivityContext string `json:"activityContext"`
}

type Quote struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	JournalID       string    `json:"journalId,omitempty"`
	Quote           string    `json:"quote"`
	Explanation     string    `json:"explanation"`
	Author          string    `json:"author"`
	Category        string    `json:"category"`
	IsAIGenerated   bool      `json:"isAiGenerated"`
	MoodContext     string    `json:"moodContext"`
	ActivityContext string    `json:"activityContext"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

type RecommendationType string

const (
	TypeActivity     RecommendationType = "activity"
	TypeMindfulness  RecommendationType = "mindfulness"
	TypeSocial       RecommendationType = "social"
	TypeProfessional RecommendationType = "professional"
	TypeHealth       RecommendationType = "health"
	TypeGeneral      RecommendationType = "general"
)

// ParseRecommendationType maps free text onto a known type.
func ParseRecommendationType(raw string) (RecommendationType, bool) {
	t := RecommendationType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case TypeActivity, TypeMindfulness, TypeSocial, TypeProfessional, TypeHealth, TypeGeneral:
		return t, true
	}
	return "", false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority maps free text onto a known priority.
func ParsePriority(raw string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	}
	return "", false
}

type RecommendationCategory string

const (
	CategoryImmediate RecommendationCategory = "immediate"
	CategoryShortTerm RecommendationCategory = "short_term"
	CategoryLongTerm  RecommendationCategory = "long_term"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// RecommendationDraft is a normalized recommendation before persistence.
type RecommendationDraft struct {
	Type          RecommendationType     `json:"type"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Priority      Priority               `json:"priority"`
	Category      RecommendationCategory `json:"category"`
	EstimatedTime int                    `json:"estimatedTime"`
	Tags          []string               `json:"tags"`
	Actionable    bool                   `json:"actionable"`
	AIGenerated   bool                   `json:"aiGenerated"`
}

// RecommendationContext records what the recommendation was derived from.
type RecommendationContext struct {
	Mood      Mood      `json:"mood"`
	Sentiment Sentiment `json:"sentiment"`
	Keywords  []string  `json:"keywords"`
	RiskScore float64   `json:"riskScore"`
}

type Recommendation struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"userId"`
	JournalID     string                 `json:"journalId"`
	Type          RecommendationType     `json:"type"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Priority      Priority               `json:"priority"`
	Category      RecommendationCategory `json:"category"`
	EstimatedTime int                    `json:"estimatedTime"`
	Tags          []string               `json:"tags"`
	Actionable    bool                   `json:"actionable"`
	AIGenerated   bool                   `json:"aiGenerated"`
	IsCompleted   bool                   `json:"isCompleted"`
	Context       RecommendationContext  `json:"context"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// CatalogItem is a curated recommendation seeded ahead of time.
// Theme is the category the mood mapping selects on.
type CatalogItem struct {
	ID            string             `json:"id"`
	Theme         string             `json:"theme"`
	Type          RecommendationType `json:"type"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Priority      Priority           `json:"priority"`
	EstimatedTime int                `json:"estimatedTime"`
	Tags          []string           `json:"tags"`
	IsActive      bool               `json:"isActive"`
}

// TruncateRunes returns at most n runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
