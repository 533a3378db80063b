package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	"melify/pkg/domain"
)

const migrateLockID int64 = 61534201

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&JournalModel{}, &QuoteModel{}, &RecommendationModel{}, &CatalogItemModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks database connectivity.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveJournal stores or replaces a journal entry.
func (s *GormStore) SaveJournal(ctx context.Context, j domain.JournalEntry) error {
	model := journalToModel(j)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "content", "mood", "mood_rating", "ai_insights",
			"is_ai_analyzed", "mental_health_classification", "risk_score", "updated_at",
		}),
	}).Create(&model).Error
}

// GetJournal looks up a journal owned by userID.
func (s *GormStore) GetJournal(ctx context.Context, id, userID string) (domain.JournalEntry, bool, error) {
	var model JournalModel
	if err := s.db.WithContext(ctx).First(&model, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.JournalEntry{}, false, nil
		}
		return domain.JournalEntry{}, false, err
	}
	return journalFromModel(model), true, nil
}

// UpdateJournalAnalysis writes the analysis fields of a journal.
func (s *GormStore) UpdateJournalAnalysis(ctx context.Context, id string, patch domain.JournalAnalysisPatch) error {
	insights, err := json.Marshal(patch.AIInsights)
	if err != nil {
		return fmt.Errorf("encode insights: %w", err)
	}
	updatedAt := patch.UpdatedAt.UTC()
	if patch.UpdatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	res := s.db.WithContext(ctx).Model(&JournalModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"ai_insights":                  datatypes.JSON(insights),
			"is_ai_analyzed":               patch.IsAIAnalyzed,
			"mental_health_classification": string(patch.MentalHealthClassification),
			"risk_score":                   patch.RiskScore,
			"updated_at":                   updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrJournalNotFound
	}
	return nil
}

// ListUnanalyzedJournals returns journals still waiting for analysis.
func (s *GormStore) ListUnanalyzedJournals(ctx context.Context, olderThan time.Time, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		return []domain.JournalEntry{}, nil
	}
	var models []JournalModel
	if err := s.db.WithContext(ctx).
		Where("is_ai_analyzed = ? AND created_at < ?", false, olderThan.UTC()).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.JournalEntry, 0, len(models))
	for _, m := range models {
		res = append(res, journalFromModel(m))
	}
	return res, nil
}

// InsertQuote records a quote.
func (s *GormStore) InsertQuote(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	model := quoteToModel(q)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Quote{}, err
	}
	return quoteFromModel(model), nil
}

// ListQuotesByJournal returns quotes for a journal in creation order.
func (s *GormStore) ListQuotesByJournal(ctx context.Context, journalID string) ([]domain.Quote, error) {
	var models []QuoteModel
	if err := s.db.WithContext(ctx).Where("journal_id = ?", journalID).Order("generated_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Quote, 0, len(models))
	for _, m := range models {
		res = append(res, quoteFromModel(m))
	}
	return res, nil
}

// InsertRecommendations records a batch of recommendations in one transaction.
func (s *GormStore) InsertRecommendations(ctx context.Context, recs []domain.Recommendation) ([]domain.Recommendation, error) {
	if len(recs) == 0 {
		return []domain.Recommendation{}, nil
	}
	models := make([]RecommendationModel, 0, len(recs))
	for _, r := range recs {
		models = append(models, recommendationToModel(r))
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&models, 50).Error
	}); err != nil {
		return nil, err
	}
	out := make([]domain.Recommendation, 0, len(models))
	for _, m := range models {
		out = append(out, recommendationFromModel(m))
	}
	return out, nil
}

// ListRecommendationsByJournal returns recommendations for a journal in creation order.
func (s *GormStore) ListRecommendationsByJournal(ctx context.Context, journalID string) ([]domain.Recommendation, error) {
	var models []RecommendationModel
	if err := s.db.WithContext(ctx).Where("journal_id = ?", journalID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Recommendation, 0, len(models))
	for _, m := range models {
		res = append(res, recommendationFromModel(m))
	}
	return res, nil
}

// FindCatalogItems selects active catalog items by theme.
func (s *GormStore) FindCatalogItems(ctx context.Context, themes []string, limit int) ([]domain.CatalogItem, error) {
	if limit <= 0 || len(themes) == 0 {
		return []domain.CatalogItem{}, nil
	}
	normalized := make([]string, 0, len(themes))
	for _, t := range themes {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			normalized = append(normalized, t)
		}
	}
	var models []CatalogItemModel
	if err := s.db.WithContext(ctx).
		Where("is_active = ? AND LOWER(theme) IN ?", true, normalized).
		Order("CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END").
		Order("title ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.CatalogItem, 0, len(models))
	for _, m := range models {
		res = append(res, catalogItemFromModel(m))
	}
	return res, nil
}

// SaveCatalogItems upserts curated catalog items by ID.
func (s *GormStore) SaveCatalogItems(ctx context.Context, items []domain.CatalogItem) error {
	if len(items) == 0 {
		return nil
	}
	models := make([]CatalogItemModel, 0, len(items))
	for _, it := range items {
		models = append(models, catalogItemToModel(it))
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"theme", "type", "title", "description", "priority", "estimated_time", "tags", "is_active"}),
	}).Create(&models).Error
}

func journalToModel(j domain.JournalEntry) JournalModel {
	var insights []byte
	if j.AIInsights != nil {
		insights, _ = json.Marshal(j.AIInsights)
	}
	var classification *string
	if j.MentalHealthClassification != nil {
		value := string(*j.MentalHealthClassification)
		classification = &value
	}
	return JournalModel{
		ID:                         j.ID,
		UserID:                     j.UserID,
		Content:                    j.Content,
		Mood:                       string(j.Mood),
		MoodRating:                 j.MoodRating,
		AIInsights:                 insights,
		IsAIAnalyzed:               j.IsAIAnalyzed,
		MentalHealthClassification: classification,
		RiskScore:                  j.RiskScore,
		CreatedAt:                  j.CreatedAt,
		UpdatedAt:                  j.UpdatedAt,
	}
}

func journalFromModel(m JournalModel) domain.JournalEntry {
	var insights *domain.AIInsights
	if len(m.AIInsights) > 0 && string(m.AIInsights) != "null" {
		var v domain.AIInsights
		if err := json.Unmarshal(m.AIInsights, &v); err == nil {
			insights = &v
		}
	}
	var classification *domain.Classification
	if m.MentalHealthClassification != nil && strings.TrimSpace(*m.MentalHealthClassification) != "" {
		value := domain.Classification(strings.TrimSpace(*m.MentalHealthClassification))
		classification = &value
	}
	return domain.JournalEntry{
		ID:                         m.ID,
		UserID:                     m.UserID,
		Content:                    m.Content,
		Mood:                       domain.Mood(m.Mood),
		MoodRating:                 m.MoodRating,
		AIInsights:                 insights,
		IsAIAnalyzed:               m.IsAIAnalyzed,
		MentalHealthClassification: classification,
		RiskScore:                  m.RiskScore,
		CreatedAt:                  m.CreatedAt,
		UpdatedAt:                  m.UpdatedAt,
	}
}

func quoteToModel(q domain.Quote) QuoteModel {
	var journalID *string
	if strings.TrimSpace(q.JournalID) != "" {
		value := strings.TrimSpace(q.JournalID)
		journalID = &value
	}
	return QuoteModel{
		ID:              q.ID,
		UserID:          q.UserID,
		JournalID:       journalID,
		Quote:           q.Quote,
		Explanation:     q.Explanation,
		Author:          q.Author,
		Category:        q.Category,
		IsAIGenerated:   q.IsAIGenerated,
		MoodContext:     q.MoodContext,
		ActivityContext: q.ActivityContext,
		GeneratedAt:     q.GeneratedAt,
	}
}

func quoteFromModel(m QuoteModel) domain.Quote {
	journalID := ""
	if m.JournalID != nil {
		journalID = *m.JournalID
	}
	return domain.Quote{
		ID:              m.ID,
		UserID:          m.UserID,
		JournalID:       journalID,
		Quote:           m.Quote,
		Explanation:     m.Explanation,
		Author:          m.Author,
		Category:        m.Category,
		IsAIGenerated:   m.IsAIGenerated,
		MoodContext:     m.MoodContext,
		ActivityContext: m.ActivityContext,
		GeneratedAt:     m.GeneratedAt,
	}
}

func recommendationToModel(r domain.Recommendation) RecommendationModel {
	tags := encodeTags(r.Tags)
	rawContext, _ := json.Marshal(r.Context)
	return RecommendationModel{
		ID:            r.ID,
		UserID:        r.UserID,
		JournalID:     r.JournalID,
		Type:          string(r.Type),
		Title:         r.Title,
		Description:   r.Description,
		Priority:      string(r.Priority),
		Category:      string(r.Category),
		EstimatedTime: r.EstimatedTime,
		Tags:          tags,
		Actionable:    r.Actionable,
		AIGenerated:   r.AIGenerated,
		IsCompleted:   r.IsCompleted,
		Context:       rawContext,
		CreatedAt:     r.CreatedAt,
	}
}

func recommendationFromModel(m RecommendationModel) domain.Recommendation {
	var rc domain.RecommendationContext
	if len(m.Context) > 0 {
		_ = json.Unmarshal(m.Context, &rc)
	}
	return domain.Recommendation{
		ID:            m.ID,
		UserID:        m.UserID,
		JournalID:     m.JournalID,
		Type:          domain.RecommendationType(m.Type),
		Title:         m.Title,
		Description:   m.Description,
		Priority:      domain.Priority(m.Priority),
		Category:      domain.RecommendationCategory(m.Category),
		EstimatedTime: m.EstimatedTime,
		Tags:          decodeTags(m.Tags),
		Actionable:    m.Actionable,
		AIGenerated:   m.AIGenerated,
		IsCompleted:   m.IsCompleted,
		Context:       rc,
		CreatedAt:     m.CreatedAt,
	}
}

func catalogItemToModel(it domain.CatalogItem) CatalogItemModel {
	return CatalogItemModel{
		ID:            it.ID,
		Theme:         it.Theme,
		Type:          string(it.Type),
		Title:         it.Title,
		Description:   it.Description,
		Priority:      string(it.Priority),
		EstimatedTime: it.EstimatedTime,
		Tags:          encodeTags(it.Tags),
		IsActive:      it.IsActive,
	}
}

func catalogItemFromModel(m CatalogItemModel) domain.CatalogItem {
	return domain.CatalogItem{
		ID:            m.ID,
		Theme:         m.Theme,
		Type:          domain.RecommendationType(m.Type),
		Title:         m.Title,
		Description:   m.Description,
		Priority:      domain.Priority(m.Priority),
		EstimatedTime: m.EstimatedTime,
		Tags:          decodeTags(m.Tags),
		IsActive:      m.IsActive,
	}
}

func encodeTags(tags []string) []byte {
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)
	return raw
}

func decodeTags(raw []byte) []string {
	tags := []string{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &tags)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags
}
