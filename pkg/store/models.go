package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type JournalModel struct {
	ID                         string         `gorm:"primaryKey"`
	UserID                     string         `gorm:"not null;index"`
	Content                    string         `gorm:"type:text;not null"`
	Mood                       string         `gorm:"not null"`
	MoodRating                 int            `gorm:"not null"`
	AIInsights                 datatypes.JSON `gorm:"type:jsonb"`
	IsAIAnalyzed               bool           `gorm:"not null;default:false;index"`
	MentalHealthClassification *string
	RiskScore                  *float64
	CreatedAt                  time.Time `gorm:"not null;index"`
	UpdatedAt                  time.Time `gorm:"not null"`
}

type QuoteModel struct {
	ID              string  `gorm:"primaryKey"`
	UserID          string  `gorm:"not null;index"`
	JournalID       *string `gorm:"index"`
	Quote           string  `gorm:"size:500;not null"`
	Explanation     string  `gorm:"size:300"`
	Author          string
	Category        string
	IsAIGenerated   bool
	MoodContext     string
	ActivityContext string
	GeneratedAt     time.Time `gorm:"not null;index"`
}

type RecommendationModel struct {
	ID            string         `gorm:"primaryKey"`
	UserID        string         `gorm:"not null;index"`
	JournalID     string         `gorm:"not null;index"`
	Type          string         `gorm:"not null"`
	Title         string         `gorm:"size:200;not null"`
	Description   string         `gorm:"size:1000"`
	Priority      string         `gorm:"not null"`
	Category      string         `gorm:"not null"`
	EstimatedTime int            `gorm:"not null"`
	Tags          datatypes.JSON `gorm:"type:jsonb"`
	Actionable    bool
	AIGenerated   bool
	IsCompleted   bool
	Context       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"not null;index"`
}

type CatalogItemModel struct {
	ID            string         `gorm:"primaryKey"`
	Theme         string         `gorm:"not null;index"`
	Type          string         `gorm:"not null"`
	Title         string         `gorm:"size:200;not null"`
	Description   string         `gorm:"size:1000"`
	Priority      string         `gorm:"not null"`
	EstimatedTime int            `gorm:"not null"`
	Tags          datatypes.JSON `gorm:"type:jsonb"`
	IsActive      bool           `gorm:"not null;default:true;index"`
}
