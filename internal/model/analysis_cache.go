package model

import "time"

// AnalysisCacheEntry is the live cache index: at most one row per cache key,
// pointing at the latest history row. A new write supersedes the previous
// entry for the same key (upsert, never append).
type AnalysisCacheEntry struct {
	ID                uint      `gorm:"primarykey"`
	CacheKey          string    `gorm:"not null;uniqueIndex"`
	StockAnalysisAIID uint      `gorm:"not null"`
	ExpiresAt         time.Time `gorm:"not null;index"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`

	StockAnalysisAI *StockAnalysisAI `gorm:"foreignKey:StockAnalysisAIID"`
}

func (AnalysisCacheEntry) TableName() string {
	return "analysis_cache_entries"
}
