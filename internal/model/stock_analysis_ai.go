package model

import (
	"time"

	"gorm.io/datatypes"
)

// StockAnalysisAI is the append-only history table: one row per generation.
// Response holds the full validated analysis payload.
type StockAnalysisAI struct {
	ID           uint           `gorm:"primarykey"`
	Ticker       string         `gorm:"not null;index:idx_analysis_ticker"`
	Market       string         `gorm:"not null;index:idx_analysis_ticker"`
	Timeframe    string         `gorm:"not null"`
	AnalysisDate string         `gorm:"not null"`
	Prompt       string         `gorm:"not null"`
	Response     datatypes.JSON `gorm:"type:jsonb"`
	Direction    string         `gorm:"not null"`
	Probability  int            `gorm:"not null;default:0"`
	RiskLevel    string         `gorm:"not null"`
	Confidence   string         `gorm:"not null"`
	DemoMode     bool           `gorm:"not null;default:false"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (StockAnalysisAI) TableName() string {
	return "stock_analyses_ai"
}
