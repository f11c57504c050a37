package dto

import "fmt"

// StockAnalysis is the validated, canonical analysis record. Instances only
// enter the system through the validator or the demo generator, so every
// enum field holds one of its listed values and probability/rsi sit in
// [0,100].
type StockAnalysis struct {
	Ticker       string     `json:"ticker"`
	Market       string     `json:"market"`
	Timeframe    string     `json:"timeframe"`
	AnalysisDate string     `json:"analysis_date"`
	Prediction   Prediction `json:"prediction"`
	Metrics      Metrics    `json:"metrics"`
	RiskLevel    string     `json:"risk_level"`
	Summary      string     `json:"summary"`
	KeyFactors   []string   `json:"key_factors"`
	Confidence   string     `json:"confidence"`
}

type Prediction struct {
	Direction       string  `json:"direction"`
	Probability     int     `json:"probability"`
	PriceTargetLow  float64 `json:"price_target_low"`
	PriceTargetHigh float64 `json:"price_target_high"`
	CurrentPrice    float64 `json:"current_price"`
}

type Metrics struct {
	RSI         int     `json:"rsi"`
	MACD        string  `json:"macd"`
	PERatio     float64 `json:"pe_ratio"`
	VolumeTrend string  `json:"volume_trend"`
}

// AnalysisCacheKey builds the composite market:ticker:timeframe key that
// identifies one cacheable analysis slot.
func AnalysisCacheKey(market, ticker, timeframe string) string {
	return fmt.Sprintf("%s:%s:%s", market, ticker, timeframe)
}

// AnalysisCachePrefix is used for bulk invalidation across timeframes.
func AnalysisCachePrefix(market, ticker string) string {
	return fmt.Sprintf("%s:%s:", market, ticker)
}

type AnalyzeStockRequest struct {
	Market    string `json:"market" validate:"required,oneof=BIST US"`
	Ticker    string `json:"ticker" validate:"required,alphanum,uppercase,max=10"`
	Timeframe string `json:"timeframe" validate:"required,oneof=1M 3M 6M"`
}

type BulkAnalyzeStockRequest struct {
	Items []AnalyzeStockRequest `json:"items" validate:"required,min=1,max=10,dive"`
}

// AnalysisResult carries the analysis plus its provenance: served from cache,
// freshly generated, or synthesized in demo mode.
type AnalysisResult struct {
	Analysis StockAnalysis `json:"analysis"`
	Cached   bool          `json:"cached"`
	DemoMode bool          `json:"demo_mode"`
}

// BulkAnalysisItemResult is the per-item outcome of the bulk operation. One
// item failing never aborts the batch.
type BulkAnalysisItemResult struct {
	Market    string          `json:"market"`
	Ticker    string          `json:"ticker"`
	Timeframe string          `json:"timeframe"`
	Result    *AnalysisResult `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type AnalysisStats struct {
	TotalAnalyses      int64 `json:"total_analyses"`
	TotalCacheEntries  int64 `json:"total_cache_entries"`
	ExpiredNotSwept    int64 `json:"expired_not_swept"`
	DemoMode           bool  `json:"demo_mode"`
	DatabaseConfigured bool  `json:"database_configured"`
}
