package service

import (
	"testing"

	"golang-finance/internal/dto"
	"golang-finance/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertValidAnalysis checks the invariants every analysis record must hold.
func assertValidAnalysis(t *testing.T, analysis *dto.StockAnalysis) {
	t.Helper()
	require.NotNil(t, analysis)
	assert.True(t, utils.ContainsString(dto.GetDirectionList(), analysis.Prediction.Direction))
	assert.True(t, utils.ContainsString(dto.GetMACDList(), analysis.Metrics.MACD))
	assert.True(t, utils.ContainsString(dto.GetVolumeTrendList(), analysis.Metrics.VolumeTrend))
	assert.True(t, utils.ContainsString(dto.GetLevelList(), analysis.RiskLevel))
	assert.True(t, utils.ContainsString(dto.GetLevelList(), analysis.Confidence))
	assert.GreaterOrEqual(t, analysis.Prediction.Probability, 0)
	assert.LessOrEqual(t, analysis.Prediction.Probability, 100)
	assert.GreaterOrEqual(t, analysis.Metrics.RSI, 0)
	assert.LessOrEqual(t, analysis.Metrics.RSI, 100)
	assert.NotEmpty(t, analysis.Summary)
	assert.NotEmpty(t, analysis.KeyFactors)
}

func TestGenerateMockAnalysis_KnownTicker(t *testing.T) {
	analysis := GenerateMockAnalysis("AAPL", dto.MarketUS, dto.Timeframe3M)

	assertValidAnalysis(t, analysis)
	assert.Equal(t, "AAPL", analysis.Ticker)
	assert.Equal(t, dto.MarketUS, analysis.Market)
	assert.Equal(t, dto.Timeframe3M, analysis.Timeframe)
	// Baseline tickers keep their curated figures.
	assert.Equal(t, dto.DirectionBullish, analysis.Prediction.Direction)
	assert.Equal(t, 232.10, analysis.Prediction.CurrentPrice)
	assert.NotEqual(t, dto.LevelLow, analysis.Confidence)
}

func TestGenerateMockAnalysis_UnknownTickerIsSyntheticAndStable(t *testing.T) {
	first := GenerateMockAnalysis("ZZTOP", dto.MarketUS, dto.Timeframe3M)
	second := GenerateMockAnalysis("ZZTOP", dto.MarketUS, dto.Timeframe3M)

	assertValidAnalysis(t, first)
	assert.Equal(t, dto.LevelLow, first.Confidence, "synthetic records are labeled low confidence")
	assert.Equal(t, first.Prediction.Direction, second.Prediction.Direction, "same ticker seeds the same baseline")
	assert.Equal(t, first.Prediction.CurrentPrice, second.Prediction.CurrentPrice)
}

func TestGenerateMockAnalysis_DirectionConsistentMetrics(t *testing.T) {
	tests := []struct {
		ticker     string
		direction  string
		wantMACD   string
		wantVolume string
	}{
		{ticker: "THYAO", direction: dto.DirectionBullish, wantMACD: dto.MACDPositive, wantVolume: dto.VolumeTrendIncreasing},
		{ticker: "SISE", direction: dto.DirectionBearish, wantMACD: dto.MACDNegative, wantVolume: dto.VolumeTrendDecreasing},
		{ticker: "GOOGL", direction: dto.DirectionNeutral, wantMACD: dto.MACDNeutral, wantVolume: dto.VolumeTrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.ticker, func(t *testing.T) {
			analysis := GenerateMockAnalysis(tt.ticker, dto.MarketBIST, dto.Timeframe3M)
			assert.Equal(t, tt.direction, analysis.Prediction.Direction)
			assert.Equal(t, tt.wantMACD, analysis.Metrics.MACD)
			assert.Equal(t, tt.wantVolume, analysis.Metrics.VolumeTrend)
		})
	}
}

func TestGenerateMockAnalysis_TimeframeAdjustsProbability(t *testing.T) {
	short := GenerateMockAnalysis("AAPL", dto.MarketUS, dto.Timeframe1M)
	mid := GenerateMockAnalysis("AAPL", dto.MarketUS, dto.Timeframe3M)
	long := GenerateMockAnalysis("AAPL", dto.MarketUS, dto.Timeframe6M)

	assert.Equal(t, mid.Prediction.Probability+5, short.Prediction.Probability)
	assert.Equal(t, mid.Prediction.Probability-5, long.Prediction.Probability)

	for _, analysis := range []*dto.StockAnalysis{short, mid, long} {
		assert.GreaterOrEqual(t, analysis.Prediction.Probability, 30)
		assert.LessOrEqual(t, analysis.Prediction.Probability, 95)
	}
}
