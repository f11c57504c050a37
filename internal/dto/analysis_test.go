package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisCacheKey(t *testing.T) {
	key := AnalysisCacheKey(MarketUS, "AAPL", Timeframe3M)
	assert.Equal(t, "US:AAPL:3M", key)
}

func TestAnalysisCachePrefixMatchesEveryTimeframe(t *testing.T) {
	prefix := AnalysisCachePrefix(MarketBIST, "THYAO")
	assert.Equal(t, "BIST:THYAO:", prefix)

	for _, timeframe := range GetTimeframeList() {
		key := AnalysisCacheKey(MarketBIST, "THYAO", timeframe)
		assert.True(t, strings.HasPrefix(key, prefix))
	}

	assert.False(t, strings.HasPrefix(AnalysisCacheKey(MarketBIST, "GARAN", Timeframe1M), prefix))
}
