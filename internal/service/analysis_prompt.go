package service

import (
	"fmt"
	"strings"
)

// buildAnalysisPrompt embeds the ticker, market, timeframe and current date
// and pins down the exact JSON shape the validator accepts.
func buildAnalysisPrompt(ticker, market, timeframe, analysisDate string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(
		"You are a professional equity analyst. Produce a %s outlook for the stock %s listed on the %s market, as of %s.\n\n",
		timeframe, ticker, market, analysisDate,
	))

	sb.WriteString(`### Rules:
1. direction must be exactly one of: "bullish", "bearish", "neutral".
2. probability is an integer percentage between 0 and 100.
3. rsi is an integer between 0 and 100; macd is "positive", "negative" or "neutral"; volume_trend is "increasing", "decreasing" or "stable".
4. risk_level and confidence are each one of: "low", "medium", "high".
5. summary is a short paragraph; key_factors lists 3 to 5 short bullet strings.
6. price targets and current price are in the market's local currency.
`)

	sb.WriteString(fmt.Sprintf(`
### Required JSON output (no text outside the JSON object):
{
  "ticker": "%s",
  "market": "%s",
  "timeframe": "%s",
  "analysis_date": "%s",
  "prediction": {
    "direction": "bullish | bearish | neutral",
    "probability": 0,
    "price_target_low": 0,
    "price_target_high": 0,
    "current_price": 0
  },
  "metrics": {
    "rsi": 0,
    "macd": "positive | negative | neutral",
    "pe_ratio": 0,
    "volume_trend": "increasing | decreasing | stable"
  },
  "risk_level": "low | medium | high",
  "summary": "short outlook paragraph",
  "key_factors": ["factor 1", "factor 2", "factor 3"],
  "confidence": "low | medium | high"
}
`, ticker, market, timeframe, analysisDate))

	return sb.String()
}
