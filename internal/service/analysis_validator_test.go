package service

import (
	"encoding/json"
	"fmt"
	"testing"

	"golang-finance/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"ticker":        "AAPL",
		"market":        "US",
		"timeframe":     "3M",
		"analysis_date": "2026-08-29",
		"prediction": map[string]interface{}{
			"direction":         "bullish",
			"probability":       72,
			"price_target_low":  220.0,
			"price_target_high": 260.0,
			"current_price":     232.1,
		},
		"metrics": map[string]interface{}{
			"rsi":          57,
			"macd":         "positive",
			"pe_ratio":     31.5,
			"volume_trend": "increasing",
		},
		"risk_level":  "low",
		"summary":     "Momentum remains constructive into the quarter.",
		"key_factors": []string{"strong momentum", "services growth", "buyback support"},
		"confidence":  "high",
	}
}

func marshalPayload(t *testing.T, payload map[string]interface{}) string {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(raw)
}

func TestValidateAnalysis_Valid(t *testing.T) {
	tests := []struct {
		name string
		raw  func(t *testing.T) string
	}{
		{
			name: "bare JSON",
			raw: func(t *testing.T) string {
				return marshalPayload(t, validPayload())
			},
		},
		{
			name: "fenced JSON with language tag",
			raw: func(t *testing.T) string {
				return "```json\n" + marshalPayload(t, validPayload()) + "\n```"
			},
		},
		{
			name: "fenced JSON without language tag",
			raw: func(t *testing.T) string {
				return "```\n" + marshalPayload(t, validPayload()) + "\n```"
			},
		},
		{
			name: "single-line fence with no break after the tag",
			raw: func(t *testing.T) string {
				return "```json" + marshalPayload(t, validPayload()) + "```"
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := ValidateAnalysis(tt.raw(t))
			require.NoError(t, err)
			assert.Equal(t, "AAPL", analysis.Ticker)
			assert.Equal(t, dto.MarketUS, analysis.Market)
			assert.Equal(t, dto.Timeframe3M, analysis.Timeframe)
			assert.Equal(t, dto.DirectionBullish, analysis.Prediction.Direction)
			assert.Equal(t, 72, analysis.Prediction.Probability)
			assert.Equal(t, 57, analysis.Metrics.RSI)
			assert.Len(t, analysis.KeyFactors, 3)
		})
	}
}

func TestValidateAnalysis_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "plain prose", raw: "I cannot provide financial advice."},
		{name: "truncated JSON", raw: `{"ticker": "AAPL", "market":`},
		{name: "empty", raw: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := ValidateAnalysis(tt.raw)
			assert.Nil(t, analysis)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, ValidationMalformedPayload, validationErr.Kind)
			assert.True(t, validationErr.Retryable())
		})
	}
}

func TestValidateAnalysis_MissingFields(t *testing.T) {
	topLevel := []string{
		"ticker", "market", "timeframe", "analysis_date", "prediction",
		"metrics", "risk_level", "summary", "key_factors", "confidence",
	}
	for _, field := range topLevel {
		t.Run("missing "+field, func(t *testing.T) {
			payload := validPayload()
			delete(payload, field)

			analysis, err := ValidateAnalysis(marshalPayload(t, payload))
			assert.Nil(t, analysis)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, ValidationMissingField, validationErr.Kind)
			assert.Equal(t, field, validationErr.Field)
			assert.False(t, validationErr.Retryable())
		})
	}

	nested := []struct {
		parent string
		field  string
	}{
		{"prediction", "direction"},
		{"prediction", "probability"},
		{"prediction", "price_target_low"},
		{"prediction", "price_target_high"},
		{"prediction", "current_price"},
		{"metrics", "rsi"},
		{"metrics", "macd"},
		{"metrics", "pe_ratio"},
		{"metrics", "volume_trend"},
	}
	for _, tt := range nested {
		t.Run(fmt.Sprintf("missing %s.%s", tt.parent, tt.field), func(t *testing.T) {
			payload := validPayload()
			delete(payload[tt.parent].(map[string]interface{}), tt.field)

			analysis, err := ValidateAnalysis(marshalPayload(t, payload))
			assert.Nil(t, analysis)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, ValidationMissingField, validationErr.Kind)
			assert.Equal(t, tt.parent+"."+tt.field, validationErr.Field)
		})
	}

	t.Run("empty summary", func(t *testing.T) {
		payload := validPayload()
		payload["summary"] = ""

		_, err := ValidateAnalysis(marshalPayload(t, payload))
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, ValidationMissingField, validationErr.Kind)
		assert.Equal(t, "summary", validationErr.Field)
	})

	t.Run("empty key factors", func(t *testing.T) {
		payload := validPayload()
		payload["key_factors"] = []string{}

		_, err := ValidateAnalysis(marshalPayload(t, payload))
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, ValidationMissingField, validationErr.Kind)
		assert.Equal(t, "key_factors", validationErr.Field)
	})
}

func TestValidateAnalysis_InvalidEnums(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(payload map[string]interface{})
		field   string
		bad     string
	}{
		{
			name:   "direction",
			mutate: func(p map[string]interface{}) { p["prediction"].(map[string]interface{})["direction"] = "sideways" },
			field:  "prediction.direction",
			bad:    "sideways",
		},
		{
			name:   "macd",
			mutate: func(p map[string]interface{}) { p["metrics"].(map[string]interface{})["macd"] = "up" },
			field:  "metrics.macd",
			bad:    "up",
		},
		{
			name:   "volume trend",
			mutate: func(p map[string]interface{}) { p["metrics"].(map[string]interface{})["volume_trend"] = "spiking" },
			field:  "metrics.volume_trend",
			bad:    "spiking",
		},
		{
			name:   "risk level",
			mutate: func(p map[string]interface{}) { p["risk_level"] = "extreme" },
			field:  "risk_level",
			bad:    "extreme",
		},
		{
			name:   "confidence",
			mutate: func(p map[string]interface{}) { p["confidence"] = "absolute" },
			field:  "confidence",
			bad:    "absolute",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(payload)

			analysis, err := ValidateAnalysis(marshalPayload(t, payload))
			assert.Nil(t, analysis)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, ValidationInvalidEnum, validationErr.Kind)
			assert.Equal(t, tt.field, validationErr.Field)
			assert.Equal(t, tt.bad, validationErr.Value)
			assert.False(t, validationErr.Retryable())
		})
	}
}

func TestValidateAnalysis_RangeBoundaries(t *testing.T) {
	setProbability := func(p map[string]interface{}, v int) {
		p["prediction"].(map[string]interface{})["probability"] = v
	}
	setRSI := func(p map[string]interface{}, v int) {
		p["metrics"].(map[string]interface{})["rsi"] = v
	}

	tests := []struct {
		name    string
		mutate  func(payload map[string]interface{})
		wantErr bool
		field   string
	}{
		{name: "probability 0 is valid", mutate: func(p map[string]interface{}) { setProbability(p, 0) }},
		{name: "probability 100 is valid", mutate: func(p map[string]interface{}) { setProbability(p, 100) }},
		{name: "probability 101 rejected", mutate: func(p map[string]interface{}) { setProbability(p, 101) }, wantErr: true, field: "prediction.probability"},
		{name: "probability -1 rejected", mutate: func(p map[string]interface{}) { setProbability(p, -1) }, wantErr: true, field: "prediction.probability"},
		{name: "rsi 0 is valid", mutate: func(p map[string]interface{}) { setRSI(p, 0) }},
		{name: "rsi 100 is valid", mutate: func(p map[string]interface{}) { setRSI(p, 100) }},
		{name: "rsi -1 rejected", mutate: func(p map[string]interface{}) { setRSI(p, -1) }, wantErr: true, field: "metrics.rsi"},
		{name: "rsi 101 rejected", mutate: func(p map[string]interface{}) { setRSI(p, 101) }, wantErr: true, field: "metrics.rsi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(payload)

			analysis, err := ValidateAnalysis(marshalPayload(t, payload))
			if !tt.wantErr {
				require.NoError(t, err)
				require.NotNil(t, analysis)
				return
			}
			assert.Nil(t, analysis)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, ValidationOutOfRange, validationErr.Kind)
			assert.Equal(t, tt.field, validationErr.Field)
			assert.False(t, validationErr.Retryable())
		})
	}
}
