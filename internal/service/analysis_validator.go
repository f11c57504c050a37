package service

import (
	"encoding/json"
	"strings"
	"unicode"

	"golang-finance/internal/dto"
	"golang-finance/pkg/utils"
)

// rawAnalysis mirrors dto.StockAnalysis with pointer fields so that absent
// and zero-valued fields can be told apart during validation.
type rawAnalysis struct {
	Ticker       *string        `json:"ticker"`
	Market       *string        `json:"market"`
	Timeframe    *string        `json:"timeframe"`
	AnalysisDate *string        `json:"analysis_date"`
	Prediction   *rawPrediction `json:"prediction"`
	Metrics      *rawMetrics    `json:"metrics"`
	RiskLevel    *string        `json:"risk_level"`
	Summary      *string        `json:"summary"`
	KeyFactors   []string       `json:"key_factors"`
	Confidence   *string        `json:"confidence"`
}

type rawPrediction struct {
	Direction       *string  `json:"direction"`
	Probability     *int     `json:"probability"`
	PriceTargetLow  *float64 `json:"price_target_low"`
	PriceTargetHigh *float64 `json:"price_target_high"`
	CurrentPrice    *float64 `json:"current_price"`
}

type rawMetrics struct {
	RSI         *int     `json:"rsi"`
	MACD        *string  `json:"macd"`
	PERatio     *float64 `json:"pe_ratio"`
	VolumeTrend *string  `json:"volume_trend"`
}

// ValidateAnalysis parses a model completion into a typed StockAnalysis.
// This is the only gate between the free-text upstream and the typed domain,
// so it fails closed: any missing field, unknown enum value, or out-of-range
// number rejects the whole payload. No I/O and no coercion.
func ValidateAnalysis(rawText string) (*dto.StockAnalysis, error) {
	payload := stripCodeFence(rawText)

	var raw rawAnalysis
	decoder := json.NewDecoder(strings.NewReader(payload))
	if err := decoder.Decode(&raw); err != nil {
		return nil, newMalformedPayloadError(err)
	}

	if err := checkRequiredFields(&raw); err != nil {
		return nil, err
	}

	if err := checkEnums(&raw); err != nil {
		return nil, err
	}

	if *raw.Prediction.Probability < 0 || *raw.Prediction.Probability > 100 {
		return nil, newOutOfRangeError("prediction.probability", *raw.Prediction.Probability)
	}
	if *raw.Metrics.RSI < 0 || *raw.Metrics.RSI > 100 {
		return nil, newOutOfRangeError("metrics.rsi", *raw.Metrics.RSI)
	}

	return &dto.StockAnalysis{
		Ticker:       *raw.Ticker,
		Market:       *raw.Market,
		Timeframe:    *raw.Timeframe,
		AnalysisDate: *raw.AnalysisDate,
		Prediction: dto.Prediction{
			Direction:       *raw.Prediction.Direction,
			Probability:     *raw.Prediction.Probability,
			PriceTargetLow:  *raw.Prediction.PriceTargetLow,
			PriceTargetHigh: *raw.Prediction.PriceTargetHigh,
			CurrentPrice:    *raw.Prediction.CurrentPrice,
		},
		Metrics: dto.Metrics{
			RSI:         *raw.Metrics.RSI,
			MACD:        *raw.Metrics.MACD,
			PERatio:     *raw.Metrics.PERatio,
			VolumeTrend: *raw.Metrics.VolumeTrend,
		},
		RiskLevel:  *raw.RiskLevel,
		Summary:    *raw.Summary,
		KeyFactors: raw.KeyFactors,
		Confidence: *raw.Confidence,
	}, nil
}

// stripCodeFence removes a single wrapping ```...``` block. Bare JSON passes
// through untouched.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	trimmed = strings.TrimSpace(trimmed)

	// Drop a language tag such as "json" on the opening fence. The model
	// sometimes omits the newline after the tag, so look for the payload
	// start rather than a line break.
	if idx := strings.IndexAny(trimmed, "{["); idx > 0 && isFenceTag(trimmed[:idx]) {
		trimmed = strings.TrimSpace(trimmed[idx:])
	}
	return trimmed
}

func isFenceTag(s string) bool {
	for _, r := range strings.TrimSpace(s) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func checkRequiredFields(raw *rawAnalysis) error {
	switch {
	case raw.Ticker == nil:
		return newMissingFieldError("ticker")
	case raw.Market == nil:
		return newMissingFieldError("market")
	case raw.Timeframe == nil:
		return newMissingFieldError("timeframe")
	case raw.AnalysisDate == nil:
		return newMissingFieldError("analysis_date")
	case raw.Prediction == nil:
		return newMissingFieldError("prediction")
	case raw.Metrics == nil:
		return newMissingFieldError("metrics")
	case raw.RiskLevel == nil:
		return newMissingFieldError("risk_level")
	case raw.Summary == nil || *raw.Summary == "":
		return newMissingFieldError("summary")
	case len(raw.KeyFactors) == 0:
		return newMissingFieldError("key_factors")
	case raw.Confidence == nil:
		return newMissingFieldError("confidence")
	}

	p := raw.Prediction
	switch {
	case p.Direction == nil:
		return newMissingFieldError("prediction.direction")
	case p.Probability == nil:
		return newMissingFieldError("prediction.probability")
	case p.PriceTargetLow == nil:
		return newMissingFieldError("prediction.price_target_low")
	case p.PriceTargetHigh == nil:
		return newMissingFieldError("prediction.price_target_high")
	case p.CurrentPrice == nil:
		return newMissingFieldError("prediction.current_price")
	}

	m := raw.Metrics
	switch {
	case m.RSI == nil:
		return newMissingFieldError("metrics.rsi")
	case m.MACD == nil:
		return newMissingFieldError("metrics.macd")
	case m.PERatio == nil:
		return newMissingFieldError("metrics.pe_ratio")
	case m.VolumeTrend == nil:
		return newMissingFieldError("metrics.volume_trend")
	}

	return nil
}

func checkEnums(raw *rawAnalysis) error {
	if !utils.ContainsString(dto.GetDirectionList(), *raw.Prediction.Direction) {
		return newInvalidEnumError("prediction.direction", *raw.Prediction.Direction)
	}
	if !utils.ContainsString(dto.GetMACDList(), *raw.Metrics.MACD) {
		return newInvalidEnumError("metrics.macd", *raw.Metrics.MACD)
	}
	if !utils.ContainsString(dto.GetVolumeTrendList(), *raw.Metrics.VolumeTrend) {
		return newInvalidEnumError("metrics.volume_trend", *raw.Metrics.VolumeTrend)
	}
	if !utils.ContainsString(dto.GetLevelList(), *raw.RiskLevel) {
		return newInvalidEnumError("risk_level", *raw.RiskLevel)
	}
	if !utils.ContainsString(dto.GetLevelList(), *raw.Confidence) {
		return newInvalidEnumError("confidence", *raw.Confidence)
	}
	return nil
}
