package dto

const (
	MarketBIST = "BIST"
	MarketUS   = "US"
)

const (
	Timeframe1M = "1M"
	Timeframe3M = "3M"
	Timeframe6M = "6M"
)

const (
	DirectionBullish = "bullish"
	DirectionBearish = "bearish"
	DirectionNeutral = "neutral"
)

const (
	MACDPositive = "positive"
	MACDNegative = "negative"
	MACDNeutral  = "neutral"
)

const (
	VolumeTrendIncreasing = "increasing"
	VolumeTrendDecreasing = "decreasing"
	VolumeTrendStable     = "stable"
)

const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

func GetMarketList() []string {
	return []string{MarketBIST, MarketUS}
}

func GetTimeframeList() []string {
	return []string{Timeframe1M, Timeframe3M, Timeframe6M}
}

func GetDirectionList() []string {
	return []string{DirectionBullish, DirectionBearish, DirectionNeutral}
}

func GetMACDList() []string {
	return []string{MACDPositive, MACDNegative, MACDNeutral}
}

func GetVolumeTrendList() []string {
	return []string{VolumeTrendIncreasing, VolumeTrendDecreasing, VolumeTrendStable}
}

func GetLevelList() []string {
	return []string{LevelLow, LevelMedium, LevelHigh}
}

// TrendingTickers is the fixed list served by the trending endpoint.
var TrendingTickers = []TickerRef{
	{Market: MarketBIST, Ticker: "THYAO"},
	{Market: MarketBIST, Ticker: "GARAN"},
	{Market: MarketBIST, Ticker: "ASELS"},
	{Market: MarketBIST, Ticker: "SISE"},
	{Market: MarketBIST, Ticker: "KCHOL"},
	{Market: MarketUS, Ticker: "AAPL"},
	{Market: MarketUS, Ticker: "MSFT"},
	{Market: MarketUS, Ticker: "NVDA"},
	{Market: MarketUS, Ticker: "GOOGL"},
	{Market: MarketUS, Ticker: "AMZN"},
}

type TickerRef struct {
	Market string `json:"market"`
	Ticker string `json:"ticker"`
}
