package dto

import "time"

type SnapshotRequest struct {
	Date            string                  `json:"date" validate:"required,datetime=2006-01-02"`
	Note            string                  `json:"note" validate:"max=255"`
	AccountBalances []AccountBalanceRequest `json:"account_balances" validate:"dive"`
	GoldHoldings    []GoldHoldingRequest    `json:"gold_holdings" validate:"dive"`
	Investments     []InvestmentRequest     `json:"investments" validate:"dive"`
}

type AccountBalanceRequest struct {
	AccountName string  `json:"account_name" validate:"required,max=100"`
	Currency    string  `json:"currency" validate:"required,iso4217"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

type GoldHoldingRequest struct {
	KaratType string  `json:"karat_type" validate:"required,max=50"`
	Grams     float64 `json:"grams" validate:"gt=0"`
}

type InvestmentRequest struct {
	Market   string  `json:"market" validate:"required,oneof=BIST US"`
	Symbol   string  `json:"symbol" validate:"required,alphanum,uppercase,max=10"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
	UnitCost float64 `json:"unit_cost" validate:"gte=0"`
}

type SnapshotResponse struct {
	ID              uint                     `json:"id"`
	Date            string                   `json:"date"`
	Note            string                   `json:"note"`
	AccountBalances []AccountBalanceResponse `json:"account_balances"`
	GoldHoldings    []GoldHoldingResponse    `json:"gold_holdings"`
	Investments     []InvestmentResponse     `json:"investments"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

type AccountBalanceResponse struct {
	ID          uint    `json:"id"`
	AccountName string  `json:"account_name"`
	Currency    string  `json:"currency"`
	Amount      float64 `json:"amount"`
}

type GoldHoldingResponse struct {
	ID        uint    `json:"id"`
	KaratType string  `json:"karat_type"`
	Grams     float64 `json:"grams"`
}

type InvestmentResponse struct {
	ID       uint    `json:"id"`
	Market   string  `json:"market"`
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
}
