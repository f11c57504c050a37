package model

import "time"

// Snapshot is one dated picture of the user's holdings. Child rows are
// replaced wholesale on update and removed with the snapshot.
type Snapshot struct {
	ID        uint      `gorm:"primarykey"`
	Date      time.Time `gorm:"not null;index"`
	Note      string
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	AccountBalances []AccountBalance `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE"`
	GoldHoldings    []GoldHolding    `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE"`
	Investments     []Investment     `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE"`
}

func (Snapshot) TableName() string {
	return "snapshots"
}

type AccountBalance struct {
	ID          uint    `gorm:"primarykey"`
	SnapshotID  uint    `gorm:"not null;index"`
	AccountName string  `gorm:"not null"`
	Currency    string  `gorm:"not null;size:3"`
	Amount      float64 `gorm:"not null;default:0"`
}

func (AccountBalance) TableName() string {
	return "account_balances"
}

type GoldHolding struct {
	ID         uint    `gorm:"primarykey"`
	SnapshotID uint    `gorm:"not null;index"`
	KaratType  string  `gorm:"not null"`
	Grams      float64 `gorm:"not null"`
}

func (GoldHolding) TableName() string {
	return "gold_holdings"
}

type Investment struct {
	ID         uint    `gorm:"primarykey"`
	SnapshotID uint    `gorm:"not null;index"`
	Market     string  `gorm:"not null"`
	Symbol     string  `gorm:"not null"`
	Quantity   float64 `gorm:"not null"`
	UnitCost   float64 `gorm:"not null;default:0"`
}

func (Investment) TableName() string {
	return "investments"
}
