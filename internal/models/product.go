package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTaxPercentage applies to products created without an explicit rate.
var DefaultTaxPercentage = decimal.NewFromInt(21)

// Product is a stock-tracked catalog item.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Code        string          `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"unitPrice"`
	Stock       int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	// percentage, 21 means 21%
	TaxPercentage decimal.Decimal `gorm:"type:numeric;not null;default:21" json:"taxPercentage"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// StockLevel buckets a stock quantity the way the dashboard reports it.
type StockLevel string

const (
	StockOut    StockLevel = "out"
	StockLow    StockLevel = "low"
	StockMedium StockLevel = "medium"
	StockHigh   StockLevel = "high"
)

// Level returns out (0), low (1..5), medium (6..10) or high (>10).
func (p *Product) Level() StockLevel {
	switch {
	case p.Stock <= 0:
		return StockOut
	case p.Stock <= 5:
		return StockLow
	case p.Stock <= 10:
		return StockMedium
	default:
		return StockHigh
	}
}
