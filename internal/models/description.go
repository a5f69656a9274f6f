package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Description is an order line item. Subtotal is stored and only changes on Recompute.
type Description struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	Text      string          `gorm:"type:text;not null" json:"text"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
}

// Recompute sets Subtotal to Quantity × UnitPrice.
func (d *Description) Recompute() {
	d.Subtotal = d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity))).Round(2)
}

// Stale reports whether the stored subtotal no longer matches quantity and price.
func (d *Description) Stale() bool {
	return !d.Subtotal.Equal(d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity))).Round(2))
}
