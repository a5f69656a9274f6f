package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultPaymentMethod = "transfer"

// Payment is an amount received against an order.
type Payment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date      time.Time       `gorm:"type:date;not null" json:"date"`
	Method    string          `gorm:"size:50;not null;default:transfer" json:"method"`
	UserID    *uint           `gorm:"index" json:"user_id"`
	User      *User           `gorm:"constraint:OnDelete:SET NULL" json:"user,omitempty"`
}
