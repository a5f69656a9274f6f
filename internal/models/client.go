package models

import "time"

// Client is a customer of the shop.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:150;not null;index" json:"name"`
	TaxID     string    `gorm:"size:20" json:"tax_id,omitempty"`
	Phone     string    `gorm:"size:50" json:"phone,omitempty"`
	Email     string    `gorm:"size:150" json:"email,omitempty"`
}
