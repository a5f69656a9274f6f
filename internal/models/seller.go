package models

import "time"

// Category groups sellers.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

// Seller is an external sales agent an order may be credited to.
type Seller struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Name       string    `gorm:"size:150;not null" json:"name"`
	TaxID      string    `gorm:"size:20" json:"tax_id,omitempty"`
	Phone      string    `gorm:"size:50" json:"phone,omitempty"`
	Email      string    `gorm:"size:150" json:"email,omitempty"`
	CategoryID *uint     `gorm:"index" json:"category_id"`
	Category   *Category `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
}
