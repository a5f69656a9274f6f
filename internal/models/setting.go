package models

import "time"

// Setting is a key/value configuration row.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Key       string    `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
}

// CompanyConfig is the single row holding the shop's own details for printouts.
type CompanyConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:150" json:"name"`
	TaxID     string    `gorm:"size:20" json:"tax_id,omitempty"`
	Address   string    `gorm:"size:255" json:"address,omitempty"`
	Phone     string    `gorm:"size:50" json:"phone,omitempty"`
	Email     string    `gorm:"size:150" json:"email,omitempty"`
}
