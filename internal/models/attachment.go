package models

import "time"

// Attachment is a file uploaded against an order. Path is the storage key.
type Attachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	OrderID      uint      `gorm:"not null;index" json:"order_id"`
	Filename     string    `gorm:"size:255;not null" json:"filename"`
	Path         string    `gorm:"size:500;not null" json:"path"`
	ContentType  string    `gorm:"size:100" json:"content_type,omitempty"`
	Size         int64     `json:"size"`
	UploadedByID *uint     `gorm:"index" json:"uploaded_by_id"`
	UploadedBy   *User     `gorm:"foreignKey:UploadedByID;constraint:OnDelete:SET NULL" json:"-"`
}
