package models

import "time"

// AuditLog is an append-only trace of mutations.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Action    string    `gorm:"size:50;not null" json:"action"`
	Entity    string    `gorm:"size:50;not null;index" json:"entity"`
	EntityID  *uint     `json:"entity_id"`
	Message   string    `gorm:"type:text" json:"message,omitempty"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

func (AuditLog) TableName() string { return "logs" }
