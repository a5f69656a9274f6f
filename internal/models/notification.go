package models

import "time"

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliverySent      DeliveryStatus = "sent"
	DeliverySimulated DeliveryStatus = "simulated"
	DeliveryError     DeliveryStatus = "error"
)

// NotificationLog records one delivery attempt. It outlives the order it refers to.
type NotificationLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	OrderID   *uint          `gorm:"index" json:"order_id"`
	Order     *Order         `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Recipient string         `gorm:"size:150;not null" json:"recipient"`
	Channel   Channel        `gorm:"size:20;not null" json:"channel"`
	Subject   string         `gorm:"size:200" json:"subject,omitempty"`
	Body      string         `gorm:"type:text" json:"body,omitempty"`
	Status    DeliveryStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	Response  string         `gorm:"type:text" json:"response,omitempty"`
}
