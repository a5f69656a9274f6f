package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WorkStatus string

const (
	WorkPending    WorkStatus = "pending"
	WorkInProgress WorkStatus = "in_progress"
	WorkReady      WorkStatus = "ready"
)

var WorkStatuses = []WorkStatus{WorkPending, WorkInProgress, WorkReady}

type DispatchStatus string

const (
	DispatchPending    DispatchStatus = "pending"
	DispatchDispatched DispatchStatus = "dispatched"
)

var DispatchStatuses = []DispatchStatus{DispatchPending, DispatchDispatched}

// PaymentStatus is used both for the manually set order field and for the
// state computed by the balance package.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentPartial, PaymentPaid}

// Order is a print job. Total is stored as entered; it is not derived from
// NetPrice and Tax.
type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientID uint    `gorm:"not null;index" json:"client_id"`
	Client   *Client `gorm:"constraint:OnDelete:RESTRICT" json:"client,omitempty"`
	// UserID is the creating user; it is nulled when that user is deleted.
	UserID   *uint   `gorm:"index" json:"user_id"`
	User     *User   `gorm:"constraint:OnDelete:SET NULL" json:"user,omitempty"`
	SellerID *uint   `gorm:"index" json:"seller_id"`
	Seller   *Seller `gorm:"constraint:OnDelete:SET NULL" json:"seller,omitempty"`

	Date     time.Time       `gorm:"type:date;not null;index" json:"date"`
	NetPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"net_price"`
	Tax      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`

	WorkStatus     WorkStatus     `gorm:"size:20;not null;default:pending" json:"work_status"`
	DispatchStatus DispatchStatus `gorm:"size:20;not null;default:pending" json:"dispatch_status"`
	PaymentStatus  PaymentStatus  `gorm:"size:20;not null;default:pending" json:"payment_status"`
	Notes          string         `gorm:"type:text" json:"notes,omitempty"`

	Payments     []Payment     `gorm:"constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	Attachments  []Attachment  `gorm:"constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	Descriptions []Description `gorm:"constraint:OnDelete:CASCADE" json:"descriptions,omitempty"`
}
