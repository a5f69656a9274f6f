// Package models holds the gorm entities. Monetary columns are decimal(12,2)
// backed by shopspring/decimal; floats are never used for money.
package models

// All lists every entity in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &Client{}, &Category{}, &Seller{},
		&Order{}, &Payment{}, &Description{}, &Attachment{},
		&NotificationLog{}, &Setting{}, &CompanyConfig{}, &AuditLog{},
	}
}
