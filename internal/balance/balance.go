// Package balance derives an order's paid total, balance and payment state.
//
// The derivation exists twice: as pure functions over loaded rows (this file)
// and as SQL fragments for set-level filtering and sorting (query.go). Both
// round to the two decimal places of the money columns and must agree; the
// contract test in this package checks them against each other.
package balance

import (
	"context"

	"github.com/diewo77/go-printshop/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Scale is the number of decimal places of every money column.
const Scale = 2

// Summary is the derived financial position of one order. It is never stored.
type Summary struct {
	Total   decimal.Decimal      `json:"total"`
	Paid    decimal.Decimal      `json:"paid_total"`
	Balance decimal.Decimal      `json:"balance"`
	State   models.PaymentStatus `json:"payment_state"`
}

// PaidTotal sums payment amounts; zero when there are none.
func PaidTotal(payments []models.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum.Round(Scale)
}

// Balance is total minus paid. Negative means overpaid.
func Balance(total, paid decimal.Decimal) decimal.Decimal {
	return total.Sub(paid).Round(Scale)
}

// State classifies an order: paid when nothing is owed (including a zero
// total with no payments, and overpayment), partial when something was paid,
// pending otherwise.
func State(total, paid decimal.Decimal) models.PaymentStatus {
	switch {
	case !Balance(total, paid).IsPositive():
		return models.PaymentPaid
	case paid.IsPositive():
		return models.PaymentPartial
	default:
		return models.PaymentPending
	}
}

// Summarize computes the summary from a total and its payments.
func Summarize(total decimal.Decimal, payments []models.Payment) Summary {
	paid := PaidTotal(payments)
	return Summary{
		Total:   total.Round(Scale),
		Paid:    paid,
		Balance: Balance(total, paid),
		State:   State(total, paid),
	}
}

// Of summarizes an order whose Payments are loaded.
func Of(o *models.Order) Summary {
	return Summarize(o.Total, o.Payments)
}

// Load reads the order and its current payments and summarizes them.
// It returns gorm.ErrRecordNotFound for a missing order.
func Load(ctx context.Context, db *gorm.DB, orderID uint) (Summary, error) {
	var o models.Order
	if err := db.WithContext(ctx).Select("id", "total").First(&o, orderID).Error; err != nil {
		return Summary{}, err
	}
	if err := db.WithContext(ctx).Where("order_id = ?", orderID).Find(&o.Payments).Error; err != nil {
		return Summary{}, err
	}
	return Of(&o), nil
}
