package balance

import (
	"context"

	"github.com/diewo77/go-printshop/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SQL expressions over the "orders" table. They are correlated subqueries so
// they can appear in SELECT, WHERE and ORDER BY of any query on orders.
const (
	paidSubquery = "SELECT SUM(payments.amount) FROM payments WHERE payments.order_id = orders.id"

	PaidTotalSQL = "ROUND(COALESCE((" + paidSubquery + "), 0), 2)"
	BalanceSQL   = "ROUND(orders.total - " + PaidTotalSQL + ", 2)"
	StateSQL     = "CASE WHEN " + BalanceSQL + " <= 0 THEN 'paid' WHEN " + PaidTotalSQL + " > 0 THEN 'partial' ELSE 'pending' END"
)

// Row is the query-side counterpart of Summary.
type Row struct {
	OrderID      uint
	Total        decimal.Decimal
	PaidTotal    decimal.Decimal
	Balance      decimal.Decimal
	PaymentState models.PaymentStatus
}

func (r Row) Summary() Summary {
	return Summary{Total: r.Total, Paid: r.PaidTotal, Balance: r.Balance, State: r.PaymentState}
}

// WithState restricts an orders query to one computed payment state.
func WithState(state models.PaymentStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(StateSQL+" = ?", string(state))
	}
}

// Outstanding restricts an orders query to orders with a positive balance.
func Outstanding(db *gorm.DB) *gorm.DB {
	return db.Where(BalanceSQL + " > 0")
}

// ByBalanceDesc sorts an orders query by balance, largest first.
func ByBalanceDesc(db *gorm.DB) *gorm.DB {
	return db.Order(BalanceSQL + " DESC").Order("orders.id")
}

// Rows evaluates the derivation in the database for every order matched by scopes.
// Scopes run before the orders.id tiebreak so an ordering scope takes precedence.
func Rows(ctx context.Context, db *gorm.DB, scopes ...func(*gorm.DB) *gorm.DB) ([]Row, error) {
	q := db.WithContext(ctx).Model(&models.Order{}).
		Select("orders.id AS order_id, orders.total AS total, " +
			PaidTotalSQL + " AS paid_total, " +
			BalanceSQL + " AS balance, " +
			StateSQL + " AS payment_state")
	for _, scope := range scopes {
		q = scope(q)
	}
	var rows []Row
	err := q.Order("orders.id").Scan(&rows).Error
	return rows, err
}

// CountOutstanding counts orders that still owe money.
func CountOutstanding(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Order{}).Scopes(Outstanding).Count(&n).Error
	return n, err
}
