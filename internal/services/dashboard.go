package services

import (
	"context"

	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/internal/balance"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/notify"
	"github.com/diewo77/go-printshop/internal/policy"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dashboard is the home page summary.
type Dashboard struct {
	TotalSales     decimal.Decimal          `json:"total_sales"`
	TotalPayments  decimal.Decimal          `json:"total_payments"`
	Outstanding    int64                    `json:"outstanding"`
	Notifications  []models.NotificationLog `json:"notifications"`
	TopOutstanding []OrderView              `json:"top_outstanding"`
}

type DashboardService struct {
	base
}

func NewDashboardService(db *gorm.DB, authz Authorizer) *DashboardService {
	return &DashboardService{base: newBase(db, authz)}
}

func (s *DashboardService) Summary(ctx context.Context) (*Dashboard, error) {
	if err := s.authorize(ctx, gate.ActionList, policy.ResourceOrder); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	d := &Dashboard{}
	if err := db.Model(&models.Order{}).Select("COALESCE(SUM(total), 0)").Row().Scan(&d.TotalSales); err != nil {
		return nil, err
	}
	if err := db.Model(&models.Payment{}).Select("COALESCE(SUM(amount), 0)").Row().Scan(&d.TotalPayments); err != nil {
		return nil, err
	}
	d.TotalSales = d.TotalSales.Round(balance.Scale)
	d.TotalPayments = d.TotalPayments.Round(balance.Scale)

	var err error
	if d.Outstanding, err = balance.CountOutstanding(ctx, s.db); err != nil {
		return nil, err
	}
	if d.Notifications, err = notify.Recent(ctx, s.db, 10); err != nil {
		return nil, err
	}
	var top []models.Order
	err = db.Preload("Client").Preload("Payments").
		Scopes(balance.Outstanding, balance.ByBalanceDesc).
		Limit(5).Find(&top).Error
	if err != nil {
		return nil, err
	}
	d.TopOutstanding = views(top)
	return d, nil
}
