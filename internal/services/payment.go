package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/policy"
	"github.com/diewo77/go-printshop/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentInput is the payment form. Date defaults to today and Method to "transfer".
type PaymentInput struct {
	OrderID string `json:"order_id"`
	Amount  string `json:"amount"`
	Date    string `json:"date"`
	Method  string `json:"method"`
}

type PaymentService struct {
	base
}

func NewPaymentService(db *gorm.DB, authz Authorizer) *PaymentService {
	return &PaymentService{base: newBase(db, authz)}
}

// List returns payments newest first; orderID 0 lists all orders.
func (s *PaymentService) List(ctx context.Context, orderID uint) ([]models.Payment, error) {
	if err := s.authorize(ctx, gate.ActionList, policy.ResourcePayment); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Preload("User").Order("date DESC").Order("id DESC")
	if orderID != 0 {
		q = q.Where("order_id = ?", orderID)
	}
	var payments []models.Payment
	return payments, q.Find(&payments).Error
}

func (s *PaymentService) Get(ctx context.Context, id uint) (*models.Payment, error) {
	if err := s.authorize(ctx, gate.ActionView, policy.ResourcePayment); err != nil {
		return nil, err
	}
	var p models.Payment
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Create registers a payment by the acting user.
func (s *PaymentService) Create(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	if err := s.authorize(ctx, gate.ActionCreate, policy.ResourcePayment); err != nil {
		return nil, err
	}
	p := models.Payment{Date: today(s.now()), UserID: actorID(ctx)}
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := s.resolve(tx, in, &p); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionCreate, policy.ResourcePayment, p.ID, "order %d amount %s %s", p.OrderID, p.Amount.StringFixed(2), p.Method)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PaymentService) Update(ctx context.Context, id uint, in PaymentInput) (*models.Payment, error) {
	if err := s.authorize(ctx, gate.ActionUpdate, policy.ResourcePayment); err != nil {
		return nil, err
	}
	var p models.Payment
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return notFound(err)
		}
		if err := s.resolve(tx, in, &p); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&p).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionUpdate, policy.ResourcePayment, p.ID, "order %d amount %s %s", p.OrderID, p.Amount.StringFixed(2), p.Method)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PaymentService) resolve(tx *gorm.DB, in PaymentInput, p *models.Payment) error {
	v := validation.Violations{}
	orderID := parseRequiredID("order_id", in.OrderID, v)
	amount := parseAmount("amount", in.Amount, decimal.Zero, v)
	validation.PositiveDecimal("amount", amount, v)
	date := parseDate("date", in.Date, p.Date, v)
	method := strings.TrimSpace(in.Method)
	if method == "" {
		method = models.DefaultPaymentMethod
	}
	validation.MaxLen("method", method, 50, v)
	if err := check(v); err != nil {
		return err
	}
	ok, err := exists(tx, &models.Order{}, orderID)
	if err != nil {
		return err
	}
	if !ok {
		return invalid("order_id", "invalid_choice")
	}
	p.OrderID, p.Amount, p.Date, p.Method = orderID, amount, date, method
	p.User = nil
	return nil
}

// Delete removes a payment and returns the order it belonged to.
func (s *PaymentService) Delete(ctx context.Context, id uint) (uint, error) {
	if err := s.authorize(ctx, gate.ActionDelete, policy.ResourcePayment); err != nil {
		return 0, err
	}
	var p models.Payment
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&p).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionDelete, policy.ResourcePayment, id, "order %d amount %s", p.OrderID, p.Amount.StringFixed(2))
	})
	if err != nil {
		return 0, err
	}
	return p.OrderID, nil
}
