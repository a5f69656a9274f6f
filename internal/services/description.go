package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/policy"
	"github.com/diewo77/go-printshop/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DescriptionInput is a line item form. Recompute only matters on update.
type DescriptionInput struct {
	Text      string `json:"text"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Recompute bool   `json:"recompute"`
}

func (in DescriptionInput) parse() (text string, qty int, price decimal.Decimal, err error) {
	v := validation.Violations{}
	text = strings.TrimSpace(in.Text)
	validation.Required("text", text, v)
	qty = 1
	if raw := strings.TrimSpace(in.Quantity); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil {
			v.Add("quantity", "invalid_number")
		} else {
			qty = n
		}
	}
	validation.MinInt("quantity", qty, 1, v)
	price = parseAmount("unit_price", in.UnitPrice, decimal.Zero, v)
	validation.NonNegativeDecimal("unit_price", price, v)
	return text, qty, price, check(v)
}

// DescriptionService manages order line items. Subtotals are stored and only
// change on add or an explicit recompute.
type DescriptionService struct {
	base
}

func NewDescriptionService(db *gorm.DB, authz Authorizer) *DescriptionService {
	return &DescriptionService{base: newBase(db, authz)}
}

// Add appends a line with its subtotal computed.
func (s *DescriptionService) Add(ctx context.Context, orderID uint, in DescriptionInput) (*models.Description, error) {
	if err := s.authorize(ctx, gate.ActionUpdate, policy.ResourceOrder); err != nil {
		return nil, err
	}
	text, qty, price, err := in.parse()
	if err != nil {
		return nil, err
	}
	d := models.Description{OrderID: orderID, Text: text, Quantity: qty, UnitPrice: price}
	d.Recompute()
	err = s.transaction(ctx, func(tx *gorm.DB) error {
		if err := requireOrder(tx, orderID); err != nil {
			return err
		}
		if err := tx.Create(&d).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionCreate, "description", d.ID, "order %d line %q subtotal %s", orderID, d.Text, d.Subtotal.StringFixed(2))
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Update stores the new fields. The subtotal stays as it was unless in.Recompute is set.
func (s *DescriptionService) Update(ctx context.Context, orderID, id uint, in DescriptionInput) (*models.Description, error) {
	if err := s.authorize(ctx, gate.ActionUpdate, policy.ResourceOrder); err != nil {
		return nil, err
	}
	text, qty, price, err := in.parse()
	if err != nil {
		return nil, err
	}
	var d models.Description
	err = s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).First(&d, id).Error; err != nil {
			return notFound(err)
		}
		d.Text, d.Quantity, d.UnitPrice = text, qty, price
		if in.Recompute {
			d.Recompute()
		}
		if err := tx.Save(&d).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionUpdate, "description", d.ID, "order %d line %q", orderID, d.Text)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DescriptionService) Delete(ctx context.Context, orderID, id uint) error {
	if err := s.authorize(ctx, gate.ActionUpdate, policy.ResourceOrder); err != nil {
		return err
	}
	return s.transaction(ctx, func(tx *gorm.DB) error {
		var d models.Description
		if err := tx.Where("order_id = ?", orderID).First(&d, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&d).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionDelete, "description", id, "order %d line %q", orderID, d.Text)
	})
}

// Recompute refreshes one line's subtotal.
func (s *DescriptionService) Recompute(ctx context.Context, orderID, id uint) (*models.Description, error) {
	if err := s.authorize(ctx, gate.ActionUpdate, policy.ResourceOrder); err != nil {
		return nil, err
	}
	var d models.Description
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).First(&d, id).Error; err != nil {
			return notFound(err)
		}
		d.Recompute()
		if err := tx.Model(&d).Update("subtotal", d.Subtotal).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionUpdate, "description", d.ID, "recompute subtotal %s", d.Subtotal.StringFixed(2))
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// RecomputeOrder refreshes every stale line of an order and reports how many changed.
func (s *DescriptionService) RecomputeOrder(ctx context.Context, orderID uint) (int, error) {
	if err := s.authorize(ctx, gate.ActionUpdate, policy.ResourceOrder); err != nil {
		return 0, err
	}
	changed := 0
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := requireOrder(tx, orderID); err != nil {
			return err
		}
		var lines []models.Description
		if err := tx.Where("order_id = ?", orderID).Find(&lines).Error; err != nil {
			return err
		}
		for i := range lines {
			if !lines[i].Stale() {
				continue
			}
			lines[i].Recompute()
			if err := tx.Model(&lines[i]).Update("subtotal", lines[i].Subtotal).Error; err != nil {
				return err
			}
			changed++
		}
		return audit(ctx, tx, actionUpdate, policy.ResourceOrder, orderID, "recomputed %d line subtotals", changed)
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

func requireOrder(tx *gorm.DB, orderID uint) error {
	ok, err := exists(tx, &models.Order{}, orderID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
