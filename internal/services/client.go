package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/policy"
	"github.com/diewo77/go-printshop/validation"
	"gorm.io/gorm"
)

type ClientInput struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (in ClientInput) validate() error {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 150, v)
	validation.MaxLen("tax_id", in.TaxID, 20, v)
	validation.MaxLen("phone", in.Phone, 50, v)
	validation.MaxLen("email", in.Email, 150, v)
	validation.Email("email", in.Email, v)
	return check(v)
}

func (in ClientInput) apply(c *models.Client) {
	c.Name = strings.TrimSpace(in.Name)
	c.TaxID = strings.TrimSpace(in.TaxID)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

type ClientService struct {
	base
}

func NewClientService(db *gorm.DB, authz Authorizer) *ClientService {
	return &ClientService{base: newBase(db, authz)}
}

// List returns clients ordered by name. q filters by name or email, case-insensitively.
func (s *ClientService) List(ctx context.Context, q string) ([]models.Client, error) {
	if err := s.authorize(ctx, gate.ActionList, policy.ResourceClient); err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Order("name")
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	var clients []models.Client
	return clients, query.Find(&clients).Error
}

func (s *ClientService) Get(ctx context.Context, id uint) (*models.Client, error) {
	if err := s.authorize(ctx, gate.ActionView, policy.ResourceClient); err != nil {
		return nil, err
	}
	var c models.Client
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *ClientService) Create(ctx context.Context, in ClientInput) (*models.Client, error) {
	if err := s.authorize(ctx, gate.ActionCreate, policy.ResourceClient); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	var c models.Client
	in.apply(&c)
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionCreate, policy.ResourceClient, c.ID, "client %q", c.Name)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ClientService) Update(ctx context.Context, id uint, in ClientInput) (*models.Client, error) {
	if err := s.authorize(ctx, gate.ActionUpdate, policy.ResourceClient); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	var c models.Client
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return notFound(err)
		}
		in.apply(&c)
		if err := tx.Save(&c).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionUpdate, policy.ResourceClient, c.ID, "client %q", c.Name)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a client without orders. Orders are never orphaned.
func (s *ClientService) Delete(ctx context.Context, id uint) error {
	if err := s.authorize(ctx, gate.ActionDelete, policy.ResourceClient); err != nil {
		return err
	}
	return s.transaction(ctx, func(tx *gorm.DB) error {
		var c models.Client
		if err := tx.First(&c, id).Error; err != nil {
			return notFound(err)
		}
		var orders int64
		if err := tx.Model(&models.Order{}).Where("client_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return invalid("client", "client_has_orders")
		}
		if err := tx.Delete(&c).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionDelete, policy.ResourceClient, id, "client %q", c.Name)
	})
}
