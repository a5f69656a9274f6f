package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/policy"
	"github.com/diewo77/go-printshop/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SellerInput is the seller form. CategoryID "" or "0" means no category.
type SellerInput struct {
	Name       string `json:"name"`
	TaxID      string `json:"tax_id"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	CategoryID string `json:"category_id"`
}

// resolve validates the input and returns the normalized category reference.
func (in SellerInput) resolve(tx *gorm.DB) (*uint, error) {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 150, v)
	validation.MaxLen("tax_id", in.TaxID, 20, v)
	validation.MaxLen("phone", in.Phone, 50, v)
	validation.Email("email", in.Email, v)
	categoryID := parseOptionalID("category_id", in.CategoryID, v)
	if err := check(v); err != nil {
		return nil, err
	}
	if categoryID != nil {
		ok, err := exists(tx, &models.Category{}, *categoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, invalid("category_id", "invalid_choice")
		}
	}
	return categoryID, nil
}

func (in SellerInput) apply(s *models.Seller, categoryID *uint) {
	s.Name = strings.TrimSpace(in.Name)
	s.TaxID = strings.TrimSpace(in.TaxID)
	s.Phone = strings.TrimSpace(in.Phone)
	s.Email = strings.TrimSpace(in.Email)
	s.CategoryID = categoryID
	s.Category = nil
}

type SellerService struct {
	base
}

func NewSellerService(db *gorm.DB, authz Authorizer) *SellerService {
	return &SellerService{base: newBase(db, authz)}
}

func (s *SellerService) List(ctx context.Context) ([]models.Seller, error) {
	if err := s.authorize(ctx, gate.ActionList, policy.ResourceSeller); err != nil {
		return nil, err
	}
	var sellers []models.Seller
	return sellers, s.db.WithContext(ctx).Preload("Category").Order("name").Find(&sellers).Error
}

func (s *SellerService) Get(ctx context.Context, id uint) (*models.Seller, error) {
	if err := s.authorize(ctx, gate.ActionView, policy.ResourceSeller); err != nil {
		return nil, err
	}
	var seller models.Seller
	if err := s.db.WithContext(ctx).Preload("Category").First(&seller, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &seller, nil
}

func (s *SellerService) Create(ctx context.Context, in SellerInput) (*models.Seller, error) {
	if err := s.authorize(ctx, gate.ActionCreate, policy.ResourceSeller); err != nil {
		return nil, err
	}
	var seller models.Seller
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		categoryID, err := in.resolve(tx)
		if err != nil {
			return err
		}
		in.apply(&seller, categoryID)
		if err := tx.Omit(clause.Associations).Create(&seller).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionCreate, policy.ResourceSeller, seller.ID, "seller %q", seller.Name)
	})
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

func (s *SellerService) Update(ctx context.Context, id uint, in SellerInput) (*models.Seller, error) {
	if err := s.authorize(ctx, gate.ActionUpdate, policy.ResourceSeller); err != nil {
		return nil, err
	}
	var seller models.Seller
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&seller, id).Error; err != nil {
			return notFound(err)
		}
		categoryID, err := in.resolve(tx)
		if err != nil {
			return err
		}
		in.apply(&seller, categoryID)
		if err := tx.Omit(clause.Associations).Save(&seller).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionUpdate, policy.ResourceSeller, seller.ID, "seller %q", seller.Name)
	})
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

// Delete removes a seller; orders credited to it keep existing without one.
func (s *SellerService) Delete(ctx context.Context, id uint) error {
	if err := s.authorize(ctx, gate.ActionDelete, policy.ResourceSeller); err != nil {
		return err
	}
	return s.transaction(ctx, func(tx *gorm.DB) error {
		var seller models.Seller
		if err := tx.First(&seller, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&models.Order{}).Where("seller_id = ?", id).Update("seller_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&seller).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionDelete, policy.ResourceSeller, id, "seller %q", seller.Name)
	})
}
