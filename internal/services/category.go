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

type CategoryInput struct {
	Name string `json:"name"`
}

type CategoryService struct {
	base
}

func NewCategoryService(db *gorm.DB, authz Authorizer) *CategoryService {
	return &CategoryService{base: newBase(db, authz)}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	if err := s.authorize(ctx, gate.ActionList, policy.ResourceCategory); err != nil {
		return nil, err
	}
	var cats []models.Category
	return cats, s.db.WithContext(ctx).Order("name").Find(&cats).Error
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	if err := s.authorize(ctx, gate.ActionView, policy.ResourceCategory); err != nil {
		return nil, err
	}
	var c models.Category
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := s.authorize(ctx, gate.ActionCreate, policy.ResourceCategory); err != nil {
		return nil, err
	}
	c := models.Category{Name: strings.TrimSpace(in.Name)}
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := validateCategoryName(tx, c.Name, 0); err != nil {
			return err
		}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionCreate, policy.ResourceCategory, c.ID, "category %q", c.Name)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	if err := s.authorize(ctx, gate.ActionUpdate, policy.ResourceCategory); err != nil {
		return nil, err
	}
	var c models.Category
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return notFound(err)
		}
		c.Name = strings.TrimSpace(in.Name)
		if err := validateCategoryName(tx, c.Name, id); err != nil {
			return err
		}
		if err := tx.Save(&c).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionUpdate, policy.ResourceCategory, c.ID, "category %q", c.Name)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a category; its sellers keep existing without one.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	if err := s.authorize(ctx, gate.ActionDelete, policy.ResourceCategory); err != nil {
		return err
	}
	return s.transaction(ctx, func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.First(&c, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&models.Seller{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&c).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionDelete, policy.ResourceCategory, id, "category %q", c.Name)
	})
}

// validateCategoryName checks presence and uniqueness, ignoring the row being updated.
func validateCategoryName(tx *gorm.DB, name string, self uint) error {
	v := validation.Violations{}
	validation.Required("name", name, v)
	validation.MaxLen("name", name, 100, v)
	if err := check(v); err != nil {
		return err
	}
	var n int64
	if err := tx.Model(&models.Category{}).Where("name = ? AND id <> ?", name, self).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return invalid("name", "name_taken")
	}
	return nil
}
