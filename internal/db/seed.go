package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/models"
	"gorm.io/gorm"
)

// EnsureAdmin creates the bootstrap administrator only when no user exists yet.
// It reports whether a user was created.
func EnsureAdmin(ctx context.Context, conn *gorm.DB, admin config.AdminConfig) (bool, error) {
	created := false
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		hash, err := auth.HashPassword(admin.Password)
		if err != nil {
			return err
		}
		u := models.User{Name: admin.Name, Email: strings.ToLower(strings.TrimSpace(admin.Email)), Role: models.RoleAdmin, PasswordHash: hash}
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	return created, nil
}

// Seed makes sure the singleton company row exists. It is idempotent.
func Seed(ctx context.Context, conn *gorm.DB) error {
	var cc models.CompanyConfig
	return conn.WithContext(ctx).Where(models.CompanyConfig{ID: 1}).
		Attrs(models.CompanyConfig{Name: "Imprenta"}).
		FirstOrCreate(&cc).Error
}
