package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/policy"
	"github.com/diewo77/go-printshop/validation"
	"gorm.io/gorm"
)

// DefaultPassword is assigned when a user is created without one.
const DefaultPassword = "changeme123"

// ErrInvalidCredentials is returned by Authenticate for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserInput is the user form. An empty Password keeps the current one on
// update and falls back to DefaultPassword on create.
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type UserService struct {
	base
}

func NewUserService(db *gorm.DB, authz Authorizer) *UserService {
	return &UserService{base: newBase(db, authz)}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	if err := s.authorize(ctx, gate.ActionList, policy.ResourceUser); err != nil {
		return nil, err
	}
	var users []models.User
	return users, s.db.WithContext(ctx).Order("name").Find(&users).Error
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	if err := s.authorize(ctx, gate.ActionView, policy.ResourceUser); err != nil {
		return nil, err
	}
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if err := s.authorize(ctx, gate.ActionCreate, policy.ResourceUser); err != nil {
		return nil, err
	}
	u := models.User{Role: models.RoleStaff}
	password := in.Password
	if password == "" {
		password = DefaultPassword
	}
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := s.apply(tx, in, &u); err != nil {
			return err
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionCreate, policy.ResourceUser, u.ID, "user %s role %s", u.Email, u.Role)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) Update(ctx context.Context, id uint, in UserInput) (*models.User, error) {
	if err := s.authorize(ctx, gate.ActionUpdate, policy.ResourceUser); err != nil {
		return nil, err
	}
	var u models.User
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&u, id).Error; err != nil {
			return notFound(err)
		}
		if err := s.apply(tx, in, &u); err != nil {
			return err
		}
		if in.Password != "" {
			hash, err := auth.HashPassword(in.Password)
			if err != nil {
				return err
			}
			u.PasswordHash = hash
		}
		if err := tx.Save(&u).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionUpdate, policy.ResourceUser, u.ID, "user %s role %s", u.Email, u.Role)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// apply validates in and copies it onto u. Email uniqueness is checked before
// the write so a duplicate is a validation failure, not a constraint error.
func (s *UserService) apply(tx *gorm.DB, in UserInput, u *models.User) error {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	role := u.Role
	if in.Role != "" {
		role = models.Role(in.Role)
	}

	v := validation.Violations{}
	validation.Required("name", name, v)
	validation.MaxLen("name", name, 120, v)
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	validation.OneOf("role", role, models.Roles, v)
	if in.Password != "" && len(in.Password) < 6 {
		v.Add("password", "too_short")
	}
	if err := check(v); err != nil {
		return err
	}

	var taken int64
	if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", email, u.ID).Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return invalid("email", "email_taken")
	}
	u.Name, u.Email, u.Role = name, email, role
	return nil
}

// Delete removes a user. Orders, payments and uploads they made are kept
// with their user reference cleared. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.authorize(ctx, gate.ActionDelete, policy.ResourceUser); err != nil {
		return err
	}
	if self, ok := auth.UserIDFromContext(ctx); ok && self == id {
		return invalid("user", "cannot_delete_self")
	}
	return s.transaction(ctx, func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&u).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionDelete, policy.ResourceUser, id, "user %s", u.Email)
	})
}

// Authenticate checks credentials for the login form. It needs no principal.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// Principal loads the session user; it is the auth.UserLoader of the app.
func (s *UserService) Principal(ctx context.Context, id uint) (auth.Principal, bool) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return auth.Principal{}, false
	}
	return auth.Principal{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}, true
}
