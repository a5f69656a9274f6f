package services

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/notify"
	"github.com/diewo77/go-printshop/internal/policy"
	"github.com/diewo77/go-printshop/internal/settings"
	"github.com/diewo77/go-printshop/validation"
	"gorm.io/gorm"
)

// MailInput is the SMTP form. A blank password keeps the stored one unless
// ClearPassword is set.
type MailInput struct {
	Host           string `json:"host"`
	Port           string `json:"port"`
	UseTLS         bool   `json:"use_tls"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	ClearPassword  bool   `json:"clear_password"`
	From           string `json:"from"`
	TimeoutSeconds string `json:"timeout_seconds"`
}

type CompanyInput struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// SettingsView is everything shown on the settings page.
type SettingsView struct {
	Mail    settings.Mail        `json:"mail"`
	Company models.CompanyConfig `json:"company"`
	Values  []models.Setting     `json:"values"`
}

// SettingsService is admin only. SMTP changes are persisted and the live
// snapshot is reloaded after the transaction commits.
type SettingsService struct {
	base
	store    *settings.Store
	notifier Notifier
}

func NewSettingsService(db *gorm.DB, authz Authorizer, store *settings.Store, notifier Notifier) *SettingsService {
	return &SettingsService{base: newBase(db, authz), store: store, notifier: notifier}
}

func (s *SettingsService) View(ctx context.Context) (*SettingsView, error) {
	if err := s.authorize(ctx, gate.ActionView, policy.ResourceSetting); err != nil {
		return nil, err
	}
	company, err := loadCompany(ctx, s.db)
	if err != nil {
		return nil, err
	}
	values, err := settings.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return &SettingsView{Mail: s.store.Mail(), Company: company, Values: values}, nil
}

func (s *SettingsService) SaveMail(ctx context.Context, in MailInput) (settings.Mail, error) {
	if err := s.authorize(ctx, gate.ActionUpdate, policy.ResourceSetting); err != nil {
		return settings.Mail{}, err
	}
	current := s.store.Mail()
	v := validation.Violations{}
	host := strings.TrimSpace(in.Host)
	validation.Required("host", host, v)
	port := current.Port
	if raw := strings.TrimSpace(in.Port); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			v.Add("port", "invalid_number")
		} else if n < 1 || n > 65535 {
			v.Add("port", "out_of_range")
		} else {
			port = n
		}
	}
	timeout := current.Timeout
	if raw := strings.TrimSpace(in.TimeoutSeconds); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			v.Add("timeout_seconds", "invalid_number")
		} else if n < 1 || n > 300 {
			v.Add("timeout_seconds", "out_of_range")
		} else {
			timeout = time.Duration(n) * time.Second
		}
	}
	from := strings.TrimSpace(in.From)
	if from == "" {
		from = current.From
	}
	validation.Email("from", from, v)
	if err := check(v); err != nil {
		return settings.Mail{}, err
	}

	m := settings.Mail{
		Host:     host,
		Port:     port,
		UseTLS:   in.UseTLS,
		Username: strings.TrimSpace(in.Username),
		Password: in.Password,
		From:     from,
		Timeout:  timeout,
	}
	if m.Password == "" && !in.ClearPassword {
		m.Password = current.Password
	}
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := settings.PersistMail(tx, m); err != nil {
			return err
		}
		return audit(ctx, tx, actionUpdate, policy.ResourceSetting, 0, "smtp %s:%d", m.Host, m.Port)
	})
	if err != nil {
		return settings.Mail{}, err
	}
	if err := s.store.Reload(ctx); err != nil {
		return settings.Mail{}, err
	}
	return s.store.Mail(), nil
}

func (s *SettingsService) SaveCompany(ctx context.Context, in CompanyInput) (*models.CompanyConfig, error) {
	if err := s.authorize(ctx, gate.ActionUpdate, policy.ResourceSetting); err != nil {
		return nil, err
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 150, v)
	validation.MaxLen("tax_id", in.TaxID, 20, v)
	validation.MaxLen("address", in.Address, 255, v)
	validation.Email("email", in.Email, v)
	if err := check(v); err != nil {
		return nil, err
	}
	var cc models.CompanyConfig
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where(models.CompanyConfig{ID: 1}).FirstOrInit(&cc).Error; err != nil {
			return err
		}
		cc.ID = 1
		cc.Name = strings.TrimSpace(in.Name)
		cc.TaxID = strings.TrimSpace(in.TaxID)
		cc.Address = strings.TrimSpace(in.Address)
		cc.Phone = strings.TrimSpace(in.Phone)
		cc.Email = strings.TrimSpace(in.Email)
		if err := tx.Save(&cc).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionUpdate, "company", cc.ID, "company %q", cc.Name)
	})
	if err != nil {
		return nil, err
	}
	return &cc, nil
}

// SaveValue upserts a generic setting. SMTP keys go through SaveMail only.
func (s *SettingsService) SaveValue(ctx context.Context, key, value string) error {
	if err := s.authorize(ctx, gate.ActionUpdate, policy.ResourceSetting); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	v := validation.Violations{}
	validation.Required("key", key, v)
	validation.MaxLen("key", key, 100, v)
	if strings.HasPrefix(key, "smtp.") {
		v.Add("key", "invalid_choice")
	}
	if err := check(v); err != nil {
		return err
	}
	return s.transaction(ctx, func(tx *gorm.DB) error {
		if err := settings.Set(tx, key, value); err != nil {
			return err
		}
		return audit(ctx, tx, actionUpdate, policy.ResourceSetting, 0, "%s", key)
	})
}

// SendTestEmail sends a test message through the current SMTP settings. The log
// entry tells whether it was delivered.
func (s *SettingsService) SendTestEmail(ctx context.Context, to string) (*models.NotificationLog, error) {
	if err := s.authorize(ctx, gate.ActionSend, policy.ResourceSetting); err != nil {
		return nil, err
	}
	to = strings.TrimSpace(to)
	v := validation.Violations{}
	validation.Required("to", to, v)
	validation.Email("to", to, v)
	if err := check(v); err != nil {
		return nil, err
	}
	m := s.store.Mail()
	entry, err := s.notifier.SendEmail(ctx, notify.Notice{
		Recipient: to,
		Subject:   "Correo de prueba",
		Body:      "Este es un correo de prueba enviado desde " + m.Host + ".",
	})
	if err != nil {
		log.Printf("test email not logged: %v", err)
		return nil, err
	}
	return entry, nil
}

// loadCompany returns the singleton company row, or an empty one.
func loadCompany(ctx context.Context, db *gorm.DB) (models.CompanyConfig, error) {
	var cc models.CompanyConfig
	err := db.WithContext(ctx).Where(models.CompanyConfig{ID: 1}).FirstOrInit(&cc).Error
	return cc, err
}
