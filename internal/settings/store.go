// Package settings keeps key/value settings rows and the live SMTP snapshot
// built from them.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Keys of the persisted SMTP settings.
const (
	KeySMTPHost     = "smtp.host"
	KeySMTPPort     = "smtp.port"
	KeySMTPUseTLS   = "smtp.use_tls"
	KeySMTPUsername = "smtp.username"
	KeySMTPPassword = "smtp.password"
	KeySMTPFrom     = "smtp.from"
	KeySMTPTimeout  = "smtp.timeout_seconds"
)

// Mail is the SMTP configuration in effect.
type Mail struct {
	Host     string        `json:"host"`
	Port     int           `json:"port"`
	UseTLS   bool          `json:"use_tls"`
	Username string        `json:"username"`
	Password string        `json:"-"`
	From     string        `json:"from"`
	Timeout  time.Duration `json:"timeout"`
}

// MailFromConfig converts the environment defaults.
func MailFromConfig(c config.MailConfig) Mail {
	return Mail{Host: c.Host, Port: c.Port, UseTLS: c.UseTLS, Username: c.Username, Password: c.Password, From: c.From, Timeout: c.Timeout}
}

// Store serves the current SMTP snapshot. Readers never see a half-applied
// update: the snapshot is swapped whole on Reload.
type Store struct {
	db       *gorm.DB
	defaults Mail
	current  atomic.Pointer[Mail]
}

// NewStore returns a store whose snapshot starts at the environment defaults.
// Call Reload to apply persisted values.
func NewStore(db *gorm.DB, defaults config.MailConfig) *Store {
	s := &Store{db: db, defaults: MailFromConfig(defaults)}
	m := s.defaults
	s.current.Store(&m)
	return s
}

// Mail returns a copy of the snapshot.
func (s *Store) Mail() Mail {
	return *s.current.Load()
}

// Reload reads the smtp.* rows and replaces the snapshot. Missing or
// unparsable values keep the environment default.
func (s *Store) Reload(ctx context.Context) error {
	var rows []models.Setting
	if err := s.db.WithContext(ctx).Where("key LIKE ?", "smtp.%").Find(&rows).Error; err != nil {
		return fmt.Errorf("load smtp settings: %w", err)
	}
	m := s.defaults
	for _, r := range rows {
		switch r.Key {
		case KeySMTPHost:
			m.Host = r.Value
		case KeySMTPPort:
			if p, err := strconv.Atoi(r.Value); err == nil {
				m.Port = p
			}
		case KeySMTPUseTLS:
			m.UseTLS = r.Value == "true"
		case KeySMTPUsername:
			m.Username = r.Value
		case KeySMTPPassword:
			m.Password = r.Value
		case KeySMTPFrom:
			m.From = r.Value
		case KeySMTPTimeout:
			if n, err := strconv.Atoi(r.Value); err == nil && n > 0 {
				m.Timeout = time.Duration(n) * time.Second
			}
		}
	}
	s.current.Store(&m)
	return nil
}

// PersistMail writes m as smtp.* rows using tx. The snapshot is untouched
// until Reload runs after the transaction commits.
func PersistMail(tx *gorm.DB, m Mail) error {
	values := map[string]string{
		KeySMTPHost:     m.Host,
		KeySMTPPort:     strconv.Itoa(m.Port),
		KeySMTPUseTLS:   strconv.FormatBool(m.UseTLS),
		KeySMTPUsername: m.Username,
		KeySMTPPassword: m.Password,
		KeySMTPFrom:     m.From,
		KeySMTPTimeout:  strconv.Itoa(int(m.Timeout / time.Second)),
	}
	for k, v := range values {
		if err := Set(tx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// Set upserts one setting.
func Set(tx *gorm.DB, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("empty setting key")
	}
	row := models.Setting{Key: key, Value: value}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

// Get returns a setting's value; ok is false when the key is absent.
func Get(ctx context.Context, db *gorm.DB, key string) (value string, ok bool, err error) {
	var row models.Setting
	err = db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Value, true, nil
}

// List returns every setting except the SMTP ones, ordered by key.
func List(ctx context.Context, db *gorm.DB) ([]models.Setting, error) {
	var rows []models.Setting
	err := db.WithContext(ctx).Where("key NOT LIKE ?", "smtp.%").Order("key").Find(&rows).Error
	return rows, err
}
