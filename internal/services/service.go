// Package services holds the business operations. Every mutating operation
// checks authorization, runs in one transaction and appends an audit row to
// that same transaction.
package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DateLayout is the wire format of dates in forms and JSON inputs.
const DateLayout = "2006-01-02"

// Audit actions.
const (
	actionCreate = "create"
	actionUpdate = "update"
	actionDelete = "delete"
)

// Authorizer is the single authorization check every service goes through.
type Authorizer interface {
	Authorize(ctx context.Context, action gate.Action, resource string) error
}

type base struct {
	db    *gorm.DB
	authz Authorizer
	now   func() time.Time
}

func newBase(db *gorm.DB, authz Authorizer) base {
	return base{db: db, authz: authz, now: time.Now}
}

func (b base) authorize(ctx context.Context, action gate.Action, resource string) error {
	if err := b.authz.Authorize(ctx, action, resource); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrForbidden, action, resource, err)
	}
	return nil
}

func (b base) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return b.db.WithContext(ctx).Transaction(fn)
}

// actorID returns the acting user's id for foreign keys, or nil.
func actorID(ctx context.Context) *uint {
	if id, ok := auth.UserIDFromContext(ctx); ok {
		return &id
	}
	return nil
}

// audit appends a row to the logs table inside tx.
func audit(ctx context.Context, tx *gorm.DB, action, entity string, id uint, format string, args ...any) error {
	entry := models.AuditLog{
		Action:   action,
		Entity:   entity,
		EntityID: &id,
		Message:  fmt.Sprintf(format, args...),
		UserID:   actorID(ctx),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit %s %s: %w", action, entity, err)
	}
	return nil
}

// maxAmount is the first magnitude a decimal(12,2) column cannot hold.
var maxAmount = decimal.New(1, 10)

// parseAmount reads an optional decimal; empty yields def. The result is rounded to cents.
func parseAmount(field, raw string, def decimal.Decimal, v validation.Violations) decimal.Decimal {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		return def
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		v.Add(field, "invalid_number")
		return def
	}
	d = d.Round(2)
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		v.Add(field, "out_of_range")
		return def
	}
	return d
}

// parseDate reads an optional date; empty yields def.
func parseDate(field, raw string, def time.Time, v validation.Violations) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		v.Add(field, "invalid_date")
		return def
	}
	return t
}

// parseOptionalID treats "", "0" and "-" as no selection.
func parseOptionalID(field, raw string, v validation.Violations) *uint {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" || raw == "-" {
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		v.Add(field, "invalid_choice")
		return nil
	}
	id := uint(n)
	return &id
}

// parseRequiredID is parseOptionalID with a "required" violation on no selection.
func parseRequiredID(field, raw string, v validation.Violations) uint {
	id := parseOptionalID(field, raw, v)
	if id == nil {
		v.Add(field, "required")
		return 0
	}
	return *id
}

// exists reports whether a row with id exists in model's table.
func exists(tx *gorm.DB, model any, id uint) (bool, error) {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// today truncates t to a UTC calendar date.
func today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
