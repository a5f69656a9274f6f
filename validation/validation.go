package validation

import (
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
)

// Violations maps a field name to a violation code (translated by i18n).
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, exists := v[field]; !exists {
		v[field] = code
	}
}

// First returns one violation code in field-name order, for single-line banners.
func (v Violations) First() (field, code string) {
	for f, c := range v {
		if field == "" || f < field {
			field, code = f, c
		}
	}
	return field, code
}

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func MaxLen(field, value string, max int, v Violations) {
	if len([]rune(value)) > max {
		v.Add(field, "too_long")
	}
}

// Email accepts an empty value; use Required alongside it when mandatory.
func Email(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v.Add(field, "invalid_email")
	}
}

func PositiveDecimal(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v.Add(field, "must_be_positive")
	}
}

func NonNegativeDecimal(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v.Add(field, "must_not_be_negative")
	}
}

func MinInt(field string, val, min int, v Violations) {
	if val < min {
		v.Add(field, "out_of_range")
	}
}

// OneOf checks value against a closed set.
func OneOf[T ~string](field string, value T, allowed []T, v Violations) {
	for _, a := range allowed {
		if a == value {
			return
		}
	}
	v.Add(field, "invalid_choice")
}
