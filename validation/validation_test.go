package validation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidators(t *testing.T) {
	v := make(Violations)
	Required("name", "  ", v)
	Email("email", "not-an-email", v)
	Email("optional_email", "", v)
	PositiveDecimal("amount", decimal.Zero, v)
	NonNegativeDecimal("total", decimal.RequireFromString("-0.01"), v)
	MinInt("quantity", 0, 1, v)
	OneOf("role", "root", []string{"admin", "staff", "seller"}, v)
	MaxLen("tax_id", "123456789012345678901", 20, v)

	want := map[string]string{
		"name":     "required",
		"email":    "invalid_email",
		"amount":   "must_be_positive",
		"total":    "must_not_be_negative",
		"quantity": "out_of_range",
		"role":     "invalid_choice",
		"tax_id":   "too_long",
	}
	if len(v) != len(want) {
		t.Fatalf("expected %d violations, got %v", len(want), v)
	}
	for f, code := range want {
		if v[f] != code {
			t.Fatalf("%s: want %s got %s", f, code, v[f])
		}
	}
	if f, c := v.First(); f != "amount" || c != "must_be_positive" {
		t.Fatalf("First: got %s %s", f, c)
	}
}

func TestAddKeepsFirstCode(t *testing.T) {
	v := make(Violations)
	Required("email", "", v)
	Email("email", "", v)
	v.Add("email", "email_taken")
	if v["email"] != "required" {
		t.Fatalf("expected first code to win, got %s", v["email"])
	}
	if !(Violations{}).Empty() {
		t.Fatalf("empty violations should be Empty")
	}
}
