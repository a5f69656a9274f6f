package services

import (
	"errors"
	"testing"

	"github.com/diewo77/go-printshop/internal/models"
)

func TestClientService_CRUDAndAudit(t *testing.T) {
	e := newEnv(t)
	svc := NewClientService(e.db, e.authz)
	ctx := as(e.staff)

	_, err := svc.Create(ctx, ClientInput{Name: "  "})
	expectCode(t, err, "required")
	_, err = svc.Create(ctx, ClientInput{Name: "ACME", Email: "nope"})
	expectCode(t, err, "invalid_email")

	c, err := svc.Create(ctx, ClientInput{Name: " ACME ", Email: "Ventas@Acme.pe"})
	must(t, err)
	if c.Name != "ACME" {
		t.Fatalf("name not trimmed: %q", c.Name)
	}
	_, err = svc.Create(ctx, ClientInput{Name: "Beta SAC", Email: "beta@example.com"})
	must(t, err)

	found, err := svc.List(ctx, "acme")
	must(t, err)
	if len(found) != 1 || found[0].ID != c.ID {
		t.Fatalf("search by name: %+v", found)
	}
	found, err = svc.List(ctx, "BETA@")
	must(t, err)
	if len(found) != 1 {
		t.Fatalf("search by email: %+v", found)
	}

	_, err = svc.Update(ctx, c.ID, ClientInput{Name: "ACME Perú"})
	must(t, err)
	if _, err := svc.Update(ctx, 9999, ClientInput{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var logs []models.AuditLog
	must(t, e.db.Where("entity = ?", "client").Order("id").Find(&logs).Error)
	if len(logs) != 3 || logs[0].Action != "create" || logs[2].Action != "update" {
		t.Fatalf("audit trail: %+v", logs)
	}
	if logs[0].UserID == nil || *logs[0].UserID != e.staff.ID {
		t.Fatalf("audit must record the acting user")
	}
}

func TestClientService_DeleteGuard(t *testing.T) {
	e := newEnv(t)
	svc := NewClientService(e.db, e.authz)
	ctx := as(e.staff)
	c := e.client(t, "ACME", "")
	must(t, e.db.Create(&models.Order{ClientID: c.ID, Date: e.now()}).Error)

	expectCode(t, svc.Delete(ctx, c.ID), "client_has_orders")
	if count(t, e.db, &models.Client{}) != 1 {
		t.Fatalf("client must survive")
	}

	free := e.client(t, "Libre", "")
	must(t, svc.Delete(ctx, free.ID))
	if err := svc.Delete(ctx, free.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestCategoryService_UniqueAndDeleteNullsSellers(t *testing.T) {
	e := newEnv(t)
	cats := NewCategoryService(e.db, e.authz)
	sellers := NewSellerService(e.db, e.authz)
	ctx := as(e.staff)

	cat, err := cats.Create(ctx, CategoryInput{Name: "Diseño"})
	must(t, err)
	_, err = cats.Create(ctx, CategoryInput{Name: "Diseño"})
	expectCode(t, err, "name_taken")
	other, err := cats.Create(ctx, CategoryInput{Name: "Offset"})
	must(t, err)
	_, err = cats.Update(ctx, other.ID, CategoryInput{Name: "Diseño"})
	expectCode(t, err, "name_taken")
	_, err = cats.Update(ctx, cat.ID, CategoryInput{Name: "Diseño"})
	must(t, err)

	s, err := sellers.Create(ctx, SellerInput{Name: "Pedro", CategoryID: "1"})
	must(t, err)
	if s.CategoryID == nil || *s.CategoryID != cat.ID {
		t.Fatalf("category not set: %+v", s)
	}
	must(t, cats.Delete(ctx, cat.ID))
	got, err := sellers.Get(ctx, s.ID)
	must(t, err)
	if got.CategoryID != nil {
		t.Fatalf("seller must lose its category, got %v", *got.CategoryID)
	}
}

func TestSellerService_NoneSentinel(t *testing.T) {
	e := newEnv(t)
	svc := NewSellerService(e.db, e.authz)
	ctx := as(e.seller)

	for _, raw := range []string{"", "0", "-"} {
		s, err := svc.Create(ctx, SellerInput{Name: "Ana", CategoryID: raw})
		must(t, err)
		if s.CategoryID != nil {
			t.Fatalf("%q must normalize to no category", raw)
		}
	}
	_, err := svc.Create(ctx, SellerInput{Name: "Ana", CategoryID: "42"})
	expectCode(t, err, "invalid_choice")
	_, err = svc.Create(ctx, SellerInput{Name: "Ana", CategoryID: "abc"})
	expectCode(t, err, "invalid_choice")

	list, err := svc.List(ctx)
	must(t, err)
	if len(list) != 3 {
		t.Fatalf("expected 3 sellers, got %d", len(list))
	}
}

func TestSellerService_DeleteKeepsOrders(t *testing.T) {
	e := newEnv(t)
	svc := NewSellerService(e.db, e.authz)
	ctx := as(e.staff)
	s, err := svc.Create(ctx, SellerInput{Name: "Pedro"})
	must(t, err)
	c := e.client(t, "ACME", "")
	o := models.Order{ClientID: c.ID, SellerID: &s.ID, Date: e.now()}
	must(t, e.db.Create(&o).Error)

	must(t, svc.Delete(ctx, s.ID))
	var got models.Order
	must(t, e.db.First(&got, o.ID).Error)
	if got.SellerID != nil {
		t.Fatalf("order must lose its seller")
	}
}
