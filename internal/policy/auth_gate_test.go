package policy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/gate"
)

func ctxWithRole(role string) context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{ID: 1, Name: "u", Role: role})
}

func TestAuthorize_RoleMatrix(t *testing.T) {
	ag := NewAuthGate()
	cases := []struct {
		role     string
		action   gate.Action
		resource string
		allowed  bool
	}{
		{"admin", gate.ActionDelete, ResourceUser, true},
		{"admin", gate.ActionUpdate, ResourceSetting, true},
		{"staff", gate.ActionCreate, ResourceOrder, true},
		{"staff", gate.ActionDelete, ResourcePayment, true},
		{"staff", gate.ActionList, ResourceUser, false},
		{"staff", gate.ActionUpdate, ResourceSetting, false},
		{"seller", gate.ActionSend, ResourceNotification, true},
		{"seller", gate.ActionCreate, ResourceUser, false},
		{"unknown", gate.ActionList, ResourceOrder, false},
	}
	for _, c := range cases {
		err := ag.Authorize(ctxWithRole(c.role), c.action, c.resource)
		if c.allowed && err != nil {
			t.Errorf("%s %s:%s expected allowed, got %v", c.role, c.resource, c.action, err)
		}
		if !c.allowed && !errors.Is(err, gate.ErrForbidden) {
			t.Errorf("%s %s:%s expected forbidden, got %v", c.role, c.resource, c.action, err)
		}
	}

	if err := ag.Authorize(context.Background(), gate.ActionList, ResourceOrder); !errors.Is(err, gate.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestIsAdmin(t *testing.T) {
	ag := NewAuthGate()
	if !ag.IsAdmin(ctxWithRole("admin")) || ag.IsAdmin(ctxWithRole("staff")) || ag.IsAdmin(context.Background()) {
		t.Fatalf("IsAdmin mismatch")
	}
}

func TestRequireAdmin(t *testing.T) {
	ag := NewAuthGate()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := ag.RequireAdmin()(ok)

	req := httptest.NewRequest(http.MethodGet, "/users", nil).WithContext(ctxWithRole("admin"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin: expected 204, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/users", nil).WithContext(ctxWithRole("staff"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("staff html: expected redirect to /, got %d %s", rec.Code, rec.Header().Get("Location"))
	}

	req = httptest.NewRequest(http.MethodGet, "/users", nil).WithContext(ctxWithRole("seller"))
	req.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("seller json: expected 403, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous json: expected 401, got %d", rec.Code)
	}
}

func TestRequirePermission(t *testing.T) {
	ag := NewAuthGate()
	h := ag.RequirePermission(ResourceOrder, gate.ActionCreate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodPost, "/orders", nil).WithContext(ctxWithRole("seller"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("seller may create orders, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/orders", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("anonymous html: expected redirect to login, got %d", rec.Code)
	}
}
