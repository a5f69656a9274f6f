package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/db"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/notify"
	"github.com/diewo77/go-printshop/internal/policy"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type env struct {
	db     *gorm.DB
	authz  *policy.AuthGate
	admin  models.User
	staff  models.User
	seller models.User
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Connect(config.DatabaseConfig{Driver: "sqlite", SQLitePath: "file:" + t.Name() + "?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.Migrate(conn, config.DatabaseConfig{Driver: "sqlite"}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{db: setupTestDB(t), authz: policy.NewAuthGate()}
	e.admin = models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin, PasswordHash: "x"}
	e.staff = models.User{Name: "Staff", Email: "staff@example.com", Role: models.RoleStaff, PasswordHash: "x"}
	e.seller = models.User{Name: "Seller", Email: "seller@example.com", Role: models.RoleSeller, PasswordHash: "x"}
	for _, u := range []*models.User{&e.admin, &e.staff, &e.seller} {
		must(t, e.db.Create(u).Error)
	}
	return e
}

func as(u models.User) context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)})
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// expectCode fails unless err is a ValidationError whose first code is code.
func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error %q, got %v", code, err)
	}
	if ve.Code() != code {
		t.Fatalf("expected code %q, got %q (%v)", code, ve.Code(), ve.Violations)
	}
}

func count(t *testing.T, conn *gorm.DB, model any, where ...any) int64 {
	t.Helper()
	var n int64
	q := conn.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	must(t, q.Count(&n).Error)
	return n
}

type fakeTransport struct {
	sent []notify.Message
	err  error
}

func (f *fakeTransport) Send(_ context.Context, msg notify.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func (e *env) client(t *testing.T, name, email string) models.Client {
	t.Helper()
	c := models.Client{Name: name, Email: email, Phone: "+51999888777"}
	must(t, e.db.Create(&c).Error)
	return c
}

func (e *env) now() time.Time { return today(time.Now()) }
