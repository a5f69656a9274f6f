package settings

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/db"
	"gorm.io/gorm"
)

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

var envMail = config.MailConfig{Host: "mailhog", Port: 1025, From: "no-reply@example.com", Timeout: 10 * time.Second}

func TestStore_DefaultsUntilReload(t *testing.T) {
	conn := setupTestDB(t)
	s := NewStore(conn, envMail)
	if got := s.Mail(); got.Host != "mailhog" || got.Port != 1025 {
		t.Fatalf("expected env defaults, got %+v", got)
	}
	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := s.Mail(); got.Host != "mailhog" {
		t.Fatalf("no rows must keep defaults, got %+v", got)
	}
}

func TestStore_PersistThenReload(t *testing.T) {
	conn := setupTestDB(t)
	s := NewStore(conn, envMail)
	want := Mail{Host: "smtp.example.com", Port: 587, UseTLS: true, Username: "u", Password: "p", From: "shop@example.com", Timeout: 5 * time.Second}

	err := conn.Transaction(func(tx *gorm.DB) error { return PersistMail(tx, want) })
	if err != nil {
		t.Fatal(err)
	}
	if s.Mail().Host != "mailhog" {
		t.Fatalf("snapshot must not change before Reload")
	}
	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := s.Mail(); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	// A fresh store over the same database sees the persisted values: they survive restarts.
	again := NewStore(conn, envMail)
	if err := again.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if again.Mail() != want {
		t.Fatalf("persisted settings lost")
	}

	// Second persist updates in place.
	want.Host = "smtp2.example.com"
	if err := PersistMail(conn, want); err != nil {
		t.Fatal(err)
	}
	var n int64
	conn.Table("settings").Where("key = ?", KeySMTPHost).Count(&n)
	if n != 1 {
		t.Fatalf("expected a single smtp.host row, got %d", n)
	}
}

func TestStore_RolledBackPersistIsInvisible(t *testing.T) {
	conn := setupTestDB(t)
	s := NewStore(conn, envMail)
	_ = conn.Transaction(func(tx *gorm.DB) error {
		if err := PersistMail(tx, Mail{Host: "never", Port: 1}); err != nil {
			return err
		}
		return gorm.ErrInvalidData
	})
	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Mail().Host != "mailhog" {
		t.Fatalf("rolled back values leaked: %+v", s.Mail())
	}
}

func TestGetSetList(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()
	if _, ok, err := Get(ctx, conn, "currency"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := Set(conn, "currency", "PEN"); err != nil {
		t.Fatal(err)
	}
	if err := Set(conn, "currency", "USD"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := Get(ctx, conn, "currency")
	if err != nil || !ok || v != "USD" {
		t.Fatalf("got %q %v %v", v, ok, err)
	}
	if err := Set(conn, "  ", "x"); err == nil {
		t.Fatalf("empty key must fail")
	}
	_ = PersistMail(conn, Mail{Host: "h"})
	rows, err := List(ctx, conn)
	if err != nil || len(rows) != 1 || rows[0].Key != "currency" {
		t.Fatalf("list must hide smtp rows, got %+v", rows)
	}
}
