package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/db"
	"github.com/diewo77/go-printshop/internal/export"
	"github.com/diewo77/go-printshop/internal/metrics"
	"github.com/diewo77/go-printshop/internal/notify"
	"github.com/diewo77/go-printshop/internal/settings"
	"github.com/diewo77/go-printshop/internal/storage"
	"github.com/joho/godotenv"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
	ensureAdminFlag = flag.Bool("ensure-admin", false, "Create the admin user when no user exists, then exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	dbConn, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn, cfg.Database); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
		return
	}

	if *seedOnlyFlag {
		if err := db.Seed(ctx, dbConn); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Println("Seeding completed successfully")
		return
	}

	if err := db.Migrate(dbConn, cfg.Database); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if err := db.Seed(ctx, dbConn); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	created, err := db.EnsureAdmin(ctx, dbConn, cfg.Admin)
	if err != nil {
		log.Fatalf("Admin bootstrap failed: %v", err)
	}
	if created {
		log.Printf("Admin user %s created", cfg.Admin.Email)
	}
	if *ensureAdminFlag {
		return
	}

	store := settings.NewStore(dbConn, cfg.Mail)
	if err := store.Reload(ctx); err != nil {
		log.Fatalf("Loading settings failed: %v", err)
	}
	blobs, err := storage.New(ctx, cfg.Upload)
	if err != nil {
		log.Fatalf("Attachment storage unavailable: %v", err)
	}
	metrics.Init()

	appHandler := NewApp(dbConn, cfg, Deps{
		Settings:  store,
		Blobs:     blobs,
		Transport: notify.NewSMTPTransport(store),
		Exporter:  export.New(cfg.Export),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      appHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (dev=%v)", cfg.Server.Port, cfg.App.Dev)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
}
