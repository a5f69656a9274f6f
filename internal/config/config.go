// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Mail     MailConfig
	Admin    AdminConfig
	Session  SessionConfig
	Notify   NotifyConfig
	Export   ExportConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig selects the driver and connection. URL, when set, wins over the parts.
type DatabaseConfig struct {
	Driver     string // postgres | sqlite
	URL        string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Migrations bool
	Debug      bool
}

// UploadConfig holds attachment storage settings.
type UploadConfig struct {
	Driver      string // local | s3
	Dir         string
	MaxBytes    int64
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Secure    bool
}

// MailConfig seeds the persisted SMTP settings the first time the app starts.
type MailConfig struct {
	Host     string
	Port     int
	UseTLS   bool
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// AdminConfig holds the credentials of the bootstrap administrator.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

type NotifyConfig struct {
	OrderCreated bool
}

type ExportConfig struct {
	PDFEnabled bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev bool
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// MigrateURL returns the PostgreSQL connection string in URL format, as golang-migrate expects.
func (d DatabaseConfig) MigrateURL() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// Load reads configuration from environment variables.
// Every value has a default suitable for the docker-compose development setup.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			URL:        getEnv("DATABASE_URL", ""),
			Host:       getEnv("DB_HOST", "db"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("POSTGRES_USER", "postgres"),
			Password:   getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:     getEnv("POSTGRES_DB", "printshop"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "printshop.db"),
			Migrations: getEnvBool("MIGRATIONS", false),
			Debug:      getEnvBool("DB_DEBUG", false),
		},
		Upload: UploadConfig{
			Driver:      getEnv("STORAGE_DRIVER", "local"),
			Dir:         getEnv("UPLOAD_FOLDER", "uploads"),
			MaxBytes:    int64(getEnvInt("MAX_CONTENT_LENGTH", 32*1024*1024)),
			S3Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
			S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("S3_SECRET_KEY", ""),
			S3Bucket:    getEnv("S3_BUCKET", "printshop"),
			S3Secure:    getEnvBool("S3_SECURE", false),
		},
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", "mailhog"),
			Port:     getEnvInt("SMTP_PORT", 1025),
			UseTLS:   getEnvBool("SMTP_USE_TLS", false),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@example.com"),
			Timeout:  time.Duration(getEnvInt("SMTP_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Admin: AdminConfig{
			Name:     getEnv("ADMIN_NAME", "Admin"),
			Email:    getEnv("ADMIN_EMAIL", "admin@example.com"),
			Password: getEnv("ADMIN_PASSWORD", "admin1234"),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "devsessionsecret"),
			TTL:    time.Duration(getEnvInt("SESSION_DAYS", 14)) * 24 * time.Hour,
		},
		Notify: NotifyConfig{
			OrderCreated: getEnvBool("NOTIFY_ORDER_CREATED", true),
		},
		Export: ExportConfig{
			PDFEnabled: getEnvBool("PDF_ENABLED", true),
		},
		App: AppConfig{
			Dev: getEnvBool("DEV", false),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool accepts "1", "true", "yes" as true; any other non-empty value is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
