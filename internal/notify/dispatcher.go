// Package notify delivers notifications and records every attempt in the
// notification log. Delivery failures are recorded, never returned to callers.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/diewo77/go-printshop/internal/metrics"
	"github.com/diewo77/go-printshop/internal/models"
	"gorm.io/gorm"
)

const defaultTimeout = 10 * time.Second

// Notice describes a notification about an optional order.
type Notice struct {
	OrderID   *uint
	Recipient string
	Subject   string
	Body      string
}

// Dispatcher sends notices and keeps the log.
type Dispatcher struct {
	db        *gorm.DB
	transport Transport
	timeout   func() time.Duration
}

// NewDispatcher returns a dispatcher. timeout is read before each send so a
// changed SMTP timeout applies at once; nil means ten seconds.
func NewDispatcher(db *gorm.DB, transport Transport, timeout func() time.Duration) *Dispatcher {
	if timeout == nil {
		timeout = func() time.Duration { return defaultTimeout }
	}
	return &Dispatcher{db: db, transport: transport, timeout: timeout}
}

// SendEmail logs a pending entry, calls the transport under a deadline and
// stores the outcome. The returned error is only ever a storage failure.
func (d *Dispatcher) SendEmail(ctx context.Context, n Notice) (*models.NotificationLog, error) {
	entry := &models.NotificationLog{
		OrderID:   n.OrderID,
		Recipient: strings.TrimSpace(n.Recipient),
		Channel:   models.ChannelEmail,
		Subject:   n.Subject,
		Body:      n.Body,
		Status:    models.DeliveryPending,
	}
	if err := d.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("create notification log: %w", err)
	}

	var sendErr error
	if entry.Recipient == "" {
		sendErr = errors.New("no recipient")
	} else {
		timeout := d.timeout()
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		sendCtx, cancel := context.WithTimeout(ctx, timeout)
		sendErr = d.transport.Send(sendCtx, Message{To: entry.Recipient, Subject: n.Subject, Body: n.Body})
		if sendErr != nil && errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
			sendErr = fmt.Errorf("timeout after %s: %w", timeout, sendErr)
		}
		cancel()
	}

	if sendErr != nil {
		entry.Status = models.DeliveryError
		entry.Response = sendErr.Error()
		log.Printf("notify: email to %q failed: %v", entry.Recipient, sendErr)
	} else {
		entry.Status = models.DeliverySent
		entry.Response = "ok"
	}
	return entry, d.finish(entry)
}

// SendWhatsApp records a simulated message; no provider is wired.
func (d *Dispatcher) SendWhatsApp(ctx context.Context, n Notice) (*models.NotificationLog, error) {
	entry := &models.NotificationLog{
		OrderID:   n.OrderID,
		Recipient: strings.TrimSpace(n.Recipient),
		Channel:   models.ChannelWhatsApp,
		Subject:   n.Subject,
		Body:      n.Body,
		Status:    models.DeliverySimulated,
		Response:  "simulated: no provider configured",
	}
	if err := d.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("create notification log: %w", err)
	}
	metrics.NotificationsTotal.WithLabelValues(string(entry.Channel), string(entry.Status)).Inc()
	return entry, nil
}

// finish persists the final status with a context that survives the send deadline.
func (d *Dispatcher) finish(entry *models.NotificationLog) error {
	metrics.NotificationsTotal.WithLabelValues(string(entry.Channel), string(entry.Status)).Inc()
	err := d.db.Model(entry).Updates(map[string]any{"status": entry.Status, "response": entry.Response}).Error
	if err != nil {
		return fmt.Errorf("update notification log: %w", err)
	}
	return nil
}

// Recent returns the latest log entries, newest first.
func Recent(ctx context.Context, db *gorm.DB, limit int) ([]models.NotificationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []models.NotificationLog
	err := db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
