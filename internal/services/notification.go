package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/internal/balance"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/notify"
	"github.com/diewo77/go-printshop/internal/policy"
	"gorm.io/gorm"
)

// WhatsAppSender records a messaging notice.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, n notify.Notice) (*models.NotificationLog, error)
}

type NotificationService struct {
	base
	whatsapp WhatsAppSender
}

func NewNotificationService(db *gorm.DB, authz Authorizer, whatsapp WhatsAppSender) *NotificationService {
	return &NotificationService{base: newBase(db, authz), whatsapp: whatsapp}
}

func (s *NotificationService) Recent(ctx context.Context, limit int) ([]models.NotificationLog, error) {
	if err := s.authorize(ctx, gate.ActionList, policy.ResourceNotification); err != nil {
		return nil, err
	}
	return notify.Recent(ctx, s.db, limit)
}

// SendWhatsApp notifies an order's client. Recipient defaults to the client's
// phone and body to a balance reminder.
func (s *NotificationService) SendWhatsApp(ctx context.Context, orderID uint, recipient, body string) (*models.NotificationLog, error) {
	if err := s.authorize(ctx, gate.ActionSend, policy.ResourceNotification); err != nil {
		return nil, err
	}
	var o models.Order
	if err := s.db.WithContext(ctx).Preload("Client").Preload("Payments").First(&o, orderID).Error; err != nil {
		return nil, notFound(err)
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" && o.Client != nil {
		recipient = o.Client.Phone
	}
	if recipient == "" {
		return nil, invalid("recipient", "required")
	}
	if strings.TrimSpace(body) == "" {
		sum := balance.Of(&o)
		body = fmt.Sprintf("Orden #%d: total %s, pagado %s, saldo %s.", o.ID, sum.Total.StringFixed(2), sum.Paid.StringFixed(2), sum.Balance.StringFixed(2))
	}
	id := o.ID
	return s.whatsapp.SendWhatsApp(ctx, notify.Notice{OrderID: &id, Recipient: recipient, Body: body})
}
