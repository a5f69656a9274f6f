package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/internal/balance"
	"github.com/diewo77/go-printshop/internal/export"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/notify"
	"github.com/diewo77/go-printshop/internal/policy"
	"github.com/diewo77/go-printshop/internal/storage"
	"github.com/diewo77/go-printshop/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderInput is the order form. Empty statuses keep the current value
// (pending on create); SellerID "" or "0" means no seller; an empty UserID
// keeps the current creator, or the acting user on create.
type OrderInput struct {
	ClientID       string `json:"client_id"`
	SellerID       string `json:"seller_id"`
	UserID         string `json:"user_id"`
	Date           string `json:"date"`
	NetPrice       string `json:"net_price"`
	Tax            string `json:"tax"`
	Total          string `json:"total"`
	WorkStatus     string `json:"work_status"`
	DispatchStatus string `json:"dispatch_status"`
	PaymentStatus  string `json:"payment_status"`
	Notes          string `json:"notes"`
}

// OrderFilter narrows List. State filters on the computed payment state and
// Sort "balance" orders by outstanding balance, both evaluated in SQL.
type OrderFilter struct {
	State    string
	Sort     string
	ClientID uint
}

// OrderView is an order with its freshly computed balance.
type OrderView struct {
	models.Order
	Summary balance.Summary `json:"summary"`
}

// CalendarEvent is one order on the calendar feed.
type CalendarEvent struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	URL   string `json:"url"`
	State string `json:"state"`
}

// Notifier sends emails and logs them; a failed delivery is not an error.
type Notifier interface {
	SendEmail(ctx context.Context, n notify.Notice) (*models.NotificationLog, error)
}

type OrderService struct {
	base
	notifier       Notifier
	blobs          storage.Store
	notifyOnCreate bool
}

// NewOrderService wires the order operations. notifier and blobs may be nil.
func NewOrderService(db *gorm.DB, authz Authorizer, notifier Notifier, blobs storage.Store, notifyOnCreate bool) *OrderService {
	return &OrderService{base: newBase(db, authz), notifier: notifier, blobs: blobs, notifyOnCreate: notifyOnCreate}
}

func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]OrderView, error) {
	if err := s.authorize(ctx, gate.ActionList, policy.ResourceOrder); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Preload("Client").Preload("Seller").Preload("Payments")
	if f.State != "" {
		v := validation.Violations{}
		validation.OneOf("state", models.PaymentStatus(f.State), models.PaymentStatuses, v)
		if err := check(v); err != nil {
			return nil, err
		}
		q = q.Scopes(balance.WithState(models.PaymentStatus(f.State)))
	}
	if f.ClientID != 0 {
		q = q.Where("orders.client_id = ?", f.ClientID)
	}
	if f.Sort == "balance" {
		q = q.Scopes(balance.ByBalanceDesc)
	} else {
		q = q.Order("orders.date DESC").Order("orders.id DESC")
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return views(orders), nil
}

func views(orders []models.Order) []OrderView {
	out := make([]OrderView, len(orders))
	for i := range orders {
		out[i] = OrderView{Order: orders[i], Summary: balance.Of(&orders[i])}
	}
	return out
}

// Get loads an order with everything shown on its detail page.
func (s *OrderService) Get(ctx context.Context, id uint) (*OrderView, error) {
	if err := s.authorize(ctx, gate.ActionView, policy.ResourceOrder); err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, id)
}

func (s *OrderService) load(ctx context.Context, db *gorm.DB, id uint) (*OrderView, error) {
	var o models.Order
	err := db.WithContext(ctx).
		Preload("Client").Preload("Seller").Preload("User").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("date, id") }).
		Preload("Descriptions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&o, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &OrderView{Order: o, Summary: balance.Of(&o)}, nil
}

// Create stores the order, then emails the client a confirmation when
// enabled. The email is sent after commit and cannot undo the order.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*models.Order, error) {
	if err := s.authorize(ctx, gate.ActionCreate, policy.ResourceOrder); err != nil {
		return nil, err
	}
	o := models.Order{
		Date:           today(s.now()),
		WorkStatus:     models.WorkPending,
		DispatchStatus: models.DispatchPending,
		PaymentStatus:  models.PaymentPending,
		UserID:         actorID(ctx),
	}
	var client models.Client
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := s.resolve(tx, in, &o); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&o).Error; err != nil {
			return err
		}
		if err := tx.First(&client, o.ClientID).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionCreate, policy.ResourceOrder, o.ID, "order for %q total %s", client.Name, o.Total.StringFixed(2))
	})
	if err != nil {
		return nil, err
	}
	o.Client = &client
	s.notifyCreated(ctx, &o)
	return &o, nil
}

func (s *OrderService) notifyCreated(ctx context.Context, o *models.Order) {
	if !s.notifyOnCreate || s.notifier == nil || o.Client == nil || strings.TrimSpace(o.Client.Email) == "" {
		return
	}
	id := o.ID
	n := notify.Notice{
		OrderID:   &id,
		Recipient: o.Client.Email,
		Subject:   fmt.Sprintf("Orden #%d registrada", o.ID),
		Body: fmt.Sprintf("Hola %s,\n\nRegistramos su orden #%d del %s por un total de %s.\n\nGracias por su preferencia.",
			o.Client.Name, o.ID, o.Date.Format(DateLayout), o.Total.StringFixed(2)),
	}
	if _, err := s.notifier.SendEmail(ctx, n); err != nil {
		log.Printf("order %d: confirmation email not logged: %v", o.ID, err)
	}
}

func (s *OrderService) Update(ctx context.Context, id uint, in OrderInput) (*models.Order, error) {
	if err := s.authorize(ctx, gate.ActionUpdate, policy.ResourceOrder); err != nil {
		return nil, err
	}
	var o models.Order
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&o, id).Error; err != nil {
			return notFound(err)
		}
		if err := s.resolve(tx, in, &o); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&o).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionUpdate, policy.ResourceOrder, o.ID, "order total %s", o.Total.StringFixed(2))
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// resolve validates in against o's current values and applies it.
func (s *OrderService) resolve(tx *gorm.DB, in OrderInput, o *models.Order) error {
	v := validation.Violations{}
	clientID := parseRequiredID("client_id", in.ClientID, v)
	sellerID := parseOptionalID("seller_id", in.SellerID, v)
	userID := parseOptionalID("user_id", in.UserID, v)
	date := parseDate("date", in.Date, o.Date, v)
	net := parseAmount("net_price", in.NetPrice, o.NetPrice, v)
	tax := parseAmount("tax", in.Tax, o.Tax, v)
	total := parseAmount("total", in.Total, o.Total, v)
	validation.NonNegativeDecimal("net_price", net, v)
	validation.NonNegativeDecimal("tax", tax, v)
	validation.NonNegativeDecimal("total", total, v)

	work, dispatch, payment := o.WorkStatus, o.DispatchStatus, o.PaymentStatus
	if in.WorkStatus != "" {
		work = models.WorkStatus(in.WorkStatus)
		validation.OneOf("work_status", work, models.WorkStatuses, v)
	}
	if in.DispatchStatus != "" {
		dispatch = models.DispatchStatus(in.DispatchStatus)
		validation.OneOf("dispatch_status", dispatch, models.DispatchStatuses, v)
	}
	if in.PaymentStatus != "" {
		payment = models.PaymentStatus(in.PaymentStatus)
		validation.OneOf("payment_status", payment, models.PaymentStatuses, v)
	}
	if err := check(v); err != nil {
		return err
	}

	refs := []struct {
		field string
		model any
		id    *uint
	}{
		{"client_id", &models.Client{}, &clientID},
		{"seller_id", &models.Seller{}, sellerID},
		{"user_id", &models.User{}, userID},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		ok, err := exists(tx, ref.model, *ref.id)
		if err != nil {
			return err
		}
		if !ok {
			v.Add(ref.field, "invalid_choice")
		}
	}
	if err := check(v); err != nil {
		return err
	}

	o.ClientID = clientID
	o.SellerID = sellerID
	if userID != nil {
		o.UserID = userID
	}
	o.Date = date
	o.NetPrice, o.Tax, o.Total = net, tax, total
	o.WorkStatus, o.DispatchStatus, o.PaymentStatus = work, dispatch, payment
	o.Notes = strings.TrimSpace(in.Notes)
	o.Client, o.Seller, o.User = nil, nil, nil
	return nil
}

// Delete removes the order with its payments, descriptions and attachments.
// Attachment blobs are removed once the rows are gone.
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	if err := s.authorize(ctx, gate.ActionDelete, policy.ResourceOrder); err != nil {
		return err
	}
	var keys []string
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.First(&o, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&models.Attachment{}).Where("order_id = ?", id).Pluck("path", &keys).Error; err != nil {
			return err
		}
		if err := tx.Delete(&o).Error; err != nil {
			return err
		}
		return audit(ctx, tx, actionDelete, policy.ResourceOrder, id, "order total %s", o.Total.StringFixed(2))
	})
	if err != nil {
		return err
	}
	s.removeBlobs(ctx, keys)
	return nil
}

func (s *OrderService) removeBlobs(ctx context.Context, keys []string) {
	if s.blobs == nil {
		return
	}
	for _, k := range keys {
		if err := s.blobs.Remove(ctx, k); err != nil {
			log.Printf("remove attachment blob %s: %v", k, err)
		}
	}
}

// Document loads what the print view and the PDF show for one order.
func (s *OrderService) Document(ctx context.Context, id uint) (*export.Document, error) {
	if err := s.authorize(ctx, gate.ActionExport, policy.ResourceOrder); err != nil {
		return nil, err
	}
	view, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	company, err := loadCompany(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return &export.Document{Company: company, Order: view.Order, Summary: view.Summary}, nil
}

// Calendar lists orders dated within [from, to]. Empty bounds default to the current month.
func (s *OrderService) Calendar(ctx context.Context, from, to string) ([]CalendarEvent, error) {
	if err := s.authorize(ctx, gate.ActionList, policy.ResourceOrder); err != nil {
		return nil, err
	}
	now := today(s.now())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	v := validation.Violations{}
	start := parseDate("from", from, monthStart, v)
	end := parseDate("to", to, monthStart.AddDate(0, 1, -1), v)
	if err := check(v); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, invalid("to", "out_of_range")
	}

	var orders []models.Order
	err := s.db.WithContext(ctx).Preload("Client").Preload("Payments").
		Where("orders.date >= ? AND orders.date < ?", start, end.AddDate(0, 0, 1)).
		Order("orders.date").Order("orders.id").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	events := make([]CalendarEvent, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		title := fmt.Sprintf("#%d", o.ID)
		if o.Client != nil {
			title += " " + o.Client.Name
		}
		events = append(events, CalendarEvent{
			ID:    o.ID,
			Title: title,
			Start: o.Date.Format(DateLayout),
			URL:   fmt.Sprintf("/orders/%d", o.ID),
			State: string(balance.Of(o).State),
		})
	}
	return events, nil
}
