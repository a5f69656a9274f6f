package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/notify"
	"github.com/diewo77/go-printshop/internal/storage"
)

func TestOrderService_CreateDefaults(t *testing.T) {
	e := newEnv(t)
	svc := NewOrderService(e.db, e.authz, nil, nil, false)
	c := e.client(t, "ACME", "")

	o, err := svc.Create(as(e.staff), OrderInput{ClientID: "1", SellerID: "0", Total: "100.00"})
	must(t, err)
	if o.ClientID != c.ID || o.SellerID != nil {
		t.Fatalf("references: %+v", o)
	}
	if o.UserID == nil || *o.UserID != e.staff.ID {
		t.Fatalf("creator must default to the acting user")
	}
	if o.WorkStatus != models.WorkPending || o.DispatchStatus != models.DispatchPending || o.PaymentStatus != models.PaymentPending {
		t.Fatalf("statuses must default to pending: %+v", o)
	}
	if !o.Date.Equal(e.now()) {
		t.Fatalf("date must default to today, got %v", o.Date)
	}
	if !o.Total.Equal(dec("100")) || !o.NetPrice.IsZero() {
		t.Fatalf("money: %+v", o)
	}

	// Totals are stored as entered, not derived from net + tax.
	o2, err := svc.Create(as(e.staff), OrderInput{ClientID: "1", UserID: "1", NetPrice: "10", Tax: "1,80", Total: "50"})
	must(t, err)
	if !o2.Tax.Equal(dec("1.80")) || !o2.Total.Equal(dec("50")) || *o2.UserID != e.admin.ID {
		t.Fatalf("got %+v", o2)
	}
}

func TestOrderService_Validation(t *testing.T) {
	e := newEnv(t)
	svc := NewOrderService(e.db, e.authz, nil, nil, false)
	e.client(t, "ACME", "")
	ctx := as(e.staff)

	cases := []struct {
		in   OrderInput
		code string
	}{
		{OrderInput{}, "required"},
		{OrderInput{ClientID: "99"}, "invalid_choice"},
		{OrderInput{ClientID: "1", SellerID: "99"}, "invalid_choice"},
		{OrderInput{ClientID: "1", Total: "abc"}, "invalid_number"},
		{OrderInput{ClientID: "1", Total: "-1"}, "must_not_be_negative"},
		{OrderInput{ClientID: "1", Date: "01/02/2024"}, "invalid_date"},
		{OrderInput{ClientID: "1", WorkStatus: "done"}, "invalid_choice"},
		{OrderInput{ClientID: "1", DispatchStatus: "lost"}, "invalid_choice"},
	}
	for _, c := range cases {
		_, err := svc.Create(ctx, c.in)
		expectCode(t, err, c.code)
	}
	if count(t, e.db, &models.Order{}) != 0 {
		t.Fatalf("failed validations must not persist")
	}
}

func TestOrderService_UpdateKeepsStatusesIndependent(t *testing.T) {
	e := newEnv(t)
	svc := NewOrderService(e.db, e.authz, nil, nil, false)
	e.client(t, "ACME", "")
	ctx := as(e.staff)
	o, err := svc.Create(ctx, OrderInput{ClientID: "1", Total: "100", Date: "2024-03-01"})
	must(t, err)
	must(t, e.db.Create(&models.Payment{OrderID: o.ID, Amount: dec("100"), Date: e.now()}).Error)

	got, err := svc.Update(ctx, o.ID, OrderInput{ClientID: "1", Total: "100", WorkStatus: "ready"})
	must(t, err)
	if got.WorkStatus != models.WorkReady || got.PaymentStatus != models.PaymentPending {
		t.Fatalf("manual statuses are not derived from payments: %+v", got)
	}
	if got.Date.Format(DateLayout) != "2024-03-01" {
		t.Fatalf("empty date must keep the stored one, got %v", got.Date)
	}
	if got.UserID == nil || *got.UserID != e.staff.ID {
		t.Fatalf("creator must be kept")
	}
	view, err := svc.Get(ctx, o.ID)
	must(t, err)
	if view.Summary.State != models.PaymentPaid {
		t.Fatalf("computed state should be paid, got %s", view.Summary.State)
	}
}

func TestOrderService_UpdateWithoutAmountsKeepsThem(t *testing.T) {
	e := newEnv(t)
	svc := NewOrderService(e.db, e.authz, nil, nil, false)
	e.client(t, "ACME", "")
	ctx := as(e.staff)
	o, err := svc.Create(ctx, OrderInput{ClientID: "1", NetPrice: "84.75", Tax: "15.25", Total: "100"})
	must(t, err)

	got, err := svc.Update(ctx, o.ID, OrderInput{ClientID: "1", WorkStatus: "ready"})
	must(t, err)
	if !got.NetPrice.Equal(dec("84.75")) || !got.Tax.Equal(dec("15.25")) || !got.Total.Equal(dec("100")) {
		t.Fatalf("blank amounts must keep the stored ones: %+v", got)
	}
	view, err := svc.Get(ctx, o.ID)
	must(t, err)
	if view.Summary.State != models.PaymentPending || !view.Summary.Balance.Equal(dec("100")) {
		t.Fatalf("order with nothing paid should owe its total: %+v", view.Summary)
	}

	// An explicit zero still clears the amount.
	got, err = svc.Update(ctx, o.ID, OrderInput{ClientID: "1", Tax: "0"})
	must(t, err)
	if !got.Tax.IsZero() || !got.Total.Equal(dec("100")) {
		t.Fatalf("explicit zero: %+v", got)
	}
}

func TestOrderService_AmountOutOfRange(t *testing.T) {
	e := newEnv(t)
	svc := NewOrderService(e.db, e.authz, nil, nil, false)
	e.client(t, "ACME", "")
	ctx := as(e.staff)

	for _, raw := range []string{"10000000000", "1e12", "99999999999.99"} {
		_, err := svc.Create(ctx, OrderInput{ClientID: "1", Total: raw})
		expectCode(t, err, "out_of_range")
	}
	o, err := svc.Create(ctx, OrderInput{ClientID: "1", Total: "9999999999.99"})
	must(t, err)
	if !o.Total.Equal(dec("9999999999.99")) {
		t.Fatalf("largest storable total: %s", o.Total)
	}
	if count(t, e.db, &models.Order{}) != 1 {
		t.Fatalf("out-of-range totals must not persist")
	}
}

func TestOrderService_ListFilterAndSort(t *testing.T) {
	e := newEnv(t)
	svc := NewOrderService(e.db, e.authz, nil, nil, false)
	e.client(t, "ACME", "")
	ctx := as(e.staff)
	mk := func(total string, paid ...string) uint {
		o, err := svc.Create(ctx, OrderInput{ClientID: "1", Total: total})
		must(t, err)
		for _, p := range paid {
			must(t, e.db.Create(&models.Payment{OrderID: o.ID, Amount: dec(p), Date: e.now()}).Error)
		}
		return o.ID
	}
	pending := mk("80.00")
	partial := mk("100.00", "40.00", "35.50")
	paid := mk("50.00", "60.00")
	zero := mk("0.00")

	all, err := svc.List(ctx, OrderFilter{})
	must(t, err)
	if len(all) != 4 {
		t.Fatalf("expected 4 orders, got %d", len(all))
	}
	for _, v := range all {
		if v.ID == partial && (!v.Summary.Paid.Equal(dec("75.50")) || !v.Summary.Balance.Equal(dec("24.50"))) {
			t.Fatalf("partial summary: %+v", v.Summary)
		}
	}

	ids := func(f OrderFilter) []uint {
		views, err := svc.List(ctx, f)
		must(t, err)
		out := make([]uint, len(views))
		for i, v := range views {
			out[i] = v.ID
		}
		return out
	}
	if got := ids(OrderFilter{State: "paid", Sort: "balance"}); len(got) != 2 || got[0] != zero || got[1] != paid {
		t.Fatalf("paid filter: %v", got)
	}
	if got := ids(OrderFilter{State: "partial"}); len(got) != 1 || got[0] != partial {
		t.Fatalf("partial filter: %v", got)
	}
	if got := ids(OrderFilter{Sort: "balance"}); got[0] != pending || got[1] != partial {
		t.Fatalf("balance sort: %v", got)
	}
	_, err = svc.List(ctx, OrderFilter{State: "overdue"})
	expectCode(t, err, "invalid_choice")
}

func TestOrderService_DeleteCascadesAndRemovesBlobs(t *testing.T) {
	e := newEnv(t)
	blobs, err := storage.NewLocal(t.TempDir())
	must(t, err)
	orders := NewOrderService(e.db, e.authz, nil, blobs, false)
	atts := NewAttachmentService(e.db, e.authz, blobs, 1<<20)
	c := e.client(t, "ACME", "")
	seller := models.Seller{Name: "Pedro"}
	must(t, e.db.Create(&seller).Error)
	ctx := as(e.staff)

	o, err := orders.Create(ctx, OrderInput{ClientID: "1", SellerID: "1", Total: "10"})
	must(t, err)
	must(t, e.db.Create(&models.Payment{OrderID: o.ID, Amount: dec("5"), Date: e.now(), UserID: &e.staff.ID}).Error)
	must(t, e.db.Create(&models.Description{OrderID: o.ID, Text: "x", Quantity: 1}).Error)
	a, err := atts.Upload(ctx, o.ID, Upload{Filename: "arte.pdf", Size: 4, Body: strings.NewReader("%PDF")})
	must(t, err)

	must(t, orders.Delete(ctx, o.ID))
	for _, m := range []any{&models.Payment{}, &models.Description{}, &models.Attachment{}} {
		if n := count(t, e.db, m); n != 0 {
			t.Fatalf("%T rows left: %d", m, n)
		}
	}
	if count(t, e.db, &models.Client{}, "id = ?", c.ID) != 1 || count(t, e.db, &models.Seller{}) != 1 || count(t, e.db, &models.User{}) != 3 {
		t.Fatalf("referenced rows must survive")
	}
	if _, err := blobs.Open(context.Background(), a.Path); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("blob must be removed, got %v", err)
	}
	if err := orders.Delete(ctx, o.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOrderService_NotificationFailureDoesNotRollBack(t *testing.T) {
	e := newEnv(t)
	ft := &fakeTransport{err: errors.New("dial tcp: connection refused")}
	dispatcher := notify.NewDispatcher(e.db, ft, nil)
	svc := NewOrderService(e.db, e.authz, dispatcher, nil, true)
	e.client(t, "ACME", "compras@acme.pe")

	o, err := svc.Create(as(e.staff), OrderInput{ClientID: "1", Total: "120"})
	must(t, err)
	if count(t, e.db, &models.Order{}, "id = ?", o.ID) != 1 {
		t.Fatalf("order must be committed")
	}
	var entry models.NotificationLog
	must(t, e.db.Where("order_id = ?", o.ID).First(&entry).Error)
	if entry.Status != models.DeliveryError || !strings.Contains(entry.Response, "connection refused") {
		t.Fatalf("log: %+v", entry)
	}
	if len(ft.sent) != 1 || ft.sent[0].To != "compras@acme.pe" {
		t.Fatalf("transport calls: %+v", ft.sent)
	}
}

func TestOrderService_NoEmailWithoutClientAddress(t *testing.T) {
	e := newEnv(t)
	ft := &fakeTransport{}
	svc := NewOrderService(e.db, e.authz, notify.NewDispatcher(e.db, ft, nil), nil, true)
	e.client(t, "ACME", "")
	_, err := svc.Create(as(e.staff), OrderInput{ClientID: "1"})
	must(t, err)
	if len(ft.sent) != 0 || count(t, e.db, &models.NotificationLog{}) != 0 {
		t.Fatalf("no email expected")
	}
}

func TestOrderService_CalendarAndDocument(t *testing.T) {
	e := newEnv(t)
	svc := NewOrderService(e.db, e.authz, nil, nil, false)
	e.client(t, "ACME", "")
	ctx := as(e.seller)
	for _, d := range []string{"2024-03-01", "2024-03-15", "2024-04-02"} {
		_, err := svc.Create(ctx, OrderInput{ClientID: "1", Date: d, Total: "10"})
		must(t, err)
	}
	events, err := svc.Calendar(ctx, "2024-03-01", "2024-03-31")
	must(t, err)
	if len(events) != 2 || events[0].Start != "2024-03-01" || !strings.Contains(events[0].Title, "ACME") {
		t.Fatalf("events: %+v", events)
	}
	_, err = svc.Calendar(ctx, "2024-03-31", "2024-03-01")
	expectCode(t, err, "out_of_range")

	doc, err := svc.Document(ctx, events[0].ID)
	must(t, err)
	if doc.Order.Client == nil || doc.Summary.State != models.PaymentPending {
		t.Fatalf("document: %+v", doc)
	}
	if _, err := svc.Document(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOrderService_DateIsCalendarDay(t *testing.T) {
	e := newEnv(t)
	svc := NewOrderService(e.db, e.authz, nil, nil, false)
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 23, 30, 0, 0, time.UTC) }
	e.client(t, "ACME", "")
	o, err := svc.Create(as(e.staff), OrderInput{ClientID: "1"})
	must(t, err)
	if o.Date.Format(DateLayout) != "2024-05-06" || o.Date.Hour() != 0 {
		t.Fatalf("got %v", o.Date)
	}
}
