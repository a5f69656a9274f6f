package handlers

import (
	"fmt"
	"net/http"

	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/services"
)

type PaymentHandler struct {
	payments *services.PaymentService
	orders   *services.OrderService
}

func NewPaymentHandler(payments *services.PaymentService, orders *services.OrderService) *PaymentHandler {
	return &PaymentHandler{payments: payments, orders: orders}
}

func paymentURL(id uint) string { return fmt.Sprintf("/payments/%d", id) }

// List shows all payments, or those of one order with ?order_id=.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	orderID := queryID(r, "order_id")
	payments, err := h.payments.List(r.Context(), orderID)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	data := map[string]any{"Payments": payments}
	if orderID != 0 {
		data["OrderID"] = orderID
	}
	page(w, r, "payments/index.html", data, payments)
}

func (h *PaymentHandler) form(r *http.Request, in services.PaymentInput, action string) (map[string]any, error) {
	orders, err := h.orders.List(r.Context(), services.OrderFilter{Sort: "balance"})
	if err != nil {
		return nil, err
	}
	return map[string]any{"Form": in, "Action": action, "Orders": orders}, nil
}

func (h *PaymentHandler) New(w http.ResponseWriter, r *http.Request) {
	in := services.PaymentInput{OrderID: r.URL.Query().Get("order_id"), Method: models.DefaultPaymentMethod}
	data, err := h.form(r, in, "/payments")
	if err != nil {
		fail(w, r, err, "/payments")
		return
	}
	render(w, r, http.StatusOK, "payments/form.html", data)
}

// Create registers a payment and returns to the order it belongs to.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.PaymentInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/payments")
		return
	}
	p, err := h.payments.Create(r.Context(), in)
	if err != nil {
		h.failForm(w, r, err, in, "/payments")
		return
	}
	done(w, r, http.StatusCreated, p, orderURL(p.OrderID), "payment_created")
}

func (h *PaymentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.payments.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/payments")
		return
	}
	in := services.PaymentInput{
		OrderID: fmt.Sprint(p.OrderID),
		Amount:  p.Amount.StringFixed(2),
		Date:    p.Date.Format(services.DateLayout),
		Method:  p.Method,
	}
	data, err := h.form(r, in, paymentURL(id))
	if err != nil {
		fail(w, r, err, "/payments")
		return
	}
	page(w, r, "payments/form.html", data, p)
}

func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.PaymentInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/payments")
		return
	}
	p, err := h.payments.Update(r.Context(), id, in)
	if err != nil {
		h.failForm(w, r, err, in, paymentURL(id))
		return
	}
	done(w, r, http.StatusOK, p, orderURL(p.OrderID), "payment_updated")
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	orderID, err := h.payments.Delete(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/payments")
		return
	}
	done(w, r, http.StatusOK, map[string]any{"deleted": id}, orderURL(orderID), "payment_deleted")
}

func (h *PaymentHandler) failForm(w http.ResponseWriter, r *http.Request, err error, in services.PaymentInput, action string) {
	data, lerr := h.form(r, in, action)
	if lerr != nil {
		fail(w, r, err, "/payments")
		return
	}
	failForm(w, r, err, "/payments", "payments/form.html", data)
}
