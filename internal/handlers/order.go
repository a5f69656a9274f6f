package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/diewo77/go-printshop/internal/export"
	"github.com/diewo77/go-printshop/internal/middleware"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/services"
)

type OrderHandler struct {
	orders   *services.OrderService
	clients  *services.ClientService
	sellers  *services.SellerService
	users    *services.UserService
	exporter export.Exporter
}

func NewOrderHandler(orders *services.OrderService, clients *services.ClientService, sellers *services.SellerService, users *services.UserService, exporter export.Exporter) *OrderHandler {
	return &OrderHandler{orders: orders, clients: clients, sellers: sellers, users: users, exporter: exporter}
}

func orderURL(id uint) string { return fmt.Sprintf("/orders/%d", id) }

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.OrderFilter{State: q.Get("state"), Sort: q.Get("sort"), ClientID: queryID(r, "client_id")}
	orders, err := h.orders.List(r.Context(), f)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	page(w, r, "orders/index.html", map[string]any{
		"Orders": orders,
		"Filter": f,
		"States": models.PaymentStatuses,
	}, orders)
}

func (h *OrderHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/orders")
		return
	}
	page(w, r, "orders/show.html", map[string]any{"Order": o}, o)
}

// form loads the select choices of the order form. The creating-user select
// is only offered to callers allowed to list users.
func (h *OrderHandler) form(r *http.Request, in services.OrderInput, action string, id uint) (map[string]any, error) {
	clients, err := h.clients.List(r.Context(), "")
	if err != nil {
		return nil, err
	}
	sellers, err := h.sellers.List(r.Context())
	if err != nil {
		return nil, err
	}
	users, err := h.users.List(r.Context())
	if errors.Is(err, services.ErrForbidden) {
		users, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	data := map[string]any{
		"Form":             in,
		"Action":           action,
		"Clients":          clients,
		"Sellers":          sellers,
		"Users":            users,
		"WorkStatuses":     models.WorkStatuses,
		"DispatchStatuses": models.DispatchStatuses,
		"PaymentStatuses":  models.PaymentStatuses,
	}
	if id != 0 {
		data["OrderID"] = id
	}
	return data, nil
}

func (h *OrderHandler) New(w http.ResponseWriter, r *http.Request) {
	in := services.OrderInput{
		ClientID:       r.URL.Query().Get("client_id"),
		WorkStatus:     string(models.WorkPending),
		DispatchStatus: string(models.DispatchPending),
		PaymentStatus:  string(models.PaymentPending),
	}
	data, err := h.form(r, in, "/orders", 0)
	if err != nil {
		fail(w, r, err, "/orders")
		return
	}
	render(w, r, http.StatusOK, "orders/form.html", data)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.OrderInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/orders")
		return
	}
	o, err := h.orders.Create(r.Context(), in)
	if err != nil {
		h.failForm(w, r, err, in, "/orders", 0)
		return
	}
	done(w, r, http.StatusCreated, o, orderURL(o.ID), "order_created")
}

func (h *OrderHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/orders")
		return
	}
	data, err := h.form(r, orderForm(&o.Order), orderURL(id), id)
	if err != nil {
		fail(w, r, err, orderURL(id))
		return
	}
	page(w, r, "orders/form.html", data, o)
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.OrderInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, orderURL(id))
		return
	}
	o, err := h.orders.Update(r.Context(), id, in)
	if err != nil {
		h.failForm(w, r, err, in, orderURL(id), id)
		return
	}
	done(w, r, http.StatusOK, o, orderURL(id), "order_updated")
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.orders.Delete(r.Context(), id); err != nil {
		fail(w, r, err, orderURL(id))
		return
	}
	done(w, r, http.StatusOK, map[string]any{"deleted": id}, "/orders", "order_deleted")
}

func (h *OrderHandler) failForm(w http.ResponseWriter, r *http.Request, err error, in services.OrderInput, action string, id uint) {
	data, lerr := h.form(r, in, action, id)
	if lerr != nil {
		fail(w, r, err, "/orders")
		return
	}
	failForm(w, r, err, "/orders", "orders/form.html", data)
}

// Print renders the printable view of an order.
func (h *OrderHandler) Print(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	doc, err := h.orders.Document(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/orders")
		return
	}
	page(w, r, "orders/print.html", map[string]any{"Doc": doc}, doc)
}

// PDF streams the order as a PDF. When export is disabled or fails the
// client is sent to the printable view with a warning.
func (h *OrderHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	doc, err := h.orders.Document(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/orders")
		return
	}
	body, err := h.exporter.OrderPDF(*doc)
	if err != nil {
		if !errors.Is(err, export.ErrUnavailable) {
			log.Printf("pdf export order %d: %v", id, err)
		}
		middleware.Flash(w, r, middleware.Warning, "pdf_unavailable")
		http.Redirect(w, r, orderURL(id)+"/print", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="orden-%d.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Calendar lists orders between from and to; JSON callers get the event feed.
func (h *OrderHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	events, err := h.orders.Calendar(r.Context(), from, to)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	page(w, r, "calendar.html", map[string]any{
		"Events": events,
		"From":   from,
		"To":     to,
	}, events)
}

func orderForm(o *models.Order) services.OrderInput {
	return services.OrderInput{
		ClientID:       fmt.Sprint(o.ClientID),
		SellerID:       idString(o.SellerID),
		UserID:         idString(o.UserID),
		Date:           o.Date.Format(services.DateLayout),
		NetPrice:       o.NetPrice.StringFixed(2),
		Tax:            o.Tax.StringFixed(2),
		Total:          o.Total.StringFixed(2),
		WorkStatus:     string(o.WorkStatus),
		DispatchStatus: string(o.DispatchStatus),
		PaymentStatus:  string(o.PaymentStatus),
		Notes:          o.Notes,
	}
}
