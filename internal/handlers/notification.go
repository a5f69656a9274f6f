package handlers

import (
	"net/http"

	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/internal/middleware"
	"github.com/diewo77/go-printshop/internal/services"
)

const recentNotifications = 100

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.notifications.Recent(r.Context(), recentNotifications)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	page(w, r, "notifications/index.html", map[string]any{"Notifications": logs}, logs)
}

// WhatsApp records a simulated WhatsApp message for an order.
func (h *NotificationHandler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		Recipient string `json:"recipient"`
		Body      string `json:"body"`
	}
	if err := decode(r, &in); err != nil {
		fail(w, r, err, orderURL(orderID))
		return
	}
	entry, err := h.notifications.SendWhatsApp(r.Context(), orderID, in.Recipient, in.Body)
	if err != nil {
		fail(w, r, err, orderURL(orderID))
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, entry)
		return
	}
	middleware.Flash(w, r, middleware.Success, "notification_sent")
	http.Redirect(w, r, orderURL(orderID), http.StatusSeeOther)
}
