package handlers

import (
	"net/http"

	"github.com/diewo77/go-printshop/internal/services"
)

// DescriptionHandler manages the line items shown on an order's detail page.
type DescriptionHandler struct {
	descriptions *services.DescriptionService
}

func NewDescriptionHandler(descriptions *services.DescriptionService) *DescriptionHandler {
	return &DescriptionHandler{descriptions: descriptions}
}

func (h *DescriptionHandler) Add(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.DescriptionInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, orderURL(orderID))
		return
	}
	d, err := h.descriptions.Add(r.Context(), orderID, in)
	if err != nil {
		fail(w, r, err, orderURL(orderID))
		return
	}
	done(w, r, http.StatusCreated, d, orderURL(orderID), "description_saved")
}

// Update stores the line; the subtotal is only refreshed when recompute is set.
func (h *DescriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	id, ok := pathID(w, r, "did")
	if !ok {
		return
	}
	var in services.DescriptionInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, orderURL(orderID))
		return
	}
	d, err := h.descriptions.Update(r.Context(), orderID, id, in)
	if err != nil {
		fail(w, r, err, orderURL(orderID))
		return
	}
	done(w, r, http.StatusOK, d, orderURL(orderID), "description_saved")
}

func (h *DescriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	id, ok := pathID(w, r, "did")
	if !ok {
		return
	}
	if err := h.descriptions.Delete(r.Context(), orderID, id); err != nil {
		fail(w, r, err, orderURL(orderID))
		return
	}
	done(w, r, http.StatusOK, map[string]any{"deleted": id}, orderURL(orderID), "description_deleted")
}

// Recompute refreshes every stale subtotal of the order.
func (h *DescriptionHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	n, err := h.descriptions.RecomputeOrder(r.Context(), orderID)
	if err != nil {
		fail(w, r, err, orderURL(orderID))
		return
	}
	done(w, r, http.StatusOK, map[string]any{"recomputed": n}, orderURL(orderID), "subtotals_recomputed")
}
