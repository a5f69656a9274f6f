package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/services"
)

type ClientHandler struct {
	clients *services.ClientService
}

func NewClientHandler(clients *services.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	clients, err := h.clients.List(r.Context(), query)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	page(w, r, "clients/index.html", map[string]any{
		"Clients": clients,
		"Query":   query,
	}, clients)
}

func (h *ClientHandler) New(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "clients/form.html", map[string]any{
		"Form":   services.ClientInput{},
		"Action": "/clients",
	})
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ClientInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/clients")
		return
	}
	c, err := h.clients.Create(r.Context(), in)
	if err != nil {
		failForm(w, r, err, "/clients", "clients/form.html", map[string]any{"Form": in, "Action": "/clients"})
		return
	}
	done(w, r, http.StatusCreated, c, "/clients", "client_created")
}

func (h *ClientHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.clients.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/clients")
		return
	}
	page(w, r, "clients/form.html", map[string]any{
		"Form":   clientForm(c),
		"Action": clientURL(id),
	}, c)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.ClientInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/clients")
		return
	}
	c, err := h.clients.Update(r.Context(), id, in)
	if err != nil {
		failForm(w, r, err, "/clients", "clients/form.html", map[string]any{"Form": in, "Action": clientURL(id)})
		return
	}
	done(w, r, http.StatusOK, c, "/clients", "client_updated")
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.clients.Delete(r.Context(), id); err != nil {
		fail(w, r, err, "/clients")
		return
	}
	done(w, r, http.StatusOK, map[string]any{"deleted": id}, "/clients", "client_deleted")
}

func clientURL(id uint) string { return "/clients/" + strconv.FormatUint(uint64(id), 10) }

func clientForm(c *models.Client) services.ClientInput {
	return services.ClientInput{Name: c.Name, TaxID: c.TaxID, Phone: c.Phone, Email: c.Email}
}
