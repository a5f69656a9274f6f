package handlers

import (
	"fmt"
	"net/http"

	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/services"
)

// UserHandler serves the admin-only user management pages.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func userURL(id uint) string { return fmt.Sprintf("/users/%d", id) }

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	page(w, r, "users/index.html", map[string]any{"Users": users}, users)
}

func (h *UserHandler) New(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "users/form.html", map[string]any{
		"Form":   services.UserInput{Role: string(models.RoleStaff)},
		"Action": "/users",
		"Roles":  models.Roles,
	})
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.UserInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/users")
		return
	}
	u, err := h.users.Create(r.Context(), in)
	if err != nil {
		in.Password = ""
		failForm(w, r, err, "/users", "users/form.html", map[string]any{"Form": in, "Action": "/users", "Roles": models.Roles})
		return
	}
	done(w, r, http.StatusCreated, u, "/users", "user_created")
}

func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/users")
		return
	}
	page(w, r, "users/form.html", map[string]any{
		"Form":   services.UserInput{Name: u.Name, Email: u.Email, Role: string(u.Role)},
		"Action": userURL(id),
		"Roles":  models.Roles,
	}, u)
}

// Update changes a user; a blank password keeps the current one.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.UserInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/users")
		return
	}
	u, err := h.users.Update(r.Context(), id, in)
	if err != nil {
		in.Password = ""
		failForm(w, r, err, "/users", "users/form.html", map[string]any{"Form": in, "Action": userURL(id), "Roles": models.Roles})
		return
	}
	done(w, r, http.StatusOK, u, "/users", "user_updated")
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		fail(w, r, err, "/users")
		return
	}
	done(w, r, http.StatusOK, map[string]any{"deleted": id}, "/users", "user_deleted")
}
