package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/internal/middleware"
	"github.com/diewo77/go-printshop/internal/services"
)

type AuthHandler struct {
	users    *services.UserService
	sessions *auth.Sessions
}

func NewAuthHandler(users *services.UserService, sessions *auth.Sessions) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.PrincipalFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, "login.html", nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "bad_request", nil)
		return
	}

	user, err := h.users.Authenticate(r.Context(), in.Email, in.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		render(w, r, http.StatusUnauthorized, "login.html", map[string]any{"Error": "invalid_credentials", "Email": in.Email})
		return
	}
	if err != nil {
		fail(w, r, err, "/login")
		return
	}

	if err := h.sessions.Create(w, user.ID); err != nil {
		log.Printf("create session: %v", err)
		fail(w, r, err, "/login")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, user)
		return
	}
	middleware.Flash(w, r, middleware.Success, "welcome")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	if httpx.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	middleware.Flash(w, r, middleware.Success, "logged_out")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
