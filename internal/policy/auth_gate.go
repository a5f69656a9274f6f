package policy

import (
	"context"
	"errors"
	"net/http"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/internal/middleware"
)

// AuthGate is the single authorization point. Subjects are role names taken
// from the principal in the request context.
type AuthGate struct {
	Gate *gate.Gate[string]
}

// NewAuthGate builds a gate over the built-in role profiles.
func NewAuthGate() *AuthGate {
	return &AuthGate{Gate: gate.New[string](RoleProfiles())}
}

// Authorize checks whether the current principal may perform action on resource.
// Returns gate.ErrUnauthenticated without a principal and gate.ErrForbidden on a role mismatch.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resource string) error {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return gate.ErrUnauthenticated
	}
	return ag.Gate.Authorize(ctx, p.Role, action, resource)
}

// Can is Authorize as a boolean, for templates hiding buttons.
func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resource string) bool {
	return ag.Authorize(ctx, action, resource) == nil
}

// IsAdmin reports whether the current principal holds every permission.
func (ag *AuthGate) IsAdmin(ctx context.Context) bool {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return false
	}
	profile := ag.Gate.ProfileOf(ctx, p.Role)
	return profile != nil && profile.HasPermission(gate.PermissionAll)
}

// RequirePermission blocks requests whose principal lacks resource:action.
func (ag *AuthGate) RequirePermission(resource string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ag.Authorize(r.Context(), action, resource); err != nil {
				deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin blocks everything but admins.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
				deny(w, r, gate.ErrUnauthenticated)
				return
			}
			if !ag.IsAdmin(r.Context()) {
				deny(w, r, gate.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, err error) {
	unauthenticated := errors.Is(err, gate.ErrUnauthenticated)
	if httpx.WantsJSON(r) {
		if unauthenticated {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	if unauthenticated {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	middleware.Flash(w, r, middleware.Danger, "forbidden")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
