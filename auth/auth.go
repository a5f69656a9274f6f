package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const (
	sessionCookieName = "session"
	principalCtxKey   = ctxKey("principal")
)

// Principal is the authenticated user as seen by request handlers and services.
// Role is always read from storage on each request, never from the cookie.
type Principal struct {
	ID    uint
	Name  string
	Email string
	Role  string
}

// UserLoader returns the principal for a session's user id; ok=false means the
// user no longer exists and the session must be dropped.
type UserLoader func(ctx context.Context, uid uint) (p Principal, ok bool)

// Sessions signs and verifies the session cookie.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions returns a session manager. An empty secret falls back to a dev value.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	if secret == "" {
		secret = "devsessionsecret"
	}
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Create signs a token for userID and sets it as the session cookie.
func (s *Sessions) Create(w http.ResponseWriter, userID uint) error {
	token, err := s.Sign(userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.now().Add(s.ttl),
	})
	return nil
}

// Sign returns the signed token for userID.
func (s *Sessions) Sign(userID uint) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the user id it was issued for.
func (s *Sessions) Verify(token string) (uint, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid session subject")
	}
	return uint(id), nil
}

// Clear deletes the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// Parse returns the user id carried by the request's session cookie.
func (s *Sessions) Parse(r *http.Request) (uint, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	uid, err := s.Verify(c.Value)
	if err != nil {
		return 0, false
	}
	return uid, true
}

// Middleware attaches the principal to the request context when the session is
// valid and the user still exists. Stale sessions are cleared.
func (s *Sessions) Middleware(load UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if uid, ok := s.Parse(r); ok {
				if p, found := load(r.Context(), uid); found {
					r = r.WithContext(WithPrincipal(r.Context(), p))
				} else {
					s.Clear(w)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(Principal)
	if !ok || p.ID == 0 {
		return Principal{}, false
	}
	return p, true
}

// UserIDFromContext extracts the authenticated user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	p, ok := PrincipalFromContext(ctx)
	return p.ID, ok
}

// RequireAuth redirects to /login (HTML) or answers 401 (JSON) without a principal.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			accept := r.Header.Get("Accept")
			if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":"unauthorized"}`)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
