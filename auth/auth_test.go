package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSessions_SignVerify(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	tok, err := s.Sign(42)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	uid, err := s.Verify(tok)
	if err != nil || uid != 42 {
		t.Fatalf("verify: uid=%d err=%v", uid, err)
	}
	other := NewSessions("other", time.Hour)
	if _, err := other.Verify(tok); err == nil {
		t.Fatalf("token signed with a different secret must not verify")
	}
}

func TestSessions_Expired(t *testing.T) {
	s := NewSessions("secret", time.Minute)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := s.Sign(1)
	if err != nil {
		t.Fatal(err)
	}
	s.now = time.Now
	if _, err := s.Verify(tok); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestMiddleware_AttachesPrincipal(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	rec := httptest.NewRecorder()
	if err := s.Create(rec, 5); err != nil {
		t.Fatal(err)
	}
	cookie := rec.Result().Cookies()[0]

	loader := func(_ context.Context, uid uint) (Principal, bool) {
		if uid != 5 {
			return Principal{}, false
		}
		return Principal{ID: 5, Role: "admin"}, true
	}
	var got Principal
	h := s.Middleware(loader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got.ID != 5 || got.Role != "admin" {
		t.Fatalf("expected principal 5/admin, got %+v", got)
	}
}

func TestMiddleware_ClearsStaleSession(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	tok, _ := s.Sign(9)
	h := s.Middleware(func(context.Context, uint) (Principal, bool) { return Principal{}, false })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); ok {
				t.Fatalf("stale session must not authenticate")
			}
		}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: tok})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if sc := rec.Header().Get("Set-Cookie"); !strings.Contains(sc, "session=;") {
		t.Fatalf("expected session cookie to be cleared, got %q", sc)
	}
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	req = httptest.NewRequest(http.MethodGet, "/clients", nil)
	req.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/clients", nil)
	req = req.WithContext(WithPrincipal(req.Context(), Principal{ID: 1, Role: "staff"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("changeme123")
	if err != nil {
		t.Fatal(err)
	}
	if h == "changeme123" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !CheckPassword(h, "changeme123") || CheckPassword(h, "nope") {
		t.Fatalf("password check mismatch")
	}
}
