package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPrefs_LanguageResolution(t *testing.T) {
	var got string
	h := Prefs(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { got = LangFrom(r) }))

	req := httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got != "en" || len(rec.Result().Cookies()) != 1 {
		t.Fatalf("query lang: got %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "en"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "en" {
		t.Fatalf("cookie lang: got %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/?lang=xx", nil)
	req.Header.Set("Accept-Language", "de-DE")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "es" {
		t.Fatalf("fallback lang: got %s", got)
	}
}

func TestFlashRoundTrip(t *testing.T) {
	var req *http.Request
	Prefs(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { req = r })).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?lang=en", nil))

	rec := httptest.NewRecorder()
	Flash(rec, req, Danger, "email_taken")
	cookie := rec.Result().Cookies()[0]

	next := httptest.NewRequest(http.MethodGet, "/users", nil)
	next.AddCookie(cookie)
	rec = httptest.NewRecorder()
	b, ok := PopFlash(rec, next)
	if !ok || b.Kind != Danger || b.Message != "Email already exists" {
		t.Fatalf("got %+v %v", b, ok)
	}
	if c := rec.Result().Cookies(); len(c) != 1 || c[0].MaxAge >= 0 {
		t.Fatalf("flash cookie must be cleared after reading")
	}

	if _, ok := PopFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Fatalf("no cookie, no banner")
	}
}
