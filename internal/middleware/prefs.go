package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/diewo77/go-printshop/i18n"
)

const (
	langCookie  = "lang"
	flashCookie = "flash"
)

// Banner kinds.
const (
	Success = "success"
	Danger  = "danger"
	Warning = "warning"
)

// Banner is a one-shot message shown above the next rendered page.
type Banner struct {
	Kind    string
	Message string
}

// Prefs resolves the UI language (query > cookie > Accept-Language) and stores it in the context.
// A language passed in the query is persisted in a cookie for ~30 days.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie(langCookie); err == nil {
			lang = c.Value
		}
		if ql := r.URL.Query().Get("lang"); ql != "" && i18n.Supported(ql) {
			lang = ql
			http.SetCookie(w, &http.Cookie{Name: langCookie, Value: lang, Path: "/", MaxAge: 86400 * 30})
		}
		if !i18n.Supported(lang) {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

// LangFrom returns the request language.
func LangFrom(r *http.Request) string {
	return i18n.LangFromContext(r.Context())
}

// Flash sets a translated banner cookie from a message code.
func Flash(w http.ResponseWriter, r *http.Request, kind, code string) {
	msg := i18n.T(LangFrom(r), code)
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: url.QueryEscape(kind + "|" + msg), Path: "/", HttpOnly: true})
}

// PopFlash reads and clears the banner cookie.
func PopFlash(w http.ResponseWriter, r *http.Request) (Banner, bool) {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return Banner{}, false
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return Banner{}, false
	}
	kind, msg, ok := strings.Cut(raw, "|")
	if !ok {
		return Banner{Kind: Success, Message: raw}, true
	}
	return Banner{Kind: kind, Message: msg}, true
}
