package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"sync"
	"time"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/i18n"
	"github.com/shopspring/decimal"
)

//go:embed templates
var embedded embed.FS

var (
	templates fs.FS = mustSub(embedded, "templates")
	tplCache        = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}

	langResolver = func(r *http.Request) string { return i18n.LangFromContext(r.Context()) }
	// permission resolvers are set by the host app so templates can show/hide UI
	canResolver     func(*http.Request, string, string) bool
	isAdminResolver func(*http.Request) bool
	flashResolver   func(http.ResponseWriter, *http.Request) any
)

var partials = []string{
	"partials/nav.html",
	"partials/flash.html",
	"partials/field-error.html",
	"partials/notifications.html",
}

func mustSub(f fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(f, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// SetLangResolver allows the host app to provide a custom language resolver.
func SetLangResolver(f func(*http.Request) string) {
	if f != nil {
		langResolver = f
	}
}

// SetCanResolver sets a callback used by templates to check (resource, action) permissions.
func SetCanResolver(f func(*http.Request, string, string) bool) {
	if f != nil {
		canResolver = f
	}
}

// SetIsAdminResolver sets a callback used by templates to detect administrators.
func SetIsAdminResolver(f func(*http.Request) bool) {
	if f != nil {
		isAdminResolver = f
	}
}

// SetFlashResolver sets the callback that pops the pending banner for a request.
func SetFlashResolver(f func(http.ResponseWriter, *http.Request) any) {
	if f != nil {
		flashResolver = f
	}
}

// SetFS overrides the template tree (useful for tests).
func SetFS(f fs.FS) {
	if f == nil {
		return
	}
	templates = f
	ResetForTests()
}

// ResetForTests clears the parsed template cache.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
}

// Funcs returns the standard func map including i18n and simple helpers.
func Funcs(r *http.Request) template.FuncMap {
	lang := i18n.DefaultLang
	if r != nil {
		lang = langResolver(r)
	}
	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"lang": func() string { return lang },
		"can": func(resource string, action string) bool {
			if canResolver == nil || r == nil {
				return false
			}
			return canResolver(r, resource, action)
		},
		"isAdmin": func() bool {
			if isAdminResolver == nil || r == nil {
				return false
			}
			return isAdminResolver(r)
		},
		"year":  func() int { return time.Now().Year() },
		"money": money,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"add": func(a, b int) int { return a + b },
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
		// dict creates a map from key-value pairs for passing to sub-templates.
		// Usage: {{ template "partial" (dict "Key1" val1 "Key2" val2) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// money formats a decimal (or pointer to one) with two fixed decimals.
func money(v any) string {
	switch d := v.(type) {
	case decimal.Decimal:
		return d.StringFixed(2)
	case *decimal.Decimal:
		if d == nil {
			return "0.00"
		}
		return d.StringFixed(2)
	case int:
		return decimal.NewFromInt(int64(d)).StringFixed(2)
	case int64:
		return decimal.NewFromInt(d).StringFixed(2)
	default:
		return fmt.Sprint(v)
	}
}

// parse builds the template set for name: layout, partials and the page,
// or the page alone when it is a full document.
func parse(name string) (*template.Template, error) {
	tplCache.RLock()
	t, ok := tplCache.m[name]
	tplCache.RUnlock()
	if ok {
		return t, nil
	}
	content, err := fs.ReadFile(templates, name)
	if err != nil {
		return nil, err
	}
	base := template.New(path.Base(name)).Funcs(Funcs(nil))
	if bytes.Contains(bytes.ToLower(content), []byte("<!doctype")) {
		t, err = base.Parse(string(content))
	} else {
		files := append([]string{"layout.html"}, partials...)
		files = append(files, name)
		t, err = template.New("layout.html").Funcs(Funcs(nil)).ParseFS(templates, files...)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	tplCache.Lock()
	tplCache.m[name] = t
	tplCache.Unlock()
	return t, nil
}

// Render executes the named page (e.g. "orders/show.html") with the request's funcs.
// Output is buffered so a template error never leaves a half-written page.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	return RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if _, exists := data["User"]; !exists {
		p, loggedIn := auth.PrincipalFromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
		if loggedIn {
			data["User"] = p
		}
	}
	if _, exists := data["Flash"]; !exists && flashResolver != nil {
		if b := flashResolver(w, r); b != nil {
			data["Flash"] = b
		}
	}

	cached, err := parse(name)
	if err != nil {
		return err
	}
	t, err := cached.Clone()
	if err != nil {
		return err
	}
	t.Funcs(Funcs(r))

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
