package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/i18n"
	"github.com/diewo77/go-printshop/internal/middleware"
	"github.com/diewo77/go-printshop/internal/services"
	"github.com/diewo77/go-printshop/validation"
	"github.com/diewo77/go-printshop/view"
	"github.com/gorilla/schema"
)

// pathID reads a numeric path parameter. It answers 404 itself when the value is not an id.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		fail(w, r, services.ErrNotFound, "/")
		return 0, false
	}
	return uint(id), true
}

// queryID reads an optional numeric query parameter; anything else is zero.
func queryID(r *http.Request, name string) uint {
	id, err := strconv.ParseUint(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// maxFormMemory bounds the multipart parts held in memory while decoding a form.
const maxFormMemory = 32 << 20

// formDecoder binds request values to input structs by their json tag names.
var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag("json")
	d.IgnoreUnknownKeys(true)
	d.ZeroEmpty(true)
	d.RegisterConverter(false, func(v string) reflect.Value {
		return reflect.ValueOf(checked(v))
	})
	return d
}

// decode fills dst from a JSON object body or from form values.
func decode(r *http.Request, dst any) error {
	var values url.Values
	var err error
	if isJSONBody(r) {
		values, err = jsonValues(r.Body)
	} else {
		values, err = formValues(r)
	}
	if err != nil {
		return err
	}
	if err := formDecoder.Decode(dst, values); err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	return nil
}

func formValues(r *http.Request) (url.Values, error) {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	return r.Form, nil
}

// jsonValues flattens the scalar members of a JSON object so JSON and form
// bodies bind the same way. Numbers keep their literal text.
func jsonValues(body io.Reader) (url.Values, error) {
	obj := map[string]any{}
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	values := url.Values{}
	for key, raw := range obj {
		switch v := raw.(type) {
		case nil:
		case string:
			values.Set(key, v)
		case json.Number:
			values.Set(key, v.String())
		case bool:
			values.Set(key, strconv.FormatBool(v))
		default:
			values.Set(key, fmt.Sprint(v))
		}
	}
	return values, nil
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

// classify maps a service error to a status, a message code and optional details.
func classify(err error) (int, string, any) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, verr.Code(), verr.Violations
	case errors.Is(err, gate.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized", nil
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "forbidden", nil
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found", nil
	default:
		return http.StatusInternalServerError, "unexpected_error", nil
	}
}

// fail answers a failed operation: JSON error, or a danger banner and a redirect to back.
func fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	status, code, details := classify(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, status, code, details)
		return
	}
	if status == http.StatusUnauthorized {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	middleware.Flash(w, r, middleware.Danger, code)
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// failForm re-renders a form with its violations; other errors go through fail.
func failForm(w http.ResponseWriter, r *http.Request, err error, back, page string, data map[string]any) {
	var verr *services.ValidationError
	if !errors.As(err, &verr) || httpx.WantsJSON(r) {
		fail(w, r, err, back)
		return
	}
	data["Errors"] = verr.Violations
	data["Flash"] = middleware.Banner{Kind: middleware.Danger, Message: formMessage(r, verr.Violations)}
	render(w, r, http.StatusUnprocessableEntity, page, data)
}

func formMessage(r *http.Request, v validation.Violations) string {
	lang := middleware.LangFrom(r)
	_, code := v.First()
	return i18n.T(lang, "form_errors") + ": " + i18n.T(lang, code)
}

// done answers a successful mutation: payload as JSON, or a success banner and a 303 to next.
func done(w http.ResponseWriter, r *http.Request, status int, payload any, next, code string) {
	if httpx.WantsJSON(r) {
		httpx.JSON(w, status, payload)
		return
	}
	middleware.Flash(w, r, middleware.Success, code)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// page answers a read: payload as JSON, or the named template.
func page(w http.ResponseWriter, r *http.Request, name string, data map[string]any, payload any) {
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, payload)
		return
	}
	render(w, r, http.StatusOK, name, data)
}

func render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if err := view.RenderStatus(w, r, status, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

func idString(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}
