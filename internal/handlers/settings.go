package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/internal/middleware"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/services"
)

// SettingsHandler serves the admin settings page: SMTP, company and key/value settings.
type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Index(w http.ResponseWriter, r *http.Request) {
	v, err := h.settings.View(r.Context())
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	page(w, r, "settings/index.html", map[string]any{"Settings": v}, v)
}

func (h *SettingsHandler) SaveSMTP(w http.ResponseWriter, r *http.Request) {
	var in services.MailInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/settings")
		return
	}
	m, err := h.settings.SaveMail(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, m, "/settings", "smtp_saved")
}

func (h *SettingsHandler) SaveCompany(w http.ResponseWriter, r *http.Request) {
	var in services.CompanyInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/settings")
		return
	}
	c, err := h.settings.SaveCompany(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, c, "/settings", "company_saved")
}

func (h *SettingsHandler) SaveValues(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/settings")
		return
	}
	if err := h.settings.SaveValue(r.Context(), in.Key, in.Value); err != nil {
		h.fail(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]string{"key": in.Key, "value": in.Value}, "/settings", "settings_saved")
}

// TestEmail sends a test email; the banner reflects the delivery outcome.
func (h *SettingsHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	var in struct {
		To string `json:"to"`
	}
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/settings")
		return
	}
	entry, err := h.settings.SendTestEmail(r.Context(), in.To)
	if err != nil {
		fail(w, r, err, "/settings")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, entry)
		return
	}
	if entry.Status == models.DeliverySent {
		middleware.Flash(w, r, middleware.Success, "notification_sent")
	} else {
		middleware.Flash(w, r, middleware.Danger, "notification_failed")
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

// fail re-renders the settings page with field violations.
func (h *SettingsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	if !errors.As(err, &verr) || httpx.WantsJSON(r) {
		fail(w, r, err, "/settings")
		return
	}
	v, lerr := h.settings.View(r.Context())
	if lerr != nil {
		fail(w, r, err, "/settings")
		return
	}
	failForm(w, r, err, "/settings", "settings/index.html", map[string]any{"Settings": v})
}
