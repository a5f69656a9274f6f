package handlers

import (
	"net/http"

	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/internal/services"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboard.Summary(r.Context())
	if err != nil {
		status, code, _ := classify(err)
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, status, code, nil)
			return
		}
		render(w, r, status, "error.html", map[string]any{"Status": status, "Code": code})
		return
	}
	page(w, r, "dashboard.html", map[string]any{"Dashboard": d}, d)
}

// Health is the liveness probe.
func Health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Healthz reports whether the database answers a ping.
func Healthz(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "db": err.Error()})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "ok"})
	}
}
