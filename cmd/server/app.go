package main

import (
	"log"
	"net/http"
	"time"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/export"
	"github.com/diewo77/go-printshop/internal/handlers"
	"github.com/diewo77/go-printshop/internal/metrics"
	"github.com/diewo77/go-printshop/internal/middleware"
	"github.com/diewo77/go-printshop/internal/notify"
	"github.com/diewo77/go-printshop/internal/policy"
	"github.com/diewo77/go-printshop/internal/services"
	"github.com/diewo77/go-printshop/internal/settings"
	"github.com/diewo77/go-printshop/internal/storage"
	"github.com/diewo77/go-printshop/view"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

// Deps are the outside-world collaborators of the app; tests swap them for fakes.
type Deps struct {
	Settings  *settings.Store
	Blobs     storage.Store
	Transport notify.Transport
	Exporter  export.Exporter
}

// App is the main application handler that sets up all routes.
type App struct {
	mux      *http.ServeMux
	db       *gorm.DB
	gate     *policy.AuthGate
	sessions *auth.Sessions
	handler  http.Handler
}

// NewApp wires services, handlers and routes.
func NewApp(conn *gorm.DB, cfg *config.Config, deps Deps) *App {
	authGate := policy.NewAuthGate()
	dispatcher := notify.NewDispatcher(conn, deps.Transport, func() time.Duration { return deps.Settings.Mail().Timeout })

	users := services.NewUserService(conn, authGate)
	a := &App{
		mux:      http.NewServeMux(),
		db:       conn,
		gate:     authGate,
		sessions: auth.NewSessions(cfg.Session.Secret, cfg.Session.TTL),
	}

	// Templates check permissions through resolver callbacks so the view
	// package stays free of policy types.
	view.SetLangResolver(middleware.LangFrom)
	view.SetCanResolver(func(r *http.Request, resource, action string) bool {
		return authGate.Can(r.Context(), gate.Action(action), resource)
	})
	view.SetIsAdminResolver(func(r *http.Request) bool {
		return authGate.IsAdmin(r.Context())
	})
	view.SetFlashResolver(func(w http.ResponseWriter, r *http.Request) any {
		if b, ok := middleware.PopFlash(w, r); ok {
			return b
		}
		return nil
	})

	clients := services.NewClientService(conn, authGate)
	categories := services.NewCategoryService(conn, authGate)
	sellers := services.NewSellerService(conn, authGate)
	orders := services.NewOrderService(conn, authGate, dispatcher, deps.Blobs, cfg.Notify.OrderCreated)

	a.setupRoutes(routeHandlers{
		auth:          handlers.NewAuthHandler(users, a.sessions),
		dashboard:     handlers.NewDashboardHandler(services.NewDashboardService(conn, authGate)),
		clients:       handlers.NewClientHandler(clients),
		categories:    handlers.NewCategoryHandler(categories),
		sellers:       handlers.NewSellerHandler(sellers, categories),
		orders:        handlers.NewOrderHandler(orders, clients, sellers, users, deps.Exporter),
		descriptions:  handlers.NewDescriptionHandler(services.NewDescriptionService(conn, authGate)),
		attachments:   handlers.NewAttachmentHandler(services.NewAttachmentService(conn, authGate, deps.Blobs, cfg.Upload.MaxBytes), cfg.Upload.MaxBytes),
		payments:      handlers.NewPaymentHandler(services.NewPaymentService(conn, authGate), orders),
		users:         handlers.NewUserHandler(users),
		settings:      handlers.NewSettingsHandler(services.NewSettingsService(conn, authGate, deps.Settings, dispatcher)),
		notifications: handlers.NewNotificationHandler(services.NewNotificationService(conn, authGate, dispatcher)),
	})

	// metrics sits right above the mux so it sees the matched pattern.
	var h http.Handler = metrics.Middleware(a.mux)
	h = middleware.Prefs(h)
	h = a.sessions.Middleware(users.Principal)(h)
	h = withLogging(h)
	h = chimw.Recoverer(h)
	h = chimw.RealIP(h)
	h = chimw.RequestID(h)
	a.handler = h
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

type routeHandlers struct {
	auth          *handlers.AuthHandler
	dashboard     *handlers.DashboardHandler
	clients       *handlers.ClientHandler
	categories    *handlers.CategoryHandler
	sellers       *handlers.SellerHandler
	orders        *handlers.OrderHandler
	descriptions  *handlers.DescriptionHandler
	attachments   *handlers.AttachmentHandler
	payments      *handlers.PaymentHandler
	users         *handlers.UserHandler
	settings      *handlers.SettingsHandler
	notifications *handlers.NotificationHandler
}

// crud is the handler set of an entity family with list/new/create/edit/update/delete routes.
type crud interface {
	List(http.ResponseWriter, *http.Request)
	New(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Edit(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes(h routeHandlers) {
	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.HandleFunc("GET /login", h.auth.LoginPage)
	a.mux.HandleFunc("POST /login", h.auth.Login)
	a.mux.HandleFunc("POST /logout", h.auth.Logout)
	a.mux.HandleFunc("GET /health", handlers.Health)
	a.mux.Handle("GET /healthz", handlers.Healthz(a.db))
	a.mux.Handle("GET /metrics", metrics.Handler())

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes (any role, checked per resource)
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /{$}", a.requireAuth(h.dashboard.Index))
	a.mux.Handle("GET /calendar", a.requirePermission(policy.ResourceOrder, gate.ActionList, h.orders.Calendar))

	a.family("clients", policy.ResourceClient, h.clients)
	a.family("categories", policy.ResourceCategory, h.categories)
	a.family("sellers", policy.ResourceSeller, h.sellers)
	a.family("orders", policy.ResourceOrder, h.orders)
	a.family("payments", policy.ResourcePayment, h.payments)

	order := policy.ResourceOrder
	a.mux.Handle("GET /orders/{id}", a.requirePermission(order, gate.ActionView, h.orders.Show))
	a.mux.Handle("GET /orders/{id}/print", a.requirePermission(order, gate.ActionExport, h.orders.Print))
	a.mux.Handle("GET /orders/{id}/pdf", a.requirePermission(order, gate.ActionExport, h.orders.PDF))
	a.mux.Handle("POST /orders/{id}/descriptions", a.requirePermission(order, gate.ActionUpdate, h.descriptions.Add))
	a.mux.Handle("POST /orders/{id}/descriptions/{did}", a.requirePermission(order, gate.ActionUpdate, h.descriptions.Update))
	a.mux.Handle("POST /orders/{id}/descriptions/{did}/delete", a.requirePermission(order, gate.ActionUpdate, h.descriptions.Delete))
	a.mux.Handle("POST /orders/{id}/recompute", a.requirePermission(order, gate.ActionUpdate, h.descriptions.Recompute))

	attachment := policy.ResourceAttachment
	a.mux.Handle("GET /orders/{id}/attachments", a.requirePermission(attachment, gate.ActionList, h.attachments.List))
	a.mux.Handle("POST /orders/{id}/attachments", a.requirePermission(attachment, gate.ActionCreate, h.attachments.Upload))
	a.mux.Handle("GET /attachments/{id}", a.requirePermission(attachment, gate.ActionView, h.attachments.Download))
	a.mux.Handle("POST /attachments/{id}/delete", a.requirePermission(attachment, gate.ActionDelete, h.attachments.Delete))

	notification := policy.ResourceNotification
	a.mux.Handle("POST /orders/{id}/whatsapp", a.requirePermission(notification, gate.ActionSend, h.notifications.WhatsApp))
	a.mux.Handle("GET /notifications", a.requirePermission(notification, gate.ActionList, h.notifications.List))

	// ─────────────────────────────────────────────────────────────────────────
	// Admin routes
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /users", a.requireAdmin(h.users.List))
	a.mux.Handle("GET /users/new", a.requireAdmin(h.users.New))
	a.mux.Handle("POST /users", a.requireAdmin(h.users.Create))
	a.mux.Handle("GET /users/{id}/edit", a.requireAdmin(h.users.Edit))
	a.mux.Handle("POST /users/{id}", a.requireAdmin(h.users.Update))
	a.mux.Handle("POST /users/{id}/delete", a.requireAdmin(h.users.Delete))

	a.mux.Handle("GET /settings", a.requireAdmin(h.settings.Index))
	a.mux.Handle("POST /settings/smtp", a.requireAdmin(h.settings.SaveSMTP))
	a.mux.Handle("POST /settings/company", a.requireAdmin(h.settings.SaveCompany))
	a.mux.Handle("POST /settings/values", a.requireAdmin(h.settings.SaveValues))
	a.mux.Handle("POST /settings/test-email", a.requireAdmin(h.settings.TestEmail))
}

// family registers the list/new/create/edit/update/delete routes of /<name>.
func (a *App) family(name, resource string, h crud) {
	base := "/" + name
	a.mux.Handle("GET "+base, a.requirePermission(resource, gate.ActionList, h.List))
	a.mux.Handle("GET "+base+"/new", a.requirePermission(resource, gate.ActionCreate, h.New))
	a.mux.Handle("POST "+base, a.requirePermission(resource, gate.ActionCreate, h.Create))
	a.mux.Handle("GET "+base+"/{id}/edit", a.requirePermission(resource, gate.ActionUpdate, h.Edit))
	a.mux.Handle("POST "+base+"/{id}", a.requirePermission(resource, gate.ActionUpdate, h.Update))
	a.mux.Handle("POST "+base+"/{id}/delete", a.requirePermission(resource, gate.ActionDelete, h.Delete))
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// requireAuth wraps a handler to require authentication.
func (a *App) requireAuth(next http.HandlerFunc) http.Handler {
	return auth.RequireAuth(next)
}

// requirePermission wraps a handler to require a resource permission.
func (a *App) requirePermission(resource string, action gate.Action, next http.HandlerFunc) http.Handler {
	return auth.RequireAuth(a.gate.RequirePermission(resource, action)(next))
}

// requireAdmin wraps a handler to require the admin role.
func (a *App) requireAdmin(next http.HandlerFunc) http.Handler {
	return auth.RequireAuth(a.gate.RequireAdmin()(next))
}

// withLogging adds request logging middleware.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s %s", chimw.GetReqID(r.Context()), r.Method, r.URL.Path, time.Since(start))
	})
}
