package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/db"
	"github.com/diewo77/go-printshop/internal/export"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/notify"
	"github.com/diewo77/go-printshop/internal/settings"
	"github.com/diewo77/go-printshop/internal/storage"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeTransport struct {
	sent []notify.Message
}

func (f *fakeTransport) Send(_ context.Context, msg notify.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

type testApp struct {
	*App
	db        *gorm.DB
	transport *fakeTransport
	admin     models.User
	staff     models.User
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	conn, err := db.Connect(config.DatabaseConfig{Driver: "sqlite", SQLitePath: "file:app_" + t.Name() + "?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.Migrate(conn, config.DatabaseConfig{Driver: "sqlite"}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()
	if err := db.Seed(ctx, conn); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg := &config.Config{
		Session: config.SessionConfig{Secret: "test-secret", TTL: time.Hour},
		Upload:  config.UploadConfig{Driver: "local", Dir: t.TempDir(), MaxBytes: 1 << 20},
		Mail:    config.MailConfig{Host: "localhost", Port: 1025, From: "shop@example.com", Timeout: time.Second},
		Admin:   config.AdminConfig{Name: "Admin", Email: "admin@example.com", Password: "admin1234"},
	}
	if _, err := db.EnsureAdmin(ctx, conn, cfg.Admin); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	store := settings.NewStore(conn, cfg.Mail)
	if err := store.Reload(ctx); err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	blobs, err := storage.NewLocal(cfg.Upload.Dir)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	tr := &fakeTransport{}
	app := NewApp(conn, cfg, Deps{Settings: store, Blobs: blobs, Transport: tr, Exporter: export.Disabled{}})

	ta := &testApp{App: app, db: conn, transport: tr}
	if err := conn.Where("email = ?", "admin@example.com").First(&ta.admin).Error; err != nil {
		t.Fatalf("admin: %v", err)
	}
	ta.staff = models.User{Name: "Staff", Email: "staff@example.com", Role: models.RoleStaff, PasswordHash: "x"}
	if err := conn.Create(&ta.staff).Error; err != nil {
		t.Fatalf("staff: %v", err)
	}
	return ta
}

func (ta *testApp) cookie(t *testing.T, u models.User) *http.Cookie {
	t.Helper()
	token, err := ta.sessions.Sign(u.ID)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return &http.Cookie{Name: "session", Value: token}
}

func (ta *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	ta.ServeHTTP(rr, req)
	return rr
}

func form(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	ta := setupApp(t)
	for _, path := range []string{"/health", "/healthz"} {
		rr := ta.do(httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"ok"`) {
			t.Fatalf("%s: unexpected body %s", path, rr.Body.String())
		}
	}
}

func TestLoginFlow(t *testing.T) {
	ta := setupApp(t)

	rr := ta.do(form("/login", url.Values{"email": {"ADMIN@example.com"}, "password": {"admin1234"}}))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to / got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	sess := findCookie(rr, "session")
	if sess == nil || sess.Value == "" {
		t.Fatal("no session cookie")
	}

	rr = ta.do(httptest.NewRequest(http.MethodGet, "/", nil), sess)
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = ta.do(form("/logout", nil), sess)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("logout: got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if c := findCookie(rr, "session"); c == nil || c.MaxAge >= 0 {
		t.Fatal("logout must clear the session cookie")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	ta := setupApp(t)
	rr := ta.do(form("/login", url.Values{"email": {"admin@example.com"}, "password": {"nope"}}))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
	if findCookie(rr, "session") != nil {
		t.Fatal("failed login must not set a session")
	}

	rr = ta.do(jsonRequest(http.MethodPost, "/login", `{"email":"admin@example.com","password":"nope"}`))
	if rr.Code != http.StatusUnauthorized || !strings.Contains(rr.Body.String(), "invalid_credentials") {
		t.Fatalf("json: got %d %s", rr.Code, rr.Body.String())
	}
}

func TestUnauthenticated(t *testing.T) {
	ta := setupApp(t)

	rr := ta.do(httptest.NewRequest(http.MethodGet, "/clients", nil))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("html: expected redirect to /login got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	req.Header.Set("Accept", "application/json")
	rr = ta.do(req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("json: expected 401 got %d", rr.Code)
	}
}

func TestStaleSessionIsCleared(t *testing.T) {
	ta := setupApp(t)
	token, err := ta.sessions.Sign(9999)
	if err != nil {
		t.Fatal(err)
	}
	rr := ta.do(httptest.NewRequest(http.MethodGet, "/clients", nil), &http.Cookie{Name: "session", Value: token})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect got %d", rr.Code)
	}
	if c := findCookie(rr, "session"); c == nil || c.MaxAge >= 0 {
		t.Fatal("stale session must be cleared")
	}
}

func TestAdminOnlyRoutes(t *testing.T) {
	ta := setupApp(t)
	staff := ta.cookie(t, ta.staff)
	admin := ta.cookie(t, ta.admin)

	for _, path := range []string{"/users", "/settings"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept", "application/json")
		if rr := ta.do(req, staff); rr.Code != http.StatusForbidden {
			t.Fatalf("staff %s: expected 403 got %d", path, rr.Code)
		}
		if rr := ta.do(httptest.NewRequest(http.MethodGet, path, nil), admin); rr.Code != http.StatusOK {
			t.Fatalf("admin %s: expected 200 got %d body=%s", path, rr.Code, rr.Body.String())
		}
	}

	rr := ta.do(httptest.NewRequest(http.MethodGet, "/users", nil), staff)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("staff html: expected redirect to / got %d", rr.Code)
	}
	if findCookie(rr, "flash") == nil {
		t.Fatal("forbidden redirect should carry a banner")
	}
}

func TestClientCreate_Form(t *testing.T) {
	ta := setupApp(t)
	staff := ta.cookie(t, ta.staff)

	rr := ta.do(form("/clients", url.Values{"name": {"Acme"}, "email": {"ACME@Example.com"}}), staff)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d body=%s", rr.Code, rr.Body.String())
	}
	if findCookie(rr, "flash") == nil {
		t.Fatal("expected success banner")
	}
	var c models.Client
	if err := ta.db.Where("name = ?", "Acme").First(&c).Error; err != nil {
		t.Fatalf("client not stored: %v", err)
	}
	if c.Email != "acme@example.com" {
		t.Fatalf("email not normalized: %q", c.Email)
	}

	var audits int64
	ta.db.Model(&models.AuditLog{}).Where("entity_id = ?", c.ID).Count(&audits)
	if audits == 0 {
		t.Fatal("create should be audited")
	}
}

func TestClientCreate_JSON(t *testing.T) {
	ta := setupApp(t)
	staff := ta.cookie(t, ta.staff)

	rr := ta.do(jsonRequest(http.MethodPost, "/clients", `{"name":"Globex","phone":"+51 999"}`), staff)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}
	var got models.Client
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID == 0 || got.Name != "Globex" {
		t.Fatalf("unexpected client %+v", got)
	}
}

func TestClientCreate_Validation(t *testing.T) {
	ta := setupApp(t)
	staff := ta.cookie(t, ta.staff)

	rr := ta.do(form("/clients", url.Values{"name": {""}, "email": {"not-an-email"}}), staff)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("html: expected 422 got %d", rr.Code)
	}

	rr = ta.do(jsonRequest(http.MethodPost, "/clients", `{"name":""}`), staff)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("json: expected 422 got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "required") {
		t.Fatalf("missing violation code: %s", rr.Body.String())
	}
}

func TestClientDelete_WithOrdersIsRefused(t *testing.T) {
	ta := setupApp(t)
	staff := ta.cookie(t, ta.staff)
	o := ta.order(t)

	req := jsonRequest(http.MethodPost, "/clients/"+itoa(o.ClientID)+"/delete", "")
	rr := ta.do(req, staff)
	if rr.Code != http.StatusUnprocessableEntity || !strings.Contains(rr.Body.String(), "client_has_orders") {
		t.Fatalf("expected client_has_orders got %d %s", rr.Code, rr.Body.String())
	}
}

func TestOrderShow_NotFound(t *testing.T) {
	ta := setupApp(t)
	staff := ta.cookie(t, ta.staff)

	req := httptest.NewRequest(http.MethodGet, "/orders/404", nil)
	req.Header.Set("Accept", "application/json")
	if rr := ta.do(req, staff); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

func TestOrderAttachments_MissingOrder(t *testing.T) {
	ta := setupApp(t)
	staff := ta.cookie(t, ta.staff)

	req := httptest.NewRequest(http.MethodGet, "/orders/404/attachments", nil)
	req.Header.Set("Accept", "application/json")
	if rr := ta.do(req, staff); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestOrderPDF_FallsBackToPrintView(t *testing.T) {
	ta := setupApp(t)
	staff := ta.cookie(t, ta.staff)
	o := ta.order(t)

	rr := ta.do(httptest.NewRequest(http.MethodGet, "/orders/"+itoa(o.ID)+"/pdf", nil), staff)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/orders/"+itoa(o.ID)+"/print" {
		t.Fatalf("unexpected location %q", loc)
	}

	rr = ta.do(httptest.NewRequest(http.MethodGet, "/orders/"+itoa(o.ID)+"/print", nil), staff)
	if rr.Code != http.StatusOK {
		t.Fatalf("print: expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Acme") {
		t.Fatal("print view should show the client")
	}
}

func TestOrderWhatsApp_IsLogged(t *testing.T) {
	ta := setupApp(t)
	staff := ta.cookie(t, ta.staff)
	o := ta.order(t)

	rr := ta.do(jsonRequest(http.MethodPost, "/orders/"+itoa(o.ID)+"/whatsapp", `{"body":"Su pedido está listo"}`), staff)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}
	var n int64
	ta.db.Model(&models.NotificationLog{}).Where("channel = ?", models.ChannelWhatsApp).Count(&n)
	if n != 1 {
		t.Fatalf("expected one whatsapp log, got %d", n)
	}
}

func TestPages_Render(t *testing.T) {
	ta := setupApp(t)
	admin := ta.cookie(t, ta.admin)
	o := ta.order(t)

	for _, path := range []string{
		"/", "/clients", "/clients/new", "/categories", "/sellers", "/sellers/new",
		"/orders", "/orders/new", "/orders/" + itoa(o.ID), "/orders/" + itoa(o.ID) + "/edit",
		"/payments", "/payments/new", "/users/new", "/notifications", "/calendar",
	} {
		rr := ta.do(httptest.NewRequest(http.MethodGet, path, nil), admin)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d body=%s", path, rr.Code, rr.Body.String())
		}
	}
}

func TestLoginPage_Language(t *testing.T) {
	ta := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/login?lang=en", nil)
	rr := ta.do(req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if c := findCookie(rr, "lang"); c == nil || c.Value != "en" {
		t.Fatal("lang cookie not persisted")
	}
}

func (ta *testApp) order(t *testing.T) models.Order {
	t.Helper()
	c := models.Client{Name: "Acme", Email: "acme@example.com", Phone: "+51999888777"}
	if err := ta.db.Create(&c).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	o := models.Order{
		ClientID:       c.ID,
		UserID:         &ta.staff.ID,
		Date:           time.Now().UTC().Truncate(24 * time.Hour),
		NetPrice:       decimal.RequireFromString("100.00"),
		Tax:            decimal.RequireFromString("18.00"),
		Total:          decimal.RequireFromString("118.00"),
		WorkStatus:     models.WorkPending,
		DispatchStatus: models.DispatchPending,
		PaymentStatus:  models.PaymentPending,
	}
	if err := ta.db.Create(&o).Error; err != nil {
		t.Fatalf("order: %v", err)
	}
	return o
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
