package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/facturacion/internal/db"
	"github.com/diewo77/facturacion/internal/models"
	"github.com/diewo77/facturacion/internal/services"
	"github.com/diewo77/facturacion/internal/store"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	mux    *http.ServeMux
	st     *store.GormStore
	client models.Client
	pen    models.Product
	pad    models.Product
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := store.NewGormStore(conn)

	env := &testEnv{mux: http.NewServeMux(), st: st}
	env.client = models.Client{Name: "Bar Luna"}
	if err := st.CreateClient(context.Background(), &env.client); err != nil {
		t.Fatalf("client: %v", err)
	}
	env.pen = models.Product{Code: "PEN", Name: "Pen", UnitPrice: decimal.NewFromInt(10), Stock: 5, TaxPercentage: decimal.NewFromInt(21)}
	env.pad = models.Product{Code: "PAD", Name: "Pad", UnitPrice: decimal.NewFromInt(5), Stock: 3, TaxPercentage: decimal.NewFromInt(10)}
	for _, p := range []*models.Product{&env.pen, &env.pad} {
		if err := st.CreateProduct(context.Background(), p); err != nil {
			t.Fatalf("product: %v", err)
		}
	}

	catalog := services.NewCatalogService(st)
	reports := services.NewReportService(st)
	ih := NewInvoiceHandler(services.NewInvoiceService(st, nil))
	ph := NewProductHandler(catalog, reports)
	ch := NewClientHandler(catalog)
	env.mux.HandleFunc("POST /invoices", ih.Create)
	env.mux.HandleFunc("GET /invoices", ih.List)
	env.mux.HandleFunc("GET /invoices/{id}", ih.View)
	env.mux.HandleFunc("PUT /invoices/{id}/pay", ih.Pay)
	env.mux.HandleFunc("DELETE /invoices/{id}", ih.Delete)
	env.mux.HandleFunc("POST /products", ph.Create)
	env.mux.HandleFunc("GET /products/low-stock", ph.LowStock)
	env.mux.HandleFunc("DELETE /products/{id}", ph.Delete)
	env.mux.HandleFunc("DELETE /clients/{id}", ch.Delete)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func (e *testEnv) issueBody(number string, padQty int) string {
	return fmt.Sprintf(`{"number":%q,"clientId":%d,"date":"2026-03-14","lines":[`+
		`{"productId":%d,"quantity":2,"unitPrice":10,"taxPercentage":21},`+
		`{"productId":%d,"quantity":%d,"unitPrice":5,"taxPercentage":10}]}`,
		number, e.client.ID, e.pen.ID, e.pad.ID, padQty)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestInvoiceCreateJSON(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodPost, "/invoices", env.issueBody("FAC-1", 1))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	totals := body["totals"].(map[string]any)
	if totals["subtotal"] != float64(25) || totals["taxTotal"] != 4.7 || totals["grandTotal"] != 29.7 {
		t.Fatalf("unexpected totals %v", totals)
	}
	inv := body["invoice"].(map[string]any)
	if inv["status"] != "pending" || inv["number"] != "FAC-1" {
		t.Fatalf("unexpected invoice %v", inv)
	}

	id := int(inv["id"].(float64))
	w = env.do(t, http.MethodGet, fmt.Sprintf("/invoices/%d", id), "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}
	got := decodeBody(t, w)
	lines := got["lines"].([]any)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines got %d", len(lines))
	}
	product := lines[0].(map[string]any)["product"].(map[string]any)
	if product["code"] != "PEN" {
		t.Fatalf("line product not loaded: %v", lines[0])
	}
	if got["client"].(map[string]any)["name"] != "Bar Luna" {
		t.Fatalf("client not loaded: %v", got["client"])
	}
}

func TestInvoiceCreateInsufficientStock(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodPost, "/invoices", env.issueBody("FAC-1", 9))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["code"] != "INSUFFICIENT_STOCK" {
		t.Fatalf("unexpected code %v", body["code"])
	}
	details := body["details"].([]any)
	if len(details) != 1 || details[0].(map[string]any)["available"] != float64(3) {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestInvoiceCreateValidation(t *testing.T) {
	env := setupTestEnv(t)
	tests := []struct {
		name, body, code string
		status           int
	}{
		{"malformed", `{"number":`, "INVALID_INPUT", http.StatusBadRequest},
		{"empty lines", fmt.Sprintf(`{"number":"X","clientId":%d,"date":"2026-01-01","lines":[]}`, env.client.ID), "EMPTY_INVOICE", http.StatusBadRequest},
		{"missing fields", fmt.Sprintf(`{"lines":[{"productId":%d,"quantity":1}]}`, env.pen.ID), "VALIDATION_FAILED", http.StatusBadRequest},
		{"unknown client", fmt.Sprintf(`{"number":"X","clientId":999,"date":"2026-01-01","lines":[{"productId":%d,"quantity":1}]}`, env.pen.ID), "CLIENT_NOT_FOUND", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/invoices", tt.body)
			if w.Code != tt.status {
				t.Fatalf("expected %d got %d body=%s", tt.status, w.Code, w.Body.String())
			}
			if code := decodeBody(t, w)["code"]; code != tt.code {
				t.Fatalf("expected code %s got %v", tt.code, code)
			}
		})
	}
}

func TestInvoicePayTwice(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodPost, "/invoices", env.issueBody("FAC-1", 1))
	id := int(decodeBody(t, w)["invoice"].(map[string]any)["id"].(float64))
	path := fmt.Sprintf("/invoices/%d/pay", id)

	w = env.do(t, http.MethodPut, path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("first pay: %d %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["id"] != float64(id) || body["message"] == "" {
		t.Fatalf("unexpected body %v", body)
	}
	w = env.do(t, http.MethodPut, path, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second pay: expected 400 got %d", w.Code)
	}
	if code := decodeBody(t, w)["code"]; code != "ALREADY_PAID" {
		t.Fatalf("unexpected code %v", code)
	}

	w = env.do(t, http.MethodGet, "/invoices?status=paid", "")
	if body := decodeBody(t, w); body["total"] != float64(1) {
		t.Fatalf("expected one paid invoice, got %v", body)
	}
	w = env.do(t, http.MethodGet, "/invoices?status=void", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid status filter: expected 400 got %d", w.Code)
	}
}

func TestDeleteEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodPost, "/invoices", env.issueBody("FAC-1", 1))
	id := int(decodeBody(t, w)["invoice"].(map[string]any)["id"].(float64))

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/products/%d", env.pen.ID), "")
	if w.Code != http.StatusBadRequest || decodeBody(t, w)["code"] != "PRODUCT_IN_USE" {
		t.Fatalf("product in use: %d %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/clients/%d", env.client.ID), "")
	if w.Code != http.StatusConflict || decodeBody(t, w)["code"] != "CLIENT_IN_USE" {
		t.Fatalf("client in use: %d %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/invoices/%d", id), "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete invoice: %d %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/invoices/%d", id), "")
	if w.Code != http.StatusNotFound || decodeBody(t, w)["code"] != "INVOICE_NOT_FOUND" {
		t.Fatalf("delete missing invoice: %d %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodDelete, "/invoices/abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400 got %d", w.Code)
	}

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/products/%d", env.pen.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("unused product delete: %d %s", w.Code, w.Body.String())
	}
}

func TestProductCreateAndLowStock(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodPost, "/products", `{"code":"big","name":"Big box","unitPrice":3,"stock":50}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodPost, "/products", `{"code":"BIG","name":"Again","unitPrice":3}`)
	if w.Code != http.StatusConflict || decodeBody(t, w)["code"] != "DUPLICATE_PRODUCT_CODE" {
		t.Fatalf("duplicate: %d %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/products/low-stock?threshold=4", "")
	if w.Code != http.StatusOK {
		t.Fatalf("low stock: %d", w.Code)
	}
	var low []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &low); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(low) != 1 || low[0]["code"] != "PAD" {
		t.Fatalf("expected only PAD, got %v", low)
	}
}
