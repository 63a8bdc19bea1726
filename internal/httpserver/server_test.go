package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/susradar/internal/domain"
	"github.com/MrSnakeDoc/susradar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/susradar/internal/index"
	"github.com/MrSnakeDoc/susradar/internal/logger"
	"github.com/MrSnakeDoc/susradar/internal/radar"
)

type apiCompany struct {
	ID     string `json:"id"`
	Record struct {
		CompanyName  string `json:"company_name"`
		SusRating    int    `json:"sus_rating"`
		Description  string `json:"description"`
		Origin       string `json:"origin"`
		IsModified   bool   `json:"is_modified"`
		OriginalData *struct {
			SusRating int `json:"sus_rating"`
		} `json:"original_data"`
	} `json:"record"`
	URLs           []string `json:"urls"`
	CanReset       bool     `json:"can_reset"`
	ModifiedFields []string `json:"modified_fields"`
}

func newTestRouter(t *testing.T) (http.Handler, *radar.Service) {
	t.Helper()
	mem := index.NewMemoryIndex()
	svc := radar.NewService(mem, logger.Nop())

	acme := domain.NewCuratedCompany("acme", domain.Fields{
		Name:            "Acme",
		Rating:          3,
		Descriptions:    domain.Descriptions{Customer: "desc"},
		DefaultCategory: domain.CategoryCustomer,
	}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := svc.CreateOrReplace(context.Background(), "acme.com", "acme", acme); err != nil {
		t.Fatal(err)
	}

	d := deps.Deps{
		Logger:       logger.Nop(),
		StartTime:    time.Now(),
		Version:      "test",
		CORSOrigins:  []string{"chrome-extension://*"},
		RateLimit:    100,
		RatePerMin:   600,
		Radar:        svc,
		StoreBackend: "memory",
	}
	return NewRouter(d), svc
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestResolveEndpoint(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"tracked site", "https://www.acme.com/page", http.StatusOK},
		{"unknown site", "https://unknown.example", http.StatusNotFound},
		{"missing url", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/resolve?url="+tt.url, "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status == http.StatusOK {
				c := decode[apiCompany](t, rec)
				if c.ID != "acme" || c.Record.Description != "desc" {
					t.Errorf("got %+v", c)
				}
			}
		})
	}
}

func TestEditAndResetFlow(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPut, "/api/companies/acme",
		`{"company_name":"Acme","sus_rating":5,"descriptions":{"customer":"desc"},"default_description":"customer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", rec.Code, rec.Body.String())
	}
	c := decode[apiCompany](t, rec)
	if !c.Record.IsModified || !c.CanReset {
		t.Errorf("after edit: is_modified=%v can_reset=%v", c.Record.IsModified, c.CanReset)
	}
	if c.Record.OriginalData == nil || c.Record.OriginalData.SusRating != 3 {
		t.Errorf("original_data = %+v, want rating 3", c.Record.OriginalData)
	}
	if len(c.ModifiedFields) != 1 || c.ModifiedFields[0] != "rating" {
		t.Errorf("modified_fields = %v, want [rating]", c.ModifiedFields)
	}

	rec = do(t, h, http.MethodPost, "/api/companies/acme/reset", `{"field":"rating"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d: %s", rec.Code, rec.Body.String())
	}
	res := decode[struct {
		Applied bool       `json:"applied"`
		Company apiCompany `json:"company"`
	}](t, rec)
	if !res.Applied || res.Company.Record.SusRating != 3 || res.Company.Record.IsModified {
		t.Errorf("after reset: %+v", res)
	}

	rec = do(t, h, http.MethodPost, "/api/companies/acme/reset", `{"field":"colour"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d, want 400", rec.Code)
	}
}

func TestAddCompanyEndpoint(t *testing.T) {
	h, _ := newTestRouter(t)

	body := `{"url":"https://www.shop.com/cart","company_name":"Shop","sus_rating":4,"description":"legacy text","additional_urls":["shop.net"]}`
	rec := do(t, h, http.MethodPost, "/api/companies", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	c := decode[apiCompany](t, rec)
	if c.ID != "shop" || c.Record.Origin != "user" || c.Record.Description != "legacy text" {
		t.Errorf("got %+v", c)
	}
	if len(c.URLs) != 2 {
		t.Errorf("urls = %v", c.URLs)
	}

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"duplicate", body, http.StatusConflict, ""},
		{"url owned by acme", `{"url":"acme.com","company_name":"Other","sus_rating":2}`, http.StatusConflict, ""},
		{"bad rating", `{"url":"x.com","company_name":"X","sus_rating":9}`, http.StatusBadRequest, "sus_rating"},
		{"bad category", `{"url":"x.com","company_name":"X","sus_rating":2,"default_description":"nope"}`, http.StatusBadRequest, "default_description"},
		{"broken json", `{"url":`, http.StatusBadRequest, "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/companies", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			errBody := decode[struct {
				Error string `json:"error"`
				Field string `json:"field"`
			}](t, rec)
			if errBody.Error == "" {
				t.Error("error message missing")
			}
			if errBody.Field != tt.field {
				t.Errorf("field = %q, want %q", errBody.Field, tt.field)
			}
		})
	}
}

func TestURLEndpoints(t *testing.T) {
	h, svc := newTestRouter(t)
	ctx := context.Background()
	if _, err := svc.AddCompany(ctx, "shop.com", domain.Fields{Name: "Shop", Rating: 4}); err != nil {
		t.Fatal(err)
	}

	if rec := do(t, h, http.MethodDelete, "/api/urls?url=shop.com", ""); rec.Code != http.StatusConflict {
		t.Errorf("remove last url status = %d, want 409", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/companies/shop/urls", `{"url":"acme.com"}`); rec.Code != http.StatusConflict {
		t.Errorf("steal acme url status = %d, want 409", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/companies/shop/urls", `{"url":"shop.net"}`); rec.Code != http.StatusOK {
		t.Fatalf("add url status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodDelete, "/api/urls?url=shop.com", ""); rec.Code != http.StatusNoContent {
		t.Errorf("remove url status = %d, want 204", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/urls?url=nowhere.com", ""); rec.Code != http.StatusNotFound {
		t.Errorf("remove unmapped url status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/companies/ghost/urls", `{"url":"ghost.com"}`); rec.Code != http.StatusNotFound {
		t.Errorf("add url to missing company status = %d, want 404", rec.Code)
	}
}

func TestDeleteCompanyEndpoint(t *testing.T) {
	h, _ := newTestRouter(t)

	for i := 0; i < 2; i++ {
		if rec := do(t, h, http.MethodDelete, "/api/companies/acme", ""); rec.Code != http.StatusNoContent {
			t.Fatalf("delete #%d status = %d", i, rec.Code)
		}
	}
	if rec := do(t, h, http.MethodGet, "/api/companies/acme", ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/resolve?url=acme.com", ""); rec.Code != http.StatusNotFound {
		t.Errorf("resolve after delete status = %d", rec.Code)
	}
}

func TestBackupEndpoints(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/backup", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "susradar-backup-") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	exported := rec.Body.String()

	other, _ := newTestRouter(t)
	do(t, other, http.MethodDelete, "/api/companies/acme", "")

	if rec := do(t, other, http.MethodPost, "/api/backup", exported); rec.Code != http.StatusBadRequest {
		t.Errorf("unconfirmed import status = %d, want 400", rec.Code)
	}
	if rec := do(t, other, http.MethodPost, "/api/backup?confirm=true", `{"data":{}}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid backup status = %d, want 400", rec.Code)
	}

	rec = do(t, other, http.MethodPost, "/api/backup?confirm=true", exported)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, other, http.MethodGet, "/api/resolve?url=acme.com", ""); rec.Code != http.StatusOK {
		t.Errorf("resolve after import status = %d", rec.Code)
	}
}

func TestSyncDisabled(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/auth/status", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"disabled"`) {
		t.Errorf("status = %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodPost, "/api/sync", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("sync status = %d, want 503", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/auth/login", `{"username":"a","password":"b"}`); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("login status = %d, want 503", rec.Code)
	}
}

func TestProbesAndCORS(t *testing.T) {
	h, _ := newTestRouter(t)

	if rec := do(t, h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/infra", "")
	infra := decode[struct {
		Mode       string `json:"mode"`
		Components map[string]struct {
			OK        bool `json:"ok"`
			Companies *int `json:"companies"`
		} `json:"components"`
	}](t, rec)
	if infra.Mode != "local-only" {
		t.Errorf("mode = %q, want local-only", infra.Mode)
	}
	if store := infra.Components["store"]; !store.OK || store.Companies == nil || *store.Companies != 1 {
		t.Errorf("store component = %+v", store)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/companies", nil)
	req.Header.Set("Origin", "chrome-extension://abcdef")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	pre := httptest.NewRecorder()
	h.ServeHTTP(pre, req)
	if got := pre.Header().Get("Access-Control-Allow-Origin"); got != "chrome-extension://abcdef" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
