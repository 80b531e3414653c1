package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fairyhunter13/product-catalogue-service/internal/config"
	"github.com/fairyhunter13/product-catalogue-service/internal/model"
	"github.com/fairyhunter13/product-catalogue-service/internal/obs"
	"github.com/fairyhunter13/product-catalogue-service/internal/offers"
	"github.com/fairyhunter13/product-catalogue-service/internal/snapshot"
	"github.com/fairyhunter13/product-catalogue-service/internal/store"
	"github.com/fairyhunter13/product-catalogue-service/internal/token"
)

// offersMock simulates the external offers microservice.
type offersMock struct {
	mu           sync.Mutex
	registerCode int
	fetchCode    int
	offer        model.Offer
	registered   []string
}

func (m *offersMock) set(registerCode, fetchCode int, offer model.Offer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registerCode = registerCode
	m.fetchCode = fetchCode
	m.offer = offer
}

func (m *offersMock) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "T1"})
	})
	mux.HandleFunc("/products/register", func(w http.ResponseWriter, r *http.Request) {
		var p model.Product
		_ = json.NewDecoder(r.Body).Decode(&p)
		m.mu.Lock()
		code := m.registerCode
		m.registered = append(m.registered, p.ID)
		m.mu.Unlock()
		w.WriteHeader(code)
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		code, offer := m.fetchCode, m.offer
		m.mu.Unlock()
		if code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		_ = json.NewEncoder(w).Encode(offer)
	})
	return mux
}

func setupApp(t *testing.T) (*offersMock, *App, http.Handler) {
	t.Helper()
	obs.InitLogger()
	mock := &offersMock{registerCode: http.StatusCreated, fetchCode: http.StatusOK}
	ext := httptest.NewServer(mock.handler())
	t.Cleanup(ext.Close)

	cfg := config.Config{
		OffersBaseURL:        ext.URL,
		OffersRefreshToken:   "refresh-secret",
		OffersRequestTimeout: 2 * time.Second,
		OffersRateLimitRPS:   100,
	}
	oc := offers.NewClient(cfg.OffersBaseURL, cfg.OffersRefreshToken, cfg.OffersRequestTimeout, cfg.OffersRateLimitRPS)
	tm := token.NewManager(oc, time.Minute, cfg.OffersRequestTimeout)
	if _, err := tm.Refresh(context.Background()); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	app := NewApp(cfg, store.New(), oc, tm, snapshot.New())
	return mock, app, NewRouter(app)
}

func doJSON(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestHealthzOK(t *testing.T) {
	_, _, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	_, _, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/healthz", "")
	if rr.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id header")
	}
}

func TestCreateProduct(t *testing.T) {
	mock, app, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodPost, "/products", `{"name":"Widget","description":"A widget"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var p model.Product
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID == "" || p.Name != "Widget" {
		t.Fatalf("unexpected product: %+v", p)
	}
	if _, ok := app.Store.Get(p.ID); !ok {
		t.Fatalf("expected record persisted")
	}
	mock.mu.Lock()
	defer mock.mu.Unlock()
	if len(mock.registered) != 1 || mock.registered[0] != p.ID {
		t.Fatalf("expected registration call for %s, got %v", p.ID, mock.registered)
	}
}

func TestCreateProductRegisterFailureCompensates(t *testing.T) {
	mock, app, mux := setupApp(t)
	mock.set(http.StatusInternalServerError, http.StatusOK, model.Offer{})
	rr := doJSON(t, mux, http.MethodPost, "/products", `{"name":"Widget"}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if got := len(app.Store.List()); got != 0 {
		t.Fatalf("expected record rolled back, store has %d", got)
	}
}

func TestCreateProductValidation(t *testing.T) {
	_, _, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodPost, "/products", `{"description":"nameless"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	rr = doJSON(t, mux, http.MethodPost, "/products", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestProductCRUDRoundTrip(t *testing.T) {
	_, app, mux := setupApp(t)
	p := app.Store.Create("Widget", "old")

	rr := doJSON(t, mux, http.MethodGet, "/products/"+p.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rr.Code)
	}

	rr = doJSON(t, mux, http.MethodPut, "/products/"+p.ID, `{"name":"Gadget","description":"new"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d", rr.Code)
	}
	got, _ := app.Store.Get(p.ID)
	if got.Name != "Gadget" || got.Description != "new" {
		t.Fatalf("unexpected after update: %+v", got)
	}

	rr = doJSON(t, mux, http.MethodGet, "/products", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rr.Code)
	}
	var listing struct {
		Products []model.Product `json:"products"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listing.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(listing.Products))
	}

	rr = doJSON(t, mux, http.MethodDelete, "/products/"+p.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rr.Code)
	}
	if _, ok := app.Store.Get(p.ID); ok {
		t.Fatalf("expected record gone")
	}
}

func TestGetProductNotFound(t *testing.T) {
	_, _, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/products/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestProductOffersOnDemand(t *testing.T) {
	mock, app, mux := setupApp(t)
	mock.set(http.StatusCreated, http.StatusOK, model.Offer{ItemsInStock: 5, Price: 100})
	p := app.Store.Create("Widget", "")
	rr := doJSON(t, mux, http.MethodGet, "/products/"+p.ID+"/offers", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var offer model.Offer
	if err := json.Unmarshal(rr.Body.Bytes(), &offer); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if offer.ItemsInStock != 5 || offer.Price != 100 {
		t.Fatalf("unexpected offer: %+v", offer)
	}
}

func TestProductOffersUpstreamFailure(t *testing.T) {
	mock, app, mux := setupApp(t)
	mock.set(http.StatusCreated, http.StatusNotFound, model.Offer{})
	p := app.Store.Create("Widget", "")
	rr := doJSON(t, mux, http.MethodGet, "/products/"+p.ID+"/offers", "")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
}

func TestProductOffersUnknownProduct(t *testing.T) {
	_, _, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/products/nope/offers", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestAllOffersServesSnapshot(t *testing.T) {
	_, app, mux := setupApp(t)
	app.Snapshots.Replace(model.Snapshot{
		"P1": {Offer: &model.Offer{ItemsInStock: 5, Price: 100}},
		"P2": {Error: "fetch offers for P2: unexpected status 404"},
	})
	rr := doJSON(t, mux, http.MethodGet, "/products/offers", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Offers model.Snapshot `json:"offers"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Offers) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(resp.Offers))
	}
	if resp.Offers["P1"].Offer == nil || resp.Offers["P1"].Offer.Price != 100 {
		t.Fatalf("unexpected P1: %+v", resp.Offers["P1"])
	}
	if resp.Offers["P2"].Error == "" {
		t.Fatalf("expected error marker for P2")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, _, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodPatch, "/products", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
