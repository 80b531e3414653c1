package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fairyhunter13/product-catalogue-service/internal/config"
	"github.com/fairyhunter13/product-catalogue-service/internal/obs"
	"github.com/fairyhunter13/product-catalogue-service/internal/offers"
	"github.com/fairyhunter13/product-catalogue-service/internal/snapshot"
	"github.com/fairyhunter13/product-catalogue-service/internal/store"
	"github.com/fairyhunter13/product-catalogue-service/internal/token"
)

type App struct {
	Cfg       config.Config
	Store     *store.Store
	Offers    *offers.Client
	Tokens    *token.Manager
	Snapshots *snapshot.Store
	started   time.Time
}

func NewApp(cfg config.Config, st *store.Store, oc *offers.Client, tm *token.Manager, sn *snapshot.Store) *App {
	return &App{Cfg: cfg, Store: st, Offers: oc, Tokens: tm, Snapshots: sn, started: time.Now()}
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// productsHandler serves the collection routes: GET lists all products,
// POST creates one and registers it with the partner service.
func (a *App) productsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"products": a.Store.List()})
	case http.MethodPost:
		a.createProduct(w, r)
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) createProduct(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return
	}
	var in productRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if in.Name == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}

	p := a.Store.Create(in.Name, in.Description)
	ctx, cancel := context.WithTimeout(r.Context(), a.Cfg.OffersRequestTimeout)
	defer cancel()
	if err := a.Offers.RegisterProduct(ctx, p, a.Tokens.Current()); err != nil {
		// The partner never saw this product, so the local record must not
		// survive either.
		_ = a.Store.Delete(p.ID)
		obs.Logger.Error("product_register_failed",
			"request_id", RequestIDFromContext(r.Context()),
			"product_id", p.ID,
			"error", err,
		)
		WriteJSONError(w, http.StatusBadGateway, "register_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(p)
	obs.Logger.Info("product_created",
		"request_id", RequestIDFromContext(r.Context()),
		"product_id", p.ID,
		"name", p.Name,
	)
}

// productItemHandler serves everything under /products/: the aggregated
// snapshot, per-product offer reads, and single-record CRUD.
func (a *App) productItemHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/products/")
	if rest == "" {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	if rest == "offers" {
		a.allOffers(w, r)
		return
	}
	if id, ok := strings.CutSuffix(rest, "/offers"); ok {
		a.productOffers(w, r, id)
		return
	}
	if strings.Contains(rest, "/") {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, ok := a.Store.Get(rest)
		if !ok {
			WriteJSONError(w, http.StatusNotFound, "not_found", "")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p)
	case http.MethodPut:
		a.updateProduct(w, r, rest)
	case http.MethodDelete:
		if err := a.Store.Delete(rest); err != nil {
			WriteJSONError(w, http.StatusNotFound, "not_found", "")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "product deleted"})
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) updateProduct(w http.ResponseWriter, r *http.Request, id string) {
	var in productRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if in.Name == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}
	p, err := a.Store.Update(id, in.Name, in.Description)
	if err != nil {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

// productOffers performs an on-demand fetch against the partner service
// using the current access token.
func (a *App) productOffers(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	if _, ok := a.Store.Get(id); !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), a.Cfg.OffersRequestTimeout)
	defer cancel()
	offer, err := a.Offers.FetchOffers(ctx, id, a.Tokens.Current())
	if err != nil {
		obs.Logger.Warn("offer_fetch_failed",
			"request_id", RequestIDFromContext(r.Context()),
			"product_id", id,
			"error", err,
		)
		WriteJSONError(w, http.StatusBadGateway, "fetch_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(offer)
}

// allOffers returns the latest aggregated snapshot. Entries are either the
// last fetched offer or an explicit error marker, never fabricated data.
func (a *App) allOffers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"offers": a.Snapshots.Current()})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	snap := a.Snapshots.Current()
	failed := 0
	for _, res := range snap {
		if res.Error != "" {
			failed++
		}
	}
	m := map[string]any{
		"products":        len(a.Store.List()),
		"snapshot_size":   len(snap),
		"snapshot_errors": failed,
		"uptime_sec":      time.Since(a.started).Seconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}
