// Package main boots the Product Catalogue Service HTTP server and its
// background sync loops.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/product-catalogue-service/internal/aggregator"
	"github.com/fairyhunter13/product-catalogue-service/internal/config"
	httpapi "github.com/fairyhunter13/product-catalogue-service/internal/http"
	"github.com/fairyhunter13/product-catalogue-service/internal/obs"
	"github.com/fairyhunter13/product-catalogue-service/internal/offers"
	"github.com/fairyhunter13/product-catalogue-service/internal/snapshot"
	"github.com/fairyhunter13/product-catalogue-service/internal/store"
	"github.com/fairyhunter13/product-catalogue-service/internal/token"
)

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("service_starting")

	st := store.New()
	oc := offers.NewClient(cfg.OffersBaseURL, cfg.OffersRefreshToken, cfg.OffersRequestTimeout, cfg.OffersRateLimitRPS)
	tm := token.NewManager(oc, cfg.TokenRefreshInterval, cfg.OffersRequestTimeout)
	sn := snapshot.New()
	agg := aggregator.New(st, oc, tm, sn, cfg.OfferSyncInterval, cfg.OffersRequestTimeout, cfg.FetchConcurrency)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Grab an initial credential before serving; a failure here is not
	// fatal, the refresh loop keeps trying on its interval.
	if _, err := tm.Refresh(ctx); err != nil {
		obs.Logger.Warn("initial_token_refresh_failed", "error", err)
	} else {
		obs.Logger.Info("token_refreshed")
	}

	go tm.Run(ctx)
	go agg.Run(ctx)

	app := httpapi.NewApp(cfg, st, oc, tm, sn)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	cancel()

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	obs.Logger.Info("service_stopped")
}
