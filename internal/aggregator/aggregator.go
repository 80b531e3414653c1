// Package aggregator periodically rebuilds the full offers snapshot.
package aggregator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fairyhunter13/product-catalogue-service/internal/model"
	"github.com/fairyhunter13/product-catalogue-service/internal/obs"
	"github.com/fairyhunter13/product-catalogue-service/internal/snapshot"
	"golang.org/x/sync/errgroup"
)

// Directory supplies the current set of product IDs to aggregate.
type Directory interface {
	ListProductIDs() ([]string, error)
}

// Fetcher performs a single offer lookup for one product.
type Fetcher interface {
	FetchOffers(ctx context.Context, productID, token string) (model.Offer, error)
}

// TokenSource exposes the current access token without blocking.
type TokenSource interface {
	Current() string
}

// Aggregator runs the periodic offer sync: list products, fetch each
// product's offer with a bounded fan-out, and atomically replace the
// snapshot once every product has an outcome.
type Aggregator struct {
	dir      Directory
	fetcher  Fetcher
	tokens   TokenSource
	snap     *snapshot.Store
	interval time.Duration
	timeout  time.Duration
	limit    int
}

func New(dir Directory, f Fetcher, ts TokenSource, snap *snapshot.Store, interval, timeout time.Duration, limit int) *Aggregator {
	if limit <= 0 {
		limit = 4
	}
	return &Aggregator{
		dir:      dir,
		fetcher:  f,
		tokens:   ts,
		snap:     snap,
		interval: interval,
		timeout:  timeout,
		limit:    limit,
	}
}

// RunCycle performs one full aggregation pass. A directory failure aborts
// the cycle and leaves the previous snapshot in place. Per-product fetch
// failures never abort the cycle; they become error markers in the new
// snapshot. The token is read from the source at each fetch, so a refresh
// landing mid-cycle is picked up by the remaining fetches.
func (a *Aggregator) RunCycle(ctx context.Context) error {
	ids, err := a.dir.ListProductIDs()
	if err != nil {
		return fmt.Errorf("list product ids: %w", err)
	}

	next := make(model.Snapshot, len(ids))
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(a.limit)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()
			offer, err := a.fetcher.FetchOffers(cctx, id, a.tokens.Current())
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				next[id] = model.OfferResult{Error: err.Error()}
				return nil
			}
			next[id] = model.OfferResult{Offer: &offer}
			return nil
		})
	}
	_ = g.Wait()

	a.snap.Replace(next)
	failed := 0
	for _, r := range next {
		if r.Error != "" {
			failed++
		}
	}
	obs.Logger.Info("offer_sync_cycle", "products", len(ids), "failed", failed)
	return nil
}

// Run executes aggregation cycles on a fixed interval until ctx is
// cancelled. A failed cycle never stops the loop; the next tick starts a
// fresh pass regardless of the previous outcome.
func (a *Aggregator) Run(ctx context.Context) {
	t := time.NewTicker(a.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := a.RunCycle(ctx); err != nil {
				obs.Logger.Warn("offer_sync_cycle_failed", "error", err)
			}
		}
	}
}
