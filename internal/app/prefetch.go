package app

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/modcar/ingreso/internal/catalog"
)

const defaultPrefetchLimit = 4

// CatalogLoader installs a component's action catalog in the store.
// *reconcile.Reconciler implements it.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, componentID string) (catalog.Result, bool)
}

// Prefetch loads the catalogs of ids before the UI starts, with at most
// limit requests in flight. It returns how many catalogs were fetched by this
// call. Failed fetches are cached as empty catalogs by the loader and never
// abort the others.
func Prefetch(ctx context.Context, loader CatalogLoader, ids []string, limit int) int {
	if len(ids) == 0 {
		return 0
	}
	if limit <= 0 {
		limit = defaultPrefetchLimit
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var loaded atomic.Int64
	for _, id := range ids {
		g.Go(func() error {
			if _, fetched := loader.LoadCatalog(gctx, id); fetched {
				loaded.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(loaded.Load())
}
