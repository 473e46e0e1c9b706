// Package catalog fetches and caches the repair actions available for each
// component.
package catalog

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/modcar/ingreso/internal/selection"
	"github.com/modcar/ingreso/internal/taller"
)

// ActionsFetcher is the API surface the catalog needs.
type ActionsFetcher interface {
	FetchActions(ctx context.Context, rawURL string) (taller.ActionsResponse, error)
}

// Result is the outcome of a catalog lookup. Failed distinguishes "every URL
// failed" from "the component has no actions"; callers render both the same.
type Result struct {
	ComponentID string
	Entries     []selection.CatalogEntry
	Failed      bool
	Cached      bool
}

// Catalog resolves component ids to their action lists, fetching each
// component at most once per session.
type Catalog struct {
	fetcher  ActionsFetcher
	template string
	log      *zap.Logger

	mu    sync.RWMutex
	cache map[string]Result

	group   singleflight.Group
	fetches atomic.Int64
}

// New builds a Catalog that expands template for each component id.
func New(fetcher ActionsFetcher, template string, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{
		fetcher:  fetcher,
		template: template,
		log:      log,
		cache:    make(map[string]Result),
	}
}

var trailingZero = regexp.MustCompile(`0/?$`)

// BuildURL expands an actions template such as "/car/acciones-lookup/0/" for
// a component id: the trailing "0" (with or without slash) becomes "<id>/".
func BuildURL(template, componentID string) string {
	return trailingZero.ReplaceAllLiteralString(template, componentID+"/")
}

// candidateURLs returns the URLs tried in order. Some deployments only route
// the slash-less form, so the trailing slash is stripped for the second try.
func candidateURLs(template, componentID string) []string {
	primary := BuildURL(template, componentID)
	fallback := strings.TrimSuffix(primary, "/")
	if fallback == primary || fallback == "" {
		return []string{primary}
	}
	return []string{primary, fallback}
}

// Cached returns a previously fetched result.
func (c *Catalog) Cached(componentID string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.cache[componentID]
	if ok {
		res.Cached = true
	}
	return res, ok
}

// Fetches returns how many catalog fetches were started (not HTTP requests).
func (c *Catalog) Fetches() int64 {
	return c.fetches.Load()
}

// FetchActions returns the actions for a component. It never fails: network
// errors and malformed payloads yield an empty list with Failed set.
func (c *Catalog) FetchActions(ctx context.Context, componentID string) Result {
	componentID = strings.TrimSpace(componentID)
	if res, ok := c.Cached(componentID); ok {
		return res
	}
	if componentID == "" {
		return Result{}
	}

	v, _, _ := c.group.Do(componentID, func() (any, error) {
		if res, ok := c.Cached(componentID); ok {
			return res, nil
		}
		c.fetches.Add(1)
		res := c.fetch(ctx, componentID)

		c.mu.Lock()
		c.cache[componentID] = res
		c.mu.Unlock()
		return res, nil
	})
	return v.(Result)
}

func (c *Catalog) fetch(ctx context.Context, componentID string) Result {
	res := Result{ComponentID: componentID}
	if c.fetcher == nil || strings.TrimSpace(c.template) == "" {
		c.log.Warn("actions endpoint not configured", zap.String("componente_id", componentID))
		res.Failed = true
		return res
	}

	for _, u := range candidateURLs(c.template, componentID) {
		payload, err := c.fetcher.FetchActions(ctx, u)
		if err != nil {
			c.log.Debug("actions fetch failed, trying next url",
				zap.String("componente_id", componentID),
				zap.String("url", u),
				zap.Error(err),
			)
			continue
		}
		if !payload.OK {
			c.log.Info("component has no actions",
				zap.String("componente_id", componentID),
				zap.String("mensaje", payload.Mensaje),
			)
			return res
		}
		res.Entries = toEntries(componentID, payload.Acciones)
		c.log.Debug("actions loaded",
			zap.String("componente_id", componentID),
			zap.Int("acciones", len(res.Entries)),
			zap.Bool("bare", payload.Bare),
		)
		return res
	}

	c.log.Warn("actions unavailable", zap.String("componente_id", componentID))
	res.Failed = true
	return res
}

func toEntries(componentID string, acciones []taller.Accion) []selection.CatalogEntry {
	if len(acciones) == 0 {
		return nil
	}
	out := make([]selection.CatalogEntry, 0, len(acciones))
	for _, a := range acciones {
		out = append(out, selection.CatalogEntry{
			ComponentID: componentID,
			ActionID:    a.AccionID.String(),
			ActionName:  strings.TrimSpace(a.AccionNombre),
			BasePrice:   a.PrecioBase.Decimal,
		})
	}
	return out
}
