// Package facetsync keeps a search view synchronized with a product catalog
// backend. It owns the full lifecycle of a search: debouncing rapid input,
// cancelling superseded requests, reconciling pagination, falling back on
// blended ratings, and publishing one immutable view model per settled cycle.
//
// Results are applied in request order regardless of arrival order: a slow
// response for an old search can never overwrite a newer one.
package facetsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atshelf/facetsync/internal/db"
	dbRedis "github.com/atshelf/facetsync/internal/db/redis"
	"github.com/atshelf/facetsync/internal/domain/search/criteria"
	"github.com/atshelf/facetsync/internal/metrics"
	"github.com/atshelf/facetsync/internal/repository/tagcache"
	"github.com/atshelf/facetsync/internal/usecase/coordinate"
	"github.com/atshelf/facetsync/internal/usecase/paginate"
	"github.com/atshelf/facetsync/internal/usecase/ratingblend"
	"github.com/atshelf/facetsync/internal/usecase/tagfreq"
)

const defaultReadinessTimeout = 10 * time.Second

// Controller is the composition root of the search engine. All methods are
// safe for concurrent use.
type Controller struct {
	coord    *coordinate.Coordinator
	fallback *ratingblend.Resolver
	store    db.Store
	logger   *zap.Logger
	onUpdate func(ViewModel)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	crit     criteria.Criteria
	vm       ViewModel
	seeded   bool
	searched bool
	closed   bool
}

// NewController creates a controller over the given backend.
func NewController(backend Backend, opts ...Option) (*Controller, error) {
	if backend == nil {
		return nil, errors.New("facetsync: backend required")
	}

	cfg := &controllerConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.metricsReg != nil {
		metrics.RegisterSearchMetrics(cfg.metricsReg)
	}

	adapter := &backendAdapter{inner: backend}
	var be coordinate.Backend = adapter
	var store db.Store

	if cfg.cacheAddr != "" {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    []string{cfg.cacheAddr},
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("facetsync: create cache store: %w", err)
		}
		if err := s.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("facetsync: cache store not ready: %w", err)
		}
		store = s
		be = &cachedBackend{
			Backend: adapter,
			facets:  tagcache.New(adapter, s, cfg.cacheTTL, logger),
		}
	}

	c := &Controller{
		fallback: ratingblend.New(adapter, adapter, logger),
		store:    store,
		logger:   logger,
		onUpdate: cfg.onUpdate,
		crit:     criteria.Default(),
		vm:       ViewModel{Page: 1, TotalPages: 1},
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.coord = coordinate.New(be, cfg.debounce, logger, c.applyOutcome)
	return c, nil
}

// cachedBackend routes the facet tag sub-query through the cache decorator
// and everything else straight to the adapter.
type cachedBackend struct {
	coordinate.Backend
	facets *tagcache.CachedLister
}

func (b *cachedBackend) ListFacetTags(ctx context.Context, crit criteria.Criteria) ([]string, error) {
	return b.facets.ListFacetTags(ctx, crit)
}

// SeedInitial publishes a pre-fetched product list as the initial view,
// typically from a bulk load done before the search view mounted. A seeded
// controller skips the redundant network cycle that a mount with untouched
// inputs would otherwise issue.
func (c *Controller) SeedInitial(items []Product, totalCount int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.seeded = true
	c.vm = ViewModel{
		Items:      items,
		TotalCount: totalCount,
		FacetTags: tagCountsFromDomain(
			tagfreq.Aggregate(productsToDomain(items), nil, c.crit.Tags()),
		),
		Page:        c.crit.Page(),
		TotalPages:  paginate.TotalPages(totalCount, c.crit.PageSize()),
		IsSearching: c.vm.IsSearching,
	}
	snapshot, cb := c.vm, c.onUpdate
	c.mu.Unlock()
	c.publish(snapshot, cb)
}

// Refresh schedules a search for the current criteria. Call it when the view
// mounts; on a seeded controller with untouched inputs it is a no-op.
func (c *Controller) Refresh() {
	c.transition(func(crit criteria.Criteria) criteria.Criteria {
		return crit
	})
}

// SetFreeText updates the free-text search string. Raw keystrokes are fine:
// the debounce window collapses them into one request.
func (c *Controller) SetFreeText(text string) {
	c.transition(func(crit criteria.Criteria) criteria.Criteria {
		return crit.WithFreeText(text)
	})
}

// SetTypes replaces the product type facet selection.
func (c *Controller) SetTypes(types []string) {
	c.transition(func(crit criteria.Criteria) criteria.Criteria {
		return crit.WithTypes(types)
	})
}

// SetSources replaces the source facet selection.
func (c *Controller) SetSources(sources []string) {
	c.transition(func(crit criteria.Criteria) criteria.Criteria {
		return crit.WithSources(sources)
	})
}

// SetTags replaces the tag facet selection.
func (c *Controller) SetTags(tags []string) {
	c.transition(func(crit criteria.Criteria) criteria.Criteria {
		return crit.WithTags(tags)
	})
}

// ToggleTag adds the tag to the selection, or removes it if present.
func (c *Controller) ToggleTag(tag string) {
	c.transition(func(crit criteria.Criteria) criteria.Criteria {
		return crit.WithToggledTag(tag)
	})
}

// SetMinRating sets the blended-rating floor; 0 removes it.
func (c *Controller) SetMinRating(min float64) {
	c.transition(func(crit criteria.Criteria) criteria.Criteria {
		return crit.WithMinRating(min)
	})
}

// SetUpdatedSince sets the committed recency cutoff; nil removes it.
// Pass only committed values (a picker's change event), never keystrokes.
func (c *Controller) SetUpdatedSince(since *time.Time) {
	c.transition(func(crit criteria.Criteria) criteria.Criteria {
		return crit.WithUpdatedSince(since)
	})
}

// SetIncludeBanned toggles banned items in results. The caller is
// responsible for only exposing this to privileged roles.
func (c *Controller) SetIncludeBanned(include bool) {
	c.transition(func(crit criteria.Criteria) criteria.Criteria {
		return crit.WithIncludeBanned(include)
	})
}

// SetSort updates the sort field and order. Invalid values fall back to
// newest-first.
func (c *Controller) SetSort(field SortField, order SortOrder) {
	c.transition(func(crit criteria.Criteria) criteria.Criteria {
		return crit.WithSort(criteria.SortField(field), criteria.SortOrder(order))
	})
}

// SetPage navigates to the given page. Unlike every other input change,
// page navigation keeps its page.
func (c *Controller) SetPage(page int) {
	c.transition(func(crit criteria.Criteria) criteria.Criteria {
		return crit.WithPage(page)
	})
}

// SetPageSize changes the page size; unsupported sizes fall back to the
// default. The page resets to 1 because old offsets are meaningless under
// the new size.
func (c *Controller) SetPageSize(size int) {
	c.transition(func(crit criteria.Criteria) criteria.Criteria {
		return crit.WithPageSize(size)
	})
}

// Snapshot returns the current view model. Slices in the snapshot are
// shared with the published value and must be treated as read-only.
func (c *Controller) Snapshot() ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vm
}

// Close aborts any in-flight cycle and releases resources. The view model
// stops updating; IsSearching is left false.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.vm.IsSearching = false
	c.mu.Unlock()

	c.coord.Stop()
	c.cancel()
	if c.store != nil {
		c.store.Close()
	}
}

// transition applies a criteria mutation, reconciles pagination, and
// schedules the resulting search.
func (c *Controller) transition(mutate func(criteria.Criteria) criteria.Criteria) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	next := paginate.Reconcile(mutate(c.crit))
	c.crit = next

	// A fresh mount over seeded data would just re-fetch what the bulk
	// load already delivered.
	if c.seeded && !c.searched && next.IsDefault() {
		metrics.SearchCyclesTotal.WithLabelValues(metrics.CycleSkipped).Inc()
		return
	}
	c.searched = true
	c.vm.IsSearching = true
	c.coord.Schedule(c.ctx, next)
}

// applyOutcome post-processes a settled cycle: rating fallback, page clamp,
// then publication. It runs on the cycle's goroutine; the token is
// re-checked after the fallback's extra network round-trips.
func (c *Controller) applyOutcome(ctx context.Context, o coordinate.Outcome) {
	items := c.fallback.Resolve(ctx, o.Criteria, o.Result.Items())

	page, refetch := paginate.Clamp(o.Criteria.Page(), o.Result.TotalCount(), o.Criteria.PageSize())

	c.mu.Lock()
	if c.closed || o.Token != c.coord.CurrentToken() || ctx.Err() != nil {
		c.mu.Unlock()
		return
	}

	if refetch {
		// One corrective re-fetch at the clamped page. It cannot recurse:
		// the clamped page is within the total the same count reported.
		corrected := o.Criteria.AtPage(page)
		c.crit = corrected
		c.coord.Schedule(c.ctx, corrected)
		c.mu.Unlock()
		return
	}

	total := o.Result.TotalCount()
	if len(items) > total {
		// The rating fallback found items the backend's floored count
		// missed.
		total = len(items)
	}

	c.vm = ViewModel{
		Items:      productsFromDomain(items),
		TotalCount: total,
		FacetTags: tagCountsFromDomain(
			tagfreq.Aggregate(items, o.Result.FacetTags(), o.Criteria.Tags()),
		),
		Page:        o.Criteria.Page(),
		TotalPages:  paginate.TotalPages(total, o.Criteria.PageSize()),
		IsSearching: false,
	}
	snapshot, cb := c.vm, c.onUpdate
	c.mu.Unlock()
	c.publish(snapshot, cb)
}

func (c *Controller) publish(vm ViewModel, cb func(ViewModel)) {
	if cb != nil {
		cb(vm)
	}
}
