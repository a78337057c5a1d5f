// Package coordinate turns a stream of criteria changes into at most one
// authoritative search result per settled cycle. It owns debouncing,
// transport-level cancellation, and stale-response rejection.
package coordinate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/atshelf/facetsync/internal/domain"
	"github.com/atshelf/facetsync/internal/domain/search/criteria"
	"github.com/atshelf/facetsync/internal/domain/search/result"
	"github.com/atshelf/facetsync/internal/metrics"
)

// DefaultDebounce is the window within which rapid criteria changes collapse
// into a single network cycle.
const DefaultDebounce = 400 * time.Millisecond

// State is the coordinator's position in the cycle lifecycle.
type State string

// Coordinator states.
const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateInFlight   State = "in_flight"
)

// Outcome is a settled cycle delivered to the consumer. The token lets the
// consumer re-verify freshness after its own post-processing.
type Outcome struct {
	Token    uint64
	Criteria criteria.Criteria
	Result   result.Result
}

// Coordinator schedules debounced, cancellable search cycles against a
// backend. Results from superseded cycles never reach the consumer.
type Coordinator struct {
	backend  Backend
	debounce time.Duration
	logger   *zap.Logger
	apply    func(ctx context.Context, o Outcome)

	token atomic.Uint64

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	state  State
}

// New creates a coordinator. apply is invoked once per settled, still-current
// cycle, on the cycle's goroutine, with the cycle's context.
func New(
	backend Backend,
	debounce time.Duration,
	logger *zap.Logger,
	apply func(ctx context.Context, o Outcome),
) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		backend:  backend,
		debounce: debounce,
		logger:   logger,
		apply:    apply,
		state:    StateIdle,
	}
}

// Schedule mints a new cycle for the given criteria. The previous cycle's
// transport requests are aborted immediately; the debounce timer resets so
// only the last change inside the window is ever sent. Returns the minted
// token.
func (c *Coordinator) Schedule(ctx context.Context, crit criteria.Criteria) uint64 {
	tok := c.token.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	cycleCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	if c.timer != nil {
		c.timer.Stop()
	}
	c.state = StateDebouncing
	c.timer = time.AfterFunc(c.debounce, func() {
		c.run(cycleCtx, tok, crit)
	})
	return tok
}

// Stop cancels the live cycle and any pending debounce timer. Late responses
// are discarded by the context and token checks.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = StateIdle
}

// CurrentToken returns the latest minted token.
func (c *Coordinator) CurrentToken() uint64 {
	return c.token.Load()
}

// State returns the coordinator's current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) run(ctx context.Context, tok uint64, crit criteria.Criteria) {
	// The timer may fire in the window between a newer Schedule stopping it
	// and actually replacing it.
	if tok != c.token.Load() || ctx.Err() != nil {
		metrics.SearchCyclesTotal.WithLabelValues(metrics.CycleSuperseded).Inc()
		return
	}

	c.setState(StateInFlight)
	start := time.Now()

	res := RunCycle(ctx, c.backend, crit, c.logger)

	metrics.SearchCycleDuration.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	current := tok == c.token.Load() && ctx.Err() == nil
	if current {
		c.state = StateIdle
	}
	c.mu.Unlock()

	if !current {
		metrics.SearchCyclesTotal.WithLabelValues(metrics.CycleSuperseded).Inc()
		return
	}

	metrics.SearchCyclesTotal.WithLabelValues(metrics.CycleApplied).Inc()
	c.apply(ctx, Outcome{Token: tok, Criteria: crit, Result: res})
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// RunCycle issues the three sub-queries concurrently and waits for all of
// them to settle. A failed sub-query degrades to its zero value: the cycle
// still completes and still produces a usable result. Context cancellation
// is not a failure and is not logged.
func RunCycle(
	ctx context.Context, backend Backend, crit criteria.Criteria, logger *zap.Logger,
) result.Result {
	var (
		items []domain.ProductSummary
		total int
		tags  []string
		wg    sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		v, err := backend.ListProducts(ctx, crit)
		if err != nil {
			logSubQuery(logger, "list_products", err)
			return
		}
		items = v
	}()
	go func() {
		defer wg.Done()
		v, err := backend.CountProducts(ctx, crit)
		if err != nil {
			logSubQuery(logger, "count_products", err)
			return
		}
		total = v
	}()
	go func() {
		defer wg.Done()
		v, err := backend.ListFacetTags(ctx, crit)
		if err != nil {
			logSubQuery(logger, "list_facet_tags", err)
			return
		}
		tags = v
	}()
	wg.Wait()

	return result.New(items, total, tags)
}

func logSubQuery(logger *zap.Logger, name string, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	metrics.SearchSubQueryErrorsTotal.WithLabelValues(name).Inc()
	logger.Warn("Search sub-query failed", zap.String("query", name), zap.Error(err))
}
