package coordinate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/atshelf/facetsync/internal/domain"
	"github.com/atshelf/facetsync/internal/domain/search/criteria"
)

const testDebounce = 20 * time.Millisecond

// fakeBackend records calls and optionally holds ListProducts open until
// released, so tests can force out-of-order completion.
type fakeBackend struct {
	mu         sync.Mutex
	listCalls  int
	countCalls int
	facetCalls int
	lastCrit   criteria.Criteria

	items []domain.ProductSummary
	total int
	tags  []string

	listErr  error
	countErr error
	facetErr error

	gate        chan struct{} // when non-nil, ListProducts blocks until closed
	respectsCtx bool          // when true, a blocked call honors cancellation
}

func (f *fakeBackend) ListProducts(
	ctx context.Context, crit criteria.Criteria,
) ([]domain.ProductSummary, error) {
	f.mu.Lock()
	f.listCalls++
	f.lastCrit = crit
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		if f.respectsCtx {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		} else {
			// Abort is best-effort: this transport ignores it.
			<-gate
		}
	}
	f.mu.Lock()
	items, err := f.items, f.listErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (f *fakeBackend) CountProducts(_ context.Context, _ criteria.Criteria) (int, error) {
	f.mu.Lock()
	f.countCalls++
	f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.total, nil
}

func (f *fakeBackend) ListFacetTags(_ context.Context, _ criteria.Criteria) ([]string, error) {
	f.mu.Lock()
	f.facetCalls++
	f.mu.Unlock()
	if f.facetErr != nil {
		return nil, f.facetErr
	}
	return f.tags, nil
}

func (f *fakeBackend) calls() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.countCalls, f.facetCalls
}

// collector gathers applied outcomes.
type collector struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (c *collector) apply(_ context.Context, o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
}

func (c *collector) applied() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Outcome(nil), c.outcomes...)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func TestSchedule_RunsOneCycle(t *testing.T) {
	backend := &fakeBackend{
		items: []domain.ProductSummary{{ID: "1"}},
		total: 42,
		tags:  []string{"audio"},
	}
	col := &collector{}
	c := New(backend, testDebounce, nil, col.apply)

	tok := c.Schedule(context.Background(), criteria.Default())

	waitFor(t, time.Second, func() bool { return len(col.applied()) == 1 }, "outcome")
	o := col.applied()[0]
	if o.Token != tok {
		t.Errorf("Token = %d, want %d", o.Token, tok)
	}
	if got := o.Result.Items(); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("Items = %v", got)
	}
	if o.Result.TotalCount() != 42 {
		t.Errorf("TotalCount = %d, want 42", o.Result.TotalCount())
	}
	if got := o.Result.FacetTags(); len(got) != 1 || got[0] != "audio" {
		t.Errorf("FacetTags = %v", got)
	}
	if c.State() != StateIdle {
		t.Errorf("State = %s, want idle", c.State())
	}
}

func TestSchedule_DebounceCollapsesBurst(t *testing.T) {
	backend := &fakeBackend{}
	col := &collector{}
	c := New(backend, 50*time.Millisecond, nil, col.apply)

	crit := criteria.Default()
	for _, text := range []string{"s", "sc", "scr", "scre", "screen"} {
		crit = crit.WithFreeText(text)
		c.Schedule(context.Background(), crit)
	}

	waitFor(t, time.Second, func() bool { return len(col.applied()) == 1 }, "single outcome")
	// Give a straggler cycle a chance to show up before asserting.
	time.Sleep(100 * time.Millisecond)

	list, count, facets := backend.calls()
	if list != 1 || count != 1 || facets != 1 {
		t.Errorf("calls = %d/%d/%d, want exactly one cycle for the burst", list, count, facets)
	}
	if got := col.applied(); len(got) != 1 || got[0].Criteria.FreeText() != "screen" {
		t.Errorf("applied = %v, want only the last criteria", got)
	}
}

func TestSchedule_StaleResultDiscarded(t *testing.T) {
	// First cycle's transport ignores cancellation and completes after the
	// second cycle already applied; its result must never surface.
	gate := make(chan struct{})
	slow := &fakeBackend{gate: gate, items: []domain.ProductSummary{{ID: "stale"}}}
	col := &collector{}
	c := New(slow, time.Millisecond, nil, col.apply)

	c.Schedule(context.Background(), criteria.Default().WithFreeText("old"))
	waitFor(t, time.Second, func() bool {
		l, _, _ := slow.calls()
		return l == 1
	}, "first cycle in flight")

	slow.mu.Lock()
	slow.gate = nil // second cycle completes immediately
	slow.items = []domain.ProductSummary{{ID: "fresh"}}
	slow.mu.Unlock()

	c.Schedule(context.Background(), criteria.Default().WithFreeText("new"))
	waitFor(t, time.Second, func() bool { return len(col.applied()) == 1 }, "second outcome")

	close(gate) // first cycle finally settles
	time.Sleep(50 * time.Millisecond)

	applied := col.applied()
	if len(applied) != 1 {
		t.Fatalf("applied %d outcomes, want 1", len(applied))
	}
	if got := applied[0].Result.Items(); len(got) != 1 || got[0].ID != "fresh" {
		t.Errorf("Items = %v, want the fresh result only", got)
	}
}

func TestSchedule_SupersededRequestIsAborted(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{gate: gate, respectsCtx: true}
	col := &collector{}
	c := New(backend, time.Millisecond, nil, col.apply)

	c.Schedule(context.Background(), criteria.Default().WithFreeText("first"))
	waitFor(t, time.Second, func() bool {
		l, _, _ := backend.calls()
		return l == 1
	}, "first cycle in flight")

	backend.mu.Lock()
	backend.gate = nil
	backend.mu.Unlock()

	// Scheduling cancels the previous cycle's context at the transport level.
	c.Schedule(context.Background(), criteria.Default().WithFreeText("second"))

	waitFor(t, time.Second, func() bool { return len(col.applied()) == 1 }, "second outcome")
	if got := col.applied()[0].Criteria.FreeText(); got != "second" {
		t.Errorf("applied criteria text = %q, want %q", got, "second")
	}
}

func TestRunCycle_SubQueryFailureDegrades(t *testing.T) {
	backend := &fakeBackend{
		items:    []domain.ProductSummary{{ID: "1"}},
		tags:     []string{"audio"},
		countErr: errors.New("count exploded"),
	}

	res := RunCycle(context.Background(), backend, criteria.Default(), nil)

	if got := res.Items(); len(got) != 1 {
		t.Errorf("Items = %v, want the page despite count failure", got)
	}
	if res.TotalCount() != 0 {
		t.Errorf("TotalCount = %d, want degraded 0", res.TotalCount())
	}
	if got := res.FacetTags(); len(got) != 1 {
		t.Errorf("FacetTags = %v", got)
	}
}

func TestRunCycle_TotalFailureStillSettles(t *testing.T) {
	backend := &fakeBackend{
		listErr:  errors.New("a"),
		countErr: errors.New("b"),
		facetErr: errors.New("c"),
	}

	res := RunCycle(context.Background(), backend, criteria.Default(), nil)

	if len(res.Items()) != 0 || res.TotalCount() != 0 || len(res.FacetTags()) != 0 {
		t.Errorf("total failure should settle to an empty result, got %v/%d/%v",
			res.Items(), res.TotalCount(), res.FacetTags())
	}
}

func TestStop_CancelsPendingDebounce(t *testing.T) {
	backend := &fakeBackend{}
	col := &collector{}
	c := New(backend, 50*time.Millisecond, nil, col.apply)

	c.Schedule(context.Background(), criteria.Default())
	c.Stop()

	time.Sleep(150 * time.Millisecond)
	if l, _, _ := backend.calls(); l != 0 {
		t.Errorf("backend called %d times after Stop, want 0", l)
	}
	if len(col.applied()) != 0 {
		t.Error("outcome applied after Stop")
	}
	if c.State() != StateIdle {
		t.Errorf("State = %s, want idle", c.State())
	}
}

func TestStop_MidFlightSuppressesOutcome(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{gate: gate}
	col := &collector{}
	c := New(backend, time.Millisecond, nil, col.apply)

	c.Schedule(context.Background(), criteria.Default())
	waitFor(t, time.Second, func() bool {
		l, _, _ := backend.calls()
		return l == 1
	}, "cycle in flight")

	c.Stop()
	close(gate)

	time.Sleep(50 * time.Millisecond)
	if len(col.applied()) != 0 {
		t.Error("outcome applied after Stop mid-flight")
	}
}

func TestState_Transitions(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{gate: gate}
	c := New(backend, 30*time.Millisecond, nil, func(context.Context, Outcome) {})

	if c.State() != StateIdle {
		t.Fatalf("initial state = %s", c.State())
	}

	c.Schedule(context.Background(), criteria.Default())
	if c.State() != StateDebouncing {
		t.Errorf("state after schedule = %s, want debouncing", c.State())
	}

	waitFor(t, time.Second, func() bool { return c.State() == StateInFlight }, "in-flight state")

	close(gate)
	waitFor(t, time.Second, func() bool { return c.State() == StateIdle }, "idle state")
}
