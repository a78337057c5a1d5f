package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atshelf/facetsync/internal/domain"
	"github.com/atshelf/facetsync/internal/domain/search/criteria"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing base url")
	}
}

func TestListProducts_EncodesFiltersAndPagination(t *testing.T) {
	var gotQuery map[string][]string
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/products" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"items":[{"id":"p1","name":"Reader","tags":["audio"]}]}`))
	})

	since := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	crit := criteria.Default().
		WithFreeText("screen reader").
		WithTypes([]string{"software"}).
		WithTags([]string{"audio", "braille"}).
		WithMinRating(4).
		WithUpdatedSince(&since).
		WithPageSize(50).
		AtPage(2)

	items, err := c.ListProducts(context.Background(), crit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "p1" {
		t.Fatalf("items = %v", items)
	}

	expect := map[string]string{
		"query":          "screen reader",
		"types":          "software",
		"tags":           "audio,braille",
		"min_rating":     "4",
		"updated_since":  "2025-06-01",
		"include_banned": "false",
		"limit":          "50",
		"offset":         "50",
		"sort_by":        "updated_at",
		"sort_order":     "desc",
	}
	for key, want := range expect {
		if got := first(gotQuery[key]); got != want {
			t.Errorf("param %s = %q, want %q", key, got, want)
		}
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestListProducts_OmitsEmptyFilters(t *testing.T) {
	var gotQuery map[string][]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	if _, err := c.ListProducts(context.Background(), criteria.Default()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{"query", "types", "sources", "tags", "min_rating", "updated_since"} {
		if _, ok := gotQuery[key]; ok {
			t.Errorf("param %s should be omitted when unset", key)
		}
	}
}

func TestCountProducts(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/products/count" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"total":123}`))
	})

	total, err := c.CountProducts(context.Background(), criteria.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 123 {
		t.Errorf("total = %d, want 123", total)
	}
}

func TestListFacetTags_ScopedParams(t *testing.T) {
	var gotQuery map[string][]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"tags":["audio","braille"]}`))
	})

	crit := criteria.Default().
		WithFreeText("reader").
		WithTags([]string{"audio"}).
		WithMinRating(4)
	tags, err := c.ListFacetTags(context.Background(), crit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("tags = %v", tags)
	}
	// Facet scope excludes the tag filter and the rating floor.
	if _, ok := gotQuery["tags"]; ok {
		t.Error("facet query must not carry the tags filter")
	}
	if _, ok := gotQuery["min_rating"]; ok {
		t.Error("facet query must not carry the rating floor")
	}
	if got := first(gotQuery["query"]); got != "reader" {
		t.Errorf("query = %q", got)
	}
}

func TestListRatings(t *testing.T) {
	var gotIDs string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ratings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotIDs = r.URL.Query().Get("product_ids")
		_, _ = w.Write([]byte(`{"ratings":[{"product_id":"p1","value":5}]}`))
	})

	ratings, err := c.ListRatings(context.Background(), []string{"p1", "p2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotIDs != "p1,p2" {
		t.Errorf("product_ids = %q", gotIDs)
	}
	if len(ratings) != 1 || ratings[0].Value != 5 {
		t.Errorf("ratings = %v", ratings)
	}
}

func TestGet_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusBadRequest, domain.ErrInvalidCriteria},
		{http.StatusBadGateway, domain.ErrBackendUnavailable},
	}

	for _, tc := range tests {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		})
		_, err := c.CountProducts(context.Background(), criteria.Default())
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: err = %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestGet_ContextCancellation(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.CountProducts(ctx, criteria.Default())
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled in chain", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled request did not return")
	}
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
