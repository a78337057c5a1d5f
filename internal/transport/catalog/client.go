// Package catalog is the HTTP client for the remote catalog backend.
// It implements the consumer contracts of the search usecases; every call
// threads the caller's context so a superseded cycle aborts at the
// transport level.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime/types"

	"github.com/atshelf/facetsync/internal/domain"
	"github.com/atshelf/facetsync/internal/domain/search/criteria"
)

const defaultTimeout = 15 * time.Second

// Config holds connection parameters for the catalog backend.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the catalog REST API.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// New creates a catalog client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("catalog: base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{Timeout: timeout},
	}, nil
}

// ListProducts returns the item page selected by the criteria.
func (c *Client) ListProducts(
	ctx context.Context, crit criteria.Criteria,
) ([]domain.ProductSummary, error) {
	q := filterParams(crit)
	q.Set("limit", strconv.Itoa(crit.PageSize()))
	q.Set("offset", strconv.Itoa(crit.Offset()))
	q.Set("sort_by", string(crit.SortBy()))
	q.Set("sort_order", string(crit.SortOrder()))

	var resp listProductsResponse
	if err := c.get(ctx, "/api/v1/products", q, &resp); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return productsFromDTO(resp.Items), nil
}

// CountProducts returns the size of the full filtered set.
func (c *Client) CountProducts(ctx context.Context, crit criteria.Criteria) (int, error) {
	var resp countResponse
	if err := c.get(ctx, "/api/v1/products/count", filterParams(crit), &resp); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return resp.Total, nil
}

// ListFacetTags returns the tags available within the filtered set.
// The facet query is scoped by text, types, sources, and the banned toggle.
func (c *Client) ListFacetTags(
	ctx context.Context, crit criteria.Criteria,
) ([]string, error) {
	q := url.Values{}
	setNonEmpty(q, "query", crit.FreeText())
	setJoined(q, "types", crit.Types())
	setJoined(q, "sources", crit.Sources())
	q.Set("include_banned", strconv.FormatBool(crit.IncludeBanned()))

	var resp facetTagsResponse
	if err := c.get(ctx, "/api/v1/tags/facets", q, &resp); err != nil {
		return nil, fmt.Errorf("list facet tags: %w", err)
	}
	return resp.Tags, nil
}

// ListRatings returns user ratings for the given products.
func (c *Client) ListRatings(
	ctx context.Context, productIDs []string,
) ([]domain.Rating, error) {
	q := url.Values{}
	setJoined(q, "product_ids", productIDs)

	var resp ratingsResponse
	if err := c.get(ctx, "/api/v1/ratings", q, &resp); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratingsFromDTO(resp.Ratings), nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", domain.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: status %d", domain.ErrInvalidCriteria, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d", domain.ErrBackendUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// filterParams encodes the filter fields shared by the list and count queries.
func filterParams(crit criteria.Criteria) url.Values {
	q := url.Values{}
	setNonEmpty(q, "query", crit.FreeText())
	setJoined(q, "types", crit.Types())
	setJoined(q, "sources", crit.Sources())
	setJoined(q, "tags", crit.Tags())
	if crit.MinRating() > 0 {
		q.Set("min_rating", strconv.FormatFloat(crit.MinRating(), 'f', -1, 64))
	}
	if since := crit.UpdatedSince(); since != nil {
		d := types.Date{Time: *since}
		q.Set("updated_since", d.Format(types.DateFormat))
	}
	q.Set("include_banned", strconv.FormatBool(crit.IncludeBanned()))
	return q
}

func setNonEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setJoined(q url.Values, key string, values []string) {
	if len(values) > 0 {
		q.Set(key, strings.Join(values, ","))
	}
}
