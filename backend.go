package facetsync

import (
	"context"
	"fmt"

	"github.com/atshelf/facetsync/internal/domain"
	"github.com/atshelf/facetsync/internal/domain/search/criteria"
)

// Backend is what the controller needs from the catalog. Implementations
// typically wrap an HTTP API or a database; all methods must honor context
// cancellation, because superseded searches are aborted through it.
type Backend interface {
	// CountProducts returns the total number of products matching the
	// filters, ignoring pagination.
	CountProducts(ctx context.Context, f Filters) (int, error)

	// ListProducts returns one page of matching products.
	ListProducts(ctx context.Context, f Filters, page PageRequest) ([]Product, error)

	// ListFacetTags returns the tag vocabulary for the facet scope.
	ListFacetTags(ctx context.Context, f FacetFilters) ([]string, error)

	// ListRatings returns all user ratings for the given products.
	ListRatings(ctx context.Context, productIDs []string) ([]Rating, error)
}

// backendAdapter wraps the public Backend to satisfy the internal
// criteria-shaped contracts.
type backendAdapter struct {
	inner Backend
}

func (a *backendAdapter) CountProducts(ctx context.Context, crit criteria.Criteria) (int, error) {
	n, err := a.inner.CountProducts(ctx, filtersFromCriteria(crit))
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (a *backendAdapter) ListProducts(ctx context.Context, crit criteria.Criteria) ([]domain.ProductSummary, error) {
	items, err := a.inner.ListProducts(ctx, filtersFromCriteria(crit), pageFromCriteria(crit))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return productsToDomain(items), nil
}

func (a *backendAdapter) ListFacetTags(ctx context.Context, crit criteria.Criteria) ([]string, error) {
	tags, err := a.inner.ListFacetTags(ctx, facetFiltersFromCriteria(crit))
	if err != nil {
		return nil, fmt.Errorf("list facet tags: %w", err)
	}
	return tags, nil
}

func (a *backendAdapter) ListRatings(ctx context.Context, productIDs []string) ([]domain.Rating, error) {
	ratings, err := a.inner.ListRatings(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratingsToDomain(ratings), nil
}
