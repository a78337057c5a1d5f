package coordinate

import (
	"context"

	"github.com/atshelf/facetsync/internal/domain"
	"github.com/atshelf/facetsync/internal/domain/search/criteria"
)

// Backend defines the three sub-queries of one search cycle.
type Backend interface {
	// CountProducts returns the size of the full filtered set.
	CountProducts(ctx context.Context, crit criteria.Criteria) (int, error)

	// ListProducts returns the item page selected by the criteria's
	// pagination and sort fields.
	ListProducts(ctx context.Context, crit criteria.Criteria) ([]domain.ProductSummary, error)

	// ListFacetTags returns the tags available within the filtered set,
	// scoped by text, types, sources, and the banned toggle only.
	ListFacetTags(ctx context.Context, crit criteria.Criteria) ([]string, error)
}
