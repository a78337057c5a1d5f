// Package result holds the reconciled outcome of one search cycle.
package result

import (
	"slices"

	"github.com/atshelf/facetsync/internal/domain"
)

// Result combines the three concurrently resolved sub-responses of a cycle.
// A sub-query that failed contributes its zero value; the Result is still
// complete from the consumer's point of view.
type Result struct {
	items      []domain.ProductSummary
	totalCount int
	facetTags  []string
}

// New creates a cycle result. A negative total is normalized to 0.
func New(items []domain.ProductSummary, totalCount int, facetTags []string) Result {
	if totalCount < 0 {
		totalCount = 0
	}
	return Result{items: items, totalCount: totalCount, facetTags: facetTags}
}

// Items returns the current page of products in backend order.
func (r *Result) Items() []domain.ProductSummary { return slices.Clone(r.items) }

// TotalCount returns the size of the full filtered set. 0 is legitimate.
func (r *Result) TotalCount() int { return r.totalCount }

// FacetTags returns the backend-reported tags for the full filtered set.
func (r *Result) FacetTags() []string { return slices.Clone(r.facetTags) }
