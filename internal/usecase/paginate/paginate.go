// Package paginate decides which page to request and which page to keep.
//
// Filter, sort, and page-size changes invalidate the meaning of the current
// page and reset to 1. Pure page navigation keeps the requested page, or it
// would thrash back to page 1 on every click. Once a total count is known,
// a page beyond the end is clamped down and re-fetched once.
package paginate

import (
	"github.com/atshelf/facetsync/internal/domain/search/criteria"
)

// Reconcile applies the page-reset rule to a criteria transition: the page
// survives only a pure page-navigation cause.
func Reconcile(crit criteria.Criteria) criteria.Criteria {
	if crit.Cause().KeepsPage() {
		return crit
	}
	return crit.AtPage(1)
}

// TotalPages computes the number of pages the total count implies.
// Always at least 1, so an empty result set still has a valid page 1.
func TotalPages(totalCount, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (totalCount + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Clamp checks the requested page against the known total count.
// When the page is past the end it returns the clamped page and true,
// signalling that one corrective re-fetch is needed.
func Clamp(page, totalCount, pageSize int) (int, bool) {
	total := TotalPages(totalCount, pageSize)
	if page > total {
		return total, true
	}
	return page, false
}
