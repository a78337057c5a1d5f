// Package cause tags every criteria transition with what the user changed.
// The page reconciler keys off the cause instead of diffing criteria fields,
// so a filter change that happens to reproduce an earlier field value is
// still treated as a filter change.
package cause

// Cause is the kind of input that produced a criteria transition.
type Cause string

// Transition cause constants.
const (
	// Filter covers free text, facet sets, rating floor, recency cutoff,
	// and the include-banned toggle.
	Filter   Cause = "filter"
	Page     Cause = "page"
	PageSize Cause = "page_size"
	Sort     Cause = "sort"
)

// IsValid checks if the cause is one of the supported values.
func (c Cause) IsValid() bool {
	return c == Filter || c == Page || c == PageSize || c == Sort
}

// KeepsPage reports whether the transition preserves the requested page.
// Only pure page navigation does; everything else invalidates the page.
func (c Cause) KeepsPage() bool {
	return c == Page
}
