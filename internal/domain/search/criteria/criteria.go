// Package criteria models the full set of search inputs as an immutable value.
// Every user input produces a new Criteria via a With* method; in-flight
// requests therefore always hold an unchanging view of what was asked for.
package criteria

import (
	"slices"
	"strings"
	"time"

	"github.com/atshelf/facetsync/internal/domain/search/cause"
)

// Pagination limits.
const (
	DefaultPageSize = 30
	MinRatingMax    = 5
)

// allowedPageSizes are the page sizes the UI offers.
var allowedPageSizes = []int{30, 50, 100}

// SortField is the field results are ordered by.
type SortField string

// SortOrder is the direction results are ordered in.
type SortOrder string

// Sort constants.
const (
	SortByRating    SortField = "rating"
	SortByUpdatedAt SortField = "updated_at"
	SortByCreatedAt SortField = "created_at"

	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// IsValid checks if the sort field is supported.
func (f SortField) IsValid() bool {
	return f == SortByRating || f == SortByUpdatedAt || f == SortByCreatedAt
}

// IsValid checks if the sort order is supported.
func (o SortOrder) IsValid() bool {
	return o == OrderAsc || o == OrderDesc
}

// Criteria is an immutable snapshot of all filter, sort, and pagination inputs.
type Criteria struct {
	freeText      string
	types         []string
	sources       []string
	tags          []string
	minRating     float64
	updatedSince  *time.Time
	sortBy        SortField
	sortOrder     SortOrder
	includeBanned bool
	page          int
	pageSize      int
	transition    cause.Cause
}

// Default returns the criteria of a freshly mounted search view:
// no text, no facets, newest first, page 1.
func Default() Criteria {
	return Criteria{
		sortBy:     SortByUpdatedAt,
		sortOrder:  OrderDesc,
		page:       1,
		pageSize:   DefaultPageSize,
		transition: cause.Filter,
	}
}

// WithFreeText returns a copy with the trimmed search string.
func (c Criteria) WithFreeText(text string) Criteria {
	c.freeText = strings.TrimSpace(text)
	c.transition = cause.Filter
	return c
}

// WithTypes returns a copy with the product type facet set.
func (c Criteria) WithTypes(types []string) Criteria {
	c.types = normalizeSet(types)
	c.transition = cause.Filter
	return c
}

// WithSources returns a copy with the source facet set.
func (c Criteria) WithSources(sources []string) Criteria {
	c.sources = normalizeSet(sources)
	c.transition = cause.Filter
	return c
}

// WithTags returns a copy with the tag facet set.
func (c Criteria) WithTags(tags []string) Criteria {
	c.tags = normalizeSet(tags)
	c.transition = cause.Filter
	return c
}

// WithToggledTag returns a copy with the tag added or removed.
func (c Criteria) WithToggledTag(tag string) Criteria {
	if slices.Contains(c.tags, tag) {
		next := make([]string, 0, len(c.tags)-1)
		for _, t := range c.tags {
			if t != tag {
				next = append(next, t)
			}
		}
		c.tags = next
	} else {
		c.tags = normalizeSet(append(slices.Clone(c.tags), tag))
	}
	c.transition = cause.Filter
	return c
}

// WithMinRating returns a copy with the rating floor. 0 disables the floor;
// values are clamped to [0, 5].
func (c Criteria) WithMinRating(min float64) Criteria {
	if min < 0 {
		min = 0
	}
	if min > MinRatingMax {
		min = MinRatingMax
	}
	c.minRating = min
	c.transition = cause.Filter
	return c
}

// WithoutMinRating returns a copy with the rating floor removed.
// Used by the fallback re-query; the transition cause is left untouched
// because no user input occurred.
func (c Criteria) WithoutMinRating() Criteria {
	c.minRating = 0
	return c
}

// WithUpdatedSince returns a copy with the committed recency cutoff.
// Callers must pass only debounced values, never raw keystrokes.
func (c Criteria) WithUpdatedSince(since *time.Time) Criteria {
	if since != nil {
		t := *since
		c.updatedSince = &t
	} else {
		c.updatedSince = nil
	}
	c.transition = cause.Filter
	return c
}

// WithIncludeBanned returns a copy with the banned-items toggle.
// Role enforcement is the caller's job.
func (c Criteria) WithIncludeBanned(include bool) Criteria {
	c.includeBanned = include
	c.transition = cause.Filter
	return c
}

// WithSort returns a copy with the sort field and order.
// Invalid values fall back to the defaults.
func (c Criteria) WithSort(field SortField, order SortOrder) Criteria {
	if !field.IsValid() {
		field = SortByUpdatedAt
	}
	if !order.IsValid() {
		order = OrderDesc
	}
	c.sortBy = field
	c.sortOrder = order
	c.transition = cause.Sort
	return c
}

// WithPage returns a copy requesting the given page (minimum 1).
func (c Criteria) WithPage(page int) Criteria {
	if page < 1 {
		page = 1
	}
	c.page = page
	c.transition = cause.Page
	return c
}

// WithPageSize returns a copy with the page size.
// Sizes outside the allowed set fall back to the default.
func (c Criteria) WithPageSize(size int) Criteria {
	if !slices.Contains(allowedPageSizes, size) {
		size = DefaultPageSize
	}
	c.pageSize = size
	c.transition = cause.PageSize
	return c
}

// AtPage returns a copy positioned at the given page without recording a
// user transition. The controller uses it for page resets and clamping.
func (c Criteria) AtPage(page int) Criteria {
	if page < 1 {
		page = 1
	}
	c.page = page
	return c
}

// FreeText returns the trimmed search string; empty means no text filter.
func (c Criteria) FreeText() string { return c.freeText }

// Types returns the product type facet set in canonical order.
func (c Criteria) Types() []string { return slices.Clone(c.types) }

// Sources returns the source facet set in canonical order.
func (c Criteria) Sources() []string { return slices.Clone(c.sources) }

// Tags returns the tag facet set in canonical order.
func (c Criteria) Tags() []string { return slices.Clone(c.tags) }

// MinRating returns the rating floor; 0 means no floor.
func (c Criteria) MinRating() float64 { return c.minRating }

// UpdatedSince returns the committed recency cutoff, or nil.
func (c Criteria) UpdatedSince() *time.Time {
	if c.updatedSince == nil {
		return nil
	}
	t := *c.updatedSince
	return &t
}

// SortBy returns the sort field.
func (c Criteria) SortBy() SortField { return c.sortBy }

// SortOrder returns the sort direction.
func (c Criteria) SortOrder() SortOrder { return c.sortOrder }

// IncludeBanned reports whether banned items are requested.
func (c Criteria) IncludeBanned() bool { return c.includeBanned }

// Page returns the requested page, 1-based.
func (c Criteria) Page() int { return c.page }

// PageSize returns the page size.
func (c Criteria) PageSize() int { return c.pageSize }

// Offset returns the item offset the page maps to.
func (c Criteria) Offset() int { return (c.page - 1) * c.pageSize }

// Cause returns the transition that produced this value.
func (c Criteria) Cause() cause.Cause { return c.transition }

// Equal compares all search inputs. The transition cause is metadata about
// how the value came to be and does not participate.
func (c Criteria) Equal(other Criteria) bool {
	if c.freeText != other.freeText ||
		c.minRating != other.minRating ||
		c.sortBy != other.sortBy ||
		c.sortOrder != other.sortOrder ||
		c.includeBanned != other.includeBanned ||
		c.page != other.page ||
		c.pageSize != other.pageSize {
		return false
	}
	if (c.updatedSince == nil) != (other.updatedSince == nil) {
		return false
	}
	if c.updatedSince != nil && !c.updatedSince.Equal(*other.updatedSince) {
		return false
	}
	return slices.Equal(c.types, other.types) &&
		slices.Equal(c.sources, other.sources) &&
		slices.Equal(c.tags, other.tags)
}

// IsDefault reports whether the criteria match a fresh mount.
func (c Criteria) IsDefault() bool { return c.Equal(Default()) }

// FacetKey returns a canonical string of the inputs that scope the facet
// tag query (text, types, sources, banned toggle). Used as a cache key.
func (c Criteria) FacetKey() string {
	var b strings.Builder
	b.WriteString(c.freeText)
	b.WriteByte('|')
	b.WriteString(strings.Join(c.types, ","))
	b.WriteByte('|')
	b.WriteString(strings.Join(c.sources, ","))
	b.WriteByte('|')
	if c.includeBanned {
		b.WriteByte('1')
	} else {
		b.WriteByte('0')
	}
	return b.String()
}

// normalizeSet sorts, dedupes, and drops empty values so that set equality
// is independent of insertion order.
func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
