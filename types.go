package facetsync

import "time"

// Product is a catalog item as the search layer sees it. The engine never
// creates or mutates products; it only decides which ones to show.
type Product struct {
	ID          string
	Name        string
	ProductType string
	Source      string
	Tags        []string
	// SourceRating is the rating imported from the product's origin site,
	// nil when the origin reports none.
	SourceRating *float64
	Banned       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Rating is a single user rating for a product, on a 1..5 scale.
type Rating struct {
	ProductID string
	Value     int
}

// TagCount is a tag with its occurrence count on the current page.
// Zero-count entries keep selected and server-reported facet tags visible.
type TagCount struct {
	Name  string
	Count int
}

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

// Filters carries every search input that narrows the item and count
// queries.
type Filters struct {
	Query         string
	Types         []string
	Sources       []string
	Tags          []string
	MinRating     float64
	UpdatedSince  *time.Time
	IncludeBanned bool
}

// FacetFilters is the reduced input set that scopes the facet tag query.
// Tag selections and the rating floor deliberately do not narrow it, so the
// tag list stays stable while the user drills down.
type FacetFilters struct {
	Query         string
	Types         []string
	Sources       []string
	IncludeBanned bool
}

// PageRequest is the slice of the result set a query asks for.
type PageRequest struct {
	Limit     int
	Offset    int
	SortBy    SortField
	SortOrder SortOrder
}

// ViewModel is the published search state. It is an immutable snapshot:
// the controller replaces it wholesale, never patches it in place.
type ViewModel struct {
	Items      []Product
	TotalCount int
	FacetTags  []TagCount
	Page       int
	TotalPages int
	// IsSearching is true from the moment an input changes until the
	// result of the latest change is published. Superseded cycles never
	// clear it.
	IsSearching bool
}
