package domain

import "time"

// ProductSummary is a catalog item as reported by the backend.
// The search layer consumes it read-only; it never creates or stores products.
type ProductSummary struct {
	ID          string
	Name        string
	ProductType string
	Source      string
	Tags        []string
	// SourceRating is the rating imported from the product's origin site.
	// nil when the origin reports no rating.
	SourceRating *float64
	Banned       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Rating is a single user-submitted rating for a product.
type Rating struct {
	ProductID string
	Value     int
}

// TagCount is one entry of the ranked facet tag list.
type TagCount struct {
	Name  string
	Count int
}
