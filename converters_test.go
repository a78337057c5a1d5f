package facetsync

import (
	"testing"
	"time"

	"github.com/atshelf/facetsync/internal/domain/search/criteria"
)

func TestFiltersFromCriteria_CarriesAllInputs(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	crit := criteria.Default().
		WithFreeText("  screen reader  ").
		WithTypes([]string{"software", "hardware"}).
		WithSources([]string{"vendor-a"}).
		WithTags([]string{"braille", "audio"}).
		WithMinRating(3.5).
		WithUpdatedSince(&since).
		WithIncludeBanned(true)

	f := filtersFromCriteria(crit)
	if f.Query != "screen reader" {
		t.Errorf("query: got %q", f.Query)
	}
	if len(f.Types) != 2 || f.Types[0] != "hardware" {
		t.Errorf("types not canonical: got %v", f.Types)
	}
	if len(f.Tags) != 2 || f.Tags[0] != "audio" {
		t.Errorf("tags not canonical: got %v", f.Tags)
	}
	if f.MinRating != 3.5 || !f.IncludeBanned {
		t.Errorf("scalars: got rating=%v banned=%v", f.MinRating, f.IncludeBanned)
	}
	if f.UpdatedSince == nil || !f.UpdatedSince.Equal(since) {
		t.Errorf("updated since: got %v", f.UpdatedSince)
	}
}

func TestFacetFiltersFromCriteria_ExcludesTagsAndRating(t *testing.T) {
	crit := criteria.Default().
		WithFreeText("reader").
		WithTags([]string{"braille"}).
		WithMinRating(4)

	f := facetFiltersFromCriteria(crit)
	if f.Query != "reader" {
		t.Errorf("query: got %q", f.Query)
	}
	// The facet scope deliberately ignores tag selection and the rating
	// floor so the tag list stays stable while drilling down.
	if len(f.Types) != 0 || len(f.Sources) != 0 {
		t.Errorf("unexpected facet inputs: %+v", f)
	}
}

func TestPageFromCriteria_Offsets(t *testing.T) {
	crit := criteria.Default().WithPageSize(50).WithPage(3)

	p := pageFromCriteria(crit)
	if p.Limit != 50 || p.Offset != 100 {
		t.Errorf("page request: got limit=%d offset=%d, want 50/100", p.Limit, p.Offset)
	}
	if p.SortBy != SortByUpdatedAt || p.SortOrder != OrderDesc {
		t.Errorf("sort: got %s/%s", p.SortBy, p.SortOrder)
	}
}

func TestProductRoundTrip(t *testing.T) {
	rating := 4.2
	p := Product{
		ID:           "p1",
		Name:         "magnifier",
		ProductType:  "hardware",
		Source:       "vendor-a",
		Tags:         []string{"low-vision"},
		SourceRating: &rating,
		Banned:       true,
		CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	got := productFromDomain(productToDomain(p))
	if got.ID != p.ID || got.Name != p.Name || got.ProductType != p.ProductType ||
		got.Source != p.Source || !got.Banned ||
		!got.CreatedAt.Equal(p.CreatedAt) || !got.UpdatedAt.Equal(p.UpdatedAt) {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.SourceRating == nil || *got.SourceRating != rating {
		t.Errorf("source rating: got %v", got.SourceRating)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "low-vision" {
		t.Errorf("tags: got %v", got.Tags)
	}
}
