package facetsync

import (
	"github.com/atshelf/facetsync/internal/domain"
	"github.com/atshelf/facetsync/internal/domain/search/criteria"
)

func filtersFromCriteria(crit criteria.Criteria) Filters {
	return Filters{
		Query:         crit.FreeText(),
		Types:         crit.Types(),
		Sources:       crit.Sources(),
		Tags:          crit.Tags(),
		MinRating:     crit.MinRating(),
		UpdatedSince:  crit.UpdatedSince(),
		IncludeBanned: crit.IncludeBanned(),
	}
}

func facetFiltersFromCriteria(crit criteria.Criteria) FacetFilters {
	return FacetFilters{
		Query:         crit.FreeText(),
		Types:         crit.Types(),
		Sources:       crit.Sources(),
		IncludeBanned: crit.IncludeBanned(),
	}
}

func pageFromCriteria(crit criteria.Criteria) PageRequest {
	return PageRequest{
		Limit:     crit.PageSize(),
		Offset:    crit.Offset(),
		SortBy:    SortField(crit.SortBy()),
		SortOrder: SortOrder(crit.SortOrder()),
	}
}

func productToDomain(p Product) domain.ProductSummary {
	return domain.ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		ProductType:  p.ProductType,
		Source:       p.Source,
		Tags:         p.Tags,
		SourceRating: p.SourceRating,
		Banned:       p.Banned,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func productsToDomain(items []Product) []domain.ProductSummary {
	out := make([]domain.ProductSummary, len(items))
	for i, p := range items {
		out[i] = productToDomain(p)
	}
	return out
}

func productFromDomain(p domain.ProductSummary) Product {
	return Product{
		ID:           p.ID,
		Name:         p.Name,
		ProductType:  p.ProductType,
		Source:       p.Source,
		Tags:         p.Tags,
		SourceRating: p.SourceRating,
		Banned:       p.Banned,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func productsFromDomain(items []domain.ProductSummary) []Product {
	out := make([]Product, len(items))
	for i, p := range items {
		out[i] = productFromDomain(p)
	}
	return out
}

func ratingsToDomain(ratings []Rating) []domain.Rating {
	out := make([]domain.Rating, len(ratings))
	for i, r := range ratings {
		out[i] = domain.Rating{ProductID: r.ProductID, Value: r.Value}
	}
	return out
}

func tagCountsFromDomain(tags []domain.TagCount) []TagCount {
	out := make([]TagCount, len(tags))
	for i, t := range tags {
		out[i] = TagCount{Name: t.Name, Count: t.Count}
	}
	return out
}
