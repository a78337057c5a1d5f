package catalog

import (
	"time"

	"github.com/atshelf/facetsync/internal/domain"
)

type productDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ProductType  string    `json:"product_type"`
	Source       string    `json:"source"`
	Tags         []string  `json:"tags"`
	SourceRating *float64  `json:"source_rating"`
	Banned       bool      `json:"banned"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ratingDTO struct {
	ProductID string `json:"product_id"`
	Value     int    `json:"value"`
}

type listProductsResponse struct {
	Items []productDTO `json:"items"`
}

type countResponse struct {
	Total int `json:"total"`
}

type facetTagsResponse struct {
	Tags []string `json:"tags"`
}

type ratingsResponse struct {
	Ratings []ratingDTO `json:"ratings"`
}

func productsFromDTO(dtos []productDTO) []domain.ProductSummary {
	out := make([]domain.ProductSummary, len(dtos))
	for i, d := range dtos {
		out[i] = domain.ProductSummary{
			ID:           d.ID,
			Name:         d.Name,
			ProductType:  d.ProductType,
			Source:       d.Source,
			Tags:         d.Tags,
			SourceRating: d.SourceRating,
			Banned:       d.Banned,
			CreatedAt:    d.CreatedAt,
			UpdatedAt:    d.UpdatedAt,
		}
	}
	return out
}

func ratingsFromDTO(dtos []ratingDTO) []domain.Rating {
	out := make([]domain.Rating, len(dtos))
	for i, d := range dtos {
		out[i] = domain.Rating{ProductID: d.ProductID, Value: d.Value}
	}
	return out
}
