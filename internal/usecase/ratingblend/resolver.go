// Package ratingblend guards against a false "no results" when the backend's
// rating filter and the client's blended-rating definition disagree.
package ratingblend

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/atshelf/facetsync/internal/domain"
	"github.com/atshelf/facetsync/internal/domain/search/criteria"
	"github.com/atshelf/facetsync/internal/metrics"
)

// ItemLister re-issues the item query for the fallback pass.
type ItemLister interface {
	ListProducts(ctx context.Context, crit criteria.Criteria) ([]domain.ProductSummary, error)
}

// RatingLister fetches user ratings for the blended-rating computation.
type RatingLister interface {
	ListRatings(ctx context.Context, productIDs []string) ([]domain.Rating, error)
}

// Resolver re-queries without the rating floor and re-applies it client-side
// using blended ratings.
type Resolver struct {
	items   ItemLister
	ratings RatingLister
	logger  *zap.Logger
}

// New creates a resolver.
func New(items ItemLister, ratings RatingLister, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{items: items, ratings: ratings, logger: logger}
}

// Resolve returns the item page to show. It triggers only when a rating
// floor is set and the primary page came back empty; any failure during the
// fallback keeps the primary page rather than surfacing an error.
func (r *Resolver) Resolve(
	ctx context.Context, crit criteria.Criteria, primary []domain.ProductSummary,
) []domain.ProductSummary {
	if crit.MinRating() <= 0 || len(primary) > 0 {
		return primary
	}

	unfloored, err := r.items.ListProducts(ctx, crit.WithoutMinRating())
	if err != nil {
		r.logFallback("fallback item query failed", err)
		return primary
	}
	if len(unfloored) == 0 {
		metrics.RatingFallbackTotal.WithLabelValues(metrics.FallbackEmpty).Inc()
		return primary
	}

	ids := make([]string, len(unfloored))
	for i, p := range unfloored {
		ids[i] = p.ID
	}
	userRatings, err := r.ratings.ListRatings(ctx, ids)
	if err != nil {
		r.logFallback("fallback rating query failed", err)
		return primary
	}

	byProduct := make(map[string][]int, len(ids))
	for _, rt := range userRatings {
		byProduct[rt.ProductID] = append(byProduct[rt.ProductID], rt.Value)
	}

	kept := make([]domain.ProductSummary, 0, len(unfloored))
	for _, p := range unfloored {
		blended, rated := Blend(byProduct[p.ID], p.SourceRating)
		if rated && blended >= crit.MinRating() {
			kept = append(kept, p)
		}
	}

	metrics.RatingFallbackTotal.WithLabelValues(metrics.FallbackApplied).Inc()
	return kept
}

// Blend computes the rating used for threshold comparisons.
// User ratings are averaged; a source rating is averaged with the user
// average when both exist, and stands alone otherwise. An item with neither
// has no rating at all (rated == false).
func Blend(userValues []int, sourceRating *float64) (float64, bool) {
	if len(userValues) == 0 {
		if sourceRating == nil {
			return 0, false
		}
		return *sourceRating, true
	}

	sum := 0
	for _, v := range userValues {
		sum += v
	}
	userAvg := float64(sum) / float64(len(userValues))

	if sourceRating == nil {
		return userAvg, true
	}
	return (userAvg + *sourceRating) / 2, true
}

func (r *Resolver) logFallback(msg string, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	metrics.RatingFallbackTotal.WithLabelValues(metrics.FallbackFailed).Inc()
	r.logger.Warn(msg, zap.Error(err))
}
