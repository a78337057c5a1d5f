// Package httpapi exposes the search engine as a stateless HTTP facade.
// Every request runs one full synchronous search cycle; the debounce and
// cancellation machinery of the embedded controller is not involved because
// HTTP clients do their own request collapsing.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atshelf/facetsync/internal/domain"
	"github.com/atshelf/facetsync/internal/domain/search/criteria"
	"github.com/atshelf/facetsync/internal/usecase/coordinate"
	"github.com/atshelf/facetsync/internal/usecase/paginate"
	"github.com/atshelf/facetsync/internal/usecase/ratingblend"
	"github.com/atshelf/facetsync/internal/usecase/tagfreq"
)

// Catalog is everything a search request needs from the product backend.
type Catalog interface {
	coordinate.Backend
	ratingblend.RatingLister
}

// Server handles search requests against a catalog backend.
type Server struct {
	catalog  Catalog
	fallback *ratingblend.Resolver
	logger   *zap.Logger
}

// NewServer creates a search server.
func NewServer(catalog Catalog, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		catalog:  catalog,
		fallback: ratingblend.New(catalog, catalog, logger),
		logger:   logger,
	}
}

// Register mounts the server's routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/v1/search", s.handleSearch)
	r.Get("/healthz", s.handleHealth)
}

type productResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ProductType  string    `json:"product_type"`
	Source       string    `json:"source"`
	Tags         []string  `json:"tags"`
	SourceRating *float64  `json:"source_rating,omitempty"`
	Banned       bool      `json:"banned"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type tagCountResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type searchResponse struct {
	Items      []productResponse  `json:"items"`
	TotalCount int                `json:"total_count"`
	Page       int                `json:"page"`
	TotalPages int                `json:"total_pages"`
	FacetTags  []tagCountResponse `json:"facet_tags"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	crit, err := criteriaFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	ctx := r.Context()
	res := coordinate.RunCycle(ctx, s.catalog, crit, s.logger)
	items := s.fallback.Resolve(ctx, crit, res.Items())

	// A page past the end is clamped and re-fetched once with the corrected
	// offset. The clamped cycle cannot overshoot again: the count query is
	// identical, so a shrinking total at worst yields a short page.
	if page, refetch := paginate.Clamp(crit.Page(), res.TotalCount(), crit.PageSize()); refetch {
		crit = crit.AtPage(page)
		res = coordinate.RunCycle(ctx, s.catalog, crit, s.logger)
		items = s.fallback.Resolve(ctx, crit, res.Items())
	}

	if ctx.Err() != nil {
		return
	}

	total := res.TotalCount()
	if len(items) > total {
		// The fallback re-applied the rating floor client-side; the
		// backend's floored count undercounts in that case.
		total = len(items)
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Items:      productsResponse(items),
		TotalCount: total,
		Page:       crit.Page(),
		TotalPages: paginate.TotalPages(total, crit.PageSize()),
		FacetTags:  tagCountsResponse(tagfreq.Aggregate(items, res.FacetTags(), crit.Tags())),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// criteriaFromQuery builds search criteria from request query parameters.
// Unknown facet values pass through to the backend; malformed numbers and
// dates are rejected rather than silently defaulted.
func criteriaFromQuery(r *http.Request) (criteria.Criteria, error) {
	q := r.URL.Query()
	crit := criteria.Default().
		WithFreeText(q.Get("query")).
		WithTypes(splitList(q.Get("types"))).
		WithSources(splitList(q.Get("sources"))).
		WithTags(splitList(q.Get("tags")))

	if raw := q.Get("min_rating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return criteria.Criteria{}, &paramError{name: "min_rating", value: raw}
		}
		crit = crit.WithMinRating(v)
	}
	if raw := q.Get("updated_since"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return criteria.Criteria{}, &paramError{name: "updated_since", value: raw}
		}
		crit = crit.WithUpdatedSince(&t)
	}
	if raw := q.Get("include_banned"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return criteria.Criteria{}, &paramError{name: "include_banned", value: raw}
		}
		crit = crit.WithIncludeBanned(v)
	}
	if q.Has("sort_by") || q.Has("sort_order") {
		crit = crit.WithSort(
			criteria.SortField(q.Get("sort_by")),
			criteria.SortOrder(q.Get("sort_order")),
		)
	}
	if raw := q.Get("page_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return criteria.Criteria{}, &paramError{name: "page_size", value: raw}
		}
		crit = crit.WithPageSize(v)
	}
	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return criteria.Criteria{}, &paramError{name: "page", value: raw}
		}
		crit = crit.WithPage(v)
	}
	return crit, nil
}

type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return "invalid value " + strconv.Quote(e.value) + " for parameter " + e.name
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func productsResponse(items []domain.ProductSummary) []productResponse {
	out := make([]productResponse, len(items))
	for i, p := range items {
		out[i] = productResponse{
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
	return out
}

func tagCountsResponse(tags []domain.TagCount) []tagCountResponse {
	out := make([]tagCountResponse, len(tags))
	for i, t := range tags {
		out[i] = tagCountResponse{Name: t.Name, Count: t.Count}
	}
	return out
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}
