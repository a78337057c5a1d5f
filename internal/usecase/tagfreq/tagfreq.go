// Package tagfreq merges locally visible item tags with server-reported
// facet tags into one ranked list.
package tagfreq

import (
	"sort"
	"strings"

	"github.com/atshelf/facetsync/internal/domain"
)

// Aggregate counts tag occurrences across the current item page, then adds
// zero-count entries for facet tags and currently selected tags absent from
// the page, so an active filter never disappears from the UI. The output is
// rebuilt from scratch on every call; there is no incremental state.
//
// Order: count descending, ties broken by case-insensitive name ascending.
func Aggregate(items []domain.ProductSummary, facetTags, selectedTags []string) []domain.TagCount {
	counts := make(map[string]int)
	for _, item := range items {
		for _, tag := range item.Tags {
			counts[tag]++
		}
	}
	for _, tag := range facetTags {
		if _, ok := counts[tag]; !ok {
			counts[tag] = 0
		}
	}
	for _, tag := range selectedTags {
		if _, ok := counts[tag]; !ok {
			counts[tag] = 0
		}
	}

	ranked := make([]domain.TagCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, domain.TagCount{Name: name, Count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		li, lj := strings.ToLower(ranked[i].Name), strings.ToLower(ranked[j].Name)
		if li != lj {
			return li < lj
		}
		// Two names differing only in case: fall back to the raw compare
		// so the order stays deterministic.
		return ranked[i].Name < ranked[j].Name
	})

	return ranked
}
