package paginate

import (
	"testing"

	"github.com/atshelf/facetsync/internal/domain/search/criteria"
)

func TestReconcile_FilterChangeResetsPage(t *testing.T) {
	crit := criteria.Default().WithPage(3).WithToggledTag("audio")
	got := Reconcile(crit)
	if got.Page() != 1 {
		t.Errorf("Page = %d, want 1 after filter change", got.Page())
	}
}

func TestReconcile_PageChangeKeepsPage(t *testing.T) {
	crit := criteria.Default().WithPage(4)
	got := Reconcile(crit)
	if got.Page() != 4 {
		t.Errorf("Page = %d, want 4 for pure navigation", got.Page())
	}
}

func TestReconcile_SortAndPageSizeReset(t *testing.T) {
	sorted := criteria.Default().WithPage(3).WithSort(criteria.SortByRating, criteria.OrderAsc)
	if got := Reconcile(sorted).Page(); got != 1 {
		t.Errorf("sort change: Page = %d, want 1", got)
	}
	resized := criteria.Default().WithPage(3).WithPageSize(100)
	if got := Reconcile(resized).Page(); got != 1 {
		t.Errorf("page size change: Page = %d, want 1", got)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 30, 1},
		{1, 30, 1},
		{30, 30, 1},
		{31, 30, 2},
		{100, 50, 2},
		{101, 50, 3},
	}
	for _, tc := range tests {
		if got := TotalPages(tc.total, tc.size); got != tc.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.size, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	page, refetch := Clamp(5, 60, 30)
	if page != 2 || !refetch {
		t.Errorf("Clamp(5, 60, 30) = %d/%v, want 2/true", page, refetch)
	}

	page, refetch = Clamp(2, 60, 30)
	if page != 2 || refetch {
		t.Errorf("Clamp(2, 60, 30) = %d/%v, want 2/false", page, refetch)
	}

	// Empty result set clamps everything to page 1.
	page, refetch = Clamp(3, 0, 30)
	if page != 1 || !refetch {
		t.Errorf("Clamp(3, 0, 30) = %d/%v, want 1/true", page, refetch)
	}
}
