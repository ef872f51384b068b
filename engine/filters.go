package engine

import (
	"strings"
)

// ============================================================================
// FILTERS — Field-Based Filtering via RowView
// ============================================================================
// Single-pass filter: checks ALL field constraints per row in one loop.
// Values are compared on their default-formatted text, case-insensitively.
// Returns a SubView (index list into parent) — zero data copy.
// ============================================================================

// ApplyFilters returns a view of rows matching all field filters.
// Fields are AND-combined; values within a field are OR-combined.
// Empty filter = no restriction (returns original view).
func ApplyFilters(view RowView, filters Filters) RowView {
	if filters.IsEmpty() {
		return view
	}

	sets := make(map[string]map[string]bool)
	for field, allowed := range filters.Fields {
		if len(allowed) > 0 {
			sets[field] = toLowerSet(allowed)
		}
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for field, set := range sets {
			val := strings.ToLower(FormatValue(view.Value(i, field), Meta{}))
			if !set[val] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

// toLowerSet converts a string slice to a lowercase lookup set.
func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(strings.TrimSpace(item))] = true
	}
	return set
}
