// Package query implements the shared filter -> sort -> paginate pipeline
// applied to every entity list view. It operates on store documents so one
// implementation serves all seven collections.
package query

import (
	"sort"

	"fleetops/internal/apierr"
)

// Sort is a single-field ordering. The zero value keeps insertion order.
// Ties always preserve insertion order so pagination stays deterministic
// across repeated calls against an unmodified collection.
type Sort struct {
	Field      string
	Descending bool
}

// Page is the result of a query: one page of documents plus the total match
// count before paging.
type Page struct {
	Items []map[string]any
	Total int
}

// compare orders two field values: numbers numerically, everything else by
// string form. RFC3339 timestamps order correctly as strings.
func compare(a, b any) int {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	as, _ := a.(string)
	bs, _ := b.(string)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}

// Run filters, sorts, and paginates a collection snapshot. Pages are
// 1-indexed. A page past the end yields empty items with the correct total;
// page < 1 or pageSize <= 0 is a ValidationFailure.
func Run(docs []map[string]any, f Filter, s Sort, page, pageSize int) (Page, error) {
	if pageSize <= 0 {
		return Page{}, apierr.New(apierr.ValidationFailure, "page size must be positive, got %d", pageSize)
	}
	if page < 1 {
		return Page{}, apierr.New(apierr.ValidationFailure, "page numbers start at 1, got %d", page)
	}
	if err := f.Validate(); err != nil {
		return Page{}, err
	}

	filtered := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		if f.Matches(doc) {
			filtered = append(filtered, doc)
		}
	}

	if s.Field != "" {
		sort.SliceStable(filtered, func(i, j int) bool {
			vi, _ := lookup(filtered[i], s.Field)
			vj, _ := lookup(filtered[j], s.Field)
			c := compare(vi, vj)
			if s.Descending {
				return c > 0
			}
			return c < 0
		})
	}

	total := len(filtered)
	start := (page - 1) * pageSize
	if start >= total {
		return Page{Items: []map[string]any{}, Total: total}, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return Page{Items: filtered[start:end], Total: total}, nil
}
