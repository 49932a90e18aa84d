package catalog

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Membership reports whether an entry id is a favorite.
type Membership interface {
	IsFavorite(id int) bool
}

// RunQuery filters and sorts entries. Stages run in a fixed order:
// search, category, favorites, then a stable sort.
// The input slice is never modified. A nil membership has no favorites.
func RunQuery(entries []Entry, favorites Membership, q Query, allValue string) []Entry {
	result := make([]Entry, 0, len(entries))

	term := strings.ToLower(strings.TrimSpace(q.SearchTerm))
	for _, e := range entries {
		if term != "" && !strings.Contains(strings.ToLower(e.Name), term) {
			continue
		}
		if q.SelectedCategory != allValue && e.Category != q.SelectedCategory {
			continue
		}
		if q.FavoritesOnly && (favorites == nil || !favorites.IsFavorite(e.ID)) {
			continue
		}
		result = append(result, e)
	}

	if key := sortKey(q.SortField); key != nil {
		desc := q.SortDirection == Descending
		slices.SortStableFunc(result, func(a, b Entry) int {
			c := cmp.Compare(key(a), key(b))
			if desc {
				return -c
			}
			return c
		})
	}

	return result
}

func sortKey(f SortField) func(Entry) float64 {
	switch f {
	case SortPrice:
		return func(e Entry) float64 { return e.Price }
	case SortRating:
		return func(e Entry) float64 { return e.Rating }
	}
	return nil
}

// DeriveCategories returns the distinct categories in entries, collated for
// English, with allValue prepended. Empty input yields just allValue.
func DeriveCategories(entries []Entry, allValue string) []string {
	seen := make(map[string]struct{}, len(entries))
	unique := make([]string, 0)
	for _, e := range entries {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		unique = append(unique, e.Category)
	}

	collate.New(language.English).SortStrings(unique)

	return append([]string{allValue}, unique...)
}

// TotalPages is ceil(count / pageSize). Zero entries yields zero pages.
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// Window returns entries[(page-1)*pageSize : page*pageSize], clipped to the
// slice bounds. Out-of-range pages yield nil.
func Window(entries []Entry, page, pageSize int) []Entry {
	if page < 1 || pageSize <= 0 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(entries) {
		return nil
	}
	end := min(start+pageSize, len(entries))
	return entries[start:end]
}
