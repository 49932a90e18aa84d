// Package catalog defines the catalog data model and the pure query pipeline.
//
// Everything here is side-effect free: entries in, entries out. The loader,
// favorites store and explorer build on these types.
package catalog

import (
	"fmt"
	"strings"
	"time"
)

const (
	// EntriesEndpoint is the path of the JSON entry feed.
	EntriesEndpoint = "/items.json"

	// FavoritesStorageKey is the persistence key for the favorite id set.
	FavoritesStorageKey = "catalog:favourites"

	// DefaultDebounce is how long search input must be quiet before it applies.
	DefaultDebounce = 300 * time.Millisecond

	// SimulatedFetchDelay is the artificial latency injected before a load.
	SimulatedFetchDelay = 600 * time.Millisecond

	// AllCategories is the sentinel category meaning "no category filter".
	AllCategories = "All"

	// DefaultPageSize is the number of entries shown per page.
	DefaultPageSize = 9

	// LoadFailedMessage is the only failure text ever shown to the user.
	LoadFailedMessage = "Something went wrong while loading items."
)

// Entry is one catalog record. Immutable once loaded.
type Entry struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating"`
}

// SortField names the numeric field entries are ordered by.
type SortField string

const (
	SortNone   SortField = ""
	SortPrice  SortField = "price"
	SortRating SortField = "rating"
)

// ParseSortField accepts "", "none", "price" or "rating".
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "price":
		return SortPrice, nil
	case "rating":
		return SortRating, nil
	}
	return SortNone, fmt.Errorf("unknown sort field %q", s)
}

// Next cycles none -> price -> rating -> none.
func (f SortField) Next() SortField {
	switch f {
	case SortNone:
		return SortPrice
	case SortPrice:
		return SortRating
	default:
		return SortNone
	}
}

func (f SortField) String() string {
	if f == SortNone {
		return "none"
	}
	return string(f)
}

// SortDirection is ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// ParseSortDirection accepts "asc"/"ascending" and "desc"/"descending".
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Ascending, fmt.Errorf("unknown sort direction %q", s)
}

// Toggle flips the direction.
func (d SortDirection) Toggle() SortDirection {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// Query holds the filter and sort inputs of the pipeline.
type Query struct {
	SearchTerm       string
	SelectedCategory string
	SortField        SortField
	SortDirection    SortDirection
	FavoritesOnly    bool
}

// DefaultQuery returns a query that keeps every entry in load order.
func DefaultQuery() Query {
	return Query{
		SelectedCategory: AllCategories,
		SortField:        SortNone,
		SortDirection:    Ascending,
	}
}

// QueryState is the full set of user-adjustable inputs, including pagination.
type QueryState struct {
	Query
	Page int // 1-based
}

// LoadStatus is the lifecycle position of a catalog load.
type LoadStatus int

const (
	StatusLoading LoadStatus = iota
	StatusReady
	StatusFailed
)

func (s LoadStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("LoadStatus(%d)", int(s))
}

// LoadState is the observable result of the catalog loader.
// Message is user-facing; Cause is the diagnostic and is never rendered.
type LoadState struct {
	Entries []Entry
	Status  LoadStatus
	Message string
	Cause   error
}

// FormatPrice renders a price as "$" plus two decimals.
func FormatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}
