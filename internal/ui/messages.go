// Package ui provides the Bubble Tea TUI for browsing the catalog.
package ui

import "github.com/abelbrown/catalog/internal/loader"

// CatalogLoaded is sent when a load ticket finishes running.
// The result may belong to a superseded ticket; the explorer decides.
type CatalogLoaded struct {
	Result loader.Result
}

// SearchSettled is sent when search input has been quiet for the debounce delay.
type SearchSettled struct {
	Term string
}

