package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/catalog/internal/catalog"
)

// RenderEntries renders one page of entries, one per line.
// isFavorite may be nil.
func RenderEntries(entries []catalog.Entry, cursor, width int, isFavorite func(id int) bool) string {
	var b strings.Builder
	for i, e := range entries {
		fav := isFavorite != nil && isFavorite(e.ID)
		b.WriteString(renderEntryLine(e, i == cursor, fav, width))
		b.WriteString("\n")
	}
	return b.String()
}

// renderEntryLine lays out "★ name ........ [category] $price ★rating".
func renderEntryLine(e catalog.Entry, selected, favorite bool, width int) string {
	mark := "  "
	if favorite {
		mark = FavoriteMark.Render("★ ")
	}

	badge := CategoryBadge.Render(e.Category)
	price := PriceStyle.Render(fmt.Sprintf("%9s", catalog.FormatPrice(e.Price)))
	rating := RatingStyle.Render(fmt.Sprintf(" %.1f", e.Rating))
	right := badge + price + rating
	rightWidth := lipgloss.Width(right)

	// Account for the mark, item padding and a gap.
	nameWidth := width - rightWidth - 2 - 2 - 1
	if nameWidth < 10 {
		nameWidth = 10
	}
	name := truncateRunes(e.Name, nameWidth)
	if pad := nameWidth - utf8.RuneCountInString(name); pad > 0 {
		name += strings.Repeat(" ", pad)
	}

	style := NormalItem
	if selected {
		style = SelectedItem
	}
	return mark + style.Render(name) + " " + right
}

// truncateRunes shortens s to at most n runes, ending in "…" when cut.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}

// emptyState is the body shown instead of a list.
func emptyState(v viewState) string {
	switch {
	case v.failed:
		return ErrorStyle.Render(v.message) + "\n" + HelpStyle.Render("Press 'r' to retry.")
	case v.loading:
		return HelpStyle.Render(v.spinner + " Loading catalog...")
	case v.noResults && v.favoritesOnly:
		return HelpStyle.Render("No favorites match. Press 'f' to show everything.")
	case v.noResults:
		return HelpStyle.Render("No entries match your filters.")
	}
	return ""
}

type viewState struct {
	loading       bool
	failed        bool
	noResults     bool
	favoritesOnly bool
	message       string
	spinner       string
}
