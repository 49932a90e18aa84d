package ui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/catalog/internal/catalog"
	"github.com/abelbrown/catalog/internal/explorer"
	"github.com/abelbrown/catalog/internal/favorites"
	"github.com/abelbrown/catalog/internal/kv"
	"github.com/abelbrown/catalog/internal/loader"
)

type stubFetcher struct {
	entries []catalog.Entry
	err     error
}

func (s *stubFetcher) FetchEntries(ctx context.Context) ([]catalog.Entry, error) {
	return s.entries, s.err
}

func testEntries(n int) []catalog.Entry {
	out := make([]catalog.Entry, n)
	for i := range out {
		cat := "Home"
		if i%3 == 0 {
			cat = "Garden"
		}
		out[i] = catalog.Entry{ID: i + 1, Name: fmt.Sprintf("Entry %02d", i+1), Category: cat, Price: float64(10 + i), Rating: 4}
	}
	return out
}

// newTestApp returns a sized App whose explorer has no debounce.
func newTestApp(t *testing.T, f *stubFetcher) (App, *explorer.Explorer) {
	t.Helper()
	favs := favorites.Open(kv.NewMemory(), catalog.FavoritesStorageKey, nil)
	ex := explorer.New(loader.New(f, 0, nil), favs)
	t.Cleanup(ex.Close)

	app := NewApp(AppConfig{Explorer: ex})
	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return model.(App), ex
}

// loadedApp runs one load through the App's own Cmd path.
func loadedApp(t *testing.T, n int) (App, *explorer.Explorer) {
	t.Helper()
	app, ex := newTestApp(t, &stubFetcher{entries: testEntries(n)})
	msg := app.startLoad()()
	model, _ := app.Update(msg)
	return model.(App), ex
}

func press(t *testing.T, app App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		model, _ := app.Update(msg)
		app = model.(App)
	}
	return app
}

func TestAppInit(t *testing.T) {
	app, ex := newTestApp(t, &stubFetcher{entries: testEntries(3)})

	cmd := app.Init()

	if cmd == nil {
		t.Fatal("Init should return a command")
	}
	if ex.LoadState().Status != catalog.StatusLoading {
		t.Errorf("Init should begin a load, got %s", ex.LoadState().Status)
	}
}

func TestAppViewBeforeResize(t *testing.T) {
	favs := favorites.Open(kv.NewMemory(), catalog.FavoritesStorageKey, nil)
	app := NewApp(AppConfig{Explorer: explorer.New(loader.New(&stubFetcher{}, 0, nil), favs)})

	if app.View() != "Loading..." {
		t.Errorf("expected placeholder before first resize, got %q", app.View())
	}
}

func TestAppLoadingView(t *testing.T) {
	app, _ := newTestApp(t, &stubFetcher{entries: testEntries(3)})
	app.startLoad()

	if !strings.Contains(app.View(), "Loading catalog") {
		t.Errorf("expected loading state, got:\n%s", app.View())
	}
}

func TestAppLoadedView(t *testing.T) {
	app, _ := loadedApp(t, 12)

	view := app.View()
	if !strings.Contains(view, "Entry 01") || !strings.Contains(view, "Entry 09") {
		t.Errorf("first page should be rendered, got:\n%s", view)
	}
	if strings.Contains(view, "Entry 10") {
		t.Error("second page entries should not be rendered")
	}
	if !strings.Contains(view, "$10.00") {
		t.Errorf("prices should be formatted, got:\n%s", view)
	}
	if !strings.Contains(view, "page 1/2") {
		t.Errorf("status bar should show page position, got:\n%s", view)
	}
}

func TestAppSinglePageHidesPager(t *testing.T) {
	app, _ := loadedApp(t, 5)

	view := app.View()
	if !strings.Contains(view, "Entry 05") {
		t.Fatalf("entries should be rendered, got:\n%s", view)
	}
	if strings.Contains(view, "page 1/1") {
		t.Errorf("pager should be hidden for a single page, got:\n%s", view)
	}
}

func TestAppFailedView(t *testing.T) {
	app, _ := newTestApp(t, &stubFetcher{err: fmt.Errorf("request failed: 500")})
	model, _ := app.Update(app.startLoad()())
	app = model.(App)

	view := app.View()
	if !strings.Contains(view, catalog.LoadFailedMessage) {
		t.Errorf("expected generic failure message, got:\n%s", view)
	}
	if strings.Contains(view, "500") {
		t.Error("the underlying cause must not be shown")
	}
}

func TestAppStaleLoadIgnored(t *testing.T) {
	f := &stubFetcher{entries: testEntries(2)}
	app, ex := newTestApp(t, f)

	stale := app.startLoad()
	f.entries = testEntries(5)
	fresh := app.startLoad()

	model, _ := app.Update(fresh())
	app = model.(App)
	model, _ = app.Update(stale())
	app = model.(App)

	if got := ex.Snapshot().Filtered; got != 5 {
		t.Errorf("stale load should be dropped, got %d entries", got)
	}
}

func TestAppNavigation(t *testing.T) {
	app, ex := loadedApp(t, 20)

	app = press(t, app, "j", "j")
	if app.Cursor() != 2 {
		t.Errorf("j should move cursor to 2, got %d", app.Cursor())
	}
	app = press(t, app, "k")
	if app.Cursor() != 1 {
		t.Errorf("k should move cursor to 1, got %d", app.Cursor())
	}

	app = press(t, app, "n")
	if ex.Page() != 2 || app.Cursor() != 0 {
		t.Errorf("n should go to page 2 with cursor reset, got page %d cursor %d", ex.Page(), app.Cursor())
	}
	app = press(t, app, "n", "n", "n")
	if ex.Page() != 3 {
		t.Errorf("paging past the end should be rejected, got %d", ex.Page())
	}
	app = press(t, app, "p", "p", "p")
	if ex.Page() != 1 {
		t.Errorf("paging before the start should be rejected, got %d", ex.Page())
	}

	for i := 0; i < 20; i++ {
		app = press(t, app, "down")
	}
	if app.Cursor() != 8 {
		t.Errorf("cursor should stop at the last entry on the page, got %d", app.Cursor())
	}
}

func TestAppSearch(t *testing.T) {
	app, ex := loadedApp(t, 20)
	app = press(t, app, "n")

	app = press(t, app, "/", "1", "5")
	if ex.SearchInput() != "15" {
		t.Errorf("expected search input 15, got %q", ex.SearchInput())
	}
	if ex.Page() != 1 {
		t.Errorf("search should reset the page, got %d", ex.Page())
	}
	if got := ex.Snapshot().Filtered; got != 1 {
		t.Errorf("expected 1 match, got %d", got)
	}

	// While searching, letters go to the input rather than shortcuts.
	app = press(t, app, "q")
	if ex.SearchInput() != "15q" {
		t.Errorf("q should be typed, got %q", ex.SearchInput())
	}

	app = press(t, app, "enter", "esc")
	if ex.SearchInput() != "" || ex.Snapshot().Filtered != 20 {
		t.Errorf("esc outside the input should clear the search, got %q", ex.SearchInput())
	}
}

func TestAppSearchSettled(t *testing.T) {
	app, ex := loadedApp(t, 20)

	model, _ := app.Update(SearchSettled{Term: "Entry 2"})
	app = model.(App)

	if ex.Query().SearchTerm != "Entry 2" {
		t.Errorf("expected settled term applied, got %q", ex.Query().SearchTerm)
	}
	if got := ex.Snapshot().Filtered; got != 1 {
		t.Errorf("expected 1 match, got %d", got)
	}
}

func TestAppQueryKeys(t *testing.T) {
	app, ex := loadedApp(t, 9)

	app = press(t, app, "c")
	if ex.Query().SelectedCategory != "Garden" {
		t.Errorf("c should select the first category, got %q", ex.Query().SelectedCategory)
	}
	app = press(t, app, "c", "c")
	if ex.Query().SelectedCategory != catalog.AllCategories {
		t.Errorf("c should wrap back to All, got %q", ex.Query().SelectedCategory)
	}

	app = press(t, app, "s", "d")
	q := ex.Query()
	if q.SortField != catalog.SortPrice || q.SortDirection != catalog.Descending {
		t.Errorf("expected price desc, got %s %s", q.SortField, q.SortDirection)
	}
	if first := ex.Snapshot().Entries[0]; first.ID != 9 {
		t.Errorf("most expensive entry should lead, got %d", first.ID)
	}
	if !strings.Contains(app.View(), "by price ↓") {
		t.Errorf("header should summarize the sort, got:\n%s", app.View())
	}
}

func TestAppToggleFavorite(t *testing.T) {
	app, ex := loadedApp(t, 5)

	app = press(t, app, "j", "space")
	if !ex.IsFavorite(2) {
		t.Error("space should favorite the entry under the cursor")
	}
	if !strings.Contains(app.View(), "★") {
		t.Error("favorites should be marked")
	}

	app = press(t, app, "f")
	if got := ex.Snapshot().Filtered; got != 1 {
		t.Errorf("favorites-only should show 1 entry, got %d", got)
	}

	app = press(t, app, "space")
	if ex.IsFavorite(2) {
		t.Error("second toggle should remove the favorite")
	}
	if !strings.Contains(app.View(), "No favorites match") {
		t.Errorf("expected empty favorites state, got:\n%s", app.View())
	}
}

func TestAppClearFavorites(t *testing.T) {
	app, ex := loadedApp(t, 5)
	app = press(t, app, "space", "j", "space")

	press(t, app, "X")

	if ex.IsFavorite(1) || ex.IsFavorite(2) {
		t.Error("X should clear favorites")
	}
}

func TestAppNoResults(t *testing.T) {
	app, _ := loadedApp(t, 5)

	model, _ := app.Update(SearchSettled{Term: "nothing like this"})
	app = model.(App)

	if !strings.Contains(app.View(), "No entries match") {
		t.Errorf("expected no-results state, got:\n%s", app.View())
	}
}

func TestAppReload(t *testing.T) {
	app, _ := loadedApp(t, 5)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if cmd == nil {
		t.Fatal("r should return a load command")
	}
	if _, ok := cmd().(CatalogLoaded); !ok {
		t.Error("load command should produce CatalogLoaded")
	}
}

func TestAppQuit(t *testing.T) {
	app, _ := loadedApp(t, 1)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestNextCategory(t *testing.T) {
	cats := []string{"All", "Books", "Home"}
	tests := []struct {
		current, want string
	}{
		{"All", "Books"},
		{"Books", "Home"},
		{"Home", "All"},
		{"Gone", "All"},
	}
	for _, tt := range tests {
		if got := nextCategory(cats, tt.current); got != tt.want {
			t.Errorf("nextCategory(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
	if got := nextCategory(nil, "x"); got != catalog.AllCategories {
		t.Errorf("empty list should fall back to All, got %q", got)
	}
}

func TestQuerySummary(t *testing.T) {
	if s := querySummary(catalog.DefaultQuery()); s != "" {
		t.Errorf("default query needs no summary, got %q", s)
	}
	q := catalog.DefaultQuery()
	q.SelectedCategory = "Books"
	q.SortField = catalog.SortRating
	q.FavoritesOnly = true
	if s := querySummary(q); s != " Books · by rating ↑ · favorites" {
		t.Errorf("unexpected summary %q", s)
	}
}
