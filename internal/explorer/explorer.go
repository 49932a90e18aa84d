// Package explorer binds the loader, the favorites store and the query
// pipeline into the state the presentation layer renders.
//
// An Explorer is owned by one goroutine (the Bubble Tea update loop or a
// headless command). Only the search stabilizer's notify callback runs
// elsewhere, and it must hand the settled term back to the owner.
package explorer

import (
	"context"
	"time"

	"github.com/abelbrown/catalog/internal/catalog"
	"github.com/abelbrown/catalog/internal/debounce"
	"github.com/abelbrown/catalog/internal/eventlog"
	"github.com/abelbrown/catalog/internal/favorites"
	"github.com/abelbrown/catalog/internal/loader"
	"github.com/abelbrown/catalog/internal/logging"
)

// View is everything the presentation layer needs for one frame.
type View struct {
	Status      catalog.LoadStatus
	Message     string
	Entries     []catalog.Entry // current page only
	Filtered    int
	TotalPages  int
	Page        int
	NoResults   bool
	Categories  []string
	Query       catalog.Query
	SearchInput string
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithPageSize overrides catalog.DefaultPageSize. Non-positive sizes are ignored.
func WithPageSize(n int) Option {
	return func(e *Explorer) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithSearchDebounce delays search input by delay. notify receives each
// settled term on a timer goroutine and must forward it to the owner, which
// then calls ApplySearchTerm.
func WithSearchDebounce(delay time.Duration, notify func(term string)) Option {
	return func(e *Explorer) {
		e.searchDelay = delay
		e.search = debounce.New("", notify)
	}
}

// WithEvents records query changes. events may be nil.
func WithEvents(events *eventlog.Logger) Option {
	return func(e *Explorer) {
		e.events = events
	}
}

type filterMemo struct {
	valid   bool
	loadRev uint64
	favRev  uint64
	query   catalog.Query
	result  []catalog.Entry
}

type categoryMemo struct {
	valid   bool
	loadRev uint64
	result  []string
}

// Explorer holds the query state and derives the visible window from it.
type Explorer struct {
	loader    *loader.Loader
	favorites *favorites.Store
	events    *eventlog.Logger
	pageSize  int

	state       catalog.QueryState
	searchInput string

	search      *debounce.Stabilizer[string]
	searchDelay time.Duration

	filtered   filterMemo
	categories categoryMemo
}

// New creates an Explorer with the default query on page 1.
func New(l *loader.Loader, favs *favorites.Store, opts ...Option) *Explorer {
	e := &Explorer{
		loader:    l,
		favorites: favs,
		pageSize:  catalog.DefaultPageSize,
		state:     catalog.QueryState{Query: catalog.DefaultQuery(), Page: 1},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query setters. Each one resets the page to 1.

// SetSearchInput records raw search input. Without debounce it applies at once.
func (e *Explorer) SetSearchInput(raw string) {
	e.searchInput = raw
	e.state.Page = 1
	if e.search == nil {
		e.ApplySearchTerm(raw)
		return
	}
	e.search.Observe(raw, e.searchDelay)
}

// ApplySearchTerm makes term the active search term.
func (e *Explorer) ApplySearchTerm(term string) {
	e.state.Query.SearchTerm = term
	e.state.Page = 1
	e.queryChanged("search")
}

func (e *Explorer) SetCategory(category string) {
	e.state.Query.SelectedCategory = category
	e.state.Page = 1
	e.queryChanged("category")
}

func (e *Explorer) SetSortField(field catalog.SortField) {
	e.state.Query.SortField = field
	e.state.Page = 1
	e.queryChanged("sort_field")
}

func (e *Explorer) SetSortDirection(dir catalog.SortDirection) {
	e.state.Query.SortDirection = dir
	e.state.Page = 1
	e.queryChanged("sort_direction")
}

func (e *Explorer) SetFavoritesOnly(on bool) {
	e.state.Query.FavoritesOnly = on
	e.state.Page = 1
	e.queryChanged("favorites_only")
}

func (e *Explorer) queryChanged(field string) {
	n := len(e.Filtered())
	logging.Debug("Query changed", "field", field, "matches", n)
	e.events.Emit(eventlog.Event{
		Level: eventlog.LevelDebug,
		Kind:  eventlog.KindQueryChange,
		Comp:  "explorer",
		Msg:   field,
		Count: n,
	})
}

// SetPage moves to p. Pages outside [1, TotalPages] are rejected and the
// window is left unchanged.
func (e *Explorer) SetPage(p int) bool {
	if p < 1 || p > e.TotalPages() {
		return false
	}
	e.state.Page = p
	e.events.Emit(eventlog.Event{Level: eventlog.LevelDebug, Kind: eventlog.KindPageChange, Comp: "explorer", Page: p})
	return true
}

func (e *Explorer) NextPage() bool { return e.SetPage(e.state.Page + 1) }
func (e *Explorer) PrevPage() bool { return e.SetPage(e.state.Page - 1) }

// ToggleFavorite flips id. A persistence error is returned but the toggle
// stands in memory.
func (e *Explorer) ToggleFavorite(id int) error {
	err := e.favorites.Toggle(id)
	if e.state.Query.FavoritesOnly {
		e.clampPage()
	}
	return err
}

func (e *Explorer) ClearFavorites() error {
	err := e.favorites.Clear()
	if e.state.Query.FavoritesOnly {
		e.clampPage()
	}
	return err
}

func (e *Explorer) IsFavorite(id int) bool {
	return e.favorites.IsFavorite(id)
}

// BeginLoad starts a (re)load; run the ticket off the owner goroutine and
// pass its result to SettleLoad.
func (e *Explorer) BeginLoad(ctx context.Context) *loader.Ticket {
	return e.loader.Begin(ctx)
}

// SettleLoad applies a load result. When applied, the page is clamped to the
// new page count.
func (e *Explorer) SettleLoad(res loader.Result) bool {
	if !e.loader.Settle(res) {
		return false
	}
	e.clampPage()
	return true
}

// Load is the synchronous form of BeginLoad and SettleLoad.
func (e *Explorer) Load(ctx context.Context) error {
	t := e.BeginLoad(ctx)
	res := t.Run()
	if !e.SettleLoad(res) {
		return ctx.Err()
	}
	return res.Err
}

func (e *Explorer) clampPage() {
	total := e.TotalPages()
	switch {
	case total == 0:
		e.state.Page = 1
	case e.state.Page > total:
		e.state.Page = total
	}
}

// Close cancels any in-flight load and stops the search timer.
func (e *Explorer) Close() {
	e.loader.Cancel()
	if e.search != nil {
		e.search.Stop()
	}
}

// Filtered returns the full filtered and sorted result. Recomputed only when
// the entries, the query or the favorite set changed.
func (e *Explorer) Filtered() []catalog.Entry {
	loadRev, favRev := e.loader.Revision(), e.favorites.Revision()
	m := &e.filtered
	if m.valid && m.loadRev == loadRev && m.favRev == favRev && m.query == e.state.Query {
		return m.result
	}
	m.result = catalog.RunQuery(e.loader.State().Entries, e.favorites, e.state.Query, catalog.AllCategories)
	m.loadRev, m.favRev, m.query, m.valid = loadRev, favRev, e.state.Query, true
	return m.result
}

// Categories returns the category options, "All" first.
func (e *Explorer) Categories() []string {
	rev := e.loader.Revision()
	m := &e.categories
	if m.valid && m.loadRev == rev {
		return m.result
	}
	m.result = catalog.DeriveCategories(e.loader.State().Entries, catalog.AllCategories)
	m.loadRev, m.valid = rev, true
	return m.result
}

// TotalPages is 0 when nothing matches.
func (e *Explorer) TotalPages() int {
	return catalog.TotalPages(len(e.Filtered()), e.pageSize)
}

// State returns the query and page together.
func (e *Explorer) State() catalog.QueryState { return e.state }

func (e *Explorer) Page() int { return e.state.Page }
func (e *Explorer) PageSize() int { return e.pageSize }
func (e *Explorer) Query() catalog.Query { return e.state.Query }
func (e *Explorer) SearchInput() string { return e.searchInput }
func (e *Explorer) LoadState() catalog.LoadState { return e.loader.State() }

// Snapshot assembles the View for the current state.
func (e *Explorer) Snapshot() View {
	st := e.loader.State()
	filtered := e.Filtered()
	return View{
		Status:      st.Status,
		Message:     st.Message,
		Entries:     catalog.Window(filtered, e.state.Page, e.pageSize),
		Filtered:    len(filtered),
		TotalPages:  catalog.TotalPages(len(filtered), e.pageSize),
		Page:        e.state.Page,
		NoResults:   st.Status == catalog.StatusReady && len(filtered) == 0,
		Categories:  e.Categories(),
		Query:       e.state.Query,
		SearchInput: e.searchInput,
	}
}
