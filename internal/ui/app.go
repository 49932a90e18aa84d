package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/catalog/internal/catalog"
	"github.com/abelbrown/catalog/internal/eventlog"
	"github.com/abelbrown/catalog/internal/explorer"
)

// Key bindings
var keys = struct {
	Quit          key.Binding
	Search        key.Binding
	ClearSearch   key.Binding
	Category      key.Binding
	SortField     key.Binding
	SortDirection key.Binding
	FavoritesOnly key.Binding
	Toggle        key.Binding
	ClearFavs     key.Binding
	NextPage      key.Binding
	PrevPage      key.Binding
	Down          key.Binding
	Up            key.Binding
	Reload        key.Binding
	Debug         key.Binding
}{
	Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Search:        key.NewBinding(key.WithKeys("/")),
	ClearSearch:   key.NewBinding(key.WithKeys("esc")),
	Category:      key.NewBinding(key.WithKeys("c")),
	SortField:     key.NewBinding(key.WithKeys("s")),
	SortDirection: key.NewBinding(key.WithKeys("d")),
	FavoritesOnly: key.NewBinding(key.WithKeys("f")),
	Toggle:        key.NewBinding(key.WithKeys(" ", "enter")),
	ClearFavs:     key.NewBinding(key.WithKeys("X")),
	NextPage:      key.NewBinding(key.WithKeys("n", "right")),
	PrevPage:      key.NewBinding(key.WithKeys("p", "left")),
	Down:          key.NewBinding(key.WithKeys("j", "down")),
	Up:            key.NewBinding(key.WithKeys("k", "up")),
	Reload:        key.NewBinding(key.WithKeys("r")),
	Debug:         key.NewBinding(key.WithKeys("?")),
}

// AppConfig holds the collaborators the App drives.
type AppConfig struct {
	Explorer *explorer.Explorer
	// Context bounds every load the App starts. Defaults to Background.
	Context context.Context
	// Ring feeds the debug overlay. May be nil.
	Ring *eventlog.RingBuffer
}

// App is the root Bubble Tea model.
// All explorer calls happen inside Update, so the explorer is only ever
// touched from the program's event loop. Load tickets run inside Cmds and
// report back with CatalogLoaded.
type App struct {
	explorer *explorer.Explorer
	ctx      context.Context
	ring     *eventlog.RingBuffer

	search  textinput.Model
	spinner spinner.Model
	pager   paginator.Model

	cursor       int
	searching    bool
	debugVisible bool
	err          error
	width        int
	height       int
	ready        bool
}

// NewApp creates an App. cfg.Explorer is required.
func NewApp(cfg AppConfig) App {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ti := textinput.New()
	ti.Placeholder = "Search entries..."
	ti.Prompt = "/ "
	ti.PromptStyle = FilterBarPrompt
	ti.CharLimit = 64

	s := spinner.New()
	s.Spinner = spinner.Dot

	p := paginator.New()
	p.Type = paginator.Dots
	p.ActiveDot = StatusBarKey.Render("•")
	p.InactiveDot = StatusBarText.Render("•")

	return App{
		explorer: cfg.Explorer,
		ctx:      ctx,
		ring:     cfg.Ring,
		search:   ti,
		spinner:  s,
		pager:    p,
	}
}

// Init starts the spinner and the first load.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.startLoad())
}

// startLoad begins a ticket on the event loop and runs it inside the Cmd.
func (a App) startLoad() tea.Cmd {
	t := a.explorer.BeginLoad(a.ctx)
	return func() tea.Msg {
		return CatalogLoaded{Result: t.Run()}
	}
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.search.Width = msg.Width - 24
		a.ready = true
		return a, nil

	case CatalogLoaded:
		if a.explorer.SettleLoad(msg.Result) {
			a.clampCursor()
		}
		return a, nil

	case SearchSettled:
		a.explorer.ApplySearchTerm(msg.Term)
		a.cursor = 0
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	if a.searching {
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}
	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.searching {
		return a.handleSearchKey(msg)
	}

	// Clear any existing error on key press
	a.err = nil

	q := a.explorer.Query()
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Debug):
		a.debugVisible = !a.debugVisible

	case key.Matches(msg, keys.Search):
		a.searching = true
		return a, a.search.Focus()

	case key.Matches(msg, keys.ClearSearch):
		if a.search.Value() != "" {
			a.search.SetValue("")
			a.explorer.SetSearchInput("")
			a.cursor = 0
		}

	case key.Matches(msg, keys.Category):
		a.explorer.SetCategory(nextCategory(a.explorer.Categories(), q.SelectedCategory))
		a.cursor = 0

	case key.Matches(msg, keys.SortField):
		a.explorer.SetSortField(q.SortField.Next())
		a.cursor = 0

	case key.Matches(msg, keys.SortDirection):
		a.explorer.SetSortDirection(q.SortDirection.Toggle())
		a.cursor = 0

	case key.Matches(msg, keys.FavoritesOnly):
		a.explorer.SetFavoritesOnly(!q.FavoritesOnly)
		a.cursor = 0

	case key.Matches(msg, keys.Toggle):
		entries := a.explorer.Snapshot().Entries
		if a.cursor < len(entries) {
			a.err = a.explorer.ToggleFavorite(entries[a.cursor].ID)
			a.clampCursor()
		}

	case key.Matches(msg, keys.ClearFavs):
		a.err = a.explorer.ClearFavorites()
		a.clampCursor()

	case key.Matches(msg, keys.NextPage):
		if a.explorer.NextPage() {
			a.cursor = 0
		}

	case key.Matches(msg, keys.PrevPage):
		if a.explorer.PrevPage() {
			a.cursor = 0
		}

	case key.Matches(msg, keys.Down):
		if a.cursor < len(a.explorer.Snapshot().Entries)-1 {
			a.cursor++
		}

	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, keys.Reload):
		return a, a.startLoad()
	}

	return a, nil
}

// handleSearchKey routes keys to the search input while it has focus.
func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc", "enter":
		a.searching = false
		a.search.Blur()
		return a, nil
	}

	prev := a.search.Value()
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if v := a.search.Value(); v != prev {
		a.explorer.SetSearchInput(v)
		a.cursor = 0
	}
	return a, cmd
}

func (a *App) clampCursor() {
	n := len(a.explorer.Snapshot().Entries)
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// nextCategory cycles through cats, wrapping to the first.
func nextCategory(cats []string, current string) string {
	if len(cats) == 0 {
		return catalog.AllCategories
	}
	for i, c := range cats {
		if c == current {
			return cats[(i+1)%len(cats)]
		}
	}
	return cats[0]
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.debugVisible {
		overlay := debugOverlay(a.ring, a.width, a.height-1)
		return lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, overlay) + "\n" + debugStatusBar(a.width)
	}

	v := a.explorer.Snapshot()

	var sections []string
	sections = append(sections, Title.Render("Catalog")+QuerySummary.Render(querySummary(v.Query)))

	if a.searching || v.SearchInput != "" {
		count := FilterBarCount.Render(fmt.Sprintf("  %d matches", v.Filtered))
		sections = append(sections, FilterBar.Width(a.width).Render(a.search.View()+count))
	}

	if len(v.Entries) > 0 {
		sections = append(sections, RenderEntries(v.Entries, a.cursor, a.width, a.explorer.IsFavorite))
	} else {
		sections = append(sections, emptyState(viewState{
			loading:       v.Status == catalog.StatusLoading,
			failed:        v.Status == catalog.StatusFailed,
			noResults:     v.NoResults,
			favoritesOnly: v.Query.FavoritesOnly,
			message:       v.Message,
			spinner:       a.spinner.View(),
		}))
	}

	if a.err != nil {
		sections = append(sections, ErrorStyle.Width(a.width).Render("Could not save favorites: "+a.err.Error()))
	}

	sections = append(sections, a.statusBar(v))
	return strings.Join(sections, "\n")
}

// statusBar shows load state, key hints and, when there is more than one
// page, the page position.
func (a App) statusBar(v explorer.View) string {
	var left string
	if v.Status == catalog.StatusLoading {
		left = a.spinner.View() + " loading  "
	}
	if v.TotalPages > 1 {
		pager := a.pager
		pager.TotalPages = v.TotalPages
		pager.Page = v.Page - 1
		left += pager.View() + StatusBarText.Render(fmt.Sprintf(" page %d/%d", v.Page, v.TotalPages))
	}

	hint := func(k, desc string) string {
		return StatusBarKey.Render(k) + StatusBarText.Render(":"+desc)
	}
	hints := strings.Join([]string{
		hint("/", "search"),
		hint("c", "category"),
		hint("s", "sort"),
		hint("f", "favorites"),
		hint("space", "fav"),
		hint("n/p", "page"),
		hint("q", "quit"),
	}, " ")

	return StatusBar.Width(a.width).Render(left + "  " + hints)
}

// querySummary describes the non-default parts of q.
func querySummary(q catalog.Query) string {
	var parts []string
	if q.SelectedCategory != catalog.AllCategories {
		parts = append(parts, q.SelectedCategory)
	}
	if q.SortField != catalog.SortNone {
		arrow := "↑"
		if q.SortDirection == catalog.Descending {
			arrow = "↓"
		}
		parts = append(parts, "by "+q.SortField.String()+" "+arrow)
	}
	if q.FavoritesOnly {
		parts = append(parts, "favorites")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " · ")
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}
