package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/abelbrown/catalog/internal/catalog"
	"github.com/abelbrown/catalog/internal/explorer"
	"github.com/abelbrown/catalog/internal/logging"
)

type queryFlags struct {
	search    string
	category  string
	sort      string
	direction string
	favorites bool
	page      int
	delay     time.Duration
	asJSON    bool
}

func queryCmd(g *globalFlags) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Load the feed, run one query and print a page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStack(g)
			if err != nil {
				return err
			}
			defer st.Close()

			ex := st.newExplorer(f.delay)
			defer ex.Close()

			if err := ex.Load(cmd.Context()); err != nil {
				logging.Warn("Query aborted, catalog did not load", "err", err)
				return errors.New(catalog.LoadFailedMessage)
			}
			if err := applyQuery(ex, f); err != nil {
				return err
			}

			v := ex.Snapshot()
			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), v)
			}
			writeTable(cmd.OutOrStdout(), v, ex.IsFavorite)
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.search, "search", "s", "", "case-insensitive name substring")
	cmd.Flags().StringVarP(&f.category, "category", "c", catalog.AllCategories, "exact category, or "+catalog.AllCategories)
	cmd.Flags().StringVar(&f.sort, "sort", "none", "none, price or rating")
	cmd.Flags().StringVar(&f.direction, "dir", "asc", "asc or desc")
	cmd.Flags().BoolVarP(&f.favorites, "favorites", "f", false, "only favorites")
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "page number")
	cmd.Flags().DurationVar(&f.delay, "delay", 0, "artificial delay before fetching")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the page as JSON")
	return cmd
}

// applyQuery feeds the flags through the explorer setters, page last.
func applyQuery(ex *explorer.Explorer, f *queryFlags) error {
	field, err := catalog.ParseSortField(f.sort)
	if err != nil {
		return err
	}
	dir, err := catalog.ParseSortDirection(f.direction)
	if err != nil {
		return err
	}

	ex.SetSearchInput(f.search)
	ex.SetCategory(f.category)
	ex.SetSortField(field)
	ex.SetSortDirection(dir)
	ex.SetFavoritesOnly(f.favorites)

	if f.page != 1 && !ex.SetPage(f.page) {
		total := ex.TotalPages()
		if total == 0 {
			return errors.New("no entries match, there are no pages")
		}
		return fmt.Errorf("page %d out of range (1-%d)", f.page, total)
	}
	return nil
}

// writeTable prints the visible page and a footer with the page position.
func writeTable(w io.Writer, v explorer.View, isFavorite func(int) bool) {
	if v.NoResults {
		fmt.Fprintln(w, "No entries match your filters.")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("", "ID", "NAME", "CATEGORY", "PRICE", "RATING")
	for _, e := range v.Entries {
		mark := ""
		if isFavorite(e.ID) {
			mark = "★"
		}
		t.Row(mark, strconv.Itoa(e.ID), e.Name, e.Category, catalog.FormatPrice(e.Price), strconv.FormatFloat(e.Rating, 'f', 1, 64))
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "page %d of %d (%d matching)\n", v.Page, v.TotalPages, v.Filtered)
}

type jsonPage struct {
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Matching   int             `json:"matching"`
	Entries    []catalog.Entry `json:"entries"`
}

func writeJSON(w io.Writer, v explorer.View) error {
	entries := v.Entries
	if entries == nil {
		entries = []catalog.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonPage{
		Page:       v.Page,
		TotalPages: v.TotalPages,
		Matching:   v.Filtered,
		Entries:    entries,
	})
}
