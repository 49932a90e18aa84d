package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/catalog/internal/explorer"
	"github.com/abelbrown/catalog/internal/logging"
	"github.com/abelbrown/catalog/internal/ui"
)

func browseCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive browser (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, g)
		},
	}
}

func runBrowse(cmd *cobra.Command, g *globalFlags) error {
	st, err := openStack(g)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()

	// The stabilizer fires on a timer goroutine; Send hands the term to Update.
	var program *tea.Program
	ex := st.newExplorer(st.cfg.FetchDelay(),
		explorer.WithSearchDebounce(st.cfg.Debounce(), func(term string) {
			program.Send(ui.SearchSettled{Term: term})
		}),
	)
	defer ex.Close()

	app := ui.NewApp(ui.AppConfig{
		Explorer: ex,
		Context:  ctx,
		Ring:     st.ring,
	})
	program = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	// Run UI (blocks until quit)
	if _, err := program.Run(); err != nil {
		logging.Error("Error running program", "err", err)
		return err
	}
	return nil
}
