package main

import (
	"github.com/spf13/cobra"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	backend    string
	dsn        string
	baseURL    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:          "catalog",
		Short:        "Browse, search and favorite catalog entries",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, g)
		},
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default ~/.catalog/config.json)")
	root.PersistentFlags().StringVar(&g.backend, "backend", "", "favorites storage: sqlite, file, memory, postgres")
	root.PersistentFlags().StringVar(&g.dsn, "dsn", "", "storage path or postgres connection string")
	root.PersistentFlags().StringVar(&g.baseURL, "base-url", "", "feed base URL (http(s):// or file://)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "debug, info, warn, error")

	root.AddCommand(browseCmd(g), queryCmd(g), favoritesCmd(g), eventsCmd())
	return root
}
