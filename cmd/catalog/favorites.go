package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func favoritesCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Inspect or change the persisted favorites",
	}
	cmd.AddCommand(favoritesListCmd(g), favoritesToggleCmd(g), favoritesClearCmd(g))
	return cmd
}

func favoritesListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print favorite ids in ascending order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStack(g)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, id := range st.favorites.IDs() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func favoritesToggleCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>...",
		Short: "Flip membership of each id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, len(args))
			for _, a := range args {
				id, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("invalid id %q: %w", a, err)
				}
				ids = append(ids, id)
			}

			st, err := openStack(g)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, id := range ids {
				if err := st.favorites.Toggle(id); err != nil {
					return err
				}
				state := "removed"
				if st.favorites.IsFavorite(id) {
					state = "added"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", id, state)
			}
			return nil
		},
	}
}

func favoritesClearCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every favorite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStack(g)
			if err != nil {
				return err
			}
			defer st.Close()

			n := st.favorites.Len()
			if err := st.favorites.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d favorites\n", n)
			return nil
		},
	}
}
