package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/daily-inspiration/internal/adapters/tui"
	"github.com/jsamuelsen/daily-inspiration/internal/domain"
)

func newFavoritesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage saved quotes",
	}

	cmd.AddCommand(newFavoritesListCmd(opts), newFavoritesRemoveCmd(opts))

	return cmd
}

func newFavoritesListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved quotes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer rt.shutdown()

			favorites := rt.view.Favorites()
			out := cmd.OutOrStdout()

			if len(favorites) == 0 {
				fmt.Fprintln(out, "No favorites yet. Use 'quote fetch --save' to add one.")
				return nil
			}

			fmt.Fprintf(out, "\nFavorites (%d)\n\n", len(favorites))
			fmt.Fprintln(out, tui.NewFavoritesTable(favorites, 0, false).View())

			return nil
		},
	}
}

func newFavoritesRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a saved quote by id",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer rt.shutdown()

			id := args[0]
			if !hasFavorite(rt.view.Favorites(), id) {
				return fmt.Errorf("no favorite with id %q", id)
			}

			if err := rt.view.RemoveFromFavorites(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", id)

			return nil
		},
	}
}

func hasFavorite(favorites []domain.Quote, id string) bool {
	return slices.ContainsFunc(favorites, func(q domain.Quote) bool { return q.ID == id })
}
