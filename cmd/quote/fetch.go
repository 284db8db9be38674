package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFetchCmd(opts *options) *cobra.Command {
	var save, share bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print a random quote",
		Long:  "Fetch one quote through the proxy, retrying on failure, and print it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer rt.shutdown()

			quote := rt.view.FetchNewQuote(cmd.Context(), rt.retries(opts))
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, quote.Text())

			if share {
				fmt.Fprintln(out, rt.view.ShareURL())
			}

			if !save {
				return nil
			}

			if !rt.view.CanSave() {
				fmt.Fprintln(out, "Already in favorites.")
				return nil
			}

			if err := rt.view.SaveQuote(cmd.Context()); err != nil {
				return err
			}

			favorites := rt.view.Favorites()
			fmt.Fprintf(out, "Saved as %s.\n", favorites[len(favorites)-1].ID)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&save, "save", "s", false, "add the quote to favorites")
	cmd.Flags().BoolVar(&share, "share", false, "print a share link for the quote")

	return cmd
}
