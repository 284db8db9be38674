package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/daily-inspiration/internal/app"
)

func newShareCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "share [id]",
		Short: "Print a share link",
		Long:  "Print a share link for the favorite with the given id, or for a freshly fetched quote.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer rt.shutdown()

			out := cmd.OutOrStdout()

			if len(args) == 0 {
				quote := rt.view.FetchNewQuote(cmd.Context(), rt.retries(opts))
				if quote.ID == app.FallbackID {
					return errors.New(quote.Content)
				}

				fmt.Fprintln(out, rt.view.ShareURL())

				return nil
			}

			for _, q := range rt.view.Favorites() {
				if q.ID == args[0] {
					fmt.Fprintln(out, app.ShareURLFor(q))
					return nil
				}
			}

			return fmt.Errorf("no favorite with id %q", args[0])
		},
	}
}
