package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/glossync/internal/app"
)

// NewPruneCommand creates the prune command.
func NewPruneCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete identifier mappings past retention and expired cached responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				res, err := a.Prune(ctx)
				if err != nil {
					return WrapExitError(ExitFailure, "prune", err)
				}
				return printer(cmd, opts).Print(res)
			})
		},
	}
}
