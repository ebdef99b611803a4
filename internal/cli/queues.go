package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/glossync/internal/app"
	"github.com/heartmarshall/glossync/internal/domain"
)

// NewQueuesCommand creates the queues command.
func NewQueuesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "queues",
		Short: "Print the number of pending entries per queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				counts, err := a.Queue.Counts(ctx)
				if err != nil {
					return WrapExitError(ExitFailure, "count queues", err)
				}
				out := make(map[domain.QueueName]int, len(domain.ReplayOrder))
				for _, q := range domain.ReplayOrder {
					out[q] = counts[q]
				}
				return printer(cmd, opts).Print(out)
			})
		},
	}
}
