package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/glossync/internal/app"
	"github.com/heartmarshall/glossync/internal/domain"
	"github.com/heartmarshall/glossync/internal/service/orchestrator"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Queues []string
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay pending queues once and print the result",
		Long: `Run one sync pass against the local store. Without --queue every queue
is replayed in the fixed order.

Examples:
  glossync sync
  glossync sync --queue term-submissions --queue term-votes --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			queues := make([]domain.QueueName, 0, len(opts.Queues))
			for _, raw := range opts.Queues {
				q, err := domain.ParseQueueName(raw)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --queue", err)
				}
				queues = append(queues, q)
			}

			return withApp(cmd, opts.RootOptions, func(ctx context.Context, a *app.App) error {
				var (
					res orchestrator.Result
					err error
				)
				if len(queues) == 0 {
					res, err = a.Trigger.Sync(ctx)
				} else {
					res, err = a.Trigger.SyncQueues(ctx, queues...)
				}
				if errors.Is(err, domain.ErrAuthMissing) {
					return WrapExitError(ExitFailure, "no credential stored; queues left untouched", err)
				}
				if err != nil {
					return WrapExitError(ExitFailure, "sync failed", err)
				}
				return printer(cmd, opts.RootOptions).Print(res)
			})
		},
	}

	cmd.Flags().StringArrayVar(&opts.Queues, "queue", nil, "replay only this queue (repeatable)")

	return cmd
}
