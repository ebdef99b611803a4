package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	dlrepo "github.com/heartmarshall/glossync/internal/adapter/sqlite/deadletter"
	"github.com/heartmarshall/glossync/internal/app"
	"github.com/heartmarshall/glossync/internal/domain"
)

// DeadLetterOptions holds flags for the dead-letters commands.
type DeadLetterOptions struct {
	*RootOptions
	Queue string
	Limit uint64
}

// NewDeadLettersCommand creates the dead-letters command group.
func NewDeadLettersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeadLetterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "dead-letters",
		Aliases: []string{"dl"},
		Short:   "Inspect and requeue entries that were given up on",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List dead letters, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var q domain.QueueName
			if opts.Queue != "" {
				parsed, err := domain.ParseQueueName(opts.Queue)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --queue", err)
				}
				q = parsed
			}
			return withApp(cmd, opts.RootOptions, func(ctx context.Context, a *app.App) error {
				letters, err := a.DeadLetters.List(ctx, q, opts.Limit)
				if err != nil {
					return WrapExitError(ExitFailure, "list dead letters", err)
				}
				if letters == nil {
					letters = []dlrepo.Letter{}
				}
				return printer(cmd, opts.RootOptions).Print(letters)
			})
		},
	}
	list.Flags().StringVar(&opts.Queue, "queue", "", "only this queue")
	list.Flags().Uint64Var(&opts.Limit, "limit", 100, "maximum number of letters")

	requeue := &cobra.Command{
		Use:   "requeue <id>",
		Short: "Append a dead letter back to its queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return NewExitError(ExitCommandError, "dead letter id must be a positive integer")
			}
			return withApp(cmd, opts.RootOptions, func(ctx context.Context, a *app.App) error {
				entry, err := a.DeadLetters.Requeue(ctx, id)
				if err != nil {
					return WrapExitError(ExitFailure, "requeue dead letter", err)
				}
				return printer(cmd, opts.RootOptions).Print(entry)
			})
		},
	}

	cmd.AddCommand(list, requeue)
	return cmd
}
