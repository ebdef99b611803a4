package cli

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/glossync/internal/app"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printer(cmd, opts).Print(app.BuildInfo())
		},
	}
}
