package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/glossync/internal/app"
	"github.com/heartmarshall/glossync/internal/config"
)

// loadConfig reads --config, falling back to CONFIG_PATH and the default
// locations.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = os.Getenv(config.PathEnv)
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	return cfg, nil
}

// withApp builds the app against the local store and runs fn. The store is
// closed afterwards.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog := app.NewLogger(cfg.Log)
	defer closeLog()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return WrapExitError(ExitFailure, "open store", err)
	}
	defer a.Close()

	return fn(ctx, a)
}

func printer(cmd *cobra.Command, opts *RootOptions) *Printer {
	return &Printer{Format: opts.Format, Writer: cmd.OutOrStdout()}
}
