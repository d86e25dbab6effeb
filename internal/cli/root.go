// Package cli implements the hotelctl commands.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"hotel-curator/internal/cli/output"
	"hotel-curator/internal/di"
	"hotel-curator/internal/infra/config"
	"hotel-curator/internal/infra/logger"
)

// appFactory builds the service graph; tests replace it with stubs.
type appFactory func(ctx context.Context, cfg *config.Config, log *slog.Logger) (*di.ApplicationComponents, error)

type rootOptions struct {
	verbose   bool
	colorMode string
	quiet     bool
}

// NewRootCommand builds hotelctl with all subcommands.
func NewRootCommand(factory appFactory) *cobra.Command {
	if factory == nil {
		factory = di.NewApplicationComponents
	}
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "hotelctl",
		Short: "Curated hotel search from the terminal",
		Long: `hotelctl runs the hotel curation pipeline in-process and prints progress
as it happens.

Example usage:
  hotelctl regions sochi
  hotelctl search --region 2395 --checkin 2025-07-01 --checkout 2025-07-04 \
    --adults 2 --prefs "quiet, sea view, pool"
  hotelctl runs --limit 5`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging to stderr")
	root.PersistentFlags().StringVar(&opts.colorMode, "color", "auto", "color output: auto, always, never")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "only print results")

	env := &environment{opts: opts, factory: factory}
	root.AddCommand(newSearchCommand(env), newRegionsCommand(env), newRunsCommand(env))
	return root
}

// Execute runs hotelctl against the real service graph.
func Execute(ctx context.Context) error {
	return NewRootCommand(nil).ExecuteContext(ctx)
}

// environment is shared by subcommands and resolved lazily so --help needs no config.
type environment struct {
	opts    *rootOptions
	factory appFactory
}

func (e *environment) printer(cmd *cobra.Command) (*output.Printer, error) {
	useColors, err := output.ResolveColors(e.opts.colorMode)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), useColors, e.opts.quiet), nil
}

func (e *environment) app(cmd *cobra.Command) (*di.ApplicationComponents, error) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if e.opts.verbose {
		log = slog.New(logger.NewSpanHandler(
			slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}),
		))
	}
	return e.factory(cmd.Context(), config.Load(), log)
}
