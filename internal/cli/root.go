// Package cli contains the stocky commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zappabad/stocky/internal/config"
	"github.com/zappabad/stocky/internal/logging"
)

var version = "dev"

// SetVersion sets the version string printed by `stocky version`.
func SetVersion(v string) {
	version = v
}

// options is the state shared by every command.
type options struct {
	cfgFile string
	verbose bool

	cfg *config.Config
	log *slog.Logger
}

// NewRootCommand builds the stocky command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "stocky",
		Short: "Virtual market clock and news feed for the stock game",
		Long: `stocky runs a player's in-game clock and drip-feeds market news.

Example usage:
  stocky play --user 7 --nickname 개미   # play in the terminal
  stocky serve                          # HTTP + websocket API
  stocky date 180000                    # show the in-game date for a play time`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initConfig(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./stocky.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newServeCommand(opts),
		newPlayCommand(opts),
		newDateCommand(),
		newResetCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (o *options) initConfig(w io.Writer) error {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	o.cfg = cfg

	log, err := logging.New(w, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	o.log = log
	slog.SetDefault(log)

	log.Debug("configuration loaded",
		"store_backend", cfg.Store.Backend,
		"news_source", cfg.News.Source,
		"backend_url", cfg.Backend.BaseURL,
	)
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// no config needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stocky %s\n", version)
		},
	}
}
