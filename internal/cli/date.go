package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zappabad/stocky/internal/clock"
)

func newDateCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "date <played-ms>",
		Short:             "Print the in-game date for a total play time in milliseconds",
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid play time %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), clock.Label(ms))
			return nil
		},
	}
}
