package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zappabad/stocky/internal/session"
)

func newResetCommand(opts *options) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete a user's clock, feed and notification state",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(opts.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := resetUser(cmd.Context(), session.NewRepository(st), user); err != nil {
				return err
			}
			opts.log.Info("user state reset", "user_id", user)
			fmt.Fprintf(cmd.OutOrStdout(), "reset user %s\n", user)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id to reset")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
