package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zappabad/stocky/internal/logging"
	"github.com/zappabad/stocky/internal/session"
	"github.com/zappabad/stocky/tui"
)

func newPlayCommand(opts *options) *cobra.Command {
	var (
		user     string
		nickname string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			// the TUI owns the terminal, so logs go to a file
			logPath, err := xdg.StateFile(filepath.Join("stocky", "play.log"))
			if err != nil {
				return fmt.Errorf("resolving log path: %w", err)
			}
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("opening log file: %w", err)
			}
			defer logFile.Close()

			log, err := logging.New(logFile, opts.cfg.Log.Level, opts.cfg.Log.Format)
			if err != nil {
				return err
			}

			a, err := newApp(opts.cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			evs, unsubscribe := a.game.Bus().Subscribe(256)
			defer unsubscribe()

			sess, err := a.game.Login(cmd.Context(), session.UserID(user), nickname)
			if err != nil {
				return err
			}

			var inbox tui.Inbox
			if sess.Watcher != nil {
				inbox = sess.Watcher
			}
			model := tui.NewModel(nickname, sess.Scheduler, inbox, evs)

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running TUI: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id")
	cmd.Flags().StringVar(&nickname, "nickname", "", "nickname shown in the header")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
