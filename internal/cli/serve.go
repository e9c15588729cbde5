package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zappabad/stocky/internal/hub"
	"github.com/zappabad/stocky/internal/server"
	"github.com/zappabad/stocky/internal/session"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	var (
		addr     string
		user     string
		nickname string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session over HTTP and websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = opts.cfg.Server.Addr
			}
			return runServe(cmd.Context(), opts, addr, user, nickname)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	cmd.Flags().StringVar(&user, "user", "", "start a session for this user right away")
	cmd.Flags().StringVar(&nickname, "nickname", "", "nickname for --user")
	return cmd
}

func runServe(ctx context.Context, opts *options, addr, user, nickname string) error {
	log := opts.log

	a, err := newApp(opts.cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed, unsubscribe := a.game.Bus().Subscribe(256)
	defer unsubscribe()

	h := hub.NewHub(server.Snapshot(a.game), log)
	srv := server.New(a.game, h, a.details, log)

	if user != "" {
		if _, err := a.game.Login(ctx, session.UserID(user), nickname); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h.Run(gctx, feed)
		return nil
	})

	g.Go(func() error {
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
