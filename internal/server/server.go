// Package server exposes the live session over HTTP and websocket.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zappabad/stocky/internal/events"
	"github.com/zappabad/stocky/internal/game"
	"github.com/zappabad/stocky/internal/hub"
	"github.com/zappabad/stocky/internal/news"
)

// DetailSource looks up the full body of a record.
type DetailSource interface {
	FetchNewsDetail(ctx context.Context, id news.RecordID) (news.Record, error)
}

// Server wires the game to echo routes.
type Server struct {
	echo    *echo.Echo
	game    *game.Game
	hub     *hub.Hub
	details DetailSource
	log     *slog.Logger
}

// New builds the server and registers its routes. h and details may be nil.
func New(g *game.Game, h *hub.Hub, details DetailSource, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/healthz" || p == "/metrics"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				log.Debug("request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				log.Warn("request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	s := &Server{echo: e, game: g, hub: h, details: details, log: log}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if s.hub != nil {
		s.echo.GET("/ws", echo.WrapHandler(http.HandlerFunc(s.hub.ServeWS)))
	}

	api := s.echo.Group("/api")
	api.POST("/session", handleLogin(s.game))
	api.DELETE("/session", handleLogout(s.game))
	api.GET("/clock", handleClock(s.game))
	api.GET("/news", handleNews(s.game))
	api.GET("/news/:id", handleNewsDetail(s.game, s.details, s.log))
	api.GET("/notifications", handleNotifications(s.game))
	api.POST("/notifications/read", handleMarkRead(s.game))
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.log.Info("http server listening", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Snapshot returns the hub's on-connect state: the live session's clock and
// feed, if a session is live.
func Snapshot(g *game.Game) hub.SnapshotFunc {
	return func() (events.Event, bool) {
		sess, err := g.Current()
		if err != nil {
			return events.Event{}, false
		}
		snap := sess.Scheduler.Snapshot()
		return events.New(events.TypeSnapshot, string(sess.UserID), snap.VirtualDate, snap), true
	}
}
