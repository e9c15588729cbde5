package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zappabad/stocky/internal/clock"
	"github.com/zappabad/stocky/internal/game"
	"github.com/zappabad/stocky/internal/news"
	"github.com/zappabad/stocky/internal/notify"
	"github.com/zappabad/stocky/internal/session"
)

type loginRequest struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
}

type clockResponse struct {
	UserID        string `json:"user_id"`
	Nickname      string `json:"nickname"`
	TotalPlayedMs int64  `json:"total_played_ms"`
	VirtualDate   string `json:"virtual_date"`
	DisplayDate   string `json:"display_date"`
}

type newsResponse struct {
	VirtualDate string        `json:"virtual_date"`
	Items       []news.Record `json:"items"`
	PoolSize    int           `json:"pool_size"`
}

type notificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// currentSession answers 409 when nobody is logged in.
func currentSession(c echo.Context, g *game.Game) (*game.Session, error) {
	sess, err := g.Current()
	if errors.Is(err, game.ErrNoSession) {
		return nil, errorJSON(c, http.StatusConflict, "no live session")
	}
	return sess, err
}

func handleLogin(g *game.Game) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := c.Bind(&req); err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid request body")
		}
		if req.UserID == "" {
			return errorJSON(c, http.StatusBadRequest, "user_id is required")
		}

		sess, err := g.Login(c.Request().Context(), session.UserID(req.UserID), req.Nickname)
		if errors.Is(err, game.ErrClosed) {
			return errorJSON(c, http.StatusServiceUnavailable, "shutting down")
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, clockOf(sess))
	}
}

func handleLogout(g *game.Game) echo.HandlerFunc {
	return func(c echo.Context) error {
		g.Logout()
		return c.NoContent(http.StatusNoContent)
	}
}

func handleClock(g *game.Game) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := currentSession(c, g)
		if sess == nil {
			return err
		}
		return c.JSON(http.StatusOK, clockOf(sess))
	}
}

func clockOf(sess *game.Session) clockResponse {
	snap := sess.Scheduler.Snapshot()
	return clockResponse{
		UserID:        string(sess.UserID),
		Nickname:      sess.Nickname,
		TotalPlayedMs: snap.TotalPlayedMs,
		VirtualDate:   snap.VirtualDate,
		DisplayDate:   clock.DisplayDate(snap.VirtualDate),
	}
}

func handleNews(g *game.Game) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := currentSession(c, g)
		if sess == nil {
			return err
		}

		limit := g.FeedCapacity()
		if raw := c.QueryParam("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				return errorJSON(c, http.StatusBadRequest, "limit must be a positive integer")
			}
			limit = n
		}

		snap := sess.Scheduler.Snapshot()
		items := sess.Scheduler.Feed(limit)
		if items == nil {
			items = []news.Record{}
		}
		return c.JSON(http.StatusOK, newsResponse{
			VirtualDate: snap.VirtualDate,
			Items:       items,
			PoolSize:    snap.PoolSize,
		})
	}
}

// handleNewsDetail only serves records already released to the feed.
func handleNewsDetail(g *game.Game, details DetailSource, log *slog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := currentSession(c, g)
		if sess == nil {
			return err
		}
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid news id")
		}

		var found *news.Record
		for _, r := range sess.Scheduler.Snapshot().Active {
			if r.ID == news.RecordID(id) {
				r := r
				found = &r
				break
			}
		}
		if found == nil {
			return errorJSON(c, http.StatusNotFound, "news not released")
		}
		if found.Content != "" || details == nil {
			return c.JSON(http.StatusOK, found)
		}

		full, err := details.FetchNewsDetail(c.Request().Context(), found.ID)
		if err != nil {
			log.Warn("fetching news detail", "news_id", id, "error", err)
			return c.JSON(http.StatusOK, found)
		}
		full.DisplayDate = found.DisplayDate
		return c.JSON(http.StatusOK, full)
	}
}

func handleNotifications(g *game.Game) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := currentSession(c, g)
		if sess == nil {
			return err
		}
		resp := notificationsResponse{Notifications: []notify.Notification{}}
		if sess.Watcher != nil {
			resp.Notifications = sess.Watcher.Notifications()
			resp.Unread = sess.Watcher.Unread()
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func handleMarkRead(g *game.Game) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := currentSession(c, g)
		if sess == nil {
			return err
		}
		if sess.Watcher != nil {
			sess.Watcher.MarkAllRead()
		}
		return c.NoContent(http.StatusNoContent)
	}
}
