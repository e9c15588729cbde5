// Package session persists per-user clock and feed state.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zappabad/stocky/internal/news"
	"github.com/zappabad/stocky/internal/store"
)

// ErrCorrupt is returned when a persisted value cannot be parsed.
var ErrCorrupt = errors.New("session: corrupt persisted value")

// UserID identifies the player a session belongs to.
type UserID string

// Key families owned by a session.
const (
	familyPlayedMs = "played_ms"
	familyActive   = "active_news"
	familyPool     = "news_pool"
	familyNotified = "notified_ids"
)

// Key returns the store key of a family for a user, e.g. stocky_42_played_ms.
func Key(user UserID, family string) string {
	return "stocky_" + string(user) + "_" + family
}

// PlayedMsKey returns the key holding the user's total play time.
func PlayedMsKey(user UserID) string { return Key(user, familyPlayedMs) }

// ActiveKey returns the key holding the user's active feed.
func ActiveKey(user UserID) string { return Key(user, familyActive) }

// PoolKey returns the key holding the user's unreleased backlog.
func PoolKey(user UserID) string { return Key(user, familyPool) }

// NotifiedKey returns the key holding the order ids already notified.
func NotifiedKey(user UserID) string { return Key(user, familyNotified) }

// Repository is the typed view of a store for session state.
// Load methods return store.ErrNotFound when nothing is persisted and
// ErrCorrupt when the value does not parse.
type Repository struct {
	store store.Store
}

// NewRepository creates a Repository over s.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

func (r *Repository) LoadPlayedMs(ctx context.Context, user UserID) (int64, error) {
	raw, err := r.store.Get(ctx, PlayedMsKey(user))
	if err != nil {
		return 0, err
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrCorrupt, PlayedMsKey(user), raw)
	}
	return ms, nil
}

func (r *Repository) SavePlayedMs(ctx context.Context, user UserID, ms int64) error {
	return r.store.Set(ctx, PlayedMsKey(user), strconv.FormatInt(ms, 10))
}

func (r *Repository) LoadActive(ctx context.Context, user UserID) ([]news.Record, error) {
	return loadJSON[[]news.Record](ctx, r.store, ActiveKey(user))
}

func (r *Repository) SaveActive(ctx context.Context, user UserID, active []news.Record) error {
	return saveJSON(ctx, r.store, ActiveKey(user), nonNil(active))
}

func (r *Repository) LoadPool(ctx context.Context, user UserID) ([]news.Record, error) {
	return loadJSON[[]news.Record](ctx, r.store, PoolKey(user))
}

func (r *Repository) SavePool(ctx context.Context, user UserID, pool []news.Record) error {
	return saveJSON(ctx, r.store, PoolKey(user), nonNil(pool))
}

func (r *Repository) LoadNotified(ctx context.Context, user UserID) ([]int64, error) {
	return loadJSON[[]int64](ctx, r.store, NotifiedKey(user))
}

func (r *Repository) SaveNotified(ctx context.Context, user UserID, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	return saveJSON(ctx, r.store, NotifiedKey(user), ids)
}

// Reset removes every key owned by the user.
func (r *Repository) Reset(ctx context.Context, user UserID) error {
	return r.store.Delete(ctx, PlayedMsKey(user), ActiveKey(user), PoolKey(user), NotifiedKey(user))
}

func loadJSON[T any](ctx context.Context, s store.Store, key string) (T, error) {
	var out T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return out, nil
}

func saveJSON(ctx context.Context, s store.Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}

func nonNil(rs []news.Record) []news.Record {
	if rs == nil {
		return []news.Record{}
	}
	return rs
}
