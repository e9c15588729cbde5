package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func newSQLiteStore(t *testing.T) *SQLite {
	t.Helper()

	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "stocky.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func backends(t *testing.T) map[string]Store {
	rs, _ := newMiniredisStore(t)
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": newSQLiteStore(t),
		"redis":  rs,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "stocky_1_played_ms", "1000"))
			v, err := s.Get(ctx, "stocky_1_played_ms")
			require.NoError(t, err)
			assert.Equal(t, "1000", v)

			require.NoError(t, s.Set(ctx, "stocky_1_played_ms", "2000"))
			v, err = s.Get(ctx, "stocky_1_played_ms")
			require.NoError(t, err)
			assert.Equal(t, "2000", v)

			require.NoError(t, s.Set(ctx, "stocky_1_news_pool", "[]"))
			require.NoError(t, s.Delete(ctx, "stocky_1_played_ms", "stocky_1_news_pool", "never_set"))

			_, err = s.Get(ctx, "stocky_1_played_ms")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Get(ctx, "stocky_1_news_pool")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.NoError(t, s.Delete(ctx))
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stocky.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestRedisWritesPlainStrings(t *testing.T) {
	s, mr := newMiniredisStore(t)

	require.NoError(t, s.Set(context.Background(), "stocky_7_played_ms", "30000"))

	got, err := mr.Get("stocky_7_played_ms")
	require.NoError(t, err)
	assert.Equal(t, "30000", got)
	assert.Zero(t, mr.TTL("stocky_7_played_ms"))
}

func TestOpen(t *testing.T) {
	s, err := Open(Options{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(Options{Backend: BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	s.Close()

	_, err = Open(Options{Backend: "etcd"})
	assert.Error(t, err)

	_, err = Open(Options{Backend: BackendRedis, RedisURL: "not a url"})
	assert.Error(t, err)
}
