package artifact

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return s, NewRedisStore(client, "tictactoe:policy")
}

func TestRedisStoreRoundTrip(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	p, err := Extract(sampleTable())
	require.NoError(t, err)
	p = p.WithRun("run-2", 1000)
	require.NoError(t, store.Save(ctx, p))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, p.Equal(loaded))
	assert.Equal(t, "run-2", loaded.RunID())
	assert.Equal(t, 1000, loaded.Episodes())
}

func TestRedisStoreSaveReplaces(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	p, err := Extract(sampleTable())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, p))
	require.NoError(t, store.Save(ctx, New(nil)))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, loaded.Len())
}

func TestRedisStoreMissing(t *testing.T) {
	_, store := newTestStore(t)
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreCorrupt(t *testing.T) {
	s, store := newTestStore(t)
	ctx := context.Background()

	s.HSet(store.Key+":meta", "version", "1", "episodes", "10", "run_id", "x")
	s.HSet(store.Key, "bad", "1")
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)

	s.Del(store.Key)
	s.HSet(store.Key, "X        ", "nope")
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)

	s.Del(store.Key)
	s.HSet(store.Key+":meta", "version", "7")
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
}
