package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedEvent struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func newTestService(t *testing.T) (Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(client), mr
}

func TestService_SetGet(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "neontix:events:detail:uuid:1", cachedEvent{ID: "1", Title: "Jazz Night"}, time.Minute))

	var got cachedEvent
	require.NoError(t, svc.Get(ctx, "neontix:events:detail:uuid:1", &got))
	assert.Equal(t, "Jazz Night", got.Title)
	assert.Equal(t, time.Minute, mr.TTL("neontix:events:detail:uuid:1"))
	assert.True(t, svc.Exists(ctx, "neontix:events:detail:uuid:1"))
}

func TestService_GetMiss(t *testing.T) {
	svc, _ := newTestService(t)
	var got cachedEvent
	assert.ErrorIs(t, svc.Get(context.Background(), "missing", &got), ErrCacheMiss)
}

func TestService_DeletePattern(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()
	for _, k := range []string{"neontix:events:list", "neontix:events:list:category:movie", "neontix:events:detail:uuid:1"} {
		require.NoError(t, svc.Set(ctx, k, 1, 0))
	}

	require.NoError(t, svc.DeletePattern(ctx, "neontix:events:list*"))

	assert.False(t, mr.Exists("neontix:events:list"))
	assert.False(t, mr.Exists("neontix:events:list:category:movie"))
	assert.True(t, mr.Exists("neontix:events:detail:uuid:1"))

	require.NoError(t, svc.Delete(ctx, "neontix:events:detail:uuid:1"))
	assert.False(t, mr.Exists("neontix:events:detail:uuid:1"))
}

func TestService_GetOrSet(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()
	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return []cachedEvent{{ID: "1", Title: "Stand-up Special"}}, nil
	}

	var first, second []cachedEvent
	require.NoError(t, svc.GetOrSet(ctx, "k", time.Minute, fetch, &first))
	require.NoError(t, svc.GetOrSet(ctx, "k", time.Minute, fetch, &second))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("k"))
}

func TestService_GetOrSetFetcherError(t *testing.T) {
	svc, mr := newTestService(t)
	boom := errors.New("db down")

	var dest []cachedEvent
	err := svc.GetOrSet(context.Background(), "k", time.Minute, func() (interface{}, error) { return nil, boom }, &dest)

	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}
