package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/scripter/pkg/adapters/redis"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunRunStoreContract(t, store)
}

func TestRedisStore_ListMostRecentFirst(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	first := domain.NewRunRecord("first", "s")
	first.StartedAt = time.Now().Add(-time.Hour)
	second := domain.NewRunRecord("second", "s")

	require.NoError(t, store.Save(ctx, second))
	require.NoError(t, store.Save(ctx, first))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, ids)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Minute))
	ctx := context.Background()

	old := domain.NewRunRecord("old", "s")
	old.StartedAt = time.Now().Add(-2 * time.Minute)
	fresh := domain.NewRunRecord("fresh", "s")
	require.NoError(t, store.Save(ctx, old))
	require.NoError(t, store.Save(ctx, fresh))

	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx, "fresh")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)

	// The index is pruned by start time, independently of key expiry.
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewRunRecord("my-run", "s")))

	assert.True(t, mr.Exists("custom:app:my-run"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, "my-run")
	assert.NoError(t, store.Ping(ctx))
}

func TestRedisStore_LoadCorrupted(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	require.NoError(t, mr.Set(redis.DefaultPrefix+"bad", "{not json"))

	_, err := store.Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRunNotFound)
}
