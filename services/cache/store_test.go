package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStore(db, opts)
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGetMissThenHit(t *testing.T) {
	store := newTestStore(t, Options{InstanceName: "test:"})

	_, ok := Get[payload](store, "movie_details:1")
	require.False(t, ok)

	Set(store, "movie_details:1", payload{Name: "a", Count: 2}, time.Minute)

	got, ok := Get[payload](store, "movie_details:1")
	require.True(t, ok)
	require.Equal(t, payload{Name: "a", Count: 2}, got)
}

func TestGetOrSetInvokesFactoryOnceWhileFresh(t *testing.T) {
	store := newTestStore(t, Options{InstanceName: "test:"})

	calls := 0
	factory := func(ctx context.Context) (payload, error) {
		calls++
		return payload{Name: "fresh"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrSet(context.Background(), store, "k", time.Minute, factory)
		require.NoError(t, err)
		require.Equal(t, "fresh", got.Name)
	}
	require.Equal(t, 1, calls)
}

func TestGetOrSetDoesNotCacheFactoryError(t *testing.T) {
	store := newTestStore(t, Options{InstanceName: "test:"})

	boom := errors.New("upstream down")
	calls := 0
	factory := func(ctx context.Context) (payload, error) {
		calls++
		return payload{}, boom
	}

	_, err := GetOrSet(context.Background(), store, "k", time.Minute, factory)
	require.ErrorIs(t, err, boom)
	_, err = GetOrSet(context.Background(), store, "k", time.Minute, factory)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, calls)
}

func TestRemoveByPrefix(t *testing.T) {
	store := newTestStore(t, Options{InstanceName: "test:"})

	Set(store, "movie:42:credits", payload{Name: "credits"}, time.Minute)
	Set(store, "movie:42:videos", payload{Name: "videos"}, time.Minute)
	Set(store, "movie:421:credits", payload{Name: "other"}, time.Minute)

	store.RemoveByPrefix("movie:42:")

	_, ok := Get[payload](store, "movie:42:credits")
	require.False(t, ok)
	_, ok = Get[payload](store, "movie:42:videos")
	require.False(t, ok)

	got, ok := Get[payload](store, "movie:421:credits")
	require.True(t, ok)
	require.Equal(t, "other", got.Name)
}

func TestInstanceNameIsolatesStores(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	a := NewStore(db, Options{InstanceName: "a:"})
	b := NewStore(db, Options{InstanceName: "b:"})

	Set(a, "k", payload{Name: "from-a"}, time.Minute)

	_, ok := Get[payload](b, "k")
	require.False(t, ok)

	got, ok := Get[payload](a, "k")
	require.True(t, ok)
	require.Equal(t, "from-a", got.Name)
}

func TestDecodeFailureIsAMiss(t *testing.T) {
	store := newTestStore(t, Options{InstanceName: "test:"})

	Set(store, "k", "just a string", time.Minute)

	_, ok := Get[payload](store, "k")
	require.False(t, ok)
}

func TestExpiredEntryIsAMiss(t *testing.T) {
	store := newTestStore(t, Options{InstanceName: "test:"})

	Set(store, "k", payload{Name: "short"}, 50*time.Millisecond)
	time.Sleep(120 * time.Millisecond)

	_, ok := Get[payload](store, "k")
	require.False(t, ok)
}
