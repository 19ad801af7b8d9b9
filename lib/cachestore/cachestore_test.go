package cachestore

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKey(t *testing.T) {
	require.Equal(t, "bulk/seace_v3/2024-04", Key("bulk", "seace_v3", "2024-04"))
	require.Equal(t, "ficha/AS-SM-35-2024-ELSE-1", Key("ficha", "AS-SM-35-2024-ELSE-1"))
	require.Equal(t, "record/ocds-dgv273_seacev3_1", Key("record", "ocds-dgv273/seacev3 1"))
}

func TestPutGetImmutable(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	key := Key("bulk", "seace_v3", "2024-04")
	payload := []byte(`{"records": []}`)

	require.NoError(t, store.Put(ctx, key, payload, Immutable))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, payload, got.Payload)
	require.False(t, got.CapturedAt.IsZero())
}

func TestMiss(t *testing.T) {
	store := setupStore(t)

	_, err := store.Get(context.Background(), Key("record", "nope"))
	require.ErrorIs(t, err, ErrMiss)
}

func TestExpiry(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	key := Key("record", "ocds-dgv273-seacev3-2024-2407-110")
	require.NoError(t, store.Put(ctx, key, []byte("payload"), time.Second))

	_, err := store.Get(ctx, key)
	require.NoError(t, err)

	// backdate the entry past its TTL by rewriting it expired
	require.NoError(t, store.Put(ctx, key, []byte("payload"), -time.Second))
	_, err = store.Get(ctx, key)
	require.ErrorIs(t, err, ErrMiss)

	// expired entries are dropped, the next get is a plain miss
	_, err = store.Get(ctx, key)
	require.ErrorIs(t, err, ErrMiss)
}

func TestCorruptEntryIsMiss(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	key := Key("bulk", "seace_v3", "2023-12")
	tx := store.db.NewTransaction(true)
	require.NoError(t, tx.Set([]byte(key), []byte("not a gob payload")))
	require.NoError(t, tx.Commit())

	_, err := store.Get(ctx, key)
	require.ErrorIs(t, err, ErrMiss)

	// the corrupt entry must have been dropped for real
	tx = store.db.NewTransaction(false)
	defer tx.Discard()
	_, err = tx.Get([]byte(key))
	require.ErrorIs(t, err, badger.ErrKeyNotFound)
}
