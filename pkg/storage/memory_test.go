package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/one-dragon/onedragon-agent/pkg/config"
)

type testRecord struct {
	App   string
	ID    string
	Value string
}

func (r testRecord) StoreKey() Key {
	return Key{AppName: r.App, ID: r.ID}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store := NewMemoryStore[testRecord]()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testRecord{App: "app", ID: "a", Value: "one"}))

	got, ok, err := store.Get(ctx, Key{AppName: "app", ID: "a"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "one", got.Value)

	_, ok, err = store.Get(ctx, Key{AppName: "app", ID: "missing"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreCreateDuplicate(t *testing.T) {
	store := NewMemoryStore[testRecord]()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testRecord{App: "app", ID: "a"}))
	err := store.Create(ctx, testRecord{App: "app", ID: "a"})
	assert.ErrorIs(t, err, config.ErrAlreadyExists)

	// Same id under another app is a distinct key.
	require.NoError(t, store.Create(ctx, testRecord{App: "other", ID: "a"}))
}

func TestMemoryStoreUpdate(t *testing.T) {
	store := NewMemoryStore[testRecord]()
	ctx := context.Background()

	err := store.Update(ctx, testRecord{App: "app", ID: "a", Value: "x"})
	assert.ErrorIs(t, err, config.ErrNotFound)

	require.NoError(t, store.Create(ctx, testRecord{App: "app", ID: "a", Value: "one"}))
	require.NoError(t, store.Update(ctx, testRecord{App: "app", ID: "a", Value: "two"}))

	got, ok, err := store.Get(ctx, Key{AppName: "app", ID: "a"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", got.Value)
}

func TestMemoryStoreDeleteIsIdempotent(t *testing.T) {
	store := NewMemoryStore[testRecord]()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testRecord{App: "app", ID: "a"}))
	require.NoError(t, store.Delete(ctx, Key{AppName: "app", ID: "a"}))
	require.NoError(t, store.Delete(ctx, Key{AppName: "app", ID: "a"}))

	_, ok, err := store.Get(ctx, Key{AppName: "app", ID: "a"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreList(t *testing.T) {
	store := NewMemoryStore[testRecord]()
	ctx := context.Background()

	records, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, store.Create(ctx, testRecord{App: "app", ID: "a"}))
	require.NoError(t, store.Create(ctx, testRecord{App: "app", ID: "b"}))

	records, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
