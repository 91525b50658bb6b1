// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeUnderTest exercises the Store contract against any
// implementation.
func storeUnderTest(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	sess, err := store.MergeFacts(ctx, "s1", map[string]string{
		"court_level": "magistrate court",
	})
	require.NoError(t, err)
	assert.Equal(t, "magistrate court", sess.Facts["court_level"])

	// Merge accumulates and overwrites key by key.
	sess, err = store.MergeFacts(ctx, "s1", map[string]string{
		"claim_amount": "45000",
		"court_level":  "district court",
	})
	require.NoError(t, err)
	assert.Equal(t, "district court", sess.Facts["court_level"])
	assert.Equal(t, "45000", sess.Facts["claim_amount"])

	require.NoError(t, store.AppendTurn(ctx, "s1", Turn{
		Role: "user", Content: "How much will this cost?", At: time.Now(),
	}))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, got.Turns, 1)
	assert.Len(t, got.Facts, 2)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "s1")

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error.
	assert.NoError(t, store.Delete(ctx, "s1"))
}

func TestMemoryStoreContract(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	storeUnderTest(t, store)
}

func TestBadgerStoreContract(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir(), time.Hour, nil)
	require.NoError(t, err)
	defer store.Close()
	storeUnderTest(t, store)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	current := time.Now()
	store.now = func() time.Time { return current }

	ctx := context.Background()
	_, err := store.MergeFacts(ctx, "s1", map[string]string{"k": "v"})
	require.NoError(t, err)

	_, err = store.Get(ctx, "s1")
	assert.NoError(t, err)

	current = current.Add(2 * time.Minute)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Sweep())
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	_, err := store.MergeFacts(ctx, "s1", map[string]string{"k": "v"})
	require.NoError(t, err)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	got.Facts["k"] = "mutated"

	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "v", again.Facts["k"], "caller mutation must not leak into the store")
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewBadgerStore(dir, time.Hour, nil)
	require.NoError(t, err)
	_, err = store.MergeFacts(ctx, "s1", map[string]string{"court_level": "high court"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewBadgerStore(dir, time.Hour, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "high court", got.Facts["court_level"])
}
