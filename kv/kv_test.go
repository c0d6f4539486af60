// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	store := NewMem()
	defer store.Close()

	_, err := store.Get([]byte("k1"))
	assert.True(t, store.IsNotFound(err))

	has, err := store.Has([]byte("k1"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.Put([]byte("k1"), []byte("v1")))

	v, err := store.Get([]byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	require.NoError(t, store.Delete([]byte("k1")))
	_, err = store.Get([]byte("k1"))
	assert.True(t, store.IsNotFound(err))
}

func TestBatch(t *testing.T) {
	store := NewMem()
	defer store.Close()

	require.NoError(t, store.Put([]byte("gone"), []byte("x")))

	batch := store.NewBatch()
	require.NoError(t, batch.Put([]byte("a"), []byte("1")))
	require.NoError(t, batch.Put([]byte("b"), []byte("2")))
	require.NoError(t, batch.Delete([]byte("gone")))
	assert.Equal(t, 3, batch.Len())

	// nothing visible before write
	has, err := store.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, batch.Write())

	v, err := store.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
	_, err = store.Get([]byte("gone"))
	assert.True(t, store.IsNotFound(err))
}

func TestBucket(t *testing.T) {
	store := NewMem()
	defer store.Close()

	b1 := Bucket("b1-").NewStore(store)
	b2 := Bucket("b2-").NewStore(store)

	require.NoError(t, b1.Put([]byte("k"), []byte("v1")))
	require.NoError(t, b2.Put([]byte("k"), []byte("v2")))

	v, err := b1.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	// buckets are disjoint prefixed views of one store
	raw, err := store.Get([]byte("b2-k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), raw)

	iter := b1.NewIterator(Range{})
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	iter.Release()
	require.NoError(t, iter.Error())
	assert.Equal(t, []string{"k"}, keys)
}
