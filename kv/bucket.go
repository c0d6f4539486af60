// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "github.com/syndtr/goleveldb/leveldb/util"

// Bucket provides a logical key space over a shared store.
type Bucket string

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{string(b), src}
}

type bucketStore struct {
	prefix string
	src    Store
}

func (s *bucketStore) makeKey(key []byte) []byte {
	return append([]byte(s.prefix), key...)
}

func (s *bucketStore) Get(key []byte) ([]byte, error) {
	return s.src.Get(s.makeKey(key))
}

func (s *bucketStore) Has(key []byte) (bool, error) {
	return s.src.Has(s.makeKey(key))
}

func (s *bucketStore) IsNotFound(err error) bool {
	return s.src.IsNotFound(err)
}

func (s *bucketStore) Put(key, value []byte) error {
	return s.src.Put(s.makeKey(key), value)
}

func (s *bucketStore) Delete(key []byte) error {
	return s.src.Delete(s.makeKey(key))
}

func (s *bucketStore) NewBatch() Batch {
	return &bucketBatch{s.src.NewBatch(), s.makeKey}
}

func (s *bucketStore) NewIterator(r Range) Iterator {
	r.Start = s.makeKey(r.Start)
	if len(r.Limit) == 0 {
		r.Limit = util.BytesPrefix([]byte(s.prefix)).Limit
	} else {
		r.Limit = append([]byte(s.prefix), r.Limit...)
	}
	return &bucketIter{s.src.NewIterator(r), len(s.prefix)}
}

type bucketBatch struct {
	Batch
	makeKey func([]byte) []byte
}

func (b *bucketBatch) Put(key, value []byte) error {
	return b.Batch.Put(b.makeKey(key), value)
}

func (b *bucketBatch) Delete(key []byte) error {
	return b.Batch.Delete(b.makeKey(key))
}

type bucketIter struct {
	Iterator
	prefixLen int
}

func (i *bucketIter) Key() []byte {
	return i.Iterator.Key()[i.prefixLen:]
}
