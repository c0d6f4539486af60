// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	writeOpt = &opt.WriteOptions{}
	readOpt  = &opt.ReadOptions{}
)

// Options options for creating level db instance.
type Options struct {
	CacheSize              int // in MB
	OpenFilesCacheCapacity int
}

// lvldb implements StoreCloser on top of goleveldb.
type lvldb struct {
	db *leveldb.DB
}

// OpenLevelDB opens or creates a persistent leveldb instance at path.
func OpenLevelDB(path string, opts Options) (StoreCloser, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb file storage")
	}
	return openLevelDB(stg, opts)
}

// NewMem creates an in-memory store, for tests and ephemeral runs.
func NewMem() StoreCloser {
	store, err := openLevelDB(storage.NewMemStorage(), Options{})
	if err != nil {
		// mem storage never fails to open
		panic(errors.Wrap(err, "open mem leveldb"))
	}
	return store
}

func openLevelDB(stg storage.Storage, opts Options) (StoreCloser, error) {
	if opts.CacheSize < 128 {
		opts.CacheSize = 128
	}
	if opts.OpenFilesCacheCapacity < 64 {
		opts.OpenFilesCacheCapacity = 64
	}
	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: opts.OpenFilesCacheCapacity,
		BlockCacheCapacity:     opts.CacheSize / 2 * opt.MiB,
		WriteBuffer:            opts.CacheSize / 4 * opt.MiB, // two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb")
	}
	return &lvldb{db: db}, nil
}

func (l *lvldb) Get(key []byte) ([]byte, error) {
	return l.db.Get(key, readOpt)
}

func (l *lvldb) Has(key []byte) (bool, error) {
	return l.db.Has(key, readOpt)
}

func (l *lvldb) IsNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}

func (l *lvldb) Put(key, value []byte) error {
	return l.db.Put(key, value, writeOpt)
}

func (l *lvldb) Delete(key []byte) error {
	return l.db.Delete(key, writeOpt)
}

func (l *lvldb) NewBatch() Batch {
	return &lvldbBatch{l.db, &leveldb.Batch{}}
}

func (l *lvldb) NewIterator(r Range) Iterator {
	var ur *util.Range
	if len(r.Start) > 0 || len(r.Limit) > 0 {
		ur = &util.Range{Start: r.Start, Limit: r.Limit}
	}
	return l.db.NewIterator(ur, readOpt)
}

func (l *lvldb) Close() error {
	return l.db.Close()
}

// lvldbBatch implements Batch interface.
type lvldbBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *lvldbBatch) Put(key, value []byte) error {
	b.batch.Put(key, value)
	return nil
}

func (b *lvldbBatch) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *lvldbBatch) Len() int {
	return b.batch.Len()
}

func (b *lvldbBatch) Write() error {
	return b.db.Write(b.batch, writeOpt)
}
