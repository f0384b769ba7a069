// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	dberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/tokenfarm/kv"
)

var _ kv.StoreCloser = (*LevelDB)(nil)

// Options options for creating level db instance.
type Options struct {
	CacheSize              int // MiB
	OpenFilesCacheCapacity int
}

var (
	writeOpt = opt.WriteOptions{}
	readOpt  = opt.ReadOptions{}
)

// LevelDB wraps level db impls.
type LevelDB struct {
	db  *leveldb.DB
	stg storage.Storage
}

// New create a persistent level db instance.
// Create an empty one if not exists, or open if already there.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "open storage")
	}
	return open(stg, opts)
}

// NewMem create a level db in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	if opts.CacheSize < 16 {
		opts.CacheSize = 16
	}
	if opts.OpenFilesCacheCapacity < 16 {
		opts.OpenFilesCacheCapacity = 16
	}

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: opts.OpenFilesCacheCapacity,
		BlockCacheCapacity:     opts.CacheSize / 2 * opt.MiB,
		WriteBuffer:            opts.CacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if dberrors.IsCorrupted(err) {
		db, err = leveldb.Recover(stg, nil)
	}
	if err != nil {
		stg.Close()
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db: db, stg: stg}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}

// Get retrieve value for given key.
// It returns an error if key not found. The error can be checked via IsNotFound.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.db.Get(key, &readOpt)
}

// Has returns whether a key exists.
func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, &readOpt)
}

// Put save value fo give key.
func (ldb *LevelDB) Put(key, value []byte) error {
	return ldb.db.Put(key, value, &writeOpt)
}

// Delete deletes the give key and its value.
func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, &writeOpt)
}

// Snapshot returns a read-only point-in-time view of the db.
func (ldb *LevelDB) Snapshot() kv.Snapshot {
	snap, err := ldb.db.GetSnapshot()
	if err != nil {
		return &errSnapshot{err}
	}
	return &snapshot{snap}
}

// Bulk creates a batch, written atomically on Write.
func (ldb *LevelDB) Bulk() kv.Bulk {
	return &bulk{db: ldb.db, batch: &leveldb.Batch{}}
}

// Iterate creates an iterator over the given range.
func (ldb *LevelDB) Iterate(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, &readOpt)
}

// Close close the level db.
// Later operations will all fail.
// The storage is closed too, releasing the directory lock.
func (ldb *LevelDB) Close() error {
	if err := ldb.db.Close(); err != nil {
		ldb.stg.Close()
		return err
	}
	return ldb.stg.Close()
}

type snapshot struct {
	snap *leveldb.Snapshot
}

func (s *snapshot) Get(key []byte) ([]byte, error) { return s.snap.Get(key, &readOpt) }
func (s *snapshot) Has(key []byte) (bool, error)   { return s.snap.Has(key, &readOpt) }
func (s *snapshot) IsNotFound(err error) bool      { return err == leveldb.ErrNotFound }
func (s *snapshot) Release()                       { s.snap.Release() }

// errSnapshot is returned when the db is closed.
type errSnapshot struct {
	err error
}

func (s *errSnapshot) Get([]byte) ([]byte, error) { return nil, s.err }
func (s *errSnapshot) Has([]byte) (bool, error)   { return false, s.err }
func (s *errSnapshot) IsNotFound(error) bool      { return false }
func (s *errSnapshot) Release()                   {}

type bulk struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *bulk) Put(key, value []byte) error {
	b.batch.Put(key, value)
	return nil
}

func (b *bulk) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *bulk) Len() int {
	return b.batch.Len()
}

func (b *bulk) Write() error {
	if err := b.db.Write(b.batch, &writeOpt); err != nil {
		return err
	}
	b.batch.Reset()
	return nil
}
