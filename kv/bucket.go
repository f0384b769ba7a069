// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides logical bucket for kv store.
// Every key is prefixed with the bucket name.
type Bucket string

// withKey calls fn with the bucket-prefixed key. The prefixed key must not be retained.
func (b Bucket) withKey(key []byte, fn func(k []byte) error) error {
	buf := bufPool.Get().(*buf)
	defer bufPool.Put(buf)
	buf.k = append(append(buf.k[:0], b...), key...)
	return fn(buf.k)
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) (val []byte, err error) {
			err = b.withKey(key, func(k []byte) error {
				val, err = src.Get(k)
				return err
			})
			return
		},
		func(key []byte) (has bool, err error) {
			err = b.withKey(key, func(k []byte) error {
				has, err = src.Has(k)
				return err
			})
			return
		},
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
// The source must copy keys it retains, which leveldb batches do.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) error {
			return b.withKey(key, func(k []byte) error { return src.Put(k, val) })
		},
		func(key []byte) error {
			return b.withKey(key, src.Delete)
		},
	}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &struct {
		Getter
		Putter
		SnapshotFunc
		BulkFunc
		IterateFunc
	}{
		b.NewGetter(src),
		b.NewPutter(src),
		func() Snapshot {
			snapshot := src.Snapshot()
			return &struct {
				Getter
				ReleaseFunc
			}{
				b.NewGetter(snapshot),
				snapshot.Release,
			}
		},
		func() Bulk {
			bulk := src.Bulk()
			return &struct {
				Putter
				LenFunc
				WriteFunc
			}{
				b.NewPutter(bulk),
				bulk.Len,
				bulk.Write,
			}
		},
		func(r Range) Iterator {
			r.Start = append([]byte(b), r.Start...)
			if len(r.Limit) == 0 {
				r.Limit = util.BytesPrefix([]byte(b)).Limit
			} else {
				r.Limit = append([]byte(b), r.Limit...)
			}
			iter := src.Iterate(r)
			return &struct {
				NextFunc
				KeyFunc
				ValueFunc
				ReleaseFunc
				ErrorFunc
			}{
				iter.Next,
				// strip the bucket
				func() []byte { return iter.Key()[len(b):] },
				iter.Value,
				iter.Release,
				iter.Error,
			}
		},
	}
}

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
