// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/kv"
)

const (
	storageBucket = kv.Bucket("s/")
	metaBucket    = kv.Bucket("m/")
)

var revisionKey = []byte("revision")

// Stater is the state creator.
// It owns the storage and the revision counter of a store.
type Stater struct {
	db kv.Store
}

// NewStater create a new stater.
func NewStater(db kv.Store) *Stater {
	return &Stater{db}
}

// NewState create a new state object reading the latest committed storage.
func (s *Stater) NewState() *State {
	return New(storageBucket.NewGetter(s.db))
}

// Snapshot is a read-only view of a committed revision.
type Snapshot struct {
	*State
	Revision uint64
	snap     kv.Snapshot
}

// Release releases the underlying store snapshot.
func (s *Snapshot) Release() {
	s.snap.Release()
}

// NewSnapshot creates a state pinned to the current committed revision.
// Writes committed later are not visible through it.
func (s *Stater) NewSnapshot() (*Snapshot, error) {
	snap := s.db.Snapshot()
	rev, err := readRevision(metaBucket.NewGetter(snap))
	if err != nil {
		snap.Release()
		return nil, err
	}
	return &Snapshot{
		State:    New(storageBucket.NewGetter(snap)),
		Revision: rev,
		snap:     snap,
	}, nil
}

// Revision returns the revision of the latest commit, 0 before the first one.
func (s *Stater) Revision() (uint64, error) {
	return readRevision(metaBucket.NewGetter(s.db))
}

func readRevision(g kv.Getter) (uint64, error) {
	data, err := g.Get(revisionKey)
	if err != nil {
		if g.IsNotFound(err) {
			return 0, nil
		}
		return 0, &Error{errors.Wrap(err, "read revision")}
	}
	if len(data) != 8 {
		return 0, &Error{errors.New("malformed revision")}
	}
	return binary.BigEndian.Uint64(data), nil
}

// Commit persists the stage and bumps the revision in one atomic write.
// It returns the new revision.
func (s *Stater) Commit(stage *Stage) (uint64, error) {
	rev, err := s.Revision()
	if err != nil {
		return 0, err
	}
	rev++

	bulk := s.db.Bulk()
	if err := stage.Commit(storageBucket.NewPutter(bulk)); err != nil {
		return 0, err
	}
	var enc [8]byte
	binary.BigEndian.PutUint64(enc[:], rev)
	if err := metaBucket.NewPutter(bulk).Put(revisionKey, enc[:]); err != nil {
		return 0, &Error{err}
	}
	if err := bulk.Write(); err != nil {
		return 0, &Error{errors.Wrap(err, "write bulk")}
	}
	return rev, nil
}
