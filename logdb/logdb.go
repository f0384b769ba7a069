// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb stores the events of committed operations in sqlite for filtering.
package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/vechain/tokenfarm/log"
	"github.com/vechain/tokenfarm/state"
	"github.com/vechain/tokenfarm/thor"
)

var logger = log.WithContext("pkg", "logdb")

// MaxLimit caps the number of events of a single query.
const MaxLimit = 1000

type LogDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	dsn := path
	if path != memPath {
		dsn += "?_journal=wal"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// an in-memory db lives as long as its connection
	if path == memPath {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetMaxIdleConns(1)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

const memPath = ":memory:"

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(memPath)
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// FilterEvents returns the events matching filter, at most MaxLimit.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		filter = &EventFilter{}
	}
	if filter.Options == nil {
		filter.Options = &Options{Offset: 0, Limit: MaxLimit}
	}
	if filter.Options.Limit > MaxLimit {
		return nil, fmt.Errorf("limit %d exceeds %d", filter.Options.Limit, MaxLimit)
	}
	if filter.Options.Offset > math.MaxInt64 {
		return nil, fmt.Errorf("offset %d out of range", filter.Options.Offset)
	}
	defer func(start time.Time) {
		metricQueryDuration().Observe(time.Since(start).Milliseconds())
	}(time.Now())
	metricsHandleEventsFilter(filter)

	var (
		args  []any
		where []string
	)
	if filter.Range != nil {
		from, to := filter.Range.From, filter.Range.To
		switch filter.Range.Unit {
		case Time:
			where = append(where, "time >= ?")
			args = append(args, from)
			if to >= from {
				where = append(where, "time <= ?")
				args = append(args, to)
			}
		default:
			where = append(where, "seq >= ?")
			args = append(args, newSequence(min(from, maxRevision), 0))
			if to >= from {
				where = append(where, "seq <= ?")
				args = append(args, newSequence(min(to, maxRevision), 1<<indexBits-1))
			}
		}
	}
	if filter.OpID != nil {
		where = append(where, "opID = ?")
		args = append(args, filter.OpID.Bytes())
	}

	var ors []string
	for _, c := range filter.CriteriaSet {
		conds := []string{"1"}
		if c.Address != nil {
			conds = append(conds, "address = ?")
			args = append(args, c.Address.Bytes())
		}
		if c.Caller != nil {
			conds = append(conds, "caller = ?")
			args = append(args, c.Caller.Bytes())
		}
		for i, topic := range c.Topics {
			if topic != nil {
				conds = append(conds, fmt.Sprintf("topic%d = ?", i))
				args = append(args, topic.Bytes())
			}
		}
		ors = append(ors, "("+strings.Join(conds, " AND ")+")")
	}
	if len(ors) > 0 {
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	stmt := "SELECT seq, time, opID, op, caller, address, topic0, topic1, topic2, topic3, data FROM event"
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	stmt += " LIMIT ?, ?"
	args = append(args, filter.Options.Offset, filter.Options.Limit)

	return db.queryEvents(ctx, stmt, args...)
}

const maxRevision = math.MaxInt64 >> indexBits

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq     sequence
			ts      uint64
			opID    []byte
			op      string
			caller  []byte
			address []byte
			topics  [4][]byte
			data    []byte
		)
		if err := rows.Scan(
			&seq,
			&ts,
			&opID,
			&op,
			&caller,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			Revision: seq.Revision(),
			Index:    seq.Index(),
			Time:     ts,
			OpID:     thor.BytesToBytes32(opID),
			Op:       op,
			Caller:   thor.BytesToAddress(caller),
			Address:  thor.BytesToAddress(address),
			Data:     data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := thor.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// NewestRevision returns the revision of the latest stored event, 0 if empty.
func (db *LogDB) NewestRevision(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM event").Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return sequence(seq.Int64).Revision(), nil
}

// Prepare starts a batch for the events of the operation committed at revision.
func (db *LogDB) Prepare(revision uint64, time uint64, opID thor.Bytes32, op string, caller thor.Address) *Batch {
	return &Batch{
		db:       db,
		revision: revision,
		time:     time,
		opID:     opID,
		op:       op,
		caller:   caller,
	}
}

func topicValue(topic *thor.Bytes32) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}

// Batch collects the events of one operation.
type Batch struct {
	db       *LogDB
	revision uint64
	time     uint64
	opID     thor.Bytes32
	op       string
	caller   thor.Address
	events   []*Event
}

// Insert appends events in emission order.
func (b *Batch) Insert(events []*state.Event) *Batch {
	for _, ev := range events {
		b.events = append(b.events, newEvent(b, uint32(len(b.events)), ev))
	}
	return b
}

func (b *Batch) Len() int {
	return len(b.events)
}

// Commit writes the batch in one sqlite transaction.
func (b *Batch) Commit() error {
	if len(b.events) == 0 {
		return nil
	}
	stmt, err := b.db.stmtCache.Prepare("INSERT OR REPLACE INTO event(seq, time, opID, op, caller, address, topic0, topic1, topic2, topic3, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	tx, err := b.db.db.Begin()
	if err != nil {
		return err
	}
	txStmt := tx.Stmt(stmt)
	for _, ev := range b.events {
		if _, err := txStmt.Exec(
			newSequence(ev.Revision, ev.Index),
			ev.Time,
			ev.OpID.Bytes(),
			ev.Op,
			ev.Caller.Bytes(),
			ev.Address.Bytes(),
			topicValue(ev.Topics[0]),
			topicValue(ev.Topics[1]),
			topicValue(ev.Topics[2]),
			topicValue(ev.Topics[3]),
			ev.Data,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Trace("events written", "revision", b.revision, "count", len(b.events))
	return nil
}
