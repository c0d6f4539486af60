// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package recorddb persists committed-operation records for later
// querying by participants and downstream indexers.
package recorddb

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/lockstake/lockstake/ledger"
	"github.com/lockstake/lockstake/lockstake"
	"github.com/lockstake/lockstake/log"
)

var logger = log.WithContext("pkg", "recorddb")

const tableSchema = `CREATE TABLE IF NOT EXISTS record (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	createdAt INTEGER NOT NULL,
	kind TEXT NOT NULL,
	account BLOB NOT NULL,
	payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS record_i1 ON record(account, seq);
CREATE INDEX IF NOT EXISTS record_i2 ON record(kind, seq);`

// RecordDB stores records in a sqlite database.
type RecordDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New creates or opens a record db at the given path.
func New(path string) (recordDB *RecordDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if recordDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(tableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &RecordDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem creates a record db in ram.
func NewMem() (*RecordDB, error) {
	return New(":memory:")
}

// Close closes the record db.
func (db *RecordDB) Close() {
	db.db.Close()
}

func (db *RecordDB) Path() string {
	return db.path
}

// StoredRecord is one persisted record row.
type StoredRecord struct {
	Seq       int64             `json:"seq"`
	CreatedAt uint64            `json:"createdAt"`
	Kind      string            `json:"kind"`
	Account   lockstake.Address `json:"account"`
	Payload   json.RawMessage   `json:"payload"`
}

// Insert appends one record, stamped with createdAt.
func (db *RecordDB) Insert(createdAt uint64, rec ledger.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal record")
	}
	account := rec.Account()
	_, err = db.db.Exec(
		"INSERT INTO record(createdAt, kind, account, payload) VALUES(?,?,?,?)",
		createdAt, rec.Kind(), account.Bytes(), string(payload))
	return errors.Wrap(err, "insert record")
}

// Order of returned records by insertion sequence.
type Order bool

const (
	ASC  Order = false
	DESC Order = true
)

// Filter narrows a record query. Zero-valued fields do not filter.
type Filter struct {
	Account *lockstake.Address
	Kind    string
	Order   Order
	Offset  uint64
	Limit   uint64
}

// Query returns records matching the filter.
func (db *RecordDB) Query(ctx context.Context, filter *Filter) ([]*StoredRecord, error) {
	stmt := "SELECT seq, createdAt, kind, account, payload FROM record WHERE 1"
	var args []interface{}
	if filter != nil {
		if filter.Account != nil {
			stmt += " AND account = ?"
			args = append(args, filter.Account.Bytes())
		}
		if filter.Kind != "" {
			stmt += " AND kind = ?"
			args = append(args, filter.Kind)
		}
	}
	if filter != nil && filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter != nil && filter.Limit > 0 {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Offset, filter.Limit)
	}

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query records")
	}
	defer rows.Close()

	var records []*StoredRecord
	for rows.Next() {
		var (
			rec     StoredRecord
			account []byte
			payload string
		)
		if err := rows.Scan(&rec.Seq, &rec.CreatedAt, &rec.Kind, &account, &payload); err != nil {
			return nil, errors.Wrap(err, "scan record")
		}
		rec.Account = lockstake.BytesToAddress(account)
		rec.Payload = json.RawMessage(payload)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

type sink struct {
	db *RecordDB
}

// Sink adapts the db to a ledger record sink. Failures to persist are
// logged, not propagated, since the operation already committed.
func (db *RecordDB) Sink() ledger.Sink {
	return &sink{db}
}

func (s *sink) Deliver(rec ledger.Record) {
	if err := s.db.Insert(uint64(time.Now().Unix()), rec); err != nil {
		logger.Warn("failed to persist record", "kind", rec.Kind(), "err", err)
	}
}
