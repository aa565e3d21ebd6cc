// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"log/slog"
	"math/big"

	_ "github.com/mattn/go-sqlite3"
	"github.com/meterio/sealed-auction/block"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/tx"
	"github.com/pkg/errors"
)

var log = slog.Default().With("pkg", "logdb")

// LogDB indexes the events and transfers of packed blocks in sqlite.
type LogDB struct {
	path string
	db   *sql.DB
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			if err := db.Close(); err != nil {
				log.Warn("could not close logdb", "err", err)
			}
		}
	}()
	// a single connection keeps ":memory:" databases shared across queries
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema + transferTableSchema); err != nil {
		return nil, errors.Wrap(err, "create tables")
	}
	return &LogDB{path, db}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() {
	if err := db.db.Close(); err != nil {
		log.Warn("could not close logdb", "err", err)
	}
}

func (db *LogDB) Path() string {
	return db.path
}

// Prepare starts collecting the logs of one block.
func (db *LogDB) Prepare(header *block.Header) *BlockBatch {
	return &BlockBatch{db: db.db, header: header}
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		filter = &EventFilter{}
	}
	var where clause
	where.blockRange(filter.Range)
	if filter.TxID != nil {
		where.eq("txID", filter.TxID.Bytes())
	}
	groups := make([]clause, 0, len(filter.CriteriaSet))
	for _, c := range filter.CriteriaSet {
		groups = append(groups, c.clause())
	}
	where.anyOf(groups)

	stmt, args := selectStmt("event", eventColumns, "eventIndex", &where, filter.Order, filter.Options)
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	if filter == nil {
		filter = &TransferFilter{}
	}
	var where clause
	where.blockRange(filter.Range)
	if filter.TxID != nil {
		where.eq("txID", filter.TxID.Bytes())
	}
	groups := make([]clause, 0, len(filter.CriteriaSet))
	for _, c := range filter.CriteriaSet {
		groups = append(groups, c.clause())
	}
	where.anyOf(groups)

	stmt, args := selectStmt("transfer", transferColumns, "transferIndex", &where, filter.Order, filter.Options)
	return db.queryTransfers(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...interface{}) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			ev                         Event
			blockID, txID              []byte
			txOrigin, address          []byte
			topics                     [5][]byte
			name                       sql.NullString
			itemID                     sql.NullInt64
			bidder, commitment, amount []byte
		)
		if err := rows.Scan(
			&ev.BlockNumber, &ev.Index, &blockID, &ev.BlockTime, &txID, &txOrigin, &address,
			&topics[0], &topics[1], &topics[2], &topics[3], &topics[4], &ev.Data,
			&name, &itemID, &bidder, &commitment, &amount,
		); err != nil {
			return nil, err
		}
		ev.BlockID = meter.BytesToBytes32(blockID)
		ev.TxID = meter.BytesToBytes32(txID)
		ev.TxOrigin = meter.BytesToAddress(txOrigin)
		ev.Address = meter.BytesToAddress(address)
		for i, topic := range topics {
			if len(topic) > 0 {
				h := meter.BytesToBytes32(topic)
				ev.Topics[i] = &h
			}
		}

		ev.Name = name.String
		if itemID.Valid {
			id := uint64(itemID.Int64)
			ev.ItemID = &id
		}
		if len(bidder) > 0 {
			addr := meter.BytesToAddress(bidder)
			ev.Bidder = &addr
		}
		if len(commitment) > 0 {
			c := meter.BytesToBytes32(commitment)
			ev.Commitment = &c
		}
		if amount != nil {
			ev.Amount = new(big.Int).SetBytes(amount)
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *LogDB) queryTransfers(ctx context.Context, stmt string, args ...interface{}) ([]*Transfer, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			tr                         Transfer
			blockID, txID              []byte
			txOrigin, sender, receiver []byte
			amount                     []byte
		)
		if err := rows.Scan(&tr.BlockNumber, &tr.Index, &blockID, &tr.BlockTime, &txID, &txOrigin, &sender, &receiver, &amount); err != nil {
			return nil, err
		}
		tr.BlockID = meter.BytesToBytes32(blockID)
		tr.TxID = meter.BytesToBytes32(txID)
		tr.TxOrigin = meter.BytesToAddress(txOrigin)
		tr.Sender = meter.BytesToAddress(sender)
		tr.Recipient = meter.BytesToAddress(receiver)
		tr.Amount = new(big.Int).SetBytes(amount)
		transfers = append(transfers, &tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

// BlockBatch collects the logs of one block and writes them in one sql transaction.
type BlockBatch struct {
	db        *sql.DB
	header    *block.Header
	events    []*Event
	transfers []*Transfer
}

// Add appends the logs one transaction produced.
func (bb *BlockBatch) Add(txID meter.Bytes32, txOrigin meter.Address, events tx.Events, transfers tx.Transfers) *BlockBatch {
	for _, event := range events {
		bb.events = append(bb.events, newEvent(bb.header, uint32(len(bb.events)), txID, txOrigin, event))
	}
	for _, transfer := range transfers {
		bb.transfers = append(bb.transfers, newTransfer(bb.header, uint32(len(bb.transfers)), txID, txOrigin, transfer))
	}
	return bb
}

func (bb *BlockBatch) Commit() (err error) {
	dbTx, err := bb.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if e := dbTx.Rollback(); e != nil {
				log.Warn("could not rollback", "err", e)
			}
		}
	}()

	if len(bb.events) > 0 {
		insert, err := dbTx.Prepare("INSERT OR REPLACE INTO event(" + eventColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer insert.Close()
		for _, ev := range bb.events {
			if _, err := insert.Exec(
				ev.BlockNumber, ev.Index, ev.BlockID.Bytes(), ev.BlockTime, ev.TxID.Bytes(), ev.TxOrigin.Bytes(), ev.Address.Bytes(),
				topicValue(ev.Topics[0]), topicValue(ev.Topics[1]), topicValue(ev.Topics[2]), topicValue(ev.Topics[3]), topicValue(ev.Topics[4]),
				ev.Data,
				nullString(ev.Name), nullItem(ev.ItemID), addressValue(ev.Bidder), topicValue(ev.Commitment), amountValue(ev.Amount),
			); err != nil {
				return err
			}
		}
	}

	if len(bb.transfers) > 0 {
		insert, err := dbTx.Prepare("INSERT OR REPLACE INTO transfer(" + transferColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer insert.Close()
		for _, tr := range bb.transfers {
			if _, err := insert.Exec(
				tr.BlockNumber, tr.Index, tr.BlockID.Bytes(), tr.BlockTime, tr.TxID.Bytes(), tr.TxOrigin.Bytes(),
				tr.Sender.Bytes(), tr.Recipient.Bytes(), amountValue(tr.Amount),
			); err != nil {
				return err
			}
		}
	}
	return dbTx.Commit()
}

func topicValue(topic *meter.Bytes32) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}

func addressValue(addr *meter.Address) []byte {
	if addr == nil {
		return nil
	}
	return addr.Bytes()
}

func amountValue(v *big.Int) []byte {
	if v == nil {
		return nil
	}
	// an empty blob, not NULL, for zero
	return append([]byte{}, v.Bytes()...)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullItem(id *uint64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}
