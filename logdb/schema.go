// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// Rows are keyed by block number, the ledger never replaces a block once
// packed. The auction columns are decoded from engine events on insert and
// stay NULL for other logs.
const (
	eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	blockNumber INTEGER NOT NULL,
	eventIndex INTEGER NOT NULL,
	blockID BLOB(32) NOT NULL,
	blockTime INTEGER NOT NULL,
	txID BLOB(32) NOT NULL,
	txOrigin BLOB(20) NOT NULL,
	address BLOB(20) NOT NULL,
	topic0 BLOB(32),
	topic1 BLOB(32),
	topic2 BLOB(32),
	topic3 BLOB(32),
	topic4 BLOB(32),
	data BLOB,
	name TEXT,
	itemID INTEGER,
	bidder BLOB(20),
	commitment BLOB(32),
	amount BLOB(32),
	PRIMARY KEY (blockNumber, eventIndex)
);
CREATE INDEX IF NOT EXISTS eventTxIDIndex ON event(txID);
CREATE INDEX IF NOT EXISTS eventTopic0Index ON event(topic0);
CREATE INDEX IF NOT EXISTS eventNameIndex ON event(name);
CREATE INDEX IF NOT EXISTS eventItemIndex ON event(itemID);
CREATE INDEX IF NOT EXISTS eventBidderIndex ON event(bidder);
CREATE INDEX IF NOT EXISTS eventCommitmentIndex ON event(commitment);
`

	transferTableSchema = `CREATE TABLE IF NOT EXISTS transfer (
	blockNumber INTEGER NOT NULL,
	transferIndex INTEGER NOT NULL,
	blockID BLOB(32) NOT NULL,
	blockTime INTEGER NOT NULL,
	txID BLOB(32) NOT NULL,
	txOrigin BLOB(20) NOT NULL,
	sender BLOB(20) NOT NULL,
	recipient BLOB(20) NOT NULL,
	amount BLOB(32),
	PRIMARY KEY (blockNumber, transferIndex)
);
CREATE INDEX IF NOT EXISTS transferTxIDIndex ON transfer(txID);
CREATE INDEX IF NOT EXISTS transferSenderIndex ON transfer(sender);
CREATE INDEX IF NOT EXISTS transferRecipientIndex ON transfer(recipient);
`

	eventColumns    = "blockNumber, eventIndex, blockID, blockTime, txID, txOrigin, address, topic0, topic1, topic2, topic3, topic4, data, name, itemID, bidder, commitment, amount"
	transferColumns = "blockNumber, transferIndex, blockID, blockTime, txID, txOrigin, sender, recipient, amount"
)
