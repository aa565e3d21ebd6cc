// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/tx"
)

// Builder to make it easy to build a block object.
type Builder struct {
	headerBody HeaderBody
	txs        tx.Transactions
}

// ParentID set parent id.
func (b *Builder) ParentID(id meter.Bytes32) *Builder {
	b.headerBody.ParentID = id
	return b
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(ts uint64) *Builder {
	b.headerBody.Timestamp = ts
	return b
}

// GasLimit set gas limit.
func (b *Builder) GasLimit(limit uint64) *Builder {
	b.headerBody.GasLimit = limit
	return b
}

// GasUsed set gas used.
func (b *Builder) GasUsed(used uint64) *Builder {
	b.headerBody.GasUsed = used
	return b
}

// Beneficiary set recipient of fees.
func (b *Builder) Beneficiary(addr meter.Address) *Builder {
	b.headerBody.Beneficiary = addr
	return b
}

// StateDigest set the hash of state changes.
func (b *Builder) StateDigest(hash meter.Bytes32) *Builder {
	b.headerBody.StateDigest = hash
	return b
}

// ReceiptsRoot set receipts root.
func (b *Builder) ReceiptsRoot(hash meter.Bytes32) *Builder {
	b.headerBody.ReceiptsRoot = hash
	return b
}

// Transaction add a transaction.
func (b *Builder) Transaction(tx *tx.Transaction) *Builder {
	b.txs = append(b.txs, tx)
	return b
}

// Build build a block object.
func (b *Builder) Build() *Block {
	header := Header{Body: b.headerBody}
	header.Body.TxsRoot = TxsRootOf(b.txs)

	return &Block{
		header: &header,
		txs:    b.txs,
	}
}
