// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import (
	"github.com/meterio/sealed-auction/block"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/runtime"
	"github.com/meterio/sealed-auction/state"
	"github.com/meterio/sealed-auction/tx"
	"github.com/pkg/errors"
)

// Flow the flow of packing a new block.
type Flow struct {
	packer       *Packer
	parentHeader *block.Header
	runtime      *runtime.Runtime
	gasLimit     uint64
	processedTxs map[meter.Bytes32]bool // txID -> reverted
	gasUsed      uint64
	txs          tx.Transactions
	receipts     tx.Receipts
}

func newFlow(
	packer *Packer,
	parentHeader *block.Header,
	runtime *runtime.Runtime,
	gasLimit uint64,
) *Flow {
	return &Flow{
		packer:       packer,
		parentHeader: parentHeader,
		runtime:      runtime,
		gasLimit:     gasLimit,
		processedTxs: make(map[meter.Bytes32]bool),
	}
}

// ParentHeader returns parent block header.
func (f *Flow) ParentHeader() *block.Header {
	return f.parentHeader
}

// When the target time to do packing.
func (f *Flow) When() uint64 {
	return f.runtime.Context().Time
}

// Receipts of the txs adopted so far.
func (f *Flow) Receipts() tx.Receipts {
	return f.receipts
}

func (f *Flow) findTx(txID meter.Bytes32) (bool, error) {
	if _, ok := f.processedTxs[txID]; ok {
		return true, nil
	}
	return f.packer.chain.HasTransaction(txID)
}

// Adopt try to execute the given transaction.
// If the tx is valid and can be executed on current state (regardless of clause errors),
// it will be adopted by the new block.
func (f *Flow) Adopt(trx *tx.Transaction) error {
	switch {
	case trx.ChainTag() != f.packer.chain.Tag():
		return badTxError{"chain tag mismatch"}
	case f.gasUsed+trx.Gas() > f.gasLimit:
		return errGasLimitReached
	}

	// check if tx already there
	if found, err := f.findTx(trx.ID()); err != nil {
		return err
	} else if found {
		return errKnownTx
	}

	checkpoint := f.runtime.State().NewCheckpoint()
	receipt, err := f.runtime.ExecuteTransaction(trx)
	if err != nil {
		// skip and revert state
		f.runtime.State().RevertTo(checkpoint)
		return badTxError{err.Error()}
	}
	f.processedTxs[trx.ID()] = receipt.Reverted
	f.gasUsed += receipt.GasUsed
	f.receipts = append(f.receipts, receipt)
	f.txs = append(f.txs, trx)
	return nil
}

// Pack build the new block.
func (f *Flow) Pack() (*block.Block, *state.Stage, tx.Receipts, error) {
	if err := f.runtime.State().Err(); err != nil {
		return nil, nil, nil, errors.WithMessage(err, "state")
	}

	stage := f.runtime.State().Stage()
	stateDigest, err := stage.Hash()
	if err != nil {
		return nil, nil, nil, errors.WithMessage(err, "hash stage")
	}

	builder := new(block.Builder).
		Beneficiary(f.runtime.Context().Beneficiary).
		GasLimit(f.gasLimit).
		ParentID(f.parentHeader.ID()).
		Timestamp(f.runtime.Context().Time).
		GasUsed(f.gasUsed).
		ReceiptsRoot(f.receipts.RootHash()).
		StateDigest(stateDigest)

	for _, trx := range f.txs {
		builder.Transaction(trx)
	}
	return builder.Build(), stage, f.receipts, nil
}
