// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import (
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/meterio/sealed-auction/block"
	"github.com/meterio/sealed-auction/chain"
	"github.com/meterio/sealed-auction/logdb"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/runtime"
	"github.com/meterio/sealed-auction/script"
	"github.com/meterio/sealed-auction/state"
	"github.com/meterio/sealed-auction/tx"
	"github.com/meterio/sealed-auction/xenv"
	"github.com/pkg/errors"
)

// Packer executes txs one at a time, each in a block of its own, and commits
// the results. All writes to the ledger go through it.
type Packer struct {
	mu           sync.Mutex
	chain        *chain.Chain
	stateCreator *state.Creator
	se           *script.ScriptEngine
	logDB        *logdb.LogDB
	beneficiary  meter.Address
	baseGasPrice *big.Int
	logger       *slog.Logger
	now          func() uint64
}

// New create a new Packer instance.
// logDB is optional, events and transfers are not indexed without it.
func New(
	chain *chain.Chain,
	stateCreator *state.Creator,
	se *script.ScriptEngine,
	logDB *logdb.LogDB,
	beneficiary meter.Address,
	baseGasPrice *big.Int) *Packer {

	return &Packer{
		chain:        chain,
		stateCreator: stateCreator,
		se:           se,
		logDB:        logDB,
		beneficiary:  beneficiary,
		baseGasPrice: baseGasPrice,
		logger:       slog.Default().With("pkg", "packer"),
		now:          func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetClock replaces the wall clock used for block timestamps.
func (p *Packer) SetClock(now func() uint64) {
	p.now = now
}

// Mock create a packing flow upon given parent, but with a designated timestamp.
func (p *Packer) Mock(parent *block.Header, targetTime uint64) *Flow {
	rt := runtime.New(
		p.se,
		p.stateCreator.NewState(),
		&xenv.BlockContext{
			Beneficiary: p.beneficiary,
			Number:      parent.Number() + 1,
			Time:        targetTime,
		},
		p.baseGasPrice)

	return newFlow(p, parent, rt, p.GasLimit(parent.GasLimit()))
}

// GasLimit of a new block.
func (p *Packer) GasLimit(parentGasLimit uint64) uint64 {
	if parentGasLimit == 0 {
		return meter.MaxTxGas
	}
	return parentGasLimit
}

// BaseGasPrice returns the lowest gas price a tx may offer.
func (p *Packer) BaseGasPrice() *big.Int {
	return new(big.Int).Set(p.baseGasPrice)
}

// Submit executes trx on top of the best block and commits it.
// Clause failures still produce a committed, reverted receipt; an error
// means nothing was written.
func (p *Packer) Submit(trx *tx.Transaction) (*tx.Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	parent := p.chain.BestBlock().Header()
	ts := p.now()
	if ts <= parent.Timestamp() {
		ts = parent.Timestamp() + 1
	}

	flow := p.Mock(parent, ts)
	if err := flow.Adopt(trx); err != nil {
		return nil, err
	}
	blk, stage, receipts, err := flow.Pack()
	if err != nil {
		return nil, err
	}

	if err := p.chain.AddBlock(blk, receipts, stage); err != nil {
		return nil, errors.WithMessage(err, "add block")
	}

	if p.logDB != nil {
		batch := p.logDB.Prepare(blk.Header())
		for i, t := range blk.Transactions() {
			origin, _ := t.Origin()
			for _, output := range receipts[i].Outputs {
				batch.Add(t.ID(), origin, output.Events, output.Transfers)
			}
		}
		// the block is final already, a log index miss is logged not returned
		if err := batch.Commit(); err != nil {
			p.logger.Error("failed to index logs", "block", blk.Header().ID(), "err", err)
		}
	}

	receipt := receipts[0]
	p.logger.Info("tx executed", "id", trx.ID(), "block", blk.Header().Number(), "gasUsed", receipt.GasUsed, "reverted", receipt.Reverted)
	return receipt, nil
}
