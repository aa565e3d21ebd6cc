// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/meterio/sealed-auction/block"
	"github.com/meterio/sealed-auction/chain"
	"github.com/meterio/sealed-auction/tx"
)

// maxBlocksPerRead bounds one catch-up step so a far behind client can not
// monopolize a connection loop.
const maxBlocksPerRead = 64

// trunkReader walks trunk blocks after a position.
type trunkReader struct {
	chain *chain.Chain
	next  uint32
}

// read returns the blocks not seen yet, and whether more are pending.
func (tr *trunkReader) read(fn func(blk *block.Block, receipts tx.Receipts) error) (bool, error) {
	best := tr.chain.BestBlock().Header().Number()
	n := 0
	for ; tr.next <= best && n < maxBlocksPerRead; n++ {
		blk, err := tr.chain.GetTrunkBlock(tr.next)
		if err != nil {
			return false, err
		}
		receipts, err := tr.chain.GetBlockReceipts(blk.Header().ID())
		if err != nil {
			return false, err
		}
		if err := fn(blk, receipts); err != nil {
			return false, err
		}
		tr.next++
	}
	return tr.next <= best, nil
}

type blockReader struct {
	trunkReader
}

func newBlockReader(chain *chain.Chain, next uint32) *blockReader {
	return &blockReader{trunkReader{chain, next}}
}

func (br *blockReader) Read() ([]interface{}, bool, error) {
	var msgs []interface{}
	more, err := br.read(func(blk *block.Block, _ tx.Receipts) error {
		msgs = append(msgs, convertBlock(blk))
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return msgs, more, nil
}
