// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/meterio/sealed-auction/block"
	"github.com/meterio/sealed-auction/chain"
	"github.com/meterio/sealed-auction/tx"
)

type eventReader struct {
	trunkReader
	filter *EventFilter
}

func newEventReader(chain *chain.Chain, next uint32, filter *EventFilter) *eventReader {
	return &eventReader{trunkReader{chain, next}, filter}
}

func (er *eventReader) Read() ([]interface{}, bool, error) {
	var msgs []interface{}
	more, err := er.read(func(blk *block.Block, receipts tx.Receipts) error {
		txs := blk.Transactions()
		for i, receipt := range receipts {
			for _, output := range receipt.Outputs {
				for _, event := range output.Events {
					if !er.filter.Match(event) {
						continue
					}
					msg, err := convertEvent(blk.Header(), txs[i], event)
					if err != nil {
						return err
					}
					msgs = append(msgs, msg)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return msgs, more, nil
}

type transferReader struct {
	trunkReader
	filter *TransferFilter
}

func newTransferReader(chain *chain.Chain, next uint32, filter *TransferFilter) *transferReader {
	return &transferReader{trunkReader{chain, next}, filter}
}

func (tr *transferReader) Read() ([]interface{}, bool, error) {
	var msgs []interface{}
	more, err := tr.read(func(blk *block.Block, receipts tx.Receipts) error {
		txs := blk.Transactions()
		for i, receipt := range receipts {
			origin, err := txs[i].Origin()
			if err != nil {
				return err
			}
			for _, output := range receipt.Outputs {
				for _, transfer := range output.Transfers {
					if !tr.filter.Match(transfer, origin) {
						continue
					}
					msg, err := convertTransfer(blk.Header(), txs[i], transfer)
					if err != nil {
						return err
					}
					msgs = append(msgs, msg)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return msgs, more, nil
}
