// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/meterio/sealed-auction/api/transactions"
	"github.com/meterio/sealed-auction/block"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/tx"
)

// BlockMessage block piped by websocket
type BlockMessage struct {
	Number       uint32          `json:"number"`
	ID           meter.Bytes32   `json:"id"`
	ParentID     meter.Bytes32   `json:"parentID"`
	Timestamp    uint64          `json:"timestamp"`
	GasLimit     uint64          `json:"gasLimit"`
	GasUsed      uint64          `json:"gasUsed"`
	Beneficiary  meter.Address   `json:"beneficiary"`
	TxsRoot      meter.Bytes32   `json:"txsRoot"`
	StateDigest  meter.Bytes32   `json:"stateDigest"`
	ReceiptsRoot meter.Bytes32   `json:"receiptsRoot"`
	Transactions []meter.Bytes32 `json:"transactions"`
}

func convertBlock(b *block.Block) *BlockMessage {
	header := b.Header()
	txs := b.Transactions()
	ids := make([]meter.Bytes32, len(txs))
	for i, t := range txs {
		ids[i] = t.ID()
	}
	return &BlockMessage{
		Number:       header.Number(),
		ID:           header.ID(),
		ParentID:     header.ParentID(),
		Timestamp:    header.Timestamp(),
		GasLimit:     header.GasLimit(),
		GasUsed:      header.GasUsed(),
		Beneficiary:  header.Beneficiary(),
		TxsRoot:      header.TxsRoot(),
		StateDigest:  header.StateDigest(),
		ReceiptsRoot: header.ReceiptsRoot(),
		Transactions: ids,
	}
}

// EventMessage event piped by websocket
type EventMessage struct {
	Address meter.Address        `json:"address"`
	Topics  []meter.Bytes32      `json:"topics"`
	Data    string               `json:"data"`
	Meta    transactions.LogMeta `json:"meta"`
}

func logMeta(header *block.Header, trx *tx.Transaction) (transactions.LogMeta, error) {
	origin, err := trx.Origin()
	if err != nil {
		return transactions.LogMeta{}, err
	}
	return transactions.LogMeta{
		BlockID:        header.ID(),
		BlockNumber:    header.Number(),
		BlockTimestamp: header.Timestamp(),
		TxID:           trx.ID(),
		TxOrigin:       origin,
	}, nil
}

func convertEvent(header *block.Header, trx *tx.Transaction, event *tx.Event) (*EventMessage, error) {
	meta, err := logMeta(header, trx)
	if err != nil {
		return nil, err
	}
	return &EventMessage{
		Address: event.Address,
		Topics:  append([]meter.Bytes32(nil), event.Topics...),
		Data:    hexutil.Encode(event.Data),
		Meta:    meta,
	}, nil
}

// TransferMessage transfer piped by websocket
type TransferMessage struct {
	Sender    meter.Address        `json:"sender"`
	Recipient meter.Address        `json:"recipient"`
	Amount    string               `json:"amount"`
	Meta      transactions.LogMeta `json:"meta"`
}

func convertTransfer(header *block.Header, trx *tx.Transaction, transfer *tx.Transfer) (*TransferMessage, error) {
	meta, err := logMeta(header, trx)
	if err != nil {
		return nil, err
	}
	return &TransferMessage{
		Sender:    transfer.Sender,
		Recipient: transfer.Recipient,
		Amount:    hexutil.EncodeBig(transfer.Amount),
		Meta:      meta,
	}, nil
}

// EventFilter matches events by emitter and topics. Nil fields match anything.
type EventFilter struct {
	Address *meter.Address
	Topic0  *meter.Bytes32
	Topic1  *meter.Bytes32
	Topic2  *meter.Bytes32
	Topic3  *meter.Bytes32
	Topic4  *meter.Bytes32
}

func (ef *EventFilter) Match(event *tx.Event) bool {
	if ef.Address != nil && *ef.Address != event.Address {
		return false
	}
	matchTopic := func(topic *meter.Bytes32, index int) bool {
		if topic == nil {
			return true
		}
		if len(event.Topics) <= index {
			return false
		}
		return *topic == event.Topics[index]
	}
	return matchTopic(ef.Topic0, 0) &&
		matchTopic(ef.Topic1, 1) &&
		matchTopic(ef.Topic2, 2) &&
		matchTopic(ef.Topic3, 3) &&
		matchTopic(ef.Topic4, 4)
}

// TransferFilter matches transfers by tx origin, sender and recipient.
type TransferFilter struct {
	TxOrigin  *meter.Address
	Sender    *meter.Address
	Recipient *meter.Address
}

func (tf *TransferFilter) Match(transfer *tx.Transfer, origin meter.Address) bool {
	if tf.TxOrigin != nil && *tf.TxOrigin != origin {
		return false
	}
	if tf.Sender != nil && *tf.Sender != transfer.Sender {
		return false
	}
	if tf.Recipient != nil && *tf.Recipient != transfer.Recipient {
		return false
	}
	return true
}
