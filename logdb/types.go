// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"fmt"
	"math/big"

	"github.com/meterio/sealed-auction/block"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/script/blindauction"
	"github.com/meterio/sealed-auction/tx"
)

// Event is a stored tx.Event. The auction fields are set for engine logs only.
type Event struct {
	BlockID     meter.Bytes32
	Index       uint32
	BlockNumber uint32
	BlockTime   uint64
	TxID        meter.Bytes32
	TxOrigin    meter.Address
	Address     meter.Address
	Topics      [5]*meter.Bytes32
	Data        []byte

	Name       string
	ItemID     *uint64
	Bidder     *meter.Address
	Commitment *meter.Bytes32
	Amount     *big.Int
}

func newEvent(header *block.Header, index uint32, txID meter.Bytes32, txOrigin meter.Address, txEvent *tx.Event) *Event {
	ev := &Event{
		BlockID:     header.ID(),
		Index:       index,
		BlockNumber: header.Number(),
		BlockTime:   header.Timestamp(),
		TxID:        txID,
		TxOrigin:    txOrigin,
		Address:     txEvent.Address,
		Data:        txEvent.Data,
	}
	for i := 0; i < len(txEvent.Topics) && i < len(ev.Topics); i++ {
		topic := txEvent.Topics[i]
		ev.Topics[i] = &topic
	}
	if txEvent.Address != blindauction.AuctionAccountAddr {
		return ev
	}
	info, err := blindauction.ParseEvent(txEvent.Topics, txEvent.Data)
	if err != nil {
		log.Warn("undecodable auction event", "tx", txID, "err", err)
		return ev
	}
	if info != nil {
		ev.Name = info.Name
		ev.ItemID = info.ItemID
		ev.Bidder = info.Bidder
		ev.Commitment = info.Commitment
		ev.Amount = info.Amount
	}
	return ev
}

// Transfer is a stored tx.Transfer.
type Transfer struct {
	BlockID     meter.Bytes32
	Index       uint32
	BlockNumber uint32
	BlockTime   uint64
	TxID        meter.Bytes32
	TxOrigin    meter.Address
	Sender      meter.Address
	Recipient   meter.Address
	Amount      *big.Int
}

func newTransfer(header *block.Header, index uint32, txID meter.Bytes32, txOrigin meter.Address, transfer *tx.Transfer) *Transfer {
	return &Transfer{
		BlockID:     header.ID(),
		Index:       index,
		BlockNumber: header.Number(),
		BlockTime:   header.Timestamp(),
		TxID:        txID,
		TxOrigin:    txOrigin,
		Sender:      transfer.Sender,
		Recipient:   transfer.Recipient,
		Amount:      transfer.Amount,
	}
}

type RangeType string

const (
	Block RangeType = "block"
	Time  RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events on every field that is set. Name, ItemID,
// Bidder and Commitment only match engine events.
type EventCriteria struct {
	Address    *meter.Address
	Topics     [5]*meter.Bytes32
	Name       string
	ItemID     *uint64
	Bidder     *meter.Address
	Commitment *meter.Bytes32
}

func (c *EventCriteria) clause() (cl clause) {
	if c.Address != nil {
		cl.eq("address", c.Address.Bytes())
	}
	for i, topic := range c.Topics {
		if topic != nil {
			cl.eq(fmt.Sprintf("topic%d", i), topic.Bytes())
		}
	}
	if c.Name != "" {
		cl.eq("name", c.Name)
	}
	if c.ItemID != nil {
		cl.eq("itemID", int64(*c.ItemID))
	}
	if c.Bidder != nil {
		cl.eq("bidder", c.Bidder.Bytes())
	}
	if c.Commitment != nil {
		cl.eq("commitment", c.Commitment.Bytes())
	}
	return
}

// EventFilter selects events matching any of CriteriaSet.
type EventFilter struct {
	TxID        *meter.Bytes32
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order //default asc
}

type TransferCriteria struct {
	TxOrigin  *meter.Address //who sent the transaction
	Sender    *meter.Address
	Recipient *meter.Address
}

func (c *TransferCriteria) clause() (cl clause) {
	if c.TxOrigin != nil {
		cl.eq("txOrigin", c.TxOrigin.Bytes())
	}
	if c.Sender != nil {
		cl.eq("sender", c.Sender.Bytes())
	}
	if c.Recipient != nil {
		cl.eq("recipient", c.Recipient.Bytes())
	}
	return
}

type TransferFilter struct {
	TxID        *meter.Bytes32
	CriteriaSet []*TransferCriteria
	Range       *Range
	Options     *Options
	Order       Order //default asc
}
