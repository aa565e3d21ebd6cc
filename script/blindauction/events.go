// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/sealed-auction/meter"
	setypes "github.com/meterio/sealed-auction/script/types"
)

// Event IDs, the first topic of every log the engine emits.
var (
	CreateBidEvent            = meter.Blake2b([]byte("CreateBid(bytes32,uint256,address)"))
	WithdrawBidEvent          = meter.Blake2b([]byte("WithdrawBid(bytes32,address)"))
	RevealBidEvent            = meter.Blake2b([]byte("RevealBid(uint256,uint256,address,bytes32)"))
	PhaseChangedEvent         = meter.Blake2b([]byte("PhaseChanged(uint8,uint8)"))
	ItemClaimedEvent          = meter.Blake2b([]byte("ItemClaimed(uint256,address,uint256)"))
	ProceedsWithdrawnEvent    = meter.Blake2b([]byte("ProceedsWithdrawn(address,uint256)"))
	OwnershipTransferredEvent = meter.Blake2b([]byte("OwnershipTransferred(address,address)"))
)

func addressTopic(addr meter.Address) meter.Bytes32 {
	return meter.BytesToBytes32(addr.Bytes())
}

func uintTopic(v uint64) meter.Bytes32 {
	return meter.BytesToBytes32(be64(v))
}

func encodeData(vals ...interface{}) []byte {
	data, err := rlp.EncodeToBytes(vals)
	if err != nil {
		panic(err)
	}
	return data
}

func emitCreateBid(env *setypes.ScriptEnv, commitment meter.Bytes32, stake *big.Int, bidder meter.Address) {
	env.AddEvent(AuctionAccountAddr,
		[]meter.Bytes32{CreateBidEvent, commitment, addressTopic(bidder)},
		encodeData(stake))
}

func emitWithdrawBid(env *setypes.ScriptEnv, commitment meter.Bytes32, bidder meter.Address) {
	env.AddEvent(AuctionAccountAddr,
		[]meter.Bytes32{WithdrawBidEvent, commitment, addressTopic(bidder)},
		nil)
}

func emitRevealBid(env *setypes.ScriptEnv, itemID uint64, amount *big.Int, bidder meter.Address, commitment meter.Bytes32) {
	env.AddEvent(AuctionAccountAddr,
		[]meter.Bytes32{RevealBidEvent, uintTopic(itemID), addressTopic(bidder)},
		encodeData(amount, commitment))
}

func emitPhaseChanged(env *setypes.ScriptEnv, from, to Phase) {
	env.AddEvent(AuctionAccountAddr,
		[]meter.Bytes32{PhaseChangedEvent},
		encodeData(uint32(from), uint32(to)))
}

func emitItemClaimed(env *setypes.ScriptEnv, itemID uint64, winner meter.Address, amount *big.Int) {
	env.AddEvent(AuctionAccountAddr,
		[]meter.Bytes32{ItemClaimedEvent, uintTopic(itemID), addressTopic(winner)},
		encodeData(amount))
}

func emitProceedsWithdrawn(env *setypes.ScriptEnv, owner meter.Address, amount *big.Int) {
	env.AddEvent(AuctionAccountAddr,
		[]meter.Bytes32{ProceedsWithdrawnEvent, addressTopic(owner)},
		encodeData(amount))
}

func emitOwnershipTransferred(env *setypes.ScriptEnv, from, to meter.Address) {
	env.AddEvent(AuctionAccountAddr,
		[]meter.Bytes32{OwnershipTransferredEvent, addressTopic(from), addressTopic(to)},
		nil)
}

// RevealBidData is the decoded payload of a RevealBid log.
type RevealBidData struct {
	Amount     *big.Int
	Commitment meter.Bytes32
}

func DecodeRevealBidData(data []byte) (*RevealBidData, error) {
	d := RevealBidData{}
	err := rlp.DecodeBytes(data, &d)
	return &d, err
}

var errMalformedEvent = errors.New("malformed auction event")

// EventInfo is what an engine log says about the auction. Fields the event
// does not carry are nil.
type EventInfo struct {
	Name       string
	ItemID     *uint64
	Bidder     *meter.Address
	Commitment *meter.Bytes32
	Amount     *big.Int
}

var eventNames = map[meter.Bytes32]string{
	CreateBidEvent:            "CreateBid",
	WithdrawBidEvent:          "WithdrawBid",
	RevealBidEvent:            "RevealBid",
	PhaseChangedEvent:         "PhaseChanged",
	ItemClaimedEvent:          "ItemClaimed",
	ProceedsWithdrawnEvent:    "ProceedsWithdrawn",
	OwnershipTransferredEvent: "OwnershipTransferred",
}

// ParseEvent decodes a log emitted by the engine. It returns nil for logs
// with an unknown event ID.
func ParseEvent(topics []meter.Bytes32, data []byte) (*EventInfo, error) {
	if len(topics) == 0 {
		return nil, nil
	}
	name, ok := eventNames[topics[0]]
	if !ok {
		return nil, nil
	}
	info := &EventInfo{Name: name}

	switch topics[0] {
	case CreateBidEvent, WithdrawBidEvent, RevealBidEvent, ItemClaimedEvent:
		if len(topics) < 3 {
			return nil, errMalformedEvent
		}
	}
	bidderAt := func(i int) *meter.Address {
		addr := meter.BytesToAddress(topics[i][12:])
		return &addr
	}
	itemAt := func(i int) *uint64 {
		id := binary.BigEndian.Uint64(topics[i][24:])
		return &id
	}
	amountOf := func() (*big.Int, error) {
		var vals []*big.Int
		if err := rlp.DecodeBytes(data, &vals); err != nil || len(vals) == 0 {
			return nil, errMalformedEvent
		}
		return vals[0], nil
	}

	var err error
	switch topics[0] {
	case CreateBidEvent:
		c := topics[1]
		info.Commitment, info.Bidder = &c, bidderAt(2)
		info.Amount, err = amountOf()
	case WithdrawBidEvent:
		c := topics[1]
		info.Commitment, info.Bidder = &c, bidderAt(2)
	case RevealBidEvent:
		info.ItemID, info.Bidder = itemAt(1), bidderAt(2)
		var d *RevealBidData
		if d, err = DecodeRevealBidData(data); err == nil {
			info.Amount, info.Commitment = d.Amount, &d.Commitment
		}
	case ItemClaimedEvent:
		info.ItemID, info.Bidder = itemAt(1), bidderAt(2)
		info.Amount, err = amountOf()
	case ProceedsWithdrawnEvent:
		info.Amount, err = amountOf()
	}
	if err != nil {
		return nil, errMalformedEvent
	}
	return info, nil
}
