// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/sealed-auction/meter"
)

// BlindAuctionBody is the payload of one engine operation.
// Fields an opcode does not use are left zero.
type BlindAuctionBody struct {
	Opcode     uint32
	Phase      uint32
	ItemID     uint64
	Amount     *big.Int
	Commitment meter.Bytes32
	NewOwner   meter.Address
}

func (ab *BlindAuctionBody) ToString() string {
	return fmt.Sprintf("BlindAuctionBody: Opcode=%v, Phase=%v, ItemID=%v, Amount=%v, Commitment=%v, NewOwner=%v",
		ab.Opcode, ab.Phase, ab.ItemID, ab.Amount, ab.Commitment, ab.NewOwner)
}

func (ab *BlindAuctionBody) String() string {
	return ab.ToString()
}

func (ab *BlindAuctionBody) GetOpName(op uint32) string {
	switch op {
	case OP_SET_PHASE:
		return "setPhase"
	case OP_PLACE_BID:
		return "placeSealedBid"
	case OP_WITHDRAW_BID:
		return "withdrawSealedBid"
	case OP_UNSEAL_BID:
		return "unsealBid"
	case OP_CLAIM_ITEM:
		return "claimItem"
	case OP_WITHDRAW_PROCEEDS:
		return "withdrawProceeds"
	case OP_TRANSFER_OWNERSHIP:
		return "transferOwnership"
	default:
		return "Unknown"
	}
}

func DecodeFromBytes(bytes []byte) (*BlindAuctionBody, error) {
	ab := BlindAuctionBody{}
	err := rlp.DecodeBytes(bytes, &ab)
	return &ab, err
}

func NewSetPhaseBody(p Phase) *BlindAuctionBody {
	return &BlindAuctionBody{Opcode: OP_SET_PHASE, Phase: uint32(p)}
}

func NewPlaceBidBody(commitment meter.Bytes32) *BlindAuctionBody {
	return &BlindAuctionBody{Opcode: OP_PLACE_BID, Commitment: commitment}
}

func NewWithdrawBidBody(commitment meter.Bytes32) *BlindAuctionBody {
	return &BlindAuctionBody{Opcode: OP_WITHDRAW_BID, Commitment: commitment}
}

func NewUnsealBidBody(itemID uint64, amount *big.Int) *BlindAuctionBody {
	return &BlindAuctionBody{Opcode: OP_UNSEAL_BID, ItemID: itemID, Amount: amount}
}

func NewClaimItemBody(itemID uint64) *BlindAuctionBody {
	return &BlindAuctionBody{Opcode: OP_CLAIM_ITEM, ItemID: itemID}
}

func NewWithdrawProceedsBody() *BlindAuctionBody {
	return &BlindAuctionBody{Opcode: OP_WITHDRAW_PROCEEDS}
}

func NewTransferOwnershipBody(newOwner meter.Address) *BlindAuctionBody {
	return &BlindAuctionBody{Opcode: OP_TRANSFER_OWNERSHIP, NewOwner: newOwner}
}
