// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	"encoding/binary"

	"github.com/meterio/sealed-auction/meter"
)

const (
	OP_SET_PHASE          = uint32(1)
	OP_PLACE_BID          = uint32(2)
	OP_WITHDRAW_BID       = uint32(3)
	OP_UNSEAL_BID         = uint32(4)
	OP_CLAIM_ITEM         = uint32(5)
	OP_WITHDRAW_PROCEEDS  = uint32(6)
	OP_TRANSFER_OWNERSHIP = uint32(7)
)

var (
	// AuctionAccountAddr escrows every stake and holds the engine storage.
	AuctionAccountAddr = meter.BytesToAddress([]byte("sealed-auction-account"))

	PhaseKey        = meter.Blake2b([]byte("phase-key"))
	OwnerKey        = meter.Blake2b([]byte("owner-key"))
	MinStakeKey     = meter.Blake2b([]byte("min-stake-key"))
	OutbidPolicyKey = meter.Blake2b([]byte("outbid-policy-key"))
	AccountingKey   = meter.Blake2b([]byte("accounting-key"))
	GuardKey        = meter.Blake2b([]byte("reentrancy-guard-key"))
)

func sealedBidKey(commitment meter.Bytes32) meter.Bytes32 {
	return meter.Blake2b([]byte("sealed-bid"), commitment[:])
}

func highestBidKey(itemID uint64) meter.Bytes32 {
	return meter.Blake2b([]byte("highest-bid"), be64(itemID))
}

func claimedKey(itemID uint64) meter.Bytes32 {
	return meter.Blake2b([]byte("claimed"), be64(itemID))
}

func be64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}
