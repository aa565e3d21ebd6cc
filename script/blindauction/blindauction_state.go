// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/state"
)

func (a *BlindAuction) GetPhase(state *state.State) (result Phase) {
	state.DecodeStorage(AuctionAccountAddr, PhaseKey, func(raw []byte) error {
		if len(raw) == 0 {
			result = PhasePaused
			return nil
		}
		return rlp.DecodeBytes(raw, &result)
	})
	return
}

func (a *BlindAuction) SetPhase(state *state.State, p Phase) {
	state.EncodeStorage(AuctionAccountAddr, PhaseKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(p)
	})
}

func (a *BlindAuction) GetOwner(state *state.State) (owner meter.Address) {
	state.DecodeStorage(AuctionAccountAddr, OwnerKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &owner)
	})
	return
}

func (a *BlindAuction) SetOwner(state *state.State, owner meter.Address) {
	state.EncodeStorage(AuctionAccountAddr, OwnerKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(&owner)
	})
}

// GetMinStake falls back to meter.InitialMinStake until one is configured.
func (a *BlindAuction) GetMinStake(state *state.State) (result *big.Int) {
	state.DecodeStorage(AuctionAccountAddr, MinStakeKey, func(raw []byte) error {
		if len(raw) == 0 {
			result = new(big.Int).Set(meter.InitialMinStake)
			return nil
		}
		result = new(big.Int)
		return rlp.DecodeBytes(raw, result)
	})
	return
}

func (a *BlindAuction) SetMinStake(state *state.State, minStake *big.Int) {
	state.EncodeStorage(AuctionAccountAddr, MinStakeKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(minStake)
	})
}

func (a *BlindAuction) GetOutbidPolicy(state *state.State) (result OutbidPolicy) {
	state.DecodeStorage(AuctionAccountAddr, OutbidPolicyKey, func(raw []byte) error {
		if len(raw) == 0 {
			result = OutbidRefund
			return nil
		}
		return rlp.DecodeBytes(raw, &result)
	})
	return
}

func (a *BlindAuction) SetOutbidPolicy(state *state.State, p OutbidPolicy) {
	state.EncodeStorage(AuctionAccountAddr, OutbidPolicyKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(p)
	})
}

// GetSealedBid never returns nil. Unknown commitments read as inactive.
func (a *BlindAuction) GetSealedBid(state *state.State, commitment meter.Bytes32) (result *SealedBid) {
	result = &SealedBid{Stake: new(big.Int)}
	state.DecodeStorage(AuctionAccountAddr, sealedBidKey(commitment), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, result)
	})
	return
}

// SetSealedBid deletes the record when bid is inactive.
func (a *BlindAuction) SetSealedBid(state *state.State, commitment meter.Bytes32, bid *SealedBid) {
	state.EncodeStorage(AuctionAccountAddr, sealedBidKey(commitment), func() ([]byte, error) {
		if !bid.Active() {
			return nil, nil
		}
		return rlp.EncodeToBytes(bid)
	})
}

func (a *BlindAuction) GetHighestBid(state *state.State, itemID uint64) (result *HighestBid) {
	result = &HighestBid{Amount: new(big.Int)}
	state.DecodeStorage(AuctionAccountAddr, highestBidKey(itemID), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, result)
	})
	return
}

func (a *BlindAuction) SetHighestBid(state *state.State, itemID uint64, bid *HighestBid) {
	state.EncodeStorage(AuctionAccountAddr, highestBidKey(itemID), func() ([]byte, error) {
		if !bid.Exists() {
			return nil, nil
		}
		return rlp.EncodeToBytes(bid)
	})
}

func (a *BlindAuction) GetClaimed(state *state.State, itemID uint64) bool {
	return len(state.GetRawStorage(AuctionAccountAddr, claimedKey(itemID))) > 0
}

func (a *BlindAuction) SetClaimed(state *state.State, itemID uint64) {
	state.SetRawStorage(AuctionAccountAddr, claimedKey(itemID), rlp.RawValue{0x01})
}

func (a *BlindAuction) GetAccounting(state *state.State) (result *Accounting) {
	result = newAccounting()
	state.DecodeStorage(AuctionAccountAddr, AccountingKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, result)
	})
	return
}

func (a *BlindAuction) SetAccounting(state *state.State, acc *Accounting) {
	state.EncodeStorage(AuctionAccountAddr, AccountingKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(acc)
	})
}

// enter takes the reentrancy guard. It is released by leave.
func (a *BlindAuction) enter(state *state.State) error {
	if len(state.GetRawStorage(AuctionAccountAddr, GuardKey)) > 0 {
		return ErrReentrant
	}
	state.SetRawStorage(AuctionAccountAddr, GuardKey, rlp.RawValue{0x01})
	return nil
}

func (a *BlindAuction) leave(state *state.State) {
	state.SetRawStorage(AuctionAccountAddr, GuardKey, nil)
}
