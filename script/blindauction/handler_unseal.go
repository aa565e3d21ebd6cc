// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	"math/big"

	setypes "github.com/meterio/sealed-auction/script/types"
)

// HandleUnsealBid opens a sealed bid. The commitment is recomputed from the
// revealed item, amount and the caller, and is consumed whatever the outcome.
//
// A reveal that cannot win (unknown, owned or claimed item, or an amount not
// above the current highest bid) is refunded in full. A winning reveal keeps
// exactly the amount and displaces the previous highest bid.
func (a *BlindAuction) HandleUnsealBid(env *setypes.ScriptEnv, ab *BlindAuctionBody, gas uint64) (leftOverGas uint64, err error) {
	var ret []byte
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
	}()
	state := env.GetState()
	leftOverGas = chargeClause(gas)

	if phase := a.GetPhase(state); phase != PhaseReveal {
		err = wrongPhase(PhaseReveal, phase)
		return
	}

	caller := env.GetCaller()
	amount := ab.Amount
	if amount == nil {
		amount = new(big.Int)
	}
	// no commitment can be placed for a negative amount
	if amount.Sign() < 0 {
		err = ErrBidNotActiveOrMismatch
		return
	}
	commitment := CommitmentOf(ab.ItemID, amount, caller)

	bid := a.GetSealedBid(state, commitment)
	if !bid.Active() || bid.Bidder != caller {
		err = ErrBidNotActiveOrMismatch
		return
	}
	acc := a.GetAccounting(state)
	if acc.Forfeits(bid) {
		err = ErrStakeForfeited
		return
	}
	a.SetSealedBid(state, commitment, &SealedBid{})
	acc.ActiveStake.Sub(acc.ActiveStake, bid.Stake)

	available := new(big.Int).Add(bid.Stake, env.GetValue())
	registry := a.registry(state)

	var ps payouts
	highest := a.GetHighestBid(state, ab.ItemID)
	switch {
	case !registry.Exists(ab.ItemID) || registry.IsOwned(ab.ItemID) || a.GetClaimed(state, ab.ItemID) || acc.Sold(highest):
		a.logger.Debug("reveal for unavailable item", "item", ab.ItemID, "bidder", caller)
		ps.add(caller, available)

	default:
		if amount.Cmp(highest.Amount) <= 0 {
			ps.add(caller, available)
			break
		}
		if available.Cmp(amount) < 0 {
			a.logger.Debug("reveal not covered", "item", ab.ItemID, "amount", amount, "available", available)
			err = ErrInsufficientRevealFunds
			return
		}
		ps.add(caller, new(big.Int).Sub(available, amount))

		if highest.Exists() {
			acc.Winning.Sub(acc.Winning, highest.Amount)
			switch a.GetOutbidPolicy(state) {
			case OutbidLockup:
				acc.Locked.Add(acc.Locked, highest.Amount)
			default:
				ps.add(highest.Bidder, highest.Amount)
			}
		}
		acc.Winning.Add(acc.Winning, amount)
		a.SetHighestBid(state, ab.ItemID, &HighestBid{Bidder: caller, Amount: amount, Round: acc.Round})
		emitRevealBid(env, ab.ItemID, amount, caller, commitment)
		a.logger.Debug("new highest bid", "item", ab.ItemID, "bidder", caller, "amount", amount, "outbid", highest.Bidder)
	}

	a.SetAccounting(state, acc)
	err = a.settle(env, ps)
	return
}
