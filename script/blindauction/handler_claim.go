// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	setypes "github.com/meterio/sealed-auction/script/types"
)

// HandleClaimItem marks the item claimed and then asks the registry to hand it
// to the highest bidder.
func (a *BlindAuction) HandleClaimItem(env *setypes.ScriptEnv, ab *BlindAuctionBody, gas uint64) (leftOverGas uint64, err error) {
	var ret []byte
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
	}()
	state := env.GetState()
	leftOverGas = chargeClause(gas)

	if phase := a.GetPhase(state); phase != PhaseClaim {
		err = wrongPhase(PhaseClaim, phase)
		return
	}

	registry := a.registry(state)
	if a.GetClaimed(state, ab.ItemID) || registry.IsOwned(ab.ItemID) {
		err = ErrAlreadyClaimed
		return
	}

	caller := env.GetCaller()
	highest := a.GetHighestBid(state, ab.ItemID)
	if !highest.Exists() || highest.Bidder != caller {
		err = ErrNotHighestBidder
		return
	}

	a.SetClaimed(state, ab.ItemID)
	emitItemClaimed(env, ab.ItemID, caller, highest.Amount)

	if err = registry.TransferOwnership(ab.ItemID, caller); err != nil {
		a.logger.Error("item transfer failed", "item", ab.ItemID, "to", caller, "err", err)
		return
	}
	a.logger.Info("item claimed", "item", ab.ItemID, "winner", caller, "amount", highest.Amount)
	return
}

// HandleWithdrawProceeds sweeps the whole auction balance to the owner.
func (a *BlindAuction) HandleWithdrawProceeds(env *setypes.ScriptEnv, ab *BlindAuctionBody, gas uint64) (leftOverGas uint64, err error) {
	var ret []byte
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
	}()
	state := env.GetState()
	leftOverGas = chargeClause(gas)

	owner := a.GetOwner(state)
	if env.GetCaller() != owner {
		err = ErrUnauthorized
		return
	}
	if phase := a.GetPhase(state); phase != PhaseClaim {
		err = wrongPhase(PhaseClaim, phase)
		return
	}

	balance := state.GetBalance(AuctionAccountAddr)
	acc := a.GetAccounting(state)
	acc.Forfeited.Add(acc.Forfeited, acc.ActiveStake)
	acc.ActiveStake.SetInt64(0)
	acc.Winning.SetInt64(0)
	acc.Locked.SetInt64(0)
	acc.Round++
	a.SetAccounting(state, acc)
	emitProceedsWithdrawn(env, owner, balance)

	var ps payouts
	ps.add(owner, balance)
	if err = a.settle(env, ps); err != nil {
		return
	}
	a.logger.Info("proceeds withdrawn", "owner", owner, "amount", balance)
	return
}
