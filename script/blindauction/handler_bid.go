// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	setypes "github.com/meterio/sealed-auction/script/types"
)

// HandlePlaceBid escrows the attached value as the stake behind a commitment.
// The value has already been credited to the auction account.
func (a *BlindAuction) HandlePlaceBid(env *setypes.ScriptEnv, ab *BlindAuctionBody, gas uint64) (leftOverGas uint64, err error) {
	var ret []byte
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
	}()
	state := env.GetState()
	leftOverGas = chargeClause(gas)

	if phase := a.GetPhase(state); phase != PhaseBidding {
		err = wrongPhase(PhaseBidding, phase)
		return
	}

	stake := env.GetValue()
	if minStake := a.GetMinStake(state); stake.Cmp(minStake) < 0 {
		a.logger.Debug("stake below minimum", "stake", stake, "min", minStake)
		err = ErrInsufficientCollateral
		return
	}

	if bid := a.GetSealedBid(state, ab.Commitment); bid.Active() {
		err = ErrCommitmentAlreadyActive
		return
	}

	caller := env.GetCaller()
	acc := a.GetAccounting(state)
	a.SetSealedBid(state, ab.Commitment, &SealedBid{Bidder: caller, Stake: stake, Round: acc.Round})
	acc.ActiveStake.Add(acc.ActiveStake, stake)
	a.SetAccounting(state, acc)

	emitCreateBid(env, ab.Commitment, stake, caller)
	a.logger.Debug("sealed bid placed", "commitment", ab.Commitment, "bidder", caller, "stake", stake)
	return
}

// HandleWithdrawBid hands the stake of an unrevealed commitment back to its bidder.
func (a *BlindAuction) HandleWithdrawBid(env *setypes.ScriptEnv, ab *BlindAuctionBody, gas uint64) (leftOverGas uint64, err error) {
	var ret []byte
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
	}()
	state := env.GetState()
	leftOverGas = chargeClause(gas)

	if phase := a.GetPhase(state); phase != PhaseBidding {
		err = wrongPhase(PhaseBidding, phase)
		return
	}

	bid := a.GetSealedBid(state, ab.Commitment)
	if !bid.Active() {
		err = ErrBidInactive
		return
	}
	caller := env.GetCaller()
	if bid.Bidder != caller {
		err = ErrNotBidder
		return
	}
	acc := a.GetAccounting(state)
	if acc.Forfeits(bid) {
		err = ErrStakeForfeited
		return
	}

	a.SetSealedBid(state, ab.Commitment, &SealedBid{})
	acc.ActiveStake.Sub(acc.ActiveStake, bid.Stake)
	a.SetAccounting(state, acc)
	emitWithdrawBid(env, ab.Commitment, caller)

	var ps payouts
	ps.add(caller, bid.Stake)
	err = a.settle(env, ps)
	return
}
