// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	setypes "github.com/meterio/sealed-auction/script/types"
)

func (a *BlindAuction) HandleSetPhase(env *setypes.ScriptEnv, ab *BlindAuctionBody, gas uint64) (leftOverGas uint64, err error) {
	var ret []byte
	defer func() {
		if err != nil {
			ret = []byte(err.Error())
		}
		env.SetReturnData(ret)
	}()
	state := env.GetState()
	leftOverGas = chargeClause(gas)

	if env.GetCaller() != a.GetOwner(state) {
		err = ErrUnauthorized
		return
	}

	next := Phase(ab.Phase)
	if !next.IsValid() {
		err = ErrUnknownPhase
		return
	}

	prev := a.GetPhase(state)
	a.SetPhase(state, next)
	emitPhaseChanged(env, prev, next)
	a.logger.Info("auction phase changed", "from", prev, "to", next)
	return
}

func (a *BlindAuction) HandleTransferOwnership(env *setypes.ScriptEnv, ab *BlindAuctionBody, gas uint64) (leftOverGas uint64, err error) {
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
	if ab.NewOwner.IsZero() {
		err = ErrInvalidOwner
		return
	}

	a.SetOwner(state, ab.NewOwner)
	emitOwnershipTransferred(env, owner, ab.NewOwner)
	a.logger.Info("auction ownership transferred", "from", owner, "to", ab.NewOwner)
	return
}
