// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	"log/slog"
	"math/big"

	"github.com/meterio/sealed-auction/meter"
	setypes "github.com/meterio/sealed-auction/script/types"
	"github.com/meterio/sealed-auction/state"
)

var (
	BlindAuctionGlobInst *BlindAuction
)

// BlindAuction runs the commit-reveal auction over the items of a registry.
type BlindAuction struct {
	stateCreator *state.Creator
	registry     RegistryFunc
	logger       *slog.Logger
}

func GetBlindAuctionGlobInst() *BlindAuction {
	return BlindAuctionGlobInst
}

func SetBlindAuctionGlobInst(inst *BlindAuction) {
	BlindAuctionGlobInst = inst
}

func NewBlindAuction(sc *state.Creator, registry RegistryFunc) *BlindAuction {
	a := &BlindAuction{
		stateCreator: sc,
		registry:     registry,
		logger:       slog.Default().With("pkg", "blindauction"),
	}
	SetBlindAuctionGlobInst(a)
	return a
}

func payable(op uint32) bool {
	return op == OP_PLACE_BID || op == OP_UNSEAL_BID
}

// Handler executes one operation. A failed operation leaves state untouched
// and returns no output.
func (a *BlindAuction) Handler(senv *setypes.ScriptEnv, payload []byte, to *meter.Address, gas uint64) (seOutput *setypes.ScriptEngineOutput, leftOverGas uint64, err error) {
	ab, err := DecodeFromBytes(payload)
	if err != nil {
		a.logger.Error("Decode script message failed", "error", err)
		return nil, gas, err
	}

	if senv == nil {
		panic("create blind auction enviroment failed")
	}

	if to == nil || *to != AuctionAccountAddr {
		return nil, gas, ErrWrongModuleAddress
	}

	opName := ab.GetOpName(ab.Opcode)
	a.logger.Debug("received blind auction", "body", ab.ToString())
	defer func() {
		opCounter.WithLabelValues(opName, ErrorCode(err)).Inc()
	}()

	if ab.Opcode < OP_SET_PHASE || ab.Opcode > OP_TRANSFER_OWNERSHIP {
		a.logger.Error("unknown Opcode", "Opcode", ab.Opcode)
		return nil, gas, ErrInvalidOpcode
	}

	state := senv.GetState()
	if err = a.enter(state); err != nil {
		a.logger.Warn("rejected reentrant call", "op", opName, "caller", senv.GetCaller())
		return nil, gas, err
	}
	defer a.leave(state)

	if !payable(ab.Opcode) && senv.GetValue().Sign() != 0 {
		err = ErrValueNotAccepted
		senv.SetReturnData([]byte(err.Error()))
		return nil, gas, err
	}

	chk := state.NewCheckpoint()
	switch ab.Opcode {
	case OP_SET_PHASE:
		leftOverGas, err = a.HandleSetPhase(senv, ab, gas)
	case OP_PLACE_BID:
		leftOverGas, err = a.HandlePlaceBid(senv, ab, gas)
	case OP_WITHDRAW_BID:
		leftOverGas, err = a.HandleWithdrawBid(senv, ab, gas)
	case OP_UNSEAL_BID:
		leftOverGas, err = a.HandleUnsealBid(senv, ab, gas)
	case OP_CLAIM_ITEM:
		leftOverGas, err = a.HandleClaimItem(senv, ab, gas)
	case OP_WITHDRAW_PROCEEDS:
		leftOverGas, err = a.HandleWithdrawProceeds(senv, ab, gas)
	case OP_TRANSFER_OWNERSHIP:
		leftOverGas, err = a.HandleTransferOwnership(senv, ab, gas)
	}

	if err != nil {
		state.RevertTo(chk)
		a.logger.Debug("blind auction operation failed", "op", opName, "caller", senv.GetCaller(), "err", err)
		return nil, leftOverGas, err
	}
	a.logger.Debug("Leaving script handler for operation", "op", opName)

	seOutput = senv.GetOutput()
	return
}

func chargeClause(gas uint64) uint64 {
	if gas < meter.ClauseGas {
		return 0
	}
	return gas - meter.ClauseGas
}

// read api

func (a *BlindAuction) CurrentPhase(state *state.State) Phase {
	return a.GetPhase(state)
}

func (a *BlindAuction) SealedBidByCommitment(state *state.State, commitment meter.Bytes32) *SealedBid {
	return a.GetSealedBid(state, commitment)
}

func (a *BlindAuction) HighestBidForItem(state *state.State, itemID uint64) *HighestBid {
	return a.GetHighestBid(state, itemID)
}

// IsClaimed reports whether the item has left the auction.
func (a *BlindAuction) IsClaimed(state *state.State, itemID uint64) bool {
	return a.GetClaimed(state, itemID)
}

// Registry returns the item registry bound to state.
func (a *BlindAuction) Registry(state *state.State) ItemRegistry {
	return a.registry(state)
}

// Init writes the configuration of a fresh auction.
func (a *BlindAuction) Init(state *state.State, owner meter.Address, minStake *big.Int, policy OutbidPolicy) {
	a.SetOwner(state, owner)
	a.SetMinStake(state, minStake)
	a.SetOutbidPolicy(state, policy)
	a.SetPhase(state, PhasePaused)
	a.SetAccounting(state, newAccounting())
}

// InitGenesis is Init for genesis building, where no engine instance exists yet.
func InitGenesis(state *state.State, owner meter.Address, minStake *big.Int, policy OutbidPolicy) {
	new(BlindAuction).Init(state, owner, minStake, policy)
}
