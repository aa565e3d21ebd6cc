// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	"errors"
	"fmt"
)

var (
	ErrWrongPhase              = errors.New("operation not allowed in the current phase")
	ErrUnauthorized            = errors.New("caller is not the owner")
	ErrInsufficientCollateral  = errors.New("stake is below the minimum")
	ErrCommitmentAlreadyActive = errors.New("commitment is already active")
	ErrBidInactive             = errors.New("bid does not exist")
	ErrNotBidder               = errors.New("caller is not the bidder")
	ErrBidNotActiveOrMismatch  = errors.New("no active bid matches the revealed values")
	ErrInsufficientRevealFunds = errors.New("stake plus extra value does not cover the bid amount")
	ErrAlreadyClaimed          = errors.New("item has already been claimed")
	ErrNotHighestBidder        = errors.New("caller is not the highest bidder")
	ErrUnknownPhase            = errors.New("unknown phase")
	ErrValueNotAccepted        = errors.New("operation does not accept value")
	ErrReentrant               = errors.New("reentrant call")
	ErrInvalidOwner            = errors.New("new owner is the zero address")
	ErrPayoutFailed            = errors.New("payout failed")
	ErrStakeForfeited          = errors.New("stake was forfeited to the owner")
	ErrInvalidOpcode           = errors.New("unknown blind auction opcode")
	ErrWrongModuleAddress      = errors.New("to address is not the blind auction account")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrWrongPhase, "wrong_phase"},
	{ErrUnauthorized, "unauthorized"},
	{ErrInsufficientCollateral, "insufficient_collateral"},
	{ErrCommitmentAlreadyActive, "commitment_active"},
	{ErrBidInactive, "bid_inactive"},
	{ErrNotBidder, "not_bidder"},
	{ErrBidNotActiveOrMismatch, "bid_mismatch"},
	{ErrInsufficientRevealFunds, "insufficient_reveal_funds"},
	{ErrAlreadyClaimed, "already_claimed"},
	{ErrNotHighestBidder, "not_highest_bidder"},
	{ErrUnknownPhase, "unknown_phase"},
	{ErrValueNotAccepted, "value_not_accepted"},
	{ErrReentrant, "reentrant"},
	{ErrInvalidOwner, "invalid_owner"},
	{ErrPayoutFailed, "payout_failed"},
	{ErrStakeForfeited, "stake_forfeited"},
	{ErrInvalidOpcode, "invalid_opcode"},
	{ErrWrongModuleAddress, "wrong_address"},
}

// ErrorCode maps an engine error to a short stable label.
func ErrorCode(err error) string {
	if err == nil {
		return "ok"
	}
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "other"
}

func wrongPhase(want, got Phase) error {
	return fmt.Errorf("%w: want %v, got %v", ErrWrongPhase, want, got)
}
