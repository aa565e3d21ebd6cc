// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/meterio/sealed-auction/meter"
)

// Phase is the global auction state. The zero value is Paused.
type Phase uint32

const (
	PhasePaused Phase = iota
	PhaseBidding
	PhaseReveal
	PhaseClaim
)

var phaseNames = [...]string{"Paused", "Bidding", "Reveal", "Claim"}

func (p Phase) IsValid() bool {
	return int(p) < len(phaseNames)
}

func (p Phase) String() string {
	if !p.IsValid() {
		return fmt.Sprintf("Phase(%d)", uint32(p))
	}
	return phaseNames[p]
}

// ParsePhase accepts a phase name, case insensitive, or its number.
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if strings.EqualFold(s, name) {
			return Phase(i), nil
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || !Phase(n).IsValid() {
		return 0, ErrUnknownPhase
	}
	return Phase(n), nil
}

// OutbidPolicy decides what happens to the amount of an overtaken highest bid.
type OutbidPolicy uint32

const (
	// OutbidRefund pays the displaced bidder back at once.
	OutbidRefund OutbidPolicy = iota
	// OutbidLockup keeps the displaced amount in the engine account.
	OutbidLockup
)

func (p OutbidPolicy) String() string {
	switch p {
	case OutbidRefund:
		return "refund"
	case OutbidLockup:
		return "lockup"
	default:
		return fmt.Sprintf("OutbidPolicy(%d)", uint32(p))
	}
}

func ParseOutbidPolicy(s string) (OutbidPolicy, error) {
	switch strings.ToLower(s) {
	case "", "refund":
		return OutbidRefund, nil
	case "lockup":
		return OutbidLockup, nil
	}
	return 0, fmt.Errorf("unknown outbid policy %q", s)
}

// SealedBid is the escrow record behind a commitment.
// A zero Bidder means the commitment is not active. Round is the sweep round
// the stake was placed in; a proceeds withdrawal forfeits every older stake.
type SealedBid struct {
	Bidder meter.Address
	Stake  *big.Int
	Round  uint64
}

func (b *SealedBid) Active() bool {
	return !b.Bidder.IsZero()
}

func (b *SealedBid) ToString() string {
	return fmt.Sprintf("SealedBid: Bidder=%v, Stake=%v, Round=%v, Active=%v", b.Bidder, b.Stake, b.Round, b.Active())
}

// HighestBid is the best revealed bid on an item. A zero Bidder means none.
type HighestBid struct {
	Bidder meter.Address
	Amount *big.Int
	Round  uint64
}

func (b *HighestBid) Exists() bool {
	return !b.Bidder.IsZero()
}

func (b *HighestBid) ToString() string {
	return fmt.Sprintf("HighestBid: Bidder=%v, Amount=%v", b.Bidder, b.Amount)
}

// Accounting tracks what the engine account owes.
type Accounting struct {
	ActiveStake *big.Int // stakes behind active commitments of the current round
	Winning     *big.Int // amounts backing current highest bids
	Locked      *big.Int // overtaken amounts kept under the lockup policy
	Forfeited   *big.Int // unrevealed stakes swept to the owner so far
	Round       uint64   // proceeds withdrawals so far
}

func newAccounting() *Accounting {
	return &Accounting{new(big.Int), new(big.Int), new(big.Int), new(big.Int), 0}
}

func (a *Accounting) ToString() string {
	return fmt.Sprintf("Accounting: ActiveStake=%v, Winning=%v, Locked=%v, Forfeited=%v, Round=%v",
		a.ActiveStake, a.Winning, a.Locked, a.Forfeited, a.Round)
}

// Sold reports whether the amount behind hb was already paid to the owner.
func (a *Accounting) Sold(hb *HighestBid) bool {
	return hb.Exists() && hb.Round < a.Round
}

// Forfeits reports whether the stake of bid was swept by a proceeds withdrawal.
func (a *Accounting) Forfeits(bid *SealedBid) bool {
	return bid.Active() && bid.Round < a.Round
}
