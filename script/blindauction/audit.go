// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	"fmt"
	"math/big"

	"github.com/meterio/sealed-auction/state"
)

// AuditReport compares the engine balance against what it owes.
//
// Solvent holds while the balance covers every active stake and every current
// highest bid. Balanced holds when the balance matches all obligations
// exactly. A proceeds withdrawal settles all of them, stakes never revealed
// move to Forfeited, and both hold again afterwards.
type AuditReport struct {
	Balance     *big.Int
	ActiveStake *big.Int
	Winning     *big.Int
	Locked      *big.Int
	Forfeited   *big.Int
	Solvent     bool
	Balanced    bool
}

func (r *AuditReport) ToString() string {
	return fmt.Sprintf("AuditReport: Balance=%v, ActiveStake=%v, Winning=%v, Locked=%v, Forfeited=%v, Solvent=%v, Balanced=%v",
		r.Balance, r.ActiveStake, r.Winning, r.Locked, r.Forfeited, r.Solvent, r.Balanced)
}

func (a *BlindAuction) Audit(state *state.State) *AuditReport {
	acc := a.GetAccounting(state)
	balance := state.GetBalance(AuctionAccountAddr)

	owed := new(big.Int).Add(acc.ActiveStake, acc.Winning)
	total := new(big.Int).Add(owed, acc.Locked)
	return &AuditReport{
		Balance:     balance,
		ActiveStake: acc.ActiveStake,
		Winning:     acc.Winning,
		Locked:      acc.Locked,
		Forfeited:   acc.Forfeited,
		Solvent:     balance.Cmp(owed) >= 0,
		Balanced:    balance.Cmp(total) == 0,
	}
}
