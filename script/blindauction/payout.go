// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	"fmt"
	"math/big"

	"github.com/meterio/sealed-auction/meter"
	setypes "github.com/meterio/sealed-auction/script/types"
)

type payout struct {
	to     meter.Address
	amount *big.Int
}

// payouts are queued while records are updated and settled last.
type payouts []payout

func (ps *payouts) add(to meter.Address, amount *big.Int) {
	if amount.Sign() <= 0 {
		return
	}
	*ps = append(*ps, payout{to, new(big.Int).Set(amount)})
}

func (a *BlindAuction) settle(env *setypes.ScriptEnv, ps payouts) error {
	for _, p := range ps {
		if err := env.Pay(AuctionAccountAddr, p.to, p.amount); err != nil {
			a.logger.Error("payout failed", "to", p.to, "amount", p.amount, "err", err)
			return fmt.Errorf("%w: %v", ErrPayoutFailed, err)
		}
	}
	return nil
}
