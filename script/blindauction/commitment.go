// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	"math/big"

	"github.com/meterio/sealed-auction/meter"
)

// CommitmentOf binds an item, an amount and a bidder into the opaque key
// under which a sealed bid is escrowed. amount must not be negative.
func CommitmentOf(itemID uint64, amount *big.Int, bidder meter.Address) meter.Bytes32 {
	if amount == nil {
		amount = new(big.Int)
	}
	return meter.Blake2bRLP([]interface{}{itemID, amount, bidder})
}
