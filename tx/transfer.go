// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"math/big"

	"github.com/meterio/sealed-auction/meter"
)

// Transfer native currency transfer log.
type Transfer struct {
	Sender    meter.Address
	Recipient meter.Address
	Amount    *big.Int
}

// Transfers slisce of transfer logs.
type Transfers []*Transfer

// Total sums the amount of all transfers.
func (ts Transfers) Total() *big.Int {
	sum := new(big.Int)
	for _, t := range ts {
		sum.Add(sum, t.Amount)
	}
	return sum
}
