// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"math/big"

	"github.com/meterio/sealed-auction/meter"
)

// Receipt represents the results of a transaction.
type Receipt struct {
	// gas used by this tx
	GasUsed uint64
	// the one who paid for gas
	GasPayer meter.Address
	// energy paid for used gas
	Paid *big.Int
	// fee that the beneficiary received
	Reward *big.Int
	// if the tx reverted
	Reverted bool
	// error text of the failing clause, empty unless reverted
	RevertReason string
	// outputs of clauses in tx
	Outputs []*Output
}

// Output output of clause execution.
type Output struct {
	// events produced by the clause
	Events Events
	// transfer occurred in clause
	Transfers Transfers
	// return data of the clause
	Data []byte
}

// Receipts slice of receipts.
type Receipts []*Receipt

// RootHash computes a digest of the receipts.
func (rs Receipts) RootHash() meter.Bytes32 {
	return meter.Blake2bRLP(rs)
}
