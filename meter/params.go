// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import (
	"math/big"

	"github.com/ethereum/go-ethereum/params"
)

// Constants of the ledger.
const (
	BlockInterval uint64 = 10 // expected seconds between two blocks, used for clock drift checks.

	TxGas     uint64 = 5000
	ClauseGas uint64 = params.TxGas - TxGas

	MaxTxGas uint64 = 10 * 1000 * 1000

	// DefaultCatalogueSize number of items on sale when the config does not say otherwise.
	DefaultCatalogueSize uint64 = 100
)

var (
	InitialBaseGasPrice = big.NewInt(5e11) // each clause is about 0.01 unit

	// InitialMinStake is the collateral floor of a sealed bid, 0.2 unit.
	InitialMinStake = big.NewInt(2e17)
)
