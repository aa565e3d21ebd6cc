// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"fmt"
	"math/big"

	"github.com/meterio/sealed-auction/meter"
)

// BlockContext block context.
type BlockContext struct {
	Beneficiary meter.Address
	Number      uint32
	Time        uint64
}

// TransactionContext transaction context.
type TransactionContext struct {
	ID       meter.Bytes32
	Origin   meter.Address
	GasPrice *big.Int
	Nonce    uint64
}

func (ctx *TransactionContext) String() string {
	return fmt.Sprintf("txCtx{ID:%s Origin:%s GasPrice:%s Nonce:%d}", ctx.ID.String(), ctx.Origin.String(), ctx.GasPrice.String(), ctx.Nonce)
}
