// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/state"
	"github.com/meterio/sealed-auction/tx"
	"github.com/meterio/sealed-auction/xenv"
	"github.com/pkg/errors"
)

var (
	errGasPriceTooLow  = errors.New("gas price below base gas price")
	errGasExceedsLimit = errors.New("gas exceeds max tx gas")
	errIntrinsicGas    = errors.New("intrinsic gas exceeds provided gas")
	errNoTarget        = errors.New("clause has no target address")
	errInsufficientGas = errors.New("insufficient balance to pay for gas")
)

// ResolvedTransaction resolve the transaction according to given state.
type ResolvedTransaction struct {
	tx           *tx.Transaction
	Origin       meter.Address
	IntrinsicGas uint64
	Clauses      []*tx.Clause
}

// ResolveTransaction resolves the transaction and performs basic validation.
func ResolveTransaction(trx *tx.Transaction) (*ResolvedTransaction, error) {
	origin, err := trx.Origin()
	if err != nil {
		return nil, errors.WithMessage(err, "recover origin")
	}
	intrinsicGas, err := trx.IntrinsicGas()
	if err != nil {
		return nil, err
	}
	if trx.Gas() < intrinsicGas {
		return nil, errIntrinsicGas
	}
	if trx.Gas() > meter.MaxTxGas {
		return nil, errGasExceedsLimit
	}

	clauses := trx.Clauses()
	for _, clause := range clauses {
		if clause.To() == nil {
			return nil, errNoTarget
		}
		if clause.Value().Sign() < 0 {
			return nil, errors.New("clause with negative value")
		}
	}

	return &ResolvedTransaction{
		trx,
		origin,
		intrinsicGas,
		clauses,
	}, nil
}

// BuyGas prepays the full gas provision from the origin. returnGas gives
// unused gas back at the same price.
func (r *ResolvedTransaction) BuyGas(state *state.State, baseGasPrice *big.Int) (
	gasPrice *big.Int,
	payer meter.Address,
	returnGas func(uint64),
	err error,
) {
	gasPrice = r.tx.GasPrice()
	if baseGasPrice != nil && gasPrice.Cmp(baseGasPrice) < 0 {
		return nil, meter.Address{}, nil, errGasPriceTooLow
	}

	prepaid := new(big.Int).Mul(new(big.Int).SetUint64(r.tx.Gas()), gasPrice)
	if !state.SubBalance(r.Origin, prepaid) {
		return nil, meter.Address{}, nil, errInsufficientGas
	}

	payer = r.Origin
	returnGas = func(rgas uint64) {
		state.AddBalance(payer, new(big.Int).Mul(new(big.Int).SetUint64(rgas), gasPrice))
	}
	return gasPrice, payer, returnGas, nil
}

// ToContext create a tx context object.
func (r *ResolvedTransaction) ToContext(gasPrice *big.Int) *xenv.TransactionContext {
	return &xenv.TransactionContext{
		ID:       r.tx.ID(),
		Origin:   r.Origin,
		GasPrice: gasPrice,
		Nonce:    r.tx.Nonce(),
	}
}
