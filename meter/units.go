// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimals of the native currency, 1 unit = 1e18 wei.
const Decimals = 18

var (
	errNegativeAmount = errors.New("negative amount")
	errSubWeiAmount   = errors.New("amount has digits below one wei")
)

// ParseUnits parses a decimal string such as "0.2" into wei.
func ParseUnits(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	if d.Sign() < 0 {
		return nil, errNegativeAmount
	}
	wei := d.Shift(Decimals)
	if !wei.IsInteger() {
		return nil, errSubWeiAmount
	}
	return wei.BigInt(), nil
}

// MustParseUnits is ParseUnits that panics on error.
func MustParseUnits(s string) *big.Int {
	v, err := ParseUnits(s)
	if err != nil {
		panic(err)
	}
	return v
}

// FormatUnits renders wei as a decimal string of whole units.
func FormatUnits(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -Decimals).String()
}
