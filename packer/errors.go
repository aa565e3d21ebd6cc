// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import "errors"

var (
	errGasLimitReached = errors.New("gas limit reached")
	errKnownTx         = errors.New("known tx")
)

// badTxError a tx that can never be adopted.
type badTxError struct {
	msg string
}

func (e badTxError) Error() string {
	return "bad tx: " + e.msg
}

// IsBadTx returns whether the given error indicates a bad tx.
func IsBadTx(err error) bool {
	_, ok := err.(badTxError)
	return ok
}

// IsKnownTx returns whether the tx was already executed.
func IsKnownTx(err error) bool {
	return err == errKnownTx
}

// IsGasLimitReached returns whether the block can take no more txs.
func IsGasLimitReached(err error) bool {
	return err == errGasLimitReached
}
