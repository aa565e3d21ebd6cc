// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/tx"
	"github.com/stretchr/testify/assert"
)

func TestTx(t *testing.T) {
	to := meter.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	trx := new(tx.Builder).
		ChainTag(1).
		Clause(tx.NewClause(&to).WithValue(big.NewInt(10000)).WithData([]byte{0, 0, 0, 0x60, 0x60, 0x60})).
		Clause(tx.NewClause(&to).WithValue(big.NewInt(20000))).
		Gas(50000).
		GasPrice(big.NewInt(1)).
		Nonce(12345678).
		Build()

	gas, err := trx.IntrinsicGas()
	assert.Nil(t, err)
	assert.Equal(t, meter.TxGas+2*meter.ClauseGas, gas)
	assert.Equal(t, big.NewInt(30000), trx.TotalValue())

	key, _ := crypto.GenerateKey()
	signed, err := trx.Sign(key)
	assert.Nil(t, err)

	origin, err := signed.Origin()
	assert.Nil(t, err)
	assert.Equal(t, meter.Address(crypto.PubkeyToAddress(key.PublicKey)), origin)
	assert.Equal(t, trx.SigningHash(), signed.SigningHash())
	assert.False(t, signed.ID().IsZero())

	// unsigned tx has no origin and a zero id
	_, err = trx.Origin()
	assert.NotNil(t, err)
	assert.True(t, trx.ID().IsZero())

	raw, err := rlp.EncodeToBytes(signed)
	assert.Nil(t, err)
	var decoded tx.Transaction
	assert.Nil(t, rlp.DecodeBytes(raw, &decoded))
	assert.Equal(t, signed.ID(), decoded.ID())
	assert.Equal(t, 2, len(decoded.Clauses()))
	assert.Equal(t, &to, decoded.Clauses()[0].To())
	assert.Equal(t, []byte{0, 0, 0, 0x60, 0x60, 0x60}, decoded.Clauses()[0].Data())
}

func TestNoClause(t *testing.T) {
	trx := new(tx.Builder).Gas(21000).Build()
	_, err := trx.IntrinsicGas()
	assert.NotNil(t, err)
}

func TestNilTo(t *testing.T) {
	c := tx.NewClause(nil).WithValue(big.NewInt(1))
	raw, err := rlp.EncodeToBytes(c)
	assert.Nil(t, err)
	var decoded tx.Clause
	assert.Nil(t, rlp.DecodeBytes(raw, &decoded))
	assert.Nil(t, decoded.To())
	assert.Equal(t, big.NewInt(1), decoded.Value())
}
