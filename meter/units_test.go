// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter_test

import (
	"math/big"
	"testing"

	"github.com/meterio/sealed-auction/meter"
	"github.com/stretchr/testify/assert"
)

func TestParseUnits(t *testing.T) {
	v, err := meter.ParseUnits("0.2")
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(2e17), v)

	v, err = meter.ParseUnits("3")
	assert.Nil(t, err)
	assert.Equal(t, "3000000000000000000", v.String())

	_, err = meter.ParseUnits("-1")
	assert.NotNil(t, err)

	_, err = meter.ParseUnits("abc")
	assert.NotNil(t, err)

	v, err = meter.ParseUnits("0.000000000000000001")
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(1), v)

	_, err = meter.ParseUnits("0.0000000000000000001")
	assert.NotNil(t, err)
	_, err = meter.ParseUnits("1.0000000000000000005")
	assert.NotNil(t, err)
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "0.05", meter.FormatUnits(big.NewInt(5e16)))
	assert.Equal(t, "0", meter.FormatUnits(nil))
	assert.Equal(t, "0.2", meter.FormatUnits(meter.InitialMinStake))
}

func TestAddress(t *testing.T) {
	addr := meter.BytesToAddress([]byte("sealed-auction-account"))
	parsed, err := meter.ParseAddress(addr.String())
	assert.Nil(t, err)
	assert.Equal(t, addr, parsed)
	assert.False(t, addr.IsZero())
	assert.True(t, meter.Address{}.IsZero())

	_, err = meter.ParseAddress("0x1234")
	assert.NotNil(t, err)

	text, err := addr.MarshalText()
	assert.Nil(t, err)
	var back meter.Address
	assert.Nil(t, back.UnmarshalText(text))
	assert.Equal(t, addr, back)
}

func TestBlake2bRLP(t *testing.T) {
	a := meter.Blake2bRLP([]interface{}{uint64(1), big.NewInt(2)})
	b := meter.Blake2bRLP([]interface{}{uint64(1), big.NewInt(2)})
	c := meter.Blake2bRLP([]interface{}{uint64(2), big.NewInt(1)})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Panics(t, func() { meter.Blake2bRLP([]interface{}{uint64(1), big.NewInt(-1)}) })
	assert.Panics(t, func() { meter.Blake2bRLP([]interface{}{uint64(42), big.NewInt(-7)}) })
}
