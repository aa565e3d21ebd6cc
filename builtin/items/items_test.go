// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package items

import (
	"math/big"
	"testing"

	"github.com/meterio/sealed-auction/lvldb"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/state"
	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := state.New(db)

	minter := meter.BytesToAddress([]byte("minter"))
	alice := meter.BytesToAddress([]byte("alice"))
	bob := meter.BytesToAddress([]byte("bob"))

	reg := New(ItemsAddr, st)
	reg.Init(3, minter)

	assert.Equal(t, uint64(3), reg.CatalogueSize())
	assert.Equal(t, minter, reg.Minter())
	assert.True(t, reg.Exists(2))
	assert.False(t, reg.Exists(3))
	assert.False(t, reg.IsOwned(0))

	assert.Equal(t, ErrNotMinter, reg.Mint(alice, 0, alice))
	assert.Equal(t, ErrUnknownItem, reg.Mint(minter, 3, alice))
	assert.Equal(t, ErrZeroOwner, reg.Mint(minter, 0, meter.Address{}))

	assert.Nil(t, reg.Mint(minter, 0, alice))
	assert.Nil(t, reg.Premint(1, alice))
	assert.Equal(t, ErrAlreadyOwned, reg.Mint(minter, 0, bob))

	assert.Equal(t, alice, reg.OwnerOf(0))
	assert.True(t, reg.IsOwned(1))
	assert.Equal(t, big.NewInt(2), reg.BalanceOf(alice))
	assert.Equal(t, big.NewInt(0), reg.BalanceOf(bob))
	assert.Nil(t, st.Err())
}

func TestMinter(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := state.New(db)

	auction := meter.BytesToAddress([]byte("auction"))
	winner := meter.BytesToAddress([]byte("winner"))
	New(ItemsAddr, st).Init(10, auction)

	m := NewMinter(st, auction)
	assert.Nil(t, m.TransferOwnership(7, winner))
	assert.Equal(t, ErrAlreadyOwned, m.TransferOwnership(7, winner))
	assert.Equal(t, winner, m.OwnerOf(7))

	other := NewMinter(st, winner)
	assert.Equal(t, ErrNotMinter, other.TransferOwnership(8, winner))
}
