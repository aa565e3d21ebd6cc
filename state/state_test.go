// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/sealed-auction/lvldb"
	"github.com/meterio/sealed-auction/meter"
	"github.com/stretchr/testify/assert"
)

func TestStateReadWrite(t *testing.T) {
	db, _ := lvldb.NewMem()
	state := New(db)

	addr := meter.BytesToAddress([]byte("account1"))
	storageKey := meter.BytesToBytes32([]byte("storageKey"))

	assert.Equal(t, big.NewInt(0), state.GetBalance(addr))
	assert.Equal(t, rlp.RawValue(nil), state.GetRawStorage(addr, storageKey))

	state.SetBalance(addr, big.NewInt(1))
	state.SetRawStorage(addr, storageKey, rlp.RawValue{1})

	assert.Equal(t, big.NewInt(1), state.GetBalance(addr))
	assert.Equal(t, rlp.RawValue{1}, state.GetRawStorage(addr, storageKey))

	assert.True(t, state.SubBalance(addr, big.NewInt(1)))
	assert.False(t, state.SubBalance(addr, big.NewInt(1)))
	state.AddBalance(addr, big.NewInt(5))
	assert.Equal(t, big.NewInt(5), state.GetBalance(addr))
	assert.Nil(t, state.Err())
}

func TestStateRevert(t *testing.T) {
	db, _ := lvldb.NewMem()
	state := New(db)

	addr := meter.BytesToAddress([]byte("account1"))
	storageKey := meter.BytesToBytes32([]byte("storageKey"))

	values := []struct {
		balance *big.Int
		storage rlp.RawValue
	}{
		{big.NewInt(1), rlp.RawValue{1}},
		{big.NewInt(2), rlp.RawValue{2}},
		{big.NewInt(3), rlp.RawValue{3}},
	}

	var chk int
	for _, v := range values {
		chk = state.NewCheckpoint()
		state.SetBalance(addr, v.balance)
		state.SetRawStorage(addr, storageKey, v.storage)
	}

	for i := range values {
		v := values[len(values)-i-1]
		assert.Equal(t, v.balance, state.GetBalance(addr))
		assert.Equal(t, v.storage, state.GetRawStorage(addr, storageKey))
		state.RevertTo(chk)
		chk--
	}
	assert.Equal(t, big.NewInt(0), state.GetBalance(addr))
	assert.Equal(t, rlp.RawValue(nil), state.GetRawStorage(addr, storageKey))
}

func TestStageCommit(t *testing.T) {
	db, _ := lvldb.NewMem()
	creator := NewCreator(db)
	state := creator.NewState()

	addr := meter.BytesToAddress([]byte("account1"))
	key := meter.BytesToBytes32([]byte("key"))
	state.SetBalance(addr, big.NewInt(10))
	state.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(uint64(42))
	})

	stage := state.Stage()
	h1, err := stage.Hash()
	assert.Nil(t, err)
	assert.False(t, h1.IsZero())

	batch := db.NewBatch()
	batch.Put([]byte("extra"), []byte("v"))
	assert.Nil(t, stage.CommitTo(batch))

	v, err := db.Get([]byte("extra"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v"), v)

	reader := creator.NewReader()
	assert.Equal(t, big.NewInt(10), reader.GetBalance(addr))
	var n uint64
	reader.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &n)
	})
	assert.Nil(t, reader.Err())
	assert.Equal(t, uint64(42), n)

	// emptied accounts and storage are removed
	state = creator.NewState()
	state.SetBalance(addr, big.NewInt(0))
	state.SetRawStorage(addr, key, nil)
	assert.Nil(t, state.Stage().CommitTo(db.NewBatch()))
	has, _ := db.Has(accountKey(addr))
	assert.False(t, has)
	has, _ = db.Has(storageDBKey(addr, key))
	assert.False(t, has)
	assert.Equal(t, big.NewInt(0), creator.NewReader().GetBalance(addr))
}

func TestDecodeStorageError(t *testing.T) {
	db, _ := lvldb.NewMem()
	state := New(db)
	addr := meter.BytesToAddress([]byte("account1"))
	key := meter.BytesToBytes32([]byte("key"))
	state.SetRawStorage(addr, key, rlp.RawValue{0xff})
	var n uint64
	state.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &n)
	})
	assert.NotNil(t, state.Err())
	_, err := state.Stage().Hash()
	assert.NotNil(t, err)
}
