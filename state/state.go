// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/meterio/sealed-auction/kv"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/stackedmap"
)

var log = slog.Default().With("pkg", "state")

type storageKey struct {
	addr meter.Address
	key  meter.Bytes32
}

// State manages accounts and their storage.
// All writes are journaled and can be reverted to a checkpoint.
type State struct {
	kv       kv.GetPutter
	accounts *lru.Cache // committed accounts shared by states of one creator, may be nil
	fill     bool       // whether loads populate accounts
	sm       *stackedmap.StackedMap
	err      error
	setError func(err error)
}

// New create an state object.
func New(kv kv.GetPutter) *State {
	return newState(kv, nil, false)
}

func newState(kv kv.GetPutter, accounts *lru.Cache, fill bool) *State {
	state := State{
		kv:       kv,
		accounts: accounts,
		fill:     fill,
	}
	state.setError = func(err error) {
		if state.err == nil {
			state.err = err
		}
	}
	state.sm = stackedmap.New(func(key interface{}) (value interface{}, exist bool) {
		return state.cacheGetter(key)
	})
	return &state
}

// implements stackedmap.MapGetter
func (s *State) cacheGetter(key interface{}) (value interface{}, exist bool) {
	switch k := key.(type) {
	case meter.Address: // get account
		return s.getCommittedAccount(k), true
	case storageKey: // get storage
		v, err := loadStorage(s.kv, k.addr, k.key)
		if err != nil {
			s.setError(err)
			return rlp.RawValue(nil), true
		}
		return v, true
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func (s *State) getCommittedAccount(addr meter.Address) *Account {
	if s.accounts != nil {
		if v, ok := s.accounts.Get(addr); ok {
			a := v.(Account)
			return &Account{Balance: new(big.Int).Set(a.Balance)}
		}
	}
	a, err := loadAccount(s.kv, addr)
	if err != nil {
		s.setError(err)
		return emptyAccount()
	}
	if s.accounts != nil && s.fill {
		s.accounts.Add(addr, Account{Balance: new(big.Int).Set(a.Balance)})
	}
	return a
}

// the returned account should not be modified
func (s *State) getAccount(addr meter.Address) *Account {
	v, _ := s.sm.Get(addr)
	return v.(*Account)
}

func (s *State) updateAccount(addr meter.Address, acc *Account) {
	s.sm.Put(addr, acc)
}

// Err returns first occurred error.
func (s *State) Err() error {
	return s.err
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr meter.Address) *big.Int {
	return new(big.Int).Set(s.getAccount(addr).Balance)
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr meter.Address, balance *big.Int) {
	s.updateAccount(addr, &Account{Balance: new(big.Int).Set(balance)})
}

// SubBalance sub amount of balance, returns false if the balance is insufficient.
func (s *State) SubBalance(addr meter.Address, amount *big.Int) bool {
	if amount.Sign() == 0 {
		return true
	}

	balance := s.GetBalance(addr)
	if balance.Cmp(amount) < 0 {
		return false
	}

	s.SetBalance(addr, new(big.Int).Sub(balance, amount))
	return true
}

// AddBalance add amount of balance to given address.
func (s *State) AddBalance(addr meter.Address, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	s.SetBalance(addr, new(big.Int).Add(s.GetBalance(addr), amount))
}

// Transfer moves amount from one account to another, returns false if the sender is short of funds.
func (s *State) Transfer(from, to meter.Address, amount *big.Int) bool {
	if !s.SubBalance(from, amount) {
		return false
	}
	s.AddBalance(to, amount)
	return true
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr meter.Address, key meter.Bytes32) rlp.RawValue {
	data, _ := s.sm.Get(storageKey{addr, key})
	return data.(rlp.RawValue)
}

// SetRawStorage set storage value in rlp raw. An empty value deletes the key.
func (s *State) SetRawStorage(addr meter.Address, key meter.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr meter.Address, key meter.Bytes32, enc func() ([]byte, error)) {
	raw, err := enc()
	if err != nil {
		s.setError(err)
		return
	}
	s.SetRawStorage(addr, key, raw)
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr meter.Address, key meter.Bytes32, dec func([]byte) error) {
	raw := s.GetRawStorage(addr, key)
	if err := dec(raw); err != nil {
		s.setError(err)
	}
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage makes a stage object to compute hash of changes or commit them.
func (s *State) Stage() *Stage {
	if s.err != nil {
		return &Stage{err: s.err}
	}
	accounts := make(map[meter.Address]*Account)
	storage := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k, v interface{}) bool {
		switch key := k.(type) {
		case meter.Address:
			accounts[key] = v.(*Account)
		case storageKey:
			storage[key] = v.(rlp.RawValue)
		}
		return true
	})
	return &Stage{
		accounts: accounts,
		storage:  storage,
		cache:    s.accounts,
	}
}
