// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/meterio/sealed-auction/kv"
	"github.com/meterio/sealed-auction/meter"
)

// Stage abstracts the net changes of a state.
type Stage struct {
	err error

	accounts map[meter.Address]*Account
	storage  map[storageKey]rlp.RawValue
	cache    *lru.Cache
}

// Hash computes a digest of the changes, independent of the order they were made in.
func (s *Stage) Hash() (meter.Bytes32, error) {
	if s.err != nil {
		return meter.Bytes32{}, s.err
	}

	addrs := make([]meter.Address, 0, len(s.accounts))
	for addr := range s.accounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return bytes.Compare(addrs[i][:], addrs[j][:]) < 0 })

	keys := make([]storageKey, 0, len(s.storage))
	for k := range s.storage {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := bytes.Compare(keys[i].addr[:], keys[j].addr[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(keys[i].key[:], keys[j].key[:]) < 0
	})

	hw := meter.NewBlake2b()
	for _, addr := range addrs {
		if err := rlp.Encode(hw, []interface{}{addr, s.accounts[addr].Balance}); err != nil {
			return meter.Bytes32{}, err
		}
	}
	for _, k := range keys {
		if err := rlp.Encode(hw, []interface{}{k.addr, k.key, []byte(s.storage[k])}); err != nil {
			return meter.Bytes32{}, err
		}
	}
	var h meter.Bytes32
	hw.Sum(h[:0])
	return h, nil
}

// CommitTo adds the changes into batch and writes it, so that anything else
// already put into the batch lands atomically with the state.
func (s *Stage) CommitTo(batch kv.Batch) error {
	if s.err != nil {
		return s.err
	}
	start := time.Now()
	for addr, a := range s.accounts {
		if err := saveAccount(batch, addr, a); err != nil {
			return err
		}
	}
	for k, v := range s.storage {
		if err := saveStorage(batch, k.addr, k.key, v); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	if s.cache != nil {
		for addr, a := range s.accounts {
			s.cache.Add(addr, Account{Balance: new(big.Int).Set(a.Balance)})
		}
	}
	log.Debug("commited stage", "accounts", len(s.accounts), "storage", len(s.storage), "elapsed", meter.PrettyDuration(time.Since(start)))
	return nil
}
