// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/meterio/sealed-auction/kv"
)

const accountCacheSize = 4096

// Creator state creator to cut-off kv dependency.
type Creator struct {
	kv       kv.GetPutter
	accounts *lru.Cache
}

// NewCreator create a new state creator.
func NewCreator(kv kv.GetPutter) *Creator {
	accounts, err := lru.New(accountCacheSize)
	if err != nil {
		panic(err)
	}
	return &Creator{kv, accounts}
}

// NewState create a new state object on top of the committed data.
// It is meant for the single writer that also commits.
func (c *Creator) NewState() *State {
	return newState(c.kv, c.accounts, true)
}

// NewReader create a state for concurrent read-only queries.
// Readers use the shared account cache but never fill it, so a read racing a
// commit can not put a stale account back into the cache.
func (c *Creator) NewReader() *State {
	return newState(c.kv, c.accounts, false)
}
