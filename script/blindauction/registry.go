// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/state"
)

// ItemRegistry is the authority over which items exist and who owns them.
// TransferOwnership must fail if the item already has an owner.
type ItemRegistry interface {
	Exists(itemID uint64) bool
	IsOwned(itemID uint64) bool
	TransferOwnership(itemID uint64, to meter.Address) error
}

// RegistryFunc binds the registry to the state an operation runs against.
type RegistryFunc func(state *state.State) ItemRegistry
