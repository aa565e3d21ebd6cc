// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"log/slog"
	"math/big"

	"github.com/meterio/sealed-auction/block"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/state"
)

var log = slog.Default().With("pkg", "genesis")

// Genesis to build genesis block.
type Genesis struct {
	builder      *Builder
	id           meter.Bytes32
	name         string
	owner        meter.Address
	baseGasPrice *big.Int
}

// Build build the genesis block.
func (g *Genesis) Build(stateCreator *state.Creator) (*block.Block, *state.Stage, error) {
	blk, stage, err := g.builder.Build(stateCreator)
	if err != nil {
		return nil, nil, err
	}
	if blk.Header().ID() != g.id {
		panic("built genesis ID incorrect")
	}
	return blk, stage, nil
}

// ID returns genesis block ID.
func (g *Genesis) ID() meter.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

// Owner returns the initial auction owner.
func (g *Genesis) Owner() meter.Address {
	return g.owner
}

// BaseGasPrice returns the lowest gas price transactions may offer.
func (g *Genesis) BaseGasPrice() *big.Int {
	return new(big.Int).Set(g.baseGasPrice)
}
