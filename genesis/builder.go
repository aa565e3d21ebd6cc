// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/meterio/sealed-auction/block"
	"github.com/meterio/sealed-auction/lvldb"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/state"
	"github.com/pkg/errors"
)

// parent id of every genesis block, its leading 0xffffffff makes the number 0
var genesisParentID = meter.Bytes32{0xff, 0xff, 0xff, 0xff}

// Builder helper to build genesis block.
type Builder struct {
	timestamp  uint64
	gasLimit   uint64
	stateProcs []func(state *state.State) error
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// GasLimit set gas limit.
func (b *Builder) GasLimit(limit uint64) *Builder {
	b.gasLimit = limit
	return b
}

// State add a state process
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// ComputeID compute genesis ID.
func (b *Builder) ComputeID() (meter.Bytes32, error) {
	kv, err := lvldb.NewMem()
	if err != nil {
		return meter.Bytes32{}, err
	}
	defer kv.Close()

	blk, _, err := b.Build(state.NewCreator(kv))
	if err != nil {
		return meter.Bytes32{}, err
	}
	return blk.Header().ID(), nil
}

// Build build genesis block according to presets. The returned stage holds
// the genesis state and is committed only when the database is fresh.
func (b *Builder) Build(stateCreator *state.Creator) (blk *block.Block, stage *state.Stage, err error) {
	st := stateCreator.NewState()
	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return nil, nil, errors.Wrap(err, "state process")
		}
	}
	if err := st.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "state")
	}

	stage = st.Stage()
	digest, err := stage.Hash()
	if err != nil {
		return nil, nil, errors.Wrap(err, "hash state")
	}

	return new(block.Builder).
			ParentID(genesisParentID).
			Timestamp(b.timestamp).
			GasLimit(b.gasLimit).
			StateDigest(digest).
			Build(),
		stage, nil
}
