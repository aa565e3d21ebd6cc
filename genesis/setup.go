// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/meterio/sealed-auction/chain"
	"github.com/meterio/sealed-auction/kv"
	"github.com/meterio/sealed-auction/lvldb"
	"github.com/meterio/sealed-auction/state"
	"github.com/pkg/errors"
)

// Setup opens the chain stored in db, writing the genesis state first when
// db is fresh. Reopening an existing db leaves its state alone.
func Setup(db kv.GetPutter, stateCreator *state.Creator, g *Genesis) (*chain.Chain, error) {
	initialized, err := chain.IsInitialized(db)
	if err != nil {
		return nil, err
	}

	// an existing chain only needs the genesis block, built aside
	sc := stateCreator
	if initialized {
		mem, err := lvldb.NewMem()
		if err != nil {
			return nil, err
		}
		defer mem.Close()
		sc = state.NewCreator(mem)
	}

	blk, stage, err := g.Build(sc)
	if err != nil {
		return nil, errors.Wrap(err, "build genesis")
	}

	if !initialized {
		// nothing but genesis state exists until the chain head is written,
		// so a crash in between is repaired by the next run
		if err := stage.CommitTo(db.NewBatch()); err != nil {
			return nil, errors.Wrap(err, "commit genesis state")
		}
		log.Info("genesis state written", "name", g.Name(), "id", g.ID())
	}

	c, err := chain.New(db, blk)
	if err != nil {
		return nil, errors.Wrap(err, "open chain")
	}
	return c, nil
}
