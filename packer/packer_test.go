// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer_test

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/meterio/sealed-auction/builtin/items"
	"github.com/meterio/sealed-auction/chain"
	"github.com/meterio/sealed-auction/genesis"
	"github.com/meterio/sealed-auction/logdb"
	"github.com/meterio/sealed-auction/lvldb"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/packer"
	"github.com/meterio/sealed-auction/script"
	"github.com/meterio/sealed-auction/script/blindauction"
	"github.com/meterio/sealed-auction/state"
	"github.com/meterio/sealed-auction/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNode struct {
	t      *testing.T
	chain  *chain.Chain
	sc     *state.Creator
	se     *script.ScriptEngine
	logDB  *logdb.LogDB
	packer *packer.Packer
	nonce  uint64
}

func newTestNode(t *testing.T) *testNode {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	g := genesis.NewDevnet()
	sc := state.NewCreator(db)
	c, err := genesis.Setup(db, sc, g)
	require.NoError(t, err)

	ldb, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(ldb.Close)

	se := script.NewScriptEngine(sc, func(st *state.State) blindauction.ItemRegistry {
		return items.NewMinter(st, blindauction.AuctionAccountAddr)
	})
	p := packer.New(c, sc, se, ldb, meter.BytesToAddress([]byte("beneficiary")), g.BaseGasPrice())
	clock := uint64(2000000000)
	p.SetClock(func() uint64 { return clock })
	return &testNode{t: t, chain: c, sc: sc, se: se, logDB: ldb, packer: p}
}

func (n *testNode) newTx(key *ecdsa.PrivateKey, chainTag byte, clauses ...*tx.Clause) *tx.Transaction {
	n.nonce++
	b := new(tx.Builder).ChainTag(chainTag).Nonce(n.nonce).Gas(100000).GasPrice(meter.InitialBaseGasPrice)
	for _, c := range clauses {
		b.Clause(c)
	}
	trx, err := b.Build().Sign(key)
	require.NoError(n.t, err)
	return trx
}

func (n *testNode) auctionTx(key *ecdsa.PrivateKey, body *blindauction.BlindAuctionBody, value *big.Int) *tx.Transaction {
	data, err := script.EncodeScriptData(body)
	require.NoError(n.t, err)
	c := tx.NewClause(&blindauction.AuctionAccountAddr).WithData(data)
	if value != nil {
		c = c.WithValue(value)
	}
	return n.newTx(key, n.chain.Tag(), c)
}

func TestSubmit(t *testing.T) {
	n := newTestNode(t)
	owner := genesis.DevAccounts()[0]
	bidder := genesis.DevAccounts()[1]

	ch := make(chan *chain.NewBlockEvent, 4)
	sub := n.chain.SubscribeNewBlock(ch)
	defer sub.Unsubscribe()

	setPhase := n.auctionTx(owner.PrivateKey, blindauction.NewSetPhaseBody(blindauction.PhaseBidding), nil)
	r, err := n.packer.Submit(setPhase)
	require.NoError(t, err)
	require.False(t, r.Reverted, r.RevertReason)

	best := n.chain.BestBlock()
	assert.Equal(t, uint32(1), best.Header().Number())
	assert.Equal(t, uint64(2000000000), best.Header().Timestamp())
	ev := <-ch
	assert.Equal(t, best.Header().ID(), ev.Block.Header().ID())

	stored, meta, err := n.chain.GetTransactionReceipt(setPhase.ID())
	require.NoError(t, err)
	assert.Equal(t, best.Header().ID(), meta.BlockID)
	assert.Equal(t, r.GasUsed, stored.GasUsed)
	assert.Equal(t, blindauction.PhaseBidding, n.se.BlindAuction().CurrentPhase(n.sc.NewReader()))

	c := blindauction.CommitmentOf(1, meter.MustParseUnits("0.1"), bidder.Address)
	place := n.auctionTx(bidder.PrivateKey, blindauction.NewPlaceBidBody(c), meter.InitialMinStake)
	r, err = n.packer.Submit(place)
	require.NoError(t, err)
	require.False(t, r.Reverted, r.RevertReason)
	assert.Equal(t, uint64(2000000001), n.chain.BestBlock().Header().Timestamp())

	txID := place.ID()
	events, err := n.logDB.FilterEvents(context.Background(), &logdb.EventFilter{TxID: &txID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, blindauction.AuctionAccountAddr, events[0].Address)
	assert.Equal(t, bidder.Address, events[0].TxOrigin)

	transfers, err := n.logDB.FilterTransfers(context.Background(), &logdb.TransferFilter{TxID: &txID})
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, 0, meter.InitialMinStake.Cmp(transfers[0].Amount))

	// same tx again
	_, err = n.packer.Submit(place)
	assert.True(t, packer.IsKnownTx(err))
	assert.Equal(t, uint32(2), n.chain.BestBlock().Header().Number())
}

func TestSubmitRejected(t *testing.T) {
	n := newTestNode(t)
	bidder := genesis.DevAccounts()[1]
	to := genesis.DevAccounts()[2].Address

	_, err := n.packer.Submit(n.newTx(bidder.PrivateKey, n.chain.Tag()+1, tx.NewClause(&to)))
	assert.True(t, packer.IsBadTx(err))

	cheap, err := new(tx.Builder).ChainTag(n.chain.Tag()).Gas(21000).GasPrice(big.NewInt(1)).Clause(tx.NewClause(&to)).Build().Sign(bidder.PrivateKey)
	require.NoError(t, err)
	_, err = n.packer.Submit(cheap)
	assert.True(t, packer.IsBadTx(err))

	assert.Equal(t, uint32(0), n.chain.BestBlock().Header().Number())
	assert.Equal(t, 0, meter.MustParseUnits("1000").Cmp(n.sc.NewReader().GetBalance(bidder.Address)))
}

func TestSubmitRevertedIsCommitted(t *testing.T) {
	n := newTestNode(t)
	bidder := genesis.DevAccounts()[1]

	// the auction is still paused
	c := blindauction.CommitmentOf(1, big.NewInt(1), bidder.Address)
	place := n.auctionTx(bidder.PrivateKey, blindauction.NewPlaceBidBody(c), meter.InitialMinStake)
	r, err := n.packer.Submit(place)
	require.NoError(t, err)
	assert.True(t, r.Reverted)

	_, meta, err := n.chain.GetTransactionReceipt(place.ID())
	require.NoError(t, err)
	assert.True(t, meta.Reverted)

	st := n.sc.NewReader()
	spent := new(big.Int).Sub(meter.MustParseUnits("1000"), st.GetBalance(bidder.Address))
	assert.Equal(t, 0, r.Paid.Cmp(spent))
	assert.Equal(t, 0, st.GetBalance(blindauction.AuctionAccountAddr).Sign())
}
