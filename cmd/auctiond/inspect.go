// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/meterio/sealed-auction/builtin/items"
	"github.com/meterio/sealed-auction/chain"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/script/blindauction"
	"github.com/meterio/sealed-auction/state"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
)

var dumper = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}

type auctionDump struct {
	Phase        string
	Owner        meter.Address
	MinStake     string
	OutbidPolicy string
	Accounting   *blindauction.Accounting
	Audit        *blindauction.AuditReport
	Catalogue    uint64
}

type itemDump struct {
	ID         uint64
	Exists     bool
	Owner      meter.Address
	Claimed    bool
	HighestBid *blindauction.HighestBid
}

func inspectAction(ctx *cli.Context) error {
	initLogger(ctx)
	gene := selectGenesis(ctx)
	instanceDir := makeInstanceDir(ctx, gene)
	mainDB := openMainDB(ctx, instanceDir)
	defer mainDB.Close()

	stateCreator := state.NewCreator(mainDB)
	c := initChain(gene, mainDB, stateCreator)
	defer c.Close()
	engine := newScriptEngine(stateCreator).BlindAuction()
	st := stateCreator.NewReader()

	args := ctx.Args()
	arg := func() (string, error) {
		if len(args) < 2 {
			return "", fmt.Errorf("%v: missing argument", args.First())
		}
		return args.Get(1), nil
	}

	var out interface{}
	switch args.First() {
	case "", "auction":
		out = &auctionDump{
			Phase:        engine.CurrentPhase(st).String(),
			Owner:        engine.GetOwner(st),
			MinStake:     meter.FormatUnits(engine.GetMinStake(st)),
			OutbidPolicy: engine.GetOutbidPolicy(st).String(),
			Accounting:   engine.GetAccounting(st),
			Audit:        engine.Audit(st),
			Catalogue:    items.New(items.ItemsAddr, st).CatalogueSize(),
		}
	case "item":
		s, err := arg()
		if err != nil {
			return err
		}
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return errors.WithMessage(err, "item id")
		}
		reg := items.New(items.ItemsAddr, st)
		out = &itemDump{
			ID:         id,
			Exists:     reg.Exists(id),
			Owner:      reg.OwnerOf(id),
			Claimed:    engine.IsClaimed(st, id),
			HighestBid: engine.HighestBidForItem(st, id),
		}
	case "bid":
		s, err := arg()
		if err != nil {
			return err
		}
		commitment, err := meter.ParseBytes32(s)
		if err != nil {
			return errors.WithMessage(err, "commitment")
		}
		out = engine.SealedBidByCommitment(st, commitment)
	case "block":
		s, err := arg()
		if err != nil {
			return err
		}
		num, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return errors.WithMessage(err, "block number")
		}
		blk, err := c.GetTrunkBlock(uint32(num))
		if err != nil {
			return notFound(c, err, "block")
		}
		receipts, err := c.GetBlockReceipts(blk.Header().ID())
		if err != nil {
			return err
		}
		out = []interface{}{blk.Header(), blk.Transactions(), receipts}
	case "tx":
		s, err := arg()
		if err != nil {
			return err
		}
		id, err := meter.ParseBytes32(s)
		if err != nil {
			return errors.WithMessage(err, "tx id")
		}
		trx, meta, err := c.GetTrunkTransaction(id)
		if err != nil {
			return notFound(c, err, "tx")
		}
		receipt, _, err := c.GetTransactionReceipt(id)
		if err != nil {
			return err
		}
		out = []interface{}{trx, meta, receipt}
	default:
		return fmt.Errorf("unknown subject %q", args.First())
	}
	if err := st.Err(); err != nil {
		return err
	}
	dumper.Dump(out)
	return nil
}

func notFound(c *chain.Chain, err error, what string) error {
	if c.IsNotFound(err) {
		return fmt.Errorf("%v not found", what)
	}
	return err
}
