// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"flag"
	"log/slog"
	"testing"

	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/script/blindauction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"
)

func newContext(t *testing.T, values map[string]string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String(opFlag.Name, "", "")
	set.Uint64(itemFlag.Name, 0, "")
	set.String(amountFlag.Name, "", "")
	set.String(commitmentFlag.Name, "", "")
	set.String(phaseFlag.Name, "", "")
	set.String(newOwnerFlag.Name, "", "")
	for k, v := range values {
		require.NoError(t, set.Set(k, v))
	}
	return cli.NewContext(nil, set, nil)
}

func TestAuctionBody(t *testing.T) {
	sender := meter.BytesToAddress([]byte("sender"))

	body, err := auctionBody(newContext(t, map[string]string{"op": "set-phase", "phase": "reveal"}), sender)
	require.NoError(t, err)
	assert.Equal(t, blindauction.NewSetPhaseBody(blindauction.PhaseReveal), body)

	body, err = auctionBody(newContext(t, map[string]string{"op": "place-bid", "item": "4", "amount": "1.5"}), sender)
	require.NoError(t, err)
	want := blindauction.CommitmentOf(4, meter.MustParseUnits("1.5"), sender)
	assert.Equal(t, blindauction.NewPlaceBidBody(want), body)

	body, err = auctionBody(newContext(t, map[string]string{"op": "withdraw-bid", "commitment": want.String()}), sender)
	require.NoError(t, err)
	assert.Equal(t, blindauction.NewWithdrawBidBody(want), body)

	body, err = auctionBody(newContext(t, map[string]string{"op": "unseal", "item": "4", "amount": "1.5"}), sender)
	require.NoError(t, err)
	assert.Equal(t, blindauction.NewUnsealBidBody(4, meter.MustParseUnits("1.5")), body)

	body, err = auctionBody(newContext(t, map[string]string{"op": "Claim", "item": "9"}), sender)
	require.NoError(t, err)
	assert.Equal(t, blindauction.NewClaimItemBody(9), body)

	_, err = auctionBody(newContext(t, map[string]string{"op": "unseal", "item": "4"}), sender)
	assert.Error(t, err)
	_, err = auctionBody(newContext(t, map[string]string{"op": "set-phase", "phase": "later"}), sender)
	assert.Error(t, err)
	_, err = auctionBody(newContext(t, map[string]string{"op": "bribe"}), sender)
	assert.Error(t, err)
	_, err = auctionBody(newContext(t, nil), sender)
	assert.Error(t, err)
}

func TestVerbosityLevel(t *testing.T) {
	assert.Equal(t, slog.LevelError, verbosityLevel(0))
	assert.Equal(t, slog.LevelWarn, verbosityLevel(2))
	assert.Equal(t, slog.LevelInfo, verbosityLevel(3))
	assert.Equal(t, slog.LevelDebug, verbosityLevel(9))
}
