// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction_test

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/meterio/sealed-auction/api/auction"
	"github.com/meterio/sealed-auction/builtin/items"
	"github.com/meterio/sealed-auction/lvldb"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/script/blindauction"
	"github.com/meterio/sealed-auction/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner  = meter.BytesToAddress([]byte("owner"))
	bidder = meter.BytesToAddress([]byte("bidder"))
)

func initAuctionServer(t *testing.T) (*httptest.Server, meter.Bytes32) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	sc := state.NewCreator(db)
	st := sc.NewState()

	engine := blindauction.NewBlindAuction(sc, func(st *state.State) blindauction.ItemRegistry {
		return items.NewMinter(st, blindauction.AuctionAccountAddr)
	})
	engine.Init(st, owner, meter.InitialMinStake, blindauction.OutbidLockup)
	reg := items.New(items.ItemsAddr, st)
	reg.Init(meter.DefaultCatalogueSize, blindauction.AuctionAccountAddr)
	require.NoError(t, reg.Premint(3, owner))

	amount := meter.MustParseUnits("1")
	commitment := blindauction.CommitmentOf(7, amount, bidder)
	engine.SetSealedBid(st, commitment, &blindauction.SealedBid{Bidder: bidder, Stake: meter.MustParseUnits("2")})
	engine.SetHighestBid(st, 7, &blindauction.HighestBid{Bidder: bidder, Amount: amount})
	engine.SetPhase(st, blindauction.PhaseReveal)
	st.SetBalance(blindauction.AuctionAccountAddr, meter.MustParseUnits("3"))
	acc := engine.GetAccounting(st)
	acc.ActiveStake = meter.MustParseUnits("2")
	acc.Winning = new(big.Int).Set(amount)
	engine.SetAccounting(st, acc)

	batch := db.NewBatch()
	require.NoError(t, st.Stage().CommitTo(batch))
	require.NoError(t, batch.Write())

	router := mux.NewRouter()
	auction.New(sc, engine).Mount(router, "/auction")
	return httptest.NewServer(router), commitment
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func TestSummary(t *testing.T) {
	ts, _ := initAuctionServer(t)
	defer ts.Close()

	body, status := httpGet(t, ts.URL+"/auction")
	require.Equal(t, http.StatusOK, status, string(body))
	var summary auction.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, "Reveal", summary.Phase)
	assert.Equal(t, uint32(blindauction.PhaseReveal), summary.PhaseNumber)
	assert.Equal(t, owner, summary.Owner)
	assert.Equal(t, "lockup", summary.OutbidPolicy)
	assert.Equal(t, 0, (*big.Int)(summary.MinStake).Cmp(meter.InitialMinStake))
	assert.Equal(t, 0, (*big.Int)(summary.Balance).Cmp(meter.MustParseUnits("3")))
}

func TestCommitment(t *testing.T) {
	ts, want := initAuctionServer(t)
	defer ts.Close()

	body, status := httpGet(t, ts.URL+"/auction/commitment?item=7&amount=1000000000000000000&bidder="+bidder.String())
	require.Equal(t, http.StatusOK, status, string(body))
	var res map[string]string
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, want.String(), res["commitment"])

	_, status = httpGet(t, ts.URL+"/auction/commitment?item=x&amount=1&bidder="+bidder.String())
	assert.Equal(t, http.StatusBadRequest, status)
	_, status = httpGet(t, ts.URL+"/auction/commitment?item=1&amount=-1&bidder="+bidder.String())
	assert.Equal(t, http.StatusBadRequest, status)
	_, status = httpGet(t, ts.URL+"/auction/commitment?item=1&amount=1&bidder=0x12")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSealedBid(t *testing.T) {
	ts, commitment := initAuctionServer(t)
	defer ts.Close()

	body, status := httpGet(t, ts.URL+"/auction/bids/"+commitment.String())
	require.Equal(t, http.StatusOK, status, string(body))
	var bid auction.SealedBid
	require.NoError(t, json.Unmarshal(body, &bid))
	assert.True(t, bid.Active)
	require.NotNil(t, bid.Bidder)
	assert.Equal(t, bidder, *bid.Bidder)
	assert.Equal(t, 0, (*big.Int)(bid.Stake).Cmp(meter.MustParseUnits("2")))
	assert.False(t, bid.Forfeited)

	unknown := meter.BytesToBytes32([]byte("unknown"))
	body, status = httpGet(t, ts.URL+"/auction/bids/"+unknown.String())
	require.Equal(t, http.StatusOK, status)
	bid = auction.SealedBid{}
	require.NoError(t, json.Unmarshal(body, &bid))
	assert.False(t, bid.Active)
	assert.Nil(t, bid.Bidder)

	_, status = httpGet(t, ts.URL+"/auction/bids/nothex")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestItem(t *testing.T) {
	ts, _ := initAuctionServer(t)
	defer ts.Close()

	body, status := httpGet(t, ts.URL+"/auction/items/7")
	require.Equal(t, http.StatusOK, status, string(body))
	var item auction.Item
	require.NoError(t, json.Unmarshal(body, &item))
	assert.True(t, item.Exists)
	assert.False(t, item.Claimed)
	assert.Nil(t, item.Owner)
	require.NotNil(t, item.HighestBid)
	assert.Equal(t, bidder, item.HighestBid.Bidder)

	body, status = httpGet(t, ts.URL+"/auction/items/3")
	require.Equal(t, http.StatusOK, status)
	item = auction.Item{}
	require.NoError(t, json.Unmarshal(body, &item))
	require.NotNil(t, item.Owner)
	assert.Equal(t, owner, *item.Owner)
	assert.Nil(t, item.HighestBid)

	body, status = httpGet(t, ts.URL+"/auction/items/100000")
	require.Equal(t, http.StatusOK, status)
	item = auction.Item{}
	require.NoError(t, json.Unmarshal(body, &item))
	assert.False(t, item.Exists)
}

func TestAudit(t *testing.T) {
	ts, _ := initAuctionServer(t)
	defer ts.Close()

	body, status := httpGet(t, ts.URL+"/auction/audit")
	require.Equal(t, http.StatusOK, status, string(body))
	var audit auction.Audit
	require.NoError(t, json.Unmarshal(body, &audit))
	assert.True(t, audit.Solvent)
	assert.True(t, audit.Balanced)
	assert.Equal(t, 0, (*big.Int)(audit.Winning).Cmp(meter.MustParseUnits("1")))
	assert.Equal(t, 0, (*big.Int)(audit.Forfeited).Sign())
}
