// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/gorilla/mux"
	"github.com/meterio/sealed-auction/api/events"
	"github.com/meterio/sealed-auction/block"
	"github.com/meterio/sealed-auction/logdb"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/script/blindauction"
	"github.com/meterio/sealed-auction/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var moduleAddr = meter.BytesToAddress([]byte("module"))

func TestEvents(t *testing.T) {
	ts := initEventServer(t)
	defer ts.Close()

	t0 := meter.BytesToBytes32([]byte("topic0"))
	t1 := meter.BytesToBytes32([]byte("topic1"))
	limit := 5
	filter := &events.EventFilter{
		Range: &logdb.Range{
			Unit: "",
			From: 0,
			To:   10,
		},
		Options: &logdb.Options{
			Offset: 0,
			Limit:  uint64(limit),
		},
		Order: "",
		CriteriaSet: []*events.EventCriteria{
			{
				Address:  &moduleAddr,
				TopicSet: events.TopicSet{Topic0: &t0},
			},
			{
				Address:  &moduleAddr,
				TopicSet: events.TopicSet{Topic1: &t1},
			},
		},
	}
	var logs []*events.FilteredEvent
	require.NoError(t, json.Unmarshal(httpPost(t, ts.URL+"/logs/event", filter), &logs))
	assert.Equal(t, limit, len(logs), "should be `limit` logs")
	assert.Equal(t, []*meter.Bytes32{&t0, &t1}, logs[0].Topics)
	assert.Equal(t, "0x64617461", logs[0].Data)
}

func TestEventsByTxID(t *testing.T) {
	ts := initEventServer(t)
	defer ts.Close()

	txID := txIDOf(7)
	var logs []*events.FilteredEvent
	require.NoError(t, json.Unmarshal(httpPost(t, ts.URL+"/logs/event", &events.EventFilter{TxID: &txID}), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, txID, logs[0].Meta.TxID)
	assert.Equal(t, uint32(7), logs[0].Meta.BlockNumber)

	res, err := http.Post(ts.URL+"/logs/event", "application/json", bytes.NewReader([]byte(`{"unknown":1}`)))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestAuctionEvents(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)

	bidder := meter.BytesToAddress([]byte("bidder"))
	commitment := blindauction.CommitmentOf(5, big.NewInt(100), bidder)
	var item [8]byte
	binary.BigEndian.PutUint64(item[:], 5)
	data, err := rlp.EncodeToBytes([]interface{}{big.NewInt(100), commitment})
	require.NoError(t, err)
	reveal := &tx.Event{
		Address: blindauction.AuctionAccountAddr,
		Topics:  []meter.Bytes32{blindauction.RevealBidEvent, meter.BytesToBytes32(item[:]), meter.BytesToBytes32(bidder.Bytes())},
		Data:    data,
	}
	other := &tx.Event{Address: moduleAddr, Topics: []meter.Bytes32{blindauction.RevealBidEvent}}

	header := new(block.Builder).Build().Header()
	require.NoError(t, db.Prepare(header).Add(txIDOf(1), bidder, tx.Events{other, reveal}, nil).Commit())

	router := mux.NewRouter()
	events.New(db).Mount(router, "/logs/event")
	ts := httptest.NewServer(router)
	defer ts.Close()

	var logs []*events.FilteredEvent
	body := []byte(`{"criteriaSet":[{"name":"RevealBid","item":5}]}`)
	res, err := http.Post(ts.URL+"/logs/event", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(&logs))
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].Auction)
	assert.Equal(t, "RevealBid", logs[0].Auction.Name)
	assert.Equal(t, uint64(5), *logs[0].Auction.Item)
	assert.Equal(t, bidder, *logs[0].Auction.Bidder)
	assert.Equal(t, commitment, *logs[0].Auction.Commitment)
	assert.Equal(t, int64(100), (*big.Int)(logs[0].Auction.Amount).Int64())

	logs = nil
	require.NoError(t, json.Unmarshal(httpPost(t, ts.URL+"/logs/event", &events.EventFilter{
		CriteriaSet: []*events.EventCriteria{{Address: &moduleAddr}},
	}), &logs))
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].Auction)
}

func txIDOf(i int) meter.Bytes32 {
	return meter.BytesToBytes32([]byte{byte(i), 'i', 'd'})
}

func initEventServer(t *testing.T) *httptest.Server {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)

	txEv := &tx.Event{
		Address: moduleAddr,
		Topics:  []meter.Bytes32{meter.BytesToBytes32([]byte("topic0")), meter.BytesToBytes32([]byte("topic1"))},
		Data:    []byte("data"),
	}

	var genesisParent meter.Bytes32
	copy(genesisParent[:], []byte{0xff, 0xff, 0xff, 0xff})
	header := new(block.Builder).ParentID(genesisParent).Build().Header()
	for i := 0; i < 100; i++ {
		require.NoError(t, db.Prepare(header).Add(txIDOf(i), meter.BytesToAddress([]byte("txOrigin")), tx.Events{txEv}, nil).Commit())
		header = new(block.Builder).ParentID(header.ID()).Build().Header()
	}

	router := mux.NewRouter()
	events.New(db).Mount(router, "/logs/event")
	return httptest.NewServer(router)
}

func httpPost(t *testing.T, url string, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	r, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	return r
}
