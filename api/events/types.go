// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/sealed-auction/api/transactions"
	"github.com/meterio/sealed-auction/logdb"
	"github.com/meterio/sealed-auction/meter"
)

type TopicSet struct {
	Topic0 *meter.Bytes32 `json:"topic0"`
	Topic1 *meter.Bytes32 `json:"topic1"`
	Topic2 *meter.Bytes32 `json:"topic2"`
	Topic3 *meter.Bytes32 `json:"topic3"`
	Topic4 *meter.Bytes32 `json:"topic4"`
}

// AuctionInfo is the decoded view of an auction engine log.
type AuctionInfo struct {
	Name       string                `json:"name"`
	Item       *uint64               `json:"item,omitempty"`
	Bidder     *meter.Address        `json:"bidder,omitempty"`
	Commitment *meter.Bytes32        `json:"commitment,omitempty"`
	Amount     *math.HexOrDecimal256 `json:"amount,omitempty"`
}

// FilteredEvent only comes from one module account
type FilteredEvent struct {
	Address meter.Address        `json:"address"`
	Topics  []*meter.Bytes32     `json:"topics"`
	Data    string               `json:"data"`
	Auction *AuctionInfo         `json:"auction,omitempty"`
	Meta    transactions.LogMeta `json:"meta"`
}

//convert a logdb.Event into a json format Event
func convertEvent(event *logdb.Event) *FilteredEvent {
	fe := FilteredEvent{
		Address: event.Address,
		Data:    hexutil.Encode(event.Data),
		Meta: transactions.LogMeta{
			BlockID:        event.BlockID,
			BlockNumber:    event.BlockNumber,
			BlockTimestamp: event.BlockTime,
			TxID:           event.TxID,
			TxOrigin:       event.TxOrigin,
		},
	}
	fe.Topics = make([]*meter.Bytes32, 0)
	for i := 0; i < 5; i++ {
		if event.Topics[i] != nil {
			fe.Topics = append(fe.Topics, event.Topics[i])
		}
	}
	if event.Name != "" {
		fe.Auction = &AuctionInfo{
			Name:       event.Name,
			Item:       event.ItemID,
			Bidder:     event.Bidder,
			Commitment: event.Commitment,
		}
		if event.Amount != nil {
			fe.Auction.Amount = (*math.HexOrDecimal256)(event.Amount)
		}
	}
	return &fe
}

// EventCriteria matches on every field set. Name, item, bidder and
// commitment select auction engine logs.
type EventCriteria struct {
	Address *meter.Address `json:"address"`
	TopicSet
	Name       string         `json:"name"`
	Item       *uint64        `json:"item"`
	Bidder     *meter.Address `json:"bidder"`
	Commitment *meter.Bytes32 `json:"commitment"`
}

type EventFilter struct {
	TxID        *meter.Bytes32   `json:"txID"`
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *logdb.Range     `json:"range"`
	Options     *logdb.Options   `json:"options"`
	Order       logdb.Order      `json:"order"`
}

func convertEventFilter(filter *EventFilter) *logdb.EventFilter {
	f := &logdb.EventFilter{
		TxID:    filter.TxID,
		Range:   filter.Range,
		Options: filter.Options,
		Order:   filter.Order,
	}
	if len(filter.CriteriaSet) > 0 {
		criterias := make([]*logdb.EventCriteria, len(filter.CriteriaSet))
		for i, criteria := range filter.CriteriaSet {
			var topics [5]*meter.Bytes32
			topics[0] = criteria.Topic0
			topics[1] = criteria.Topic1
			topics[2] = criteria.Topic2
			topics[3] = criteria.Topic3
			topics[4] = criteria.Topic4
			criterias[i] = &logdb.EventCriteria{
				Address:    criteria.Address,
				Topics:     topics,
				Name:       criteria.Name,
				ItemID:     criteria.Item,
				Bidder:     criteria.Bidder,
				Commitment: criteria.Commitment,
			}
		}
		f.CriteriaSet = criterias
	}
	return f
}
